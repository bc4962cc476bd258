package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wms-core/location-service/internal/application"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/middleware"
)

// LocationHandlers contains handlers for location operations
type LocationHandlers struct {
	service *application.LocationApplicationService
	logger  *logging.Logger
}

// NewLocationHandlers creates a new LocationHandlers
func NewLocationHandlers(service *application.LocationApplicationService, logger *logging.Logger) *LocationHandlers {
	return &LocationHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers location routes on the router
func (h *LocationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/locations")
	{
		locations.POST("", h.CreateLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/*locationId", h.GetLocation)
	}
}

// CreateLocation handles location creation
func (h *LocationHandlers) CreateLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		LocationID string `json:"locationId" binding:"required"`
		GroupName  string `json:"groupName"`
		Stockzone  string `json:"stockzone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"location.id": req.LocationID,
	})

	cmd := application.CreateLocationCommand{
		LocationID: req.LocationID,
		GroupName:  req.GroupName,
		Stockzone:  req.Stockzone,
	}

	location, err := h.service.CreateLocation(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, location)
}

// GetLocation handles getting a location by its composite key
func (h *LocationHandlers) GetLocation(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	locationID := strings.TrimPrefix(c.Param("locationId"), "/")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"location.id": locationID,
	})

	query := application.GetLocationQuery{LocationID: locationID}

	location, err := h.service.GetLocation(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, location)
}

// ListLocations handles listing locations, optionally scoped to a group
func (h *LocationHandlers) ListLocations(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := application.ListLocationsQuery{
		GroupName: c.Query("groupName"),
		Limit:     limit,
		Offset:    offset,
	}

	locations, err := h.service.ListLocations(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, locations)
}
