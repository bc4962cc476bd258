package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wms-core/location-service/internal/application"
	"github.com/wms-core/location-service/pkg/errors"
	"github.com/wms-core/location-service/pkg/logging"
	"github.com/wms-core/location-service/pkg/middleware"
)

// LocationGroupHandlers contains handlers for location group operations
type LocationGroupHandlers struct {
	service   *application.LocationGroupApplicationService
	errorCode *application.ErrorCodeService
	logger    *logging.Logger
}

// NewLocationGroupHandlers creates a new LocationGroupHandlers
func NewLocationGroupHandlers(
	service *application.LocationGroupApplicationService,
	errorCode *application.ErrorCodeService,
	logger *logging.Logger,
) *LocationGroupHandlers {
	return &LocationGroupHandlers{
		service:   service,
		errorCode: errorCode,
		logger:    logger,
	}
}

// RegisterRoutes registers location group routes on the router
func (h *LocationGroupHandlers) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/location-groups")
	{
		groups.POST("", h.CreateLocationGroup)
		groups.GET("", h.ListLocationGroups)
		groups.GET("/:name", h.GetLocationGroup)
		groups.PUT("/:name/state", h.ChangeGroupState)
		groups.PUT("/:name/operation-mode", h.ChangeGroupMode)
		groups.POST("/:name/equipment-status", h.ReportEquipmentStatus)
	}
}

// CreateLocationGroup handles location group creation
func (h *LocationGroupHandlers) CreateLocationGroup(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name       string `json:"name" binding:"required"`
		ParentName string `json:"parentName"`
		GroupType  string `json:"groupType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"group.name": req.Name,
	})

	cmd := application.CreateLocationGroupCommand{
		Name:       req.Name,
		ParentName: req.ParentName,
		GroupType:  req.GroupType,
	}

	group, err := h.service.CreateLocationGroup(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, group)
}

// GetLocationGroup handles getting a location group by name
func (h *LocationGroupHandlers) GetLocationGroup(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	name := c.Param("name")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"group.name": name,
	})

	query := application.GetLocationGroupQuery{Name: name}

	group, err := h.service.GetLocationGroup(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// ListLocationGroups handles listing all location groups
func (h *LocationGroupHandlers) ListLocationGroups(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	query := application.ListLocationGroupsQuery{
		Limit:  limit,
		Offset: offset,
	}

	groups, err := h.service.ListLocationGroups(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, groups)
}

// ChangeGroupState handles setting a group's availability pair, cascading
// to the whole subtree
func (h *LocationGroupHandlers) ChangeGroupState(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	name := c.Param("name")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"group.name": name,
	})

	var req struct {
		GroupStateIn  string `json:"groupStateIn" binding:"required"`
		GroupStateOut string `json:"groupStateOut" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.ChangeGroupStateCommand{
		Name:          name,
		GroupStateIn:  req.GroupStateIn,
		GroupStateOut: req.GroupStateOut,
	}

	group, err := h.service.ChangeGroupState(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// ChangeGroupMode handles setting a group's operation mode, cascading
// to the whole subtree
func (h *LocationGroupHandlers) ChangeGroupMode(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	name := c.Param("name")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"group.name": name,
	})

	var req struct {
		OperationMode string `json:"operationMode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.ChangeGroupModeCommand{
		Name:          name,
		OperationMode: req.OperationMode,
	}

	group, err := h.service.ChangeGroupMode(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, group)
}

// ReportEquipmentStatus handles an equipment error code report for a group.
// Codes the decoders cannot classify are acknowledged without changing state.
func (h *LocationGroupHandlers) ReportEquipmentStatus(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	name := c.Param("name")

	var req struct {
		ErrorCode string `json:"errorCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"group.name":      name,
		"group.errorCode": req.ErrorCode,
	})

	cmd := application.ReportEquipmentStatusCommand{
		LocationGroupName: name,
		ErrorCode:         req.ErrorCode,
	}

	if err := h.errorCode.ReportEquipmentStatus(c.Request.Context(), cmd); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.Status(http.StatusAccepted)
}
