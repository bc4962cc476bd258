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

// TargetHandlers contains handlers for lock operations on targets
type TargetHandlers struct {
	service *application.TargetService
	logger  *logging.Logger
}

// NewTargetHandlers creates a new TargetHandlers
func NewTargetHandlers(service *application.TargetService, logger *logging.Logger) *TargetHandlers {
	return &TargetHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers target lock routes on the router.
// The wildcard keeps slash-separated location keys addressable as one target.
func (h *TargetHandlers) RegisterRoutes(router *gin.RouterGroup) {
	targets := router.Group("/targets")
	{
		targets.POST("/*targetBK", h.ChangeTargetState)
	}
}

// ChangeTargetState handles lock transitions on a location or location group.
// PERMANENT_LOCK is driven by mode=lock / mode=unlock; every other lock type
// takes one of the allocation or operation modes.
func (h *TargetHandlers) ChangeTargetState(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	targetBK := strings.TrimPrefix(c.Param("targetBK"), "/")
	lockType := c.Query("type")
	mode := c.Query("mode")

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"target.bk":   targetBK,
		"target.type": lockType,
		"target.mode": mode,
	})

	if targetBK == "" {
		responder.RespondWithAppError(errors.ErrValidation("target business key is required"))
		return
	}
	if lockType == "" || mode == "" {
		responder.RespondWithAppError(errors.ErrValidation("query parameters 'type' and 'mode' are required"))
		return
	}

	var (
		state *application.TargetStateDTO
		err   error
	)
	if lockType == "PERMANENT_LOCK" {
		state, err = h.changePermanentLock(c, targetBK, mode)
	} else {
		cmd := application.ChangeTargetStateCommand{
			TargetBK: targetBK,
			LockType: lockType,
			LockMode: mode,
		}
		state, err = h.service.ChangeState(c.Request.Context(), cmd)
	}
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *TargetHandlers) changePermanentLock(c *gin.Context, targetBK, mode string) (*application.TargetStateDTO, error) {
	switch mode {
	case "lock":
		cmd := application.LockTargetCommand{TargetBK: targetBK}
		if raw := c.Query("reallocation"); raw != "" {
			reAllocation, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, errors.ErrValidation("query parameter 'reallocation' must be a boolean")
			}
			cmd.ReAllocation = &reAllocation
		}
		return h.service.Lock(c.Request.Context(), cmd)
	case "unlock":
		return h.service.Release(c.Request.Context(), application.ReleaseTargetCommand{TargetBK: targetBK})
	default:
		return nil, errors.ErrUnsupportedOperation("mode", mode)
	}
}
