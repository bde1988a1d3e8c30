package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/dto"
	apierrors "github.com/infinito-iitp/ca-portal-api/internal/errors"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns the dashboard of the caller's role.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	payload, err := h.dashboardService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Success: true,
		Data:    payload,
	})
}
