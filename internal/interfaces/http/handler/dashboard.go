package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/dashboard"
)

// DashboardService computes back-office figures
type DashboardService interface {
	Stats(ctx context.Context, now time.Time) (*dashboard.Stats, error)
}

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// Stats godoc
// @Summary      Dashboard statistics
// @Description  Counts, revenue and recent orders for the back office
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.Stats}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context(), h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

var _ DashboardService = (*dashboard.Service)(nil)
