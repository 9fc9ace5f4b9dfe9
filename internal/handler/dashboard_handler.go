package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"examportal/internal/response"
	"examportal/internal/service"
)

// DashboardHandler serves the admin dashboard.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Get godoc
// GET /api/v1/admin/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}
