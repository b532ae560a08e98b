package admin

import (
	"errors"
	"strconv"

	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboard 仪表盘总览
func (h *Handler) GetDashboard(c *gin.Context) {
	forceRefresh, _ := strconv.ParseBool(c.DefaultQuery("force_refresh", "false"))
	overview, err := h.DashboardService.GetOverview(c.Request.Context(), service.DashboardQueryInput{
		Range:        c.Query("range"),
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(c, response.CodeBadRequest, "error.dashboard_range_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.dashboard_fetch_failed", err)
		return
	}
	response.Success(c, overview)
}
