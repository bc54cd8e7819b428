package analytics

import (
	"net/http"
	"strconv"

	"servetix/internal/shared/apperror"
	"servetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetDashboard handles GET /api/v1/admin/analytics/dashboard
func (c *Controller) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.service.GetDashboard(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Dashboard analytics retrieved successfully", dashboard, nil)
}

// GetMatchSales handles GET /api/v1/admin/analytics/matches/:id
func (c *Controller) GetMatchSales(ctx *gin.Context) {
	matchID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || matchID == 0 {
		response.RespondError(ctx, apperror.InvalidField("id", "invalid match id"))
		return
	}

	sales, err := c.service.GetMatchSales(ctx.Request.Context(), uint(matchID))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Match sales retrieved successfully", sales, nil)
}
