package analytics

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes configures admin-only sales reporting routes
func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller *Controller) {
	analytics := rg.Group("/admin/analytics")
	analytics.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		analytics.GET("/dashboard", controller.GetDashboard)
		analytics.GET("/matches/:id", controller.GetMatchSales)
	}
}
