package seats

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSeatRoutes configures seat map and category routes
func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/matches/:id/seats", controller.GetSeatMap)
	rg.GET("/categories", controller.ListCategories)

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/categories", controller.CreateCategory)
		admin.GET("/categories", controller.ListCategories)
	}
}
