package matches

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupMatchRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/matches", controller.ListUpcoming)
	rg.GET("/matches/:id", controller.GetMatch)

	admin := rg.Group("/admin/matches")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateMatch)       // POST /api/v1/admin/matches
		admin.PUT("/:id", controller.UpdateMatch)    // PUT /api/v1/admin/matches/:id
		admin.DELETE("/:id", controller.DeleteMatch) // DELETE /api/v1/admin/matches/:id
	}
}
