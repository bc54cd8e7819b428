package vouchers

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVoucherRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/vouchers/validate", middleware.OptionalAuth(), controller.ValidateVoucher)

	admin := rg.Group("/admin/vouchers")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateVoucher)
		admin.GET("", controller.ListVouchers)
	}
}
