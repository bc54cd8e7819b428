package purchases

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPurchaseRoutes configures reservation, payment and e-ticket routes
func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller) {
	booking := rg.Group("/matches")
	booking.Use(middleware.OptionalAuth())
	{
		booking.POST("/book", controller.BookByIDs)
		booking.POST("/book-quantity", controller.BookQuantity)
	}

	purchases := rg.Group("/purchases")
	purchases.Use(middleware.JWTAuth())
	{
		purchases.POST("", controller.CreatePurchase)
		purchases.GET("/:order_id", controller.GetPurchase)
		purchases.GET("/:order_id/seats/:seat_id/qr.png", controller.GetTicketQR)
		purchases.POST("/:order_id/pay", controller.ConfirmPayment)
		purchases.POST("/:order_id/cancel", controller.CancelPurchase)
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth())
	{
		users.GET("/purchases", controller.GetUserPurchases)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("/purchases/expire", controller.ExpireHolds)
	}
}
