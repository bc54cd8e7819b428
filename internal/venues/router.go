package venues

import (
	"servetix/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller) {
	venues := rg.Group("/admin/venues")
	venues.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		venues.POST("", controller.CreateVenue)    // POST /api/v1/admin/venues
		venues.GET("", controller.ListVenues)      // GET /api/v1/admin/venues
		venues.GET("/:id", controller.GetVenue)    // GET /api/v1/admin/venues/:id
		venues.PUT("/:id", controller.UpdateVenue) // PUT /api/v1/admin/venues/:id
	}

	teams := rg.Group("/admin/teams")
	teams.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		teams.POST("", controller.CreateTeam) // POST /api/v1/admin/teams
		teams.GET("", controller.ListTeams)   // GET /api/v1/admin/teams
	}
}
