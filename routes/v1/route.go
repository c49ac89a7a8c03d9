package route

import (
	"MenuScout/controllers"
	"MenuScout/handlers"
	"MenuScout/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the v1 API. A non-empty jwtSecret protects every route.
func RegisterRoutes(router *gin.Engine, scrapHandler *controllers.ScrapController, restaurantHandler *controllers.RestaurantController, jwtSecret string) {
	v1Routes := router.Group("/v1", middleware.AuthMiddleware(jwtSecret))
	{
		handlers.RegisterScraperRoutes(v1Routes, scrapHandler)
		handlers.RegisterRestaurantRoutes(v1Routes, restaurantHandler)
	}
}
