package handlers

import (
	"MenuScout/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRestaurantRoutes(router *gin.RouterGroup, restaurantController *controllers.RestaurantController) {
	restaurantGroup := router.Group("/restaurants")
	{
		restaurantGroup.GET("/:id", restaurantController.GetRestaurantByID)
	}
}
