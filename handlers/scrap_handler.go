package handlers

import (
	"MenuScout/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterScraperRoutes sets up the scraper-related routes
func RegisterScraperRoutes(router *gin.RouterGroup, scraperController *controllers.ScrapController) {
	scraperGroup := router.Group("/scraper")
	{
		// both forms, to avoid the trailing slash redirect
		scraperGroup.POST("/", scraperController.GetAllScrapePlaces)
		scraperGroup.POST("", scraperController.GetAllScrapePlaces)

		scraperGroup.POST("/restaurant", scraperController.ScrapeSinglePlace)
	}
}
