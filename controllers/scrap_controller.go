package controllers

import (
	"net/http"
	"strings"

	"MenuScout/models"
	"MenuScout/services"
	"MenuScout/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ScrapController struct {
	Batch *services.BatchService
}

func NewScrapController(batch *services.BatchService) *ScrapController {
	return &ScrapController{Batch: batch}
}

// ScrapeRequest is the body of a search scrape.
type ScrapeRequest struct {
	Query    string `json:"query"`
	Location string `json:"location" binding:"required"`
}

// PlaceRequest describes one place to scrape directly.
type PlaceRequest struct {
	Name       string `json:"name" binding:"required"`
	Website    string `json:"website"`
	ProfileURL string `json:"profile_url"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
}

// GetAllScrapePlaces streams every scraped place as a server-sent event.
func (h *ScrapController) GetAllScrapePlaces(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = h.Batch.Options.Query
	}
	log.Info().Str("query", query).Str("location", req.Location).Msg("scrape requested")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Flush()

	ctx := c.Request.Context()
	placeChan := make(chan *models.Restaurant)
	doneChan := make(chan error, 1)

	go func() {
		doneChan <- h.Batch.Scrape(ctx, query, req.Location, placeChan)
	}()

	for place := range placeChan {
		h.Batch.Store(ctx, place)
		c.SSEvent("place_scrap", place)
		c.Writer.Flush()
	}

	if err := <-doneChan; err != nil {
		log.Warn().Err(err).Str("location", req.Location).Msg("scrape ended with error")
		c.SSEvent("done_scrap", utils.Response{StatusCode: http.StatusBadGateway, Message: err.Error()})
		c.Writer.Flush()
		return
	}
	c.SSEvent("done_scrap", utils.Response{StatusCode: http.StatusOK, Message: "Scraping completed"})
	c.Writer.Flush()
}

func (h *ScrapController) ScrapeSinglePlace(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "name is required")
		return
	}
	place := models.PlaceRecord{
		Name:             req.Name,
		Website:          req.Website,
		ProfileURL:       req.ProfileURL,
		LocalPhoneNumber: req.Phone,
		Address:          req.Location,
	}

	res, err := h.Batch.ProcessOne(c.Request.Context(), place, req.Location)
	if err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.Batch.Store(c.Request.Context(), res.Restaurant)

	utils.SuccessResponse(c, http.StatusOK, "Place scraped successfully", res.Restaurant)
}
