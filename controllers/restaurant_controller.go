package controllers

import (
	"errors"
	"net/http"

	"MenuScout/services"
	"MenuScout/utils"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	Store services.RestaurantReader
}

// NewRestaurantController takes the configured sink; sinks that cannot read
// results back leave the endpoint disabled.
func NewRestaurantController(sink services.Sink) *RestaurantController {
	reader, _ := sink.(services.RestaurantReader)
	return &RestaurantController{Store: reader}
}

func (s *RestaurantController) GetRestaurantByID(c *gin.Context) {
	if s.Store == nil {
		c.Error(utils.NewCustomError(http.StatusNotImplemented, "No restaurant store configured"))
		return
	}

	restaurant, err := s.Store.Restaurant(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrRestaurantNotFound) {
		c.Error(utils.NewCustomError(http.StatusNotFound, "Restaurant not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Restaurant fetched successfully", restaurant)
}
