package middleware

import (
	"errors"
	"net/http"

	"MenuScout/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandlerMiddleware turns the last error attached to the context into
// the standard error envelope.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			var customErr *utils.CustomError
			if errors.As(err, &customErr) {
				utils.ErrorResponse(c, customErr.StatusCode, customErr.Message)
				return
			}

			log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled request error")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Internal Server Error")
		}
	}
}
