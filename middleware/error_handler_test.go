package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"MenuScout/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerMapsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlerMiddleware())
	r.GET("/custom", func(c *gin.Context) {
		c.Error(utils.NewCustomError(http.StatusNotFound, "Restaurant not found"))
	})
	r.GET("/plain", func(c *gin.Context) {
		c.Error(errors.New("boom"))
	})

	for path, want := range map[string]utils.Response{
		"/custom": {StatusCode: http.StatusNotFound, Message: "Restaurant not found"},
		"/plain":  {StatusCode: http.StatusInternalServerError, Message: "Internal Server Error"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want.StatusCode, w.Code, path)

		var got utils.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, want, got, path)
	}
}
