package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("userId"))
	})
	return r
}

func signed(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r := authRouter("s3cret")
	token := signed(t, jwt.SigningMethodHS256, "s3cret", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})

	w := call(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestAuthRejects(t *testing.T) {
	r := authRouter("s3cret")
	tests := map[string]string{
		"missing":      "",
		"garbage":      "not-a-token",
		"wrong secret": signed(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{"sub": "user-1"}),
		"wrong alg":    signed(t, jwt.SigningMethodHS384, "s3cret", jwt.MapClaims{"sub": "user-1"}),
		"expired":      signed(t, jwt.SigningMethodHS256, "s3cret", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no subject":   signed(t, jwt.SigningMethodHS256, "s3cret", jwt.MapClaims{"name": "x"}),
	}
	for name, token := range tests {
		w := call(r, token)
		assert.Equalf(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	w := call(authRouter(""), "")
	assert.Equal(t, http.StatusOK, w.Code)
}
