package middleware

import (
	"net/http"
	"strings"

	"MenuScout/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware requires an HS256 bearer token signed with secret and puts
// its subject under "userId". An empty secret disables the check.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization token is required")
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid token subject")
			return
		}
		c.Set("userId", sub)
		c.Next()
	}
}
