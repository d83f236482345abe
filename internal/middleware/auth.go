package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// RequireUser rejects requests that carry no X-User-ID header. The gateway
// normally injects the header after authenticating the caller.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
			return
		}
		c.Next()
	}
}

// ValidateJWT verifies a Bearer token when a signing secret is configured.
// It also backfills X-User-ID from the token subject so handlers behind the
// gateway and handlers hit directly see the same header.
func ValidateJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if c.GetHeader("X-User-ID") == "" {
			if sub, err := token.Claims.GetSubject(); err == nil && sub != "" {
				c.Request.Header.Set("X-User-ID", sub)
			}
		}

		c.Next()
	}
}
