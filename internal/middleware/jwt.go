package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework

	"topup_relay/internal/auth"
)

// JWTAuthMiddleware validates bearer tokens and stores the caller's
// Telegram id in the request context
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseJWT(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set("telegramID", claims.TelegramID) // Store caller identity in context
		c.Next()
	}
}

// CallerID extracts the authenticated Telegram id set by JWTAuthMiddleware
func CallerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("telegramID")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
