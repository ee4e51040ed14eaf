package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"topup_relay/internal/auth"
)

// AdminOnlyMiddleware consults the Authorizer on each request: stored
// admin flag OR configured allow-list
func AdminOnlyMiddleware(authorizer *auth.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := CallerID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		isAdmin, err := authorizer.IsAdmin(c.Request.Context(), callerID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
