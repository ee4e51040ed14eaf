package api

import (
	"net/http" // HTTP status codes
	"strings"  // Header parsing

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library

	"topup_relay/internal/cache"
	"topup_relay/internal/domain"
	"topup_relay/internal/relay"
)

// CallbackRequest is what the gateway posts when a deposit settles
type CallbackRequest struct {
	ExternalID string `json:"external_id" binding:"required"` // Correlation id from createDeposit
	Status     string `json:"status" binding:"required"`      // completed or failed
}

// GatewayCallbackHandler lets the gateway settle a pending entry by its
// correlation id. Authenticated by the callback bearer token from
// configuration, not by a user JWT.
func GatewayCallbackHandler(svc *relay.Service, callbackToken string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if callbackToken == "" || header != "Bearer "+callbackToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CallbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		status := strings.ToLower(req.Status)
		if status != domain.StatusCompleted && status != domain.StatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be completed or failed"})
			return
		}
		entry, err := svc.SettleByExternalID(c.Request.Context(), req.ExternalID, status)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"external_id": req.ExternalID,
			"entry_id":    entry.ID,
			"status":      status,
		}).Info("Gateway callback settled entry")
		cache.InvalidateAccount(c.Request.Context(), rdb, entry.AccountID)
		c.JSON(http.StatusOK, gin.H{"entry": entry})
	}
}
