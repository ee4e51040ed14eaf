package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parsing

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library

	"topup_relay/internal/cache"
	"topup_relay/internal/domain"
	"topup_relay/internal/ledger"
	"topup_relay/internal/middleware"
	"topup_relay/internal/registry"
	"topup_relay/internal/relay"
)

// BalanceResponse is the cached balance view
type BalanceResponse struct {
	TelegramID int64           `json:"telegram_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// GetBalanceHandler returns the caller's wallet balance
func GetBalanceHandler(reg *registry.Registry, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := cache.BalanceKey(callerID)
		var cached BalanceResponse
		if found, err := cache.Get(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"balance": cached, "cached": true})
			return
		}
		account, err := reg.Lookup(ctx, callerID)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Account not found, register first"})
			return
		}
		resp := BalanceResponse{TelegramID: account.TelegramID, Balance: account.Balance}
		_ = cache.Set(ctx, rdb, cacheKey, resp)
		c.JSON(http.StatusOK, gin.H{"balance": resp, "cached": false})
	}
}

// DepositRequest asks the relay to open a deposit with the gateway
type DepositRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"` // Requested amount
	Currency string          `json:"currency"`                  // Defaults to TON
}

// DepositHandler initiates a deposit through the payment gateway and
// records the pending ledger entry. A gateway failure leaves no entry
// behind and maps to 502 so the front-end can tell the user to retry.
func DepositHandler(svc *relay.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.Currency == "" {
			req.Currency = "TON" // Default deposit currency
		}
		result, err := svc.InitiateDeposit(c.Request.Context(), callerID, domain.Profile{}, req.Amount, req.Currency)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusBadGateway {
				c.JSON(status, gin.H{"error": "Could not create deposit, try again later"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"telegram_id": callerID,
			"entry_id":    result.EntryID,
			"amount":      result.Intent.Amount.String(),
			"currency":    result.Intent.Currency,
		}).Info("Deposit initiated")
		cache.InvalidateAccount(c.Request.Context(), rdb, callerID)
		c.JSON(http.StatusCreated, gin.H{"deposit": result})
	}
}

// GetTransactionsHandler returns the caller's recent ledger entries,
// most recent first
func GetTransactionsHandler(led *ledger.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, ok := middleware.CallerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := 10 // Default listing bound
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 50 {
				limit = v
			}
		}
		ctx := c.Request.Context()
		cacheKey := cache.HistoryKey(callerID, limit)
		var cached []domain.LedgerEntry
		if found, err := cache.Get(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
			return
		}
		entries, err := led.ListEntriesForAccount(ctx, callerID, limit)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Failed to fetch transactions"})
			return
		}
		_ = cache.Set(ctx, rdb, cacheKey, entries)
		c.JSON(http.StatusOK, gin.H{"transactions": entries, "cached": false})
	}
}
