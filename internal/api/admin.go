package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path and query parsing
	"strings"  // Status normalization

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library

	"topup_relay/internal/analytics"
	"topup_relay/internal/cache"
	"topup_relay/internal/domain"
	"topup_relay/internal/ledger"
	"topup_relay/internal/registry"
)

// StatsHandler returns the admin statistics snapshot. Aggregates are
// computed fresh on every call and deliberately bypass the cache.
func StatsHandler(agg *analytics.Aggregator) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := agg.Snapshot(c.Request.Context(), 5)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}

// ListEntriesHandler returns the global ledger listing, most recent first
func ListEntriesHandler(led *ledger.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50 // Default administrative bound
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
				limit = v
			}
		}
		ctx := c.Request.Context()
		cacheKey := cache.AdminEntriesKey(limit)
		var cached []domain.LedgerEntry
		if found, err := cache.Get(ctx, rdb, cacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
			return
		}
		entries, err := led.ListAllEntries(ctx, limit)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Failed to fetch transactions"})
			return
		}
		_ = cache.Set(ctx, rdb, cacheKey, entries)
		c.JSON(http.StatusOK, gin.H{"transactions": entries, "cached": false})
	}
}

// SetAdminRequest toggles the stored admin flag
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"` // Pointer so false binds
}

// SetAdminFlagHandler overwrites an account's admin flag
func SetAdminFlagHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		telegramID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account id"})
			return
		}
		var req SetAdminRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if err := reg.SetAdminFlag(c.Request.Context(), telegramID, *req.IsAdmin); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Admin flag updated"})
	}
}

// TransitionRequest moves a pending entry to a terminal status
type TransitionRequest struct {
	Status string `json:"status" binding:"required"` // completed or failed
}

// TransitionEntryHandler is the manual settlement path: an administrator
// confirms or fails a pending entry (e.g., after checking the gateway by
// hand)
func TransitionEntryHandler(led *ledger.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry id"})
			return
		}
		var req TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		entry, err := led.EntryByID(ctx, uint(entryID))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		status := strings.ToLower(req.Status)
		if err := led.TransitionStatus(ctx, uint(entryID), status); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		logrus.WithFields(logrus.Fields{
			"entry_id":   entryID,
			"account_id": entry.AccountID,
			"status":     status,
		}).Info("Entry transitioned by administrator")
		cache.InvalidateAccount(ctx, rdb, entry.AccountID)
		c.JSON(http.StatusOK, gin.H{"message": "Transaction updated"})
	}
}
