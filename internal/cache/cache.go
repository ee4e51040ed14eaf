// Package cache holds the Redis read-through helpers used by the HTTP
// API. Aggregate statistics are never cached; only per-account reads and
// the admin listing go through here.
package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// TTL bounds how stale a cached read can get
const TTL = 60 * time.Second

// BalanceKey is the cache key for an account's balance view
func BalanceKey(telegramID int64) string {
	return "balance:user:" + strconv.FormatInt(telegramID, 10)
}

// HistoryKey is the cache key for an account's recent entries view
func HistoryKey(telegramID int64, limit int) string {
	return "history:user:" + strconv.FormatInt(telegramID, 10) + ":limit:" + strconv.Itoa(limit)
}

// AdminEntriesKey is the cache key for the global admin listing
func AdminEntriesKey(limit int) string {
	return "admin:entries:limit:" + strconv.Itoa(limit)
}

// Get retrieves a value from Redis and unmarshals it into dest
func Get(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(val), dest)
}

// Set stores a value in Redis with the standard TTL
func Set(ctx context.Context, rdb *redis.Client, key string, value any) error {
	if rdb == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, TTL).Err()
}

// Delete removes keys from Redis; used for invalidation on mutation
func Delete(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// InvalidateAccount drops the cached views of one account after a
// balance or ledger mutation. The bounded limits mirror what the
// handlers actually request.
func InvalidateAccount(ctx context.Context, rdb *redis.Client, telegramID int64) {
	keys := []string{BalanceKey(telegramID)}
	for _, limit := range []int{5, 10, 20, 50} {
		keys = append(keys, HistoryKey(telegramID, limit))
	}
	for _, limit := range []int{20, 50, 100} {
		keys = append(keys, AdminEntriesKey(limit))
	}
	_ = Delete(ctx, rdb, keys...)
}
