package main

import (
	"context"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging

	"topup_relay/internal/analytics"
	"topup_relay/internal/api"
	"topup_relay/internal/auth"
	"topup_relay/internal/config"
	"topup_relay/internal/gateway"
	"topup_relay/internal/ledger"
	"topup_relay/internal/middleware"
	"topup_relay/internal/registry"
	"topup_relay/internal/relay"
	"topup_relay/internal/storage/gormstore"
)

// Main function to set up and run the HTTP API
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database; schema migration is idempotent and runs on open
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	store, err := gormstore.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Core services over the shared store
	reg := registry.New(store)
	led := ledger.New(store)
	agg := analytics.New(store)
	authorizer := auth.NewAuthorizer(store, cfg.AdminIDs)
	svc := relay.New(reg, led, gateway.NewClient(cfg))

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default() // Gin router instance
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Registration is open; it mints the JWT the other routes require
	r.POST("/user", api.RegisterHandler(reg, cfg.JWTSecret))

	// Gateway settlement callback, authenticated by its own bearer token
	r.POST("/gateway/callback", api.GatewayCallbackHandler(svc, cfg.CallbackToken, redisClient))

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	walletGroup.GET("", api.GetBalanceHandler(reg, redisClient))
	walletGroup.POST("/deposit", api.DepositHandler(svc, redisClient))
	walletGroup.GET("/transactions", api.GetTransactionsHandler(led, redisClient))

	// Admin routes (protected, admin flag or allow-list)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(authorizer))
	adminGroup.GET("/stats", api.StatsHandler(agg))
	adminGroup.GET("/transactions", api.ListEntriesHandler(led, redisClient))
	adminGroup.POST("/transactions/:id/status", api.TransitionEntryHandler(led, redisClient))
	adminGroup.POST("/users/:id/admin", api.SetAdminFlagHandler(reg))

	logrus.Info("Server running on " + cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
