package main

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus" // Logrus for structured logging

	"topup_relay/internal/analytics"
	"topup_relay/internal/auth"
	"topup_relay/internal/bot"
	"topup_relay/internal/config"
	"topup_relay/internal/gateway"
	"topup_relay/internal/ledger"
	"topup_relay/internal/registry"
	"topup_relay/internal/relay"
	"topup_relay/internal/storage/gormstore"
)

// Main entry point for the Telegram front-end
func main() {
	cfg := config.LoadConfig() // Load configuration

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.BotToken == "" || cfg.GatewayToken == "" {
		logrus.Fatal("TELEGRAM_BOT_TOKEN and GATEWAY_API_TOKEN must be set")
	}

	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	store, err := gormstore.Open(dsn)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logrus.Fatalf("failed to connect to Telegram: %v", err)
	}
	logrus.Infof("Authorized on account %s", tg.Self.UserName)

	reg := registry.New(store)
	led := ledger.New(store)
	agg := analytics.New(store)
	authorizer := auth.NewAuthorizer(store, cfg.AdminIDs)
	svc := relay.New(reg, led, gateway.NewClient(cfg))

	bot.New(tg, reg, led, svc, agg, authorizer).Run(context.Background())
}
