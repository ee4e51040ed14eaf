package main

import (
	"github.com/sirupsen/logrus" // Logrus for structured logging

	"topup_relay/internal/config"
	"topup_relay/internal/storage/gormstore"
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	if _, err := gormstore.Open(dsn); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.Info("Migration completed.")
}
