// Package cli consolidates the initialization shared by cmd/messbook,
// cmd/messbook-worker, and cmd/reminder-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"messbook/internal/config"
)

// SetupLogger initializes structured logging and sets it as the default.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnv loads the .env file for local development. Errors are ignored;
// production and docker set real environment variables.
func LoadEnv() {
	_ = godotenv.Load()
}

// MustConfig loads and validates configuration, exiting on failure.
func MustConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}
