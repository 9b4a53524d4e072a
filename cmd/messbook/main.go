package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messbook/internal/amqp"
	"messbook/internal/auth"
	"messbook/internal/cli"
	apphttp "messbook/internal/http"
	"messbook/internal/service"
	"messbook/internal/store"
	"messbook/internal/store/memory"
	"messbook/internal/store/sqlite"
)

func main() {
	cli.LoadEnv()
	logger := cli.SetupLogger()
	cfg := cli.MustConfig(logger)

	var (
		expenses      store.ExpenseStore
		contributions store.ContributionStore
		profiles      store.ProfileStore
		credentials   store.CredentialStore
	)
	switch cfg.DataBackend {
	case "sqlite":
		db, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		expenses, contributions, profiles, credentials = db, db, db, db
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		mem := memory.New()
		expenses, contributions, profiles, credentials = mem, mem, mem, mem
		logger.Info("Initialized memory backend")
	}

	// AMQP is optional: without it records stay local and the worker's
	// pending-sync pass catches up once the broker returns.
	var publisher service.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger sync deferred to worker", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	records := service.NewRecordService(expenses, contributions, publisher)
	duty := service.NewDutyService(profiles)
	dashboard := service.NewDashboardService(records, duty)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTokenDuration)
	passwords := auth.NewPasswordAuthenticator(credentials, profiles)
	var google *auth.GoogleAuthenticator
	if cfg.GoogleSignInClient != "" {
		google = auth.NewGoogleAuthenticator(cfg.GoogleSignInClient, profiles)
	} else {
		logger.Info("Google sign-in disabled - no GOOGLE_SIGNIN_CLIENT_ID provided")
	}
	sessions := service.NewSessionService(passwords, google, tokens, records)

	srv := apphttp.NewServer(":"+cfg.Port, sessions, records, duty, dashboard, tokens)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting messbook server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
