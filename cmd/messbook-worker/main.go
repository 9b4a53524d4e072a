package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"messbook/internal/amqp"
	"messbook/internal/cli"
	"messbook/internal/ledger"
	ledgergoogle "messbook/internal/ledger/google"
	ledgermem "messbook/internal/ledger/memory"
	"messbook/internal/store/sqlite"
	"messbook/internal/worker"
)

func main() {
	cli.LoadEnv()
	logger := cli.SetupLogger()
	logger.Info("Starting messbook-worker")
	cfg := cli.MustConfig(logger)

	db, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	var writer ledger.Writer
	if cfg.GoogleSpreadsheetID != "" {
		writer, err = ledgergoogle.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = ledgermem.New()
		logger.Info("No GOOGLE_SPREADSHEET_ID provided - using in-memory ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewLedgerSyncWorker(db, writer, cfg.SyncBatchSize)

	// Recover anything missed while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
		// Continue; the periodic pass retries.
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecordSync(ctx, func(msg *amqp.RecordSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	})

	// Duty reminders end up here too: delivery is a log line for now, the
	// mail gateway hangs off this hook.
	g.Go(func() error {
		return amqpClient.ConsumeDutyReminders(ctx, func(msg *amqp.DutyReminderMessage) error {
			logger.Info("Duty reminder delivered",
				"user_id", msg.UserID,
				"email", msg.Email,
				"duty_date", msg.DutyDate)
			return nil
		})
	})

	// Periodic backup pass for lost messages.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPending(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
