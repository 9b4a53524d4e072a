package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"messbook/internal/amqp"
	"messbook/internal/cli"
	"messbook/internal/store/sqlite"
	"messbook/internal/worker"
)

func main() {
	cli.LoadEnv()
	logger := cli.SetupLogger()
	logger.Info("Starting reminder-worker")
	cfg := cli.MustConfig(logger)

	db, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reminders := worker.NewReminderWorker(db, amqpClient)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return reminders.Run(ctx, cfg.ReminderInterval)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
