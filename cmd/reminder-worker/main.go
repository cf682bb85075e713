package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grana/internal/amqp"
	"grana/internal/cli"
	applog "grana/internal/log"
	"grana/internal/services"
)

func main() {
	logger := cli.SetupLogger(applog.ComponentReminder)
	cli.LoadEnvFile()

	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cli.ResolveLocation(logger, cfg)

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Reminders only exist as published messages, so AMQP is required here.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPReminderQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewReminderProcessor(repo, amqpClient)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processingInterval := cfg.ReminderInterval
	logger.Info("Due-date reminder processor configured",
		"interval", processingInterval,
		"timezone", cfg.Timezone,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(processingInterval)
	defer ticker.Stop()

	// Run initial processing on startup
	logger.Info("Running initial reminder processing...")
	if count, err := processor.ProcessDueReminders(ctx, time.Now().In(loc)); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "reminders_sent", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := processor.ProcessDueReminders(ctx, now.In(loc))
				if err != nil {
					logger.Error("Periodic processing failed", "error", err)
				} else {
					logger.Info("Periodic processing complete",
						"reminders_sent", count,
						"next_check", now.Add(processingInterval).In(loc).Format("15:04:05"))
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down reminder-worker...")
	cancel()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Reminder-worker shutdown complete")
	}
}
