package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grana/internal/amqp"
	"grana/internal/cli"
	"grana/internal/export"
	gexport "grana/internal/export/google"
	mexport "grana/internal/export/memory"
	applog "grana/internal/log"
	"grana/internal/services"
	"grana/internal/worker"
)

func main() {
	logger := cli.SetupLogger(applog.ComponentWorker)
	cli.LoadEnvFile()

	logger.Info("Starting grana-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Pick the export target. Without a spreadsheet the journal drains
	// into an in-process writer so the pipeline still runs locally.
	var sheet export.EventWriter
	if os.Getenv("GOOGLE_SPREADSHEET_ID") != "" {
		client, err := gexport.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets export", "error", err)
			os.Exit(1)
		}
		sheet = client
		logger.Info("Google Sheets export initialized")
	} else {
		sheet = mexport.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting to memory")
	}

	// AMQP wake-ups make exports immediate; the processor poll loop
	// covers rows whose message was lost.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processorConfig := services.DefaultExportProcessorConfig()
	processorConfig.PollInterval = cfg.ExportInterval
	processorConfig.BatchSize = cfg.ExportBatchSize
	processor := services.NewExportProcessor(repo, sheet, processorConfig)

	journalWorker := worker.NewJournalWorker(repo, processor, cfg.ExportBatchSize)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// On startup, drain rows that accumulated while the worker was down
	logger.Info("Performing startup backlog check...")
	if err := journalWorker.StartupCheck(ctx); err != nil {
		logger.Error("Failed startup backlog check", "error", err)
		// Don't exit - the poll loop will retry these rows
	}

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start export processor", "error", err)
		os.Exit(1)
	}

	go func() {
		consumeErr := amqpClient.ConsumeEvents(ctx, func(msg *amqp.EventMessage) error {
			return journalWorker.HandleEventMessage(ctx, msg)
		})
		if consumeErr != nil && !errors.Is(consumeErr, context.Canceled) {
			logger.Error("Event consumption failed", "error", consumeErr)
		}
		cancel()
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

	logger.Info("Shutting down worker...")
	cancel()

	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Export processor did not stop cleanly", "error", err)
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	case <-time.After(2 * time.Second):
		logger.Info("Worker shutdown complete")
	}
}
