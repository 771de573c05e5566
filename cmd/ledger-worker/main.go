package main

import (
	"context"
	"errors"
	"os"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"
)

const (
	dialAttempts       = 10
	cacheSweepInterval = time.Hour
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, os.Stdout).WithComponent(applog.ComponentWorker)

	logger.Info("Starting ledger-worker", "operation", applog.OpStartup)

	if !cfg.SheetsEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required by the ledger worker")
		os.Exit(1)
	}

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		AuditSheet:         cfg.GoogleAuditSheetName,
		ExportSheet:        cfg.GoogleExportSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	auditWorker := worker.NewAuditWorker(sheetsClient, logger.Logger.With(applog.FieldComponent, applog.ComponentWorker))
	caches := cache.NewManager(auditWorker.SeenCache())

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		caches.Wait()
		if err := amqpClient.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
	})

	caches.Start(ctx, cacheSweepInterval, func(removed int) {
		if removed > 0 {
			logger.Debug("Swept expired event ids", "removed", removed)
		}
	})

	if err := amqpClient.Consume(ctx, auditWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "operation", applog.OpConsume, "error", err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
