package main

import (
	"context"
	"errors"
	"os"

	"expensetracker/internal/auth"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/console"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/tracker"
)

func main() {
	cli.LoadEnvFile()

	// Logs go to stderr so they never interleave with prompts on stdout
	logger := cli.SetupLogger(nil, os.Stderr)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, os.Stderr)

	ctx, _ := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Expense tracker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	factory := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend))
	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	svc, err := tracker.Open(ctx, res.Store, res.Publisher, logger, cfg.DefaultBudget)
	if err != nil {
		if cerr := res.Cleanup(); cerr != nil {
			logger.Warn("Cleanup after failed start", "error", cerr)
		}
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close tracker", "operation", applog.OpShutdown, "error", err)
		}
	}()

	var exporter sheets.ExpenseExporter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			AuditSheet:         cfg.GoogleAuditSheetName,
			ExportSheet:        cfg.GoogleExportSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Warn("Google Sheets export disabled", "error", err)
		} else {
			exporter = client
			logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		}
	}

	logger.Info("Starting expense tracker",
		"operation", applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldTransport, cfg.EventsTransports,
		"budget", svc.Budget().String())

	con := console.New(svc, exporter, os.Stdin, os.Stdout, console.Options{
		CurrencySymbol: cfg.CurrencySymbol,
		RequireLogin:   cfg.RequireLogin,
		Auth:           auth.New(logger),
		Logger:         logger,
	})
	if err := con.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
