package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/config"
	applog "kharcha/internal/log"
	"kharcha/internal/sheets"
	gsheet "kharcha/internal/sheets/google"
	sheetmem "kharcha/internal/sheets/memory"
	"kharcha/internal/storage/sqlite"
	"kharcha/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	logger.Info("Starting kharcha-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker reads the export queue columns directly, so it always runs
	// against the sqlite engine regardless of what the API server uses.
	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appender sheets.RowAppender
	if cfg.ExportConfigured() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		// No spreadsheet configured: rows land in an in-process sink so the
		// state machine still advances and local runs stay observable.
		appender = sheetmem.New()
		logger.Info("Google Sheets disabled, exporting to in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(store, appender, cfg.ExportBatchSize)

	// Drain anything that accumulated while the worker was down before the
	// live consumption starts.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(ctx, func(ev *amqp.TransactionEvent) error {
			return exportWorker.HandleEvent(ctx, ev)
		})
	})

	g.Go(func() error {
		return exportWorker.RunPendingScans(ctx, cfg.ExportInterval)
	})

	logger.Info("Worker running", "interval", cfg.ExportInterval, "batch_size", cfg.ExportBatchSize)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
