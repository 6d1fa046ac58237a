package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kaskom/internal/amqp"
	"kaskom/internal/config"
	"kaskom/internal/log"
	"kaskom/internal/mirror"
	"kaskom/internal/persist"
	"kaskom/internal/store"
	"kaskom/internal/worker"
)

// The worker keeps a device-independent replica of the book: it consumes
// snapshot messages from the sync exchange, persists them to its own local
// snapshot store and periodically mirrors the full transaction list to a
// Google Sheet for the community to read.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: log.LevelFromEnv(), Component: "kaskom-worker"})
	log.SetDefault(logger)

	logger.Info("Starting kaskom-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	adapter, cleanup, err := persist.Open(persist.Backend(cfg.PersistBackend), cfg.SQLiteDBPath, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "backend", cfg.PersistBackend)
		os.Exit(1)
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				logger.Error("Snapshot store cleanup failed", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker never publishes. Snapshots it applies stay local, so a
	// replayed message cannot bounce back onto the exchange.
	categories := store.NewCategoryStore(adapter, nil)
	transactions := store.NewTransactionStore(adapter, nil)
	categories.Init(ctx)
	transactions.Init(ctx)

	var bookMirror worker.BookMirror
	if cfg.GoogleSpreadsheetID != "" {
		sheetsMirror, err := mirror.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		bookMirror = sheetsMirror
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.DeviceID)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(cfg.DeviceID, transactions, categories, transactions, bookMirror)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := amqpClient.ConsumeSnapshots(gctx, syncWorker.HandleSnapshot); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	if bookMirror != nil {
		// Mirror once on startup so a fresh sheet fills without waiting for
		// the first tick.
		if err := syncWorker.MirrorBook(ctx); err != nil {
			logger.Error("Initial mirror failed", "error", err)
		}

		g.Go(func() error {
			ticker := time.NewTicker(cfg.MirrorInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if err := syncWorker.MirrorBook(gctx); err != nil {
						logger.Error("Periodic mirror failed", "error", err)
					}
				}
			}
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-gctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
