package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kaskom/internal/amqp"
	"kaskom/internal/artifact"
	"kaskom/internal/config"
	apphttp "kaskom/internal/http"
	"kaskom/internal/log"
	"kaskom/internal/persist"
	"kaskom/internal/store"
	"kaskom/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
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

	// The sync channel is optional. Without AMQP the stores run standalone
	// against the local snapshot store.
	var (
		publisher  store.SnapshotPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.DeviceID)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Sync channel enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue, "device_id", cfg.DeviceID)
	} else {
		logger.Info("Sync channel disabled - no AMQP_URL provided")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	categories := store.NewCategoryStore(adapter, publisher)
	transactions := store.NewTransactionStore(adapter, publisher)
	categories.Init(ctx)
	transactions.Init(ctx)

	srv := apphttp.NewServer(":"+cfg.Port, categories, transactions, artifact.NewGenerator())

	// Apply snapshots arriving from other devices while the server runs.
	if amqpClient != nil {
		syncWorker := worker.NewSyncWorker(cfg.DeviceID, transactions, categories, transactions, nil)
		go func() {
			if err := amqpClient.ConsumeSnapshots(ctx, syncWorker.HandleSnapshot); err != nil && err != context.Canceled {
				logger.Error("Snapshot consumption failed", "error", err)
			}
		}()
	}

	// Graceful shutdown handling
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

	logger.Info("Starting kaskom server", "port", cfg.Port, "backend", cfg.PersistBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
