// Package main is the entry point for the clipline worker.
// The worker pulls queued pipeline jobs from Postgres and runs them through
// the stage handlers. It owns concurrency, leases and crash recovery.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"clipline/internal/config"
	"clipline/internal/logger"
	"clipline/internal/observability"
	"clipline/internal/stage"
	"clipline/internal/storage"
	"clipline/internal/store/postgres"
	"clipline/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(cfg.LogFormat, cfg.LogLevel)

	if !cfg.S3Enabled() {
		log.Fatal("S3_BUCKET and S3_REGION are required for the worker")
	}
	if cfg.MediaBackendURL == "" {
		log.Fatal("MEDIA_BACKEND_URL is required for the worker")
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	// Tracing
	if cfg.TracingEnabled() {
		shutdownTracer, err := observability.InitTracer(ctx, "clipline-worker", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Warn("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			logger.Warn("failed to shutdown metrics", "error", err)
		}
	}()

	objects, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to init object storage: %v", err)
	}

	backend, err := stage.NewRemoteBackend(cfg.MediaBackendURL, stage.WithToken(cfg.MediaBackendToken))
	if err != nil {
		log.Fatalf("Failed to init media backend: %v", err)
	}

	handlers := []stage.Handler{
		stage.NewTranscriptionHandler(objects, backend),
		stage.NewAnalysisHandler(objects, backend),
		stage.NewVideoCutHandler(objects, backend),
		stage.NewUploadTransferHandler(objects),
	}

	dispatcher := worker.NewDispatcher(db, handlers, logger)

	hostname, _ := os.Hostname()
	poller := worker.NewPoller(db, dispatcher, worker.PollerConfig{
		ID:                hostname,
		Concurrency:       cfg.JobConcurrency,
		PollInterval:      cfg.PollInterval(),
		MaxBackoff:        cfg.MaxBackoff,
		HeartbeatInterval: cfg.HeartbeatInterval,
		LeaseDuration:     cfg.LeaseDuration,
		SweepInterval:     cfg.SweepInterval,
		MaxAttempts:       cfg.MaxAttempts,
	}, logger)

	logger.Info("worker started", "concurrency", cfg.JobConcurrency)
	go poller.Run(ctx)

	// Dedicated metrics server so scrapes never compete with stage work
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logger.Info("worker metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	cancel()

	<-poller.Done()
}
