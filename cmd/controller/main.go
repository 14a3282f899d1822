// Package main is the entry point for the clipline controller.
// The controller owns the HTTP API: project intake, enqueueing pipeline
// stages and the client polling surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipline/internal/config"
	"clipline/internal/controller"
	"clipline/internal/logger"
	"clipline/internal/observability"
	"clipline/internal/store/postgres"

	"github.com/joho/godotenv"
)

func main() {
	// Parse flags
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(cfg.LogFormat, cfg.LogLevel)

	// Connect to Postgres (the "Store")
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer store.Close()

	// Run migrations if requested
	if *migrateFlag {
		logger.Info("running database migrations")
		if err := postgres.Migrate(store.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		logger.Info("migrations completed")
	}

	// Tracing
	if cfg.TracingEnabled() {
		shutdownTracer, err := observability.InitTracer(ctx, "clipline-controller", cfg.OTLPEndpoint)
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

	// Queue depth is queried only when scraped.
	if err := observability.RegisterQueueDepth(store.CountQueued); err != nil {
		logger.Warn("failed to register queue depth metric", "error", err)
	}

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := controller.New(addr, store, logger, metricsHandler)

	go func() {
		logger.Info("clipline controller starting", "addr", addr)
		if err := srv.Run(ctx); err != nil {
			logger.Error("server stopped", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down controller")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
