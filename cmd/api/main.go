// Command api is the MLB data service API server.
//
// Usage:
//
//	mlb-api
//	API_PORT=8080 mlb-api

// @title MLB Data Service API
// @version 1.0.0
// @description Baseball statistics pipeline serving FanGraphs season leaderboards and Statcast pitch events, with collection triggers, freshness reporting, and run history.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/Collabos-llc/mlb-data-service/internal/api"
	"github.com/Collabos-llc/mlb-data-service/internal/api/handler"
	"github.com/Collabos-llc/mlb-data-service/internal/cache"
	"github.com/Collabos-llc/mlb-data-service/internal/collect"
	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/db"
	"github.com/Collabos-llc/mlb-data-service/internal/history"
	"github.com/Collabos-llc/mlb-data-service/internal/maintenance"
	"github.com/Collabos-llc/mlb-data-service/internal/provider/fangraphs"
	"github.com/Collabos-llc/mlb-data-service/internal/provider/savant"
	"github.com/Collabos-llc/mlb-data-service/internal/quality"
	"github.com/Collabos-llc/mlb-data-service/internal/store"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database (runs migrations first)
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Open the local run-history store
	runs, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Error("Failed to open history store", "error", err)
		os.Exit(1)
	}
	defer runs.Close()
	logger.Info("History store opened", "path", runs.Path())

	// Freshness tracker, seeded from the last successful writes so a
	// restart doesn't report everything as missing.
	reader := store.NewReader(pool)
	tracker := track.New(cfg.Freshness)
	seedFreshness(ctx, reader, tracker, logger)

	// Collection service. One FanGraphs client serves both leaderboards so
	// they share a rate limiter.
	fg := fangraphs.NewClient(cfg.FanGraphsBaseURL, cfg.ProviderRPM, logger)
	providers := collect.Providers{
		Batting:  fg,
		Pitching: fg,
		Events:   savant.NewClient(cfg.SavantBaseURL, cfg.ProviderRPM, logger),
	}
	writer := store.NewWriter(pool, logger)
	svc := collect.NewService(providers, quality.New(), writer, tracker, runs, cfg.RefreshWorkers, logger)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start retention sweeps
	if cfg.MaintenanceEnabled {
		mcfg := maintenance.Config{
			EventSweepInterval:   cfg.RetentionInterval,
			HistorySweepInterval: cfg.RetentionInterval,
			EventRetention:       cfg.EventRetention,
			HistoryRetention:     cfg.HistoryRetention,
		}
		go maintenance.Start(ctx, writer, runs, tracker, mcfg, logger)
	} else {
		logger.Info("Maintenance sweeps disabled")
	}

	// Create router
	h := handler.New(pool, reader, svc, tracker, runs, appCache, cfg, logger)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 6 * time.Minute, // collection triggers block until the run finishes
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting MLB data service API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// seedFreshness marks each source fresh as of its last successful write, so
// freshness reporting carries across restarts. Errors only degrade the
// report, never startup.
func seedFreshness(ctx context.Context, reader *store.Reader, tracker *track.Tracker, logger *slog.Logger) {
	writes, err := reader.LatestWrites(ctx)
	if err != nil {
		logger.Warn("Failed to seed freshness", "error", err)
		return
	}
	for source, last := range writes {
		tracker.MarkFreshAt(source, last)
		logger.Debug("Seeded freshness", "source", source, "last_write", last)
	}
}
