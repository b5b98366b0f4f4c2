// Package handler provides HTTP handlers for all API endpoints. Handlers
// stay thin: decode parameters, call the collection service or the read
// layer, shape the JSON envelope.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/api/respond"
	"github.com/Collabos-llc/mlb-data-service/internal/cache"
	"github.com/Collabos-llc/mlb-data-service/internal/collect"
	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/history"
	"github.com/Collabos-llc/mlb-data-service/internal/store"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

const (
	serviceName    = "MLB Data Service"
	serviceVersion = "1.0.0"
)

// Database is the connectivity surface used by health checks.
type Database interface {
	HealthCheck(ctx context.Context) error
}

// Reads is the query side the GET endpoints serve from.
type Reads interface {
	BattingSummary(ctx context.Context, season, limit int) ([]store.BattingSummaryRow, error)
	PitchingSummary(ctx context.Context, season, limit int) ([]store.PitchingSummaryRow, error)
	PitchEventSummary(ctx context.Context, limit int) ([]store.PitchEventRow, error)
	Stats(ctx context.Context) (store.Stats, error)
	SearchPlayers(ctx context.Context, query string, limit int) ([]store.PlayerSearchRow, error)
	PlayerProfile(ctx context.Context, playerID int64, season int) (*store.PlayerProfile, error)
}

// Collector triggers collection runs.
type Collector interface {
	CollectBatting(ctx context.Context, p collect.BattingParams) collect.Result
	CollectPitching(ctx context.Context, p collect.PitchingParams) collect.Result
	CollectPitchEvents(ctx context.Context, p collect.EventParams) collect.Result
}

// RunHistory serves recorded collection runs.
type RunHistory interface {
	Ping(ctx context.Context) error
	Recent(ctx context.Context, limit int) ([]history.Run, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	db        Database
	reads     Reads
	collector Collector
	tracker   *track.Tracker
	runs      RunHistory
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(db Database, reads Reads, collector Collector, tracker *track.Tracker,
	runs RunHistory, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		db:        db,
		reads:     reads,
		collector: collector,
		tracker:   tracker,
		runs:      runs,
		cache:     c,
		cfg:       cfg,
		logger:    logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and collected sources.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    serviceName,
		"version": serviceVersion,
		"status":  "running",
		"docs":    "/docs",
		"sources": []string{"fangraphs_batting", "fangraphs_pitching", "statcast"},
	})
}

// HealthCheck verifies the database and the history store.
// @Summary Health check
// @Description Verifies Postgres and the run-history store; 503 when either is down.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	database := "connected"
	if err := h.db.HealthCheck(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		database = "disconnected"
	}
	hist := "available"
	if err := h.runs.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		hist = "unavailable"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	respond.WriteJSONObject(w, status, map[string]interface{}{
		"status":    overall,
		"database":  database,
		"history":   hist,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity only.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports service, database, and performance state.
// @Summary Service status
// @Description Returns service info, table counts and coverage, and tracker metrics.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /api/v1/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reads.Stats(r.Context())
	if err != nil {
		h.logger.Error("Status: stats query failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to read table stats")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"service": map[string]interface{}{
			"name":        serviceName,
			"version":     serviceVersion,
			"environment": h.cfg.Environment,
			"status":      "running",
		},
		"database":    stats,
		"performance": metricsPayload(h.tracker.Metrics()),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
