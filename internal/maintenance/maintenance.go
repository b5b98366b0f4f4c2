// Package maintenance runs periodic retention sweeps as Go tickers: old
// pitch events are dropped from Postgres and old collection runs from the
// SQLite history. All scheduled work is driven from Go since the service is
// already persistent and long-running.
package maintenance

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

// eventEpoch predates any pitch-level tracking data; retention deletes the
// range [eventEpoch, cutoff].
var eventEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// EventPruner deletes pitch events by inclusive date range.
type EventPruner interface {
	DeletePitchEventsRange(ctx context.Context, start, end time.Time) (int64, error)
}

// HistoryPruner removes collection-run records older than a cutoff.
type HistoryPruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Config controls sweep cadence and retention windows. A zero interval
// disables that sweep.
type Config struct {
	EventSweepInterval   time.Duration
	HistorySweepInterval time.Duration
	EventRetention       time.Duration // how far back pitch events are kept
	HistoryRetention     time.Duration // how far back run history is kept
}

// DefaultConfig returns sensible production defaults: daily sweeps keeping
// 400 days of pitch events and 90 days of run history.
func DefaultConfig() Config {
	return Config{
		EventSweepInterval:   24 * time.Hour,
		HistorySweepInterval: 24 * time.Hour,
		EventRetention:       400 * 24 * time.Hour,
		HistoryRetention:     90 * 24 * time.Hour,
	}
}

// Start launches the configured sweeps. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, events EventPruner, runs HistoryPruner,
	tracker *track.Tracker, cfg Config, logger *slog.Logger) {

	logger.Info("Maintenance sweeps started",
		"event_sweep", cfg.EventSweepInterval,
		"history_sweep", cfg.HistorySweepInterval,
		"event_retention", cfg.EventRetention,
		"history_retention", cfg.HistoryRetention)

	if cfg.EventSweepInterval > 0 {
		go runLoop(ctx, cfg.EventSweepInterval, func() {
			sweepEvents(ctx, events, tracker, cfg.EventRetention, logger)
		})
	}
	if cfg.HistorySweepInterval > 0 {
		go runLoop(ctx, cfg.HistorySweepInterval, func() {
			sweepHistory(ctx, runs, tracker, cfg.HistoryRetention, logger)
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance sweeps stopped")
}

// runLoop runs fn once after a jittered delay, then on every tick until ctx
// is cancelled. The jitter keeps all sweeps from firing at the same instant
// after boot.
func runLoop(ctx context.Context, interval time.Duration, fn func()) {
	select {
	case <-time.After(jitter(interval)):
	case <-ctx.Done():
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	fn()
	for {
		select {
		case <-t.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func jitter(interval time.Duration) time.Duration {
	span := int64(interval / 10)
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(span))
}

// sweepEvents deletes pitch events older than the retention window.
func sweepEvents(ctx context.Context, events EventPruner, tracker *track.Tracker,
	retention time.Duration, logger *slog.Logger) {

	start := time.Now()
	cutoff := start.Add(-retention)

	deleted, err := events.DeletePitchEventsRange(ctx, eventEpoch, cutoff)
	if err != nil {
		logger.Warn("Event retention sweep failed", "error", err)
		return
	}

	tracker.RecordOperation("maintenance.event_retention", time.Since(start), int(deleted))
	if deleted > 0 {
		logger.Info("Purged old pitch events",
			"count", deleted, "cutoff", cutoff.Format("2006-01-02"))
	}
}

// sweepHistory prunes collection-run records older than the retention
// window.
func sweepHistory(ctx context.Context, runs HistoryPruner, tracker *track.Tracker,
	retention time.Duration, logger *slog.Logger) {

	start := time.Now()
	cutoff := start.Add(-retention)

	pruned, err := runs.Prune(ctx, cutoff)
	if err != nil {
		logger.Warn("History prune sweep failed", "error", err)
		return
	}

	tracker.RecordOperation("maintenance.history_prune", time.Since(start), int(pruned))
	if pruned > 0 {
		logger.Info("Pruned old collection runs", "count", pruned)
	}
}
