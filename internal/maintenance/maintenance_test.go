package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/track"
)

type stubEventPruner struct {
	mu       sync.Mutex
	calls    int
	gotStart time.Time
	gotEnd   time.Time
	n        int64
	err      error
}

func (s *stubEventPruner) DeletePitchEventsRange(_ context.Context, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.gotStart = start
	s.gotEnd = end
	return s.n, s.err
}

func (s *stubEventPruner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubEventPruner) window() (time.Time, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gotStart, s.gotEnd
}

type stubHistoryPruner struct {
	mu        sync.Mutex
	calls     int
	gotCutoff time.Time
	n         int64
	err       error
}

func (s *stubHistoryPruner) Prune(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.gotCutoff = olderThan
	return s.n, s.err
}

func (s *stubHistoryPruner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartSweepsUntilCancelled(t *testing.T) {
	events := &stubEventPruner{n: 7}
	runs := &stubHistoryPruner{n: 3}
	tracker := track.New(config.SourceRegistry)
	cfg := Config{
		EventSweepInterval:   5 * time.Millisecond,
		HistorySweepInterval: 5 * time.Millisecond,
		EventRetention:       400 * 24 * time.Hour,
		HistoryRetention:     90 * 24 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Start(ctx, events, runs, tracker, cfg, discard())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return events.count() >= 2 && runs.count() >= 2
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not stop after cancel")
	}

	start, end := events.window()
	require.Equal(t, eventEpoch, start)
	require.WithinDuration(t, time.Now().Add(-cfg.EventRetention), end, time.Minute)

	m := tracker.Metrics()
	require.GreaterOrEqual(t, m.OperationsCount, 4)
	require.Contains(t, m.LastOperation, "maintenance.")
}

func TestZeroIntervalDisablesSweep(t *testing.T) {
	events := &stubEventPruner{}
	runs := &stubHistoryPruner{}
	tracker := track.New(config.SourceRegistry)
	cfg := Config{
		EventSweepInterval:   0, // disabled
		HistorySweepInterval: 5 * time.Millisecond,
		HistoryRetention:     90 * 24 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Start(ctx, events, runs, tracker, cfg, discard())

	require.Eventually(t, func() bool { return runs.count() >= 2 }, 2*time.Second, time.Millisecond)
	require.Zero(t, events.count())
}

func TestSweepErrorKeepsLoopAlive(t *testing.T) {
	events := &stubEventPruner{err: errors.New("connection refused")}
	tracker := track.New(config.SourceRegistry)
	cfg := Config{
		EventSweepInterval: 5 * time.Millisecond,
		EventRetention:     400 * 24 * time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Start(ctx, events, &stubHistoryPruner{}, tracker, cfg, discard())

	require.Eventually(t, func() bool { return events.count() >= 3 }, 2*time.Second, time.Millisecond)
	// Failed sweeps are logged, not recorded as operations.
	require.Zero(t, tracker.Metrics().OperationsCount)
}

type stubExecer struct {
	mu   sync.Mutex
	sqls []string
	err  error
}

func (s *stubExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sqls = append(s.sqls, sql)
	return pgconn.CommandTag{}, s.err
}

func TestAnalyzeStatTables(t *testing.T) {
	db := &stubExecer{}
	require.NoError(t, AnalyzeStatTables(context.Background(), db, discard()))
	require.Equal(t, []string{
		"ANALYZE fangraphs_batting",
		"ANALYZE fangraphs_pitching",
		"ANALYZE statcast",
	}, db.sqls)
}

func TestAnalyzeStatTablesStopsOnError(t *testing.T) {
	db := &stubExecer{err: errors.New("permission denied")}
	err := AnalyzeStatTables(context.Background(), db, discard())
	require.Error(t, err)
	require.Contains(t, err.Error(), "analyze fangraphs_batting")
	require.Len(t, db.sqls, 1)
}
