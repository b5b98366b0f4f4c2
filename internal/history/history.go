// Package history persists collection-run records to a local SQLite file.
//
// The run log is operational bookkeeping, deliberately kept outside
// Postgres: it must survive and stay writable even when the primary
// database is the thing that is failing. Callers treat write errors as
// log-and-continue.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout matches SQLite's native datetime() text format; all stored
// times are UTC.
const timeLayout = "2006-01-02 15:04:05"

// Run is one recorded collection run.
type Run struct {
	ID           int64
	Source       string
	Window       string
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	Records      int
	ErrorMessage string
	DurationSecs float64
}

// SourceStats aggregates run history for one source.
type SourceStats struct {
	Source       string
	Runs         int
	Successes    int
	TotalRecords int
	AvgDuration  float64
}

// Store wraps the SQLite run-history database.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the history database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the history database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Record appends one run to the log.
func (s *Store) Record(ctx context.Context, run Run) error {
	var errMsg any
	if run.ErrorMessage != "" {
		errMsg = run.ErrorMessage
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO collection_runs
			(source, window_label, start_time, end_time, status,
			 records_collected, error_message, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Source, run.Window,
		run.StartTime.UTC().Format(timeLayout),
		run.EndTime.UTC().Format(timeLayout),
		run.Status, run.Records, errMsg, run.DurationSecs)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, source, window_label, start_time, end_time, status,
		       records_collected, COALESCE(error_message, ''), duration_seconds
		FROM collection_runs
		ORDER BY start_time DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var start, end string
		if err := rows.Scan(&r.ID, &r.Source, &r.Window, &start, &end,
			&r.Status, &r.Records, &r.ErrorMessage, &r.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartTime, _ = time.ParseInLocation(timeLayout, start, time.UTC)
		r.EndTime, _ = time.ParseInLocation(timeLayout, end, time.UTC)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceStats aggregates the run log per source.
func (s *Store) SourceStats(ctx context.Context) ([]SourceStats, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT source,
		       COUNT(*),
		       SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END),
		       COALESCE(SUM(records_collected), 0),
		       COALESCE(AVG(duration_seconds), 0)
		FROM collection_runs
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query source stats: %w", err)
	}
	defer rows.Close()

	var out []SourceStats
	for rows.Next() {
		var st SourceStats
		if err := rows.Scan(&st.Source, &st.Runs, &st.Successes,
			&st.TotalRecords, &st.AvgDuration); err != nil {
			return nil, fmt.Errorf("scan source stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Prune deletes runs created before the cutoff and returns the count.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		"DELETE FROM collection_runs WHERE created_at < ?",
		olderThan.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
