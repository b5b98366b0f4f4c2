// Package store implements the storage writer and the read-side queries
// over the stat tables.
//
// Writes are window-scoped and idempotent: season entities are replaced
// whole (delete + bulk insert, one transaction), pitch events are upserted
// on their (game_pk, at_bat_number, pitch_number) key. A transaction-scoped
// advisory lock serializes writers per (entity, window) while leaving
// different windows concurrent.
package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Collabos-llc/mlb-data-service/internal/db"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

// upsertChunkSize bounds how many statements ride one batch round trip.
const upsertChunkSize = 500

// Writer performs the ingestion-side writes.
type Writer struct {
	pool   *db.Pool
	logger *slog.Logger
}

// NewWriter creates a Writer.
func NewWriter(pool *db.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{pool: pool, logger: logger}
}

// ReplaceSeason replaces every row of the descriptor's table for one season:
// delete plus bulk insert in a single transaction. Either the whole window
// is replaced or, on any failure, nothing changes.
func (w *Writer) ReplaceSeason(ctx context.Context, d *schema.Descriptor, season int, rows []schema.Row) (int64, error) {
	const op = "replace_season"

	// Normalize before touching the database so a malformed batch cannot
	// leave the window deleted.
	values, err := normalizeRows(d, rows)
	if err != nil {
		return 0, wrap(op, err)
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, wrap(op, err)
	}
	defer tx.Rollback(ctx)

	if err := acquireWindowLock(ctx, tx, d.Kind, strconv.Itoa(season)); err != nil {
		return 0, wrap(op, err)
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", d.Table, d.WindowColumn), season)
	if err != nil {
		return 0, wrap(op, err)
	}
	deleted := tag.RowsAffected()

	inserted, err := tx.CopyFrom(ctx,
		pgx.Identifier{d.Table}, d.ColumnNames(), pgx.CopyFromRows(values))
	if err != nil {
		return 0, wrap(op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrap(op, err)
	}

	w.logger.Info("Season replaced",
		"table", d.Table, "season", season, "deleted", deleted, "inserted", inserted)
	return inserted, nil
}

// UpsertPitchEvents inserts or updates pitch events on their natural key.
// Conflicting rows have every non-key column overwritten, so a re-collection
// always converges on the latest provider data. One transaction, chunked
// batches.
func (w *Writer) UpsertPitchEvents(ctx context.Context, rows []schema.Row) (int64, error) {
	const op = "upsert_pitch_events"
	d := schema.PitchEvents

	values, err := normalizeRows(d, rows)
	if err != nil {
		return 0, wrap(op, err)
	}
	if len(values) == 0 {
		return 0, nil
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return 0, wrap(op, err)
	}
	defer tx.Rollback(ctx)

	if err := acquireWindowLock(ctx, tx, d.Kind, dateWindow(rows)); err != nil {
		return 0, wrap(op, err)
	}

	sql := upsertSQL(d)
	var written int64
	for start := 0; start < len(values); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(values) {
			end = len(values)
		}

		batch := &pgx.Batch{}
		for _, vals := range values[start:end] {
			batch.Queue(sql, vals...)
		}
		br := tx.SendBatch(ctx, batch)
		for range values[start:end] {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return 0, wrap(op, err)
			}
			written += tag.RowsAffected()
		}
		if err := br.Close(); err != nil {
			return 0, wrap(op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrap(op, err)
	}

	w.logger.Info("Pitch events upserted", "rows", written, "window", dateWindow(rows))
	return written, nil
}

// DeletePitchEventsRange removes pitch events with game_date in [start, end].
// Retention primitive; collection never calls it.
func (w *Writer) DeletePitchEventsRange(ctx context.Context, start, end time.Time) (int64, error) {
	const op = "delete_pitch_events_range"

	tag, err := w.pool.Exec(ctx,
		"DELETE FROM statcast WHERE game_date >= $1 AND game_date <= $2", start, end)
	if err != nil {
		return 0, wrap(op, err)
	}
	return tag.RowsAffected(), nil
}

// normalizeRows converts rows to ordered value slices via the descriptor.
func normalizeRows(d *schema.Descriptor, rows []schema.Row) ([][]any, error) {
	values := make([][]any, 0, len(rows))
	for i, row := range rows {
		vals, err := d.RowValues(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		values = append(values, vals)
	}
	return values, nil
}

// upsertSQL renders the insert-or-update statement for a descriptor.
func upsertSQL(d *schema.Descriptor) string {
	cols := d.ColumnNames()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	assigns := make([]string, 0, len(cols))
	for _, c := range d.NonKeyColumns() {
		assigns = append(assigns, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	// collected_at advances on every conflict so freshness reflects the
	// most recent write, not the first insert.
	assigns = append(assigns, "collected_at = now()")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		d.Table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(d.ConflictKey, ", "),
		strings.Join(assigns, ", "),
	)
}

// windowLockKey hashes kind:window into the 64-bit advisory lock keyspace.
func windowLockKey(kind schema.Kind, window string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%s", kind, window)
	return int64(h.Sum64())
}

// acquireWindowLock takes the transaction-scoped advisory lock for one
// (entity, window) pair. Released automatically at commit or rollback.
func acquireWindowLock(ctx context.Context, tx pgx.Tx, kind schema.Kind, window string) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", windowLockKey(kind, window))
	return err
}

// dateWindow derives the inclusive game_date span of a batch, for lock
// keying and logging. Values are either ISO date strings or time.Time.
func dateWindow(rows []schema.Row) string {
	var min, max string
	for _, row := range rows {
		v := row["game_date"]
		if v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case time.Time:
			s = t.Format("2006-01-02")
		default:
			s = fmt.Sprint(t)
		}
		if min == "" || s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if min == "" {
		return "empty"
	}
	if min == max {
		return min
	}
	return min + ".." + max
}
