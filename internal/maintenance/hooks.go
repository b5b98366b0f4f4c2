package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

// Execer is the single-statement surface of a pgx pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AnalyzeStatTables refreshes planner statistics on every stat table.
// Bulk replaces and large upserts skew the row estimates; call this after a
// successful refresh cycle so summary queries keep their plans.
func AnalyzeStatTables(ctx context.Context, db Execer, logger *slog.Logger) error {
	for _, d := range schema.All() {
		start := time.Now()
		_, err := db.Exec(ctx, "ANALYZE "+d.Table)
		dur := time.Since(start).Round(time.Millisecond)

		if err != nil {
			logger.Warn("Failed to analyze table",
				"table", d.Table, "duration", dur, "error", err)
			return fmt.Errorf("analyze %s: %w", d.Table, err)
		}
		logger.Info("Analyzed table", "table", d.Table, "duration", dur)
	}
	return nil
}
