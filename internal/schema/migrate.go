package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// All returns every entity descriptor.
func All() []*Descriptor {
	return []*Descriptor{Batting, Pitching, PitchEvents}
}

// ByKind returns the descriptor for a kind.
func ByKind(k Kind) (*Descriptor, bool) {
	for _, d := range All() {
		if d.Kind == k {
			return d, true
		}
	}
	return nil, false
}

// Migration is a single versioned schema change, applied in its own
// transaction.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, tx pgx.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "wide stat tables",
		Up: func(ctx context.Context, tx pgx.Tx) error {
			stmts := []string{
				Batting.CreateSQL(),
				Pitching.CreateSQL(),
				PitchEvents.CreateSQL(),
				"CREATE INDEX IF NOT EXISTS idx_fangraphs_batting_season ON fangraphs_batting (season)",
				"CREATE INDEX IF NOT EXISTS idx_fangraphs_pitching_season ON fangraphs_pitching (season)",
				"CREATE INDEX IF NOT EXISTS idx_statcast_game_date ON statcast (game_date)",
			}
			for _, s := range stmts {
				if _, err := tx.Exec(ctx, s); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "pitch event participant indexes",
		Up: func(ctx context.Context, tx pgx.Tx) error {
			stmts := []string{
				"CREATE INDEX IF NOT EXISTS idx_statcast_batter ON statcast (batter)",
				"CREATE INDEX IF NOT EXISTS idx_statcast_pitcher ON statcast (pitcher)",
			}
			for _, s := range stmts {
				if _, err := tx.Exec(ctx, s); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the latest version. Applied
// versions are recorded in schema_migrations; safe to run at every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     int PRIMARY KEY,
			description text NOT NULL,
			applied_at  timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		logger.Info("Applying migration", "version", m.Version, "description", m.Description)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(ctx, tx); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			m.Version, m.Description); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
