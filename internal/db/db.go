// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Collabos-llc/mlb-data-service/internal/config"
	"github.com/Collabos-llc/mlb-data-service/internal/schema"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New migrates the schema and creates a validated connection pool.
//
// Migrations run on a short-lived plain pool first: the prepared statements
// registered below reference the stat tables and cannot be parsed until the
// tables exist.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pool, error) {
	boot, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect for migration: %w", err)
	}
	if err := schema.Migrate(ctx, boot, logger); err != nil {
		boot.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	boot.Close()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and read
// layers use. Prepared statements eliminate parse overhead on every request;
// ingestion writes stay dynamic and rely on pgx's statement cache.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// API: season leaderboards
		"batting_summary": `
			SELECT player_id, player_name, team, games, plate_appearances,
			       home_runs, woba, wrc_plus, war
			FROM fangraphs_batting
			WHERE season = $1 AND plate_appearances >= $2
			ORDER BY wrc_plus DESC NULLS LAST
			LIMIT $3`,
		"pitching_summary": `
			SELECT player_id, player_name, team, wins, losses, games,
			       innings_pitched, era, whip, fip, strikeouts, war
			FROM fangraphs_pitching
			WHERE season = $1 AND innings_pitched >= $2
			ORDER BY war DESC NULLS LAST
			LIMIT $3`,

		// API: recent batted-ball events
		"statcast_summary": `
			SELECT player_name, game_date, events, launch_speed, launch_angle,
			       release_spin_rate, estimated_woba_using_speedangle,
			       pfx_x, pfx_z, plate_x, plate_z
			FROM statcast
			WHERE launch_speed IS NOT NULL
			ORDER BY game_date DESC, launch_speed DESC
			LIMIT $1`,

		// API: row counts and coverage
		"table_stats": `
			SELECT
				(SELECT COUNT(*) FROM fangraphs_batting),
				(SELECT COUNT(*) FROM fangraphs_pitching),
				(SELECT COUNT(*) FROM statcast),
				(SELECT MAX(season) FROM fangraphs_batting),
				(SELECT MAX(game_date) FROM statcast)`,

		// API: player search across both leaderboards
		"player_search": `
			SELECT player_id, player_name, team, season, 'batting' AS role
			FROM fangraphs_batting
			WHERE player_name ILIKE $1
			UNION ALL
			SELECT player_id, player_name, team, season, 'pitching' AS role
			FROM fangraphs_pitching
			WHERE player_name ILIKE $1
			ORDER BY season DESC
			LIMIT $2`,

		// API: player profile
		"player_batting_seasons": `
			SELECT player_name, season, team, games, plate_appearances,
			       home_runs, woba, wrc_plus, war
			FROM fangraphs_batting
			WHERE player_id = $1
			ORDER BY season DESC`,
		"player_pitching_seasons": `
			SELECT player_name, season, team, wins, losses, innings_pitched,
			       era, whip, fip, war
			FROM fangraphs_pitching
			WHERE player_id = $1
			ORDER BY season DESC`,
		"player_recent_events": `
			SELECT game_date, events, description, pitch_type,
			       release_speed, launch_speed, launch_angle
			FROM statcast
			WHERE player_name ILIKE $1 AND events IS NOT NULL
			ORDER BY game_date DESC
			LIMIT $2`,

		// Freshness: last successful write per table
		"latest_batting_write":  "SELECT MAX(collected_at) FROM fangraphs_batting",
		"latest_pitching_write": "SELECT MAX(collected_at) FROM fangraphs_pitching",
		"latest_statcast_write": "SELECT MAX(collected_at) FROM statcast",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
