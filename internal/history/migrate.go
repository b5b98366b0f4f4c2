package history

import (
	"database/sql"
	"fmt"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "collection run log",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS collection_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					source TEXT NOT NULL,
					window_label TEXT NOT NULL,
					start_time TEXT NOT NULL,
					end_time TEXT NOT NULL,
					status TEXT NOT NULL,
					records_collected INTEGER NOT NULL DEFAULT 0,
					error_message TEXT,
					duration_seconds REAL NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL DEFAULT (datetime('now'))
				);
				CREATE INDEX IF NOT EXISTS idx_collection_runs_source
					ON collection_runs(source, start_time DESC);
				CREATE INDEX IF NOT EXISTS idx_collection_runs_created
					ON collection_runs(created_at);
			`)
			return err
		},
	},
}

// migrate brings the history schema up to the latest version, tracked via
// PRAGMA user_version.
func migrate(conn *sql.DB) error {
	var current int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// Set user_version outside the transaction (modernc/sqlite
		// requirement). Safe: the idempotent DDL lets a migration re-run.
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}
	return nil
}
