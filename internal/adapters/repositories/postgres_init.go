package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS atms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		remaining_cash DOUBLE PRECISION NOT NULL CHECK (remaining_cash >= 0 AND remaining_cash <= 100),
		denomination INTEGER,
		starting_cash INTEGER
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_seconds DOUBLE PRECISION NOT NULL,
        measured_at BIGINT NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_travel_time_cache_measured_at
    ON travel_time_cache(measured_at);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
