package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createATMsQuery := `
	CREATE TABLE IF NOT EXISTS atms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		remaining_cash REAL NOT NULL,
		denomination INTEGER,
		starting_cash INTEGER
	);
	`

	createTravelTimeCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_seconds REAL NOT NULL,
        measured_at INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	statements := []string{
		createATMsQuery,
		createTravelTimeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
