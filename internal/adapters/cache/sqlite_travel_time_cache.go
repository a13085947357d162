package cache

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite backed cache for origin->destination travel times.
// Keys are the coordinates rounded by domain.Coordinates.Key.
type SqliteTravelTimeCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSqliteTravelTimeCache(db *sql.DB, maxAge time.Duration) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db, MaxAge: maxAge}
}

// Fetch a cached travel time for one origin and destination.
func (s *SqliteTravelTimeCache) Get(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ float64, _ bool, err error) {
	defer obs.Time(ctx, "traveltime.sqlite.Get")(&err)

	if s.DB == nil {
		return 0, false, errors.New("travel time cache: db is nil")
	}

	q := `
	SELECT
        duration_seconds
    FROM travel_time_cache
    WHERE origin = ?
        AND destination = ?
        AND measured_at >= ?;
	`

	var seconds float64
	err = s.DB.QueryRowContext(ctx, q, origin.Key(), destination.Key(), minMeasuredAt(s.MaxAge)).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get travel time cache: query travel_time_cache table: %w", err)
	}

	return seconds, true, nil
}

// Store one travel time, replacing any older measurement.
func (s *SqliteTravelTimeCache) Put(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	seconds float64,
) (err error) {
	defer obs.Time(ctx, "traveltime.sqlite.Put")(&err)

	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	q := `
	INSERT OR REPLACE INTO travel_time_cache (
        origin,
        destination,
        duration_seconds,
        measured_at
    )
    VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, q, origin.Key(), destination.Key(), seconds, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert travel time cache %s -> %s: %w", origin.Key(), destination.Key(), err)
	}

	return nil
}
