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

// SQLTravelTimeCache is a Postgres-backed cache for origin->destination travel times.
// Entries older than MaxAge are treated as misses; zero MaxAge keeps entries forever.
type SQLTravelTimeCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSQLTravelTimeCache(db *sql.DB, maxAge time.Duration) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: db, MaxAge: maxAge}
}

// Fetch a cached travel time for one origin and destination.
func (s *SQLTravelTimeCache) Get(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ float64, _ bool, err error) {
	defer obs.Time(ctx, "traveltime.cache.Get")(&err)

	if s.DB == nil {
		return 0, false, errors.New("travel time cache: db is nil")
	}

	q := `
	SELECT duration_seconds
    FROM travel_time_cache
    WHERE origin = $1
        AND destination = $2
        AND measured_at >= $3;
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
func (s *SQLTravelTimeCache) Put(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	seconds float64,
) (err error) {
	defer obs.Time(ctx, "traveltime.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	q := `
	INSERT INTO travel_time_cache (origin, destination, duration_seconds, measured_at)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin, destination) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds,
		measured_at = EXCLUDED.measured_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, origin.Key(), destination.Key(), seconds, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert travel time cache %s -> %s: %w", origin.Key(), destination.Key(), err)
	}

	return nil
}

// minMeasuredAt returns the oldest acceptable measured_at unix timestamp.
func minMeasuredAt(maxAge time.Duration) int64 {
	if maxAge <= 0 {
		return 0
	}
	return time.Now().Add(-maxAge).Unix()
}
