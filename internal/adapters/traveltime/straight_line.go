package traveltime

import (
	"atm-route-service/internal/domain"
	"context"
	"errors"
)

// StraightLineProvider estimates travel time from great-circle distance at a
// constant speed. It needs no network and is meant for local runs and demos.
type StraightLineProvider struct {
	speedMetersPerSecond float64
	// Multiplier applied to the straight-line distance to approximate road length.
	detourFactor float64
}

func NewStraightLineProvider(speedKmh, detourFactor float64) (*StraightLineProvider, error) {
	if speedKmh <= 0 {
		return nil, errors.New("straight line provider: speed must be positive")
	}
	if detourFactor < 1 {
		detourFactor = 1
	}
	return &StraightLineProvider{
		speedMetersPerSecond: speedKmh * 1000 / 3600,
		detourFactor:         detourFactor,
	}, nil
}

func (p *StraightLineProvider) TravelTime(ctx context.Context, origin, destination domain.Coordinates) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	meters := domain.HaversineMeters(origin, destination) * p.detourFactor
	return meters / p.speedMetersPerSecond, nil
}
