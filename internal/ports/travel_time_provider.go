package ports

import (
	"atm-route-service/internal/domain"
	"context"
)

// Contract for retrieving the travel duration between two locations.
type TravelTimeProvider interface {
	// Return estimated travel time in seconds from origin to destination.
	TravelTime(ctx context.Context, origin, destination domain.Coordinates) (float64, error)
}

// TravelTimeFunc adapts a plain function to TravelTimeProvider.
type TravelTimeFunc func(ctx context.Context, origin, destination domain.Coordinates) (float64, error)

func (f TravelTimeFunc) TravelTime(ctx context.Context, origin, destination domain.Coordinates) (float64, error) {
	return f(ctx, origin, destination)
}
