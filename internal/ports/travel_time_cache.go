package ports

import (
	"atm-route-service/internal/domain"
	"context"
)

// Port: a store for previously measured travel times.
// A miss is reported with ok=false and a nil error.
type TravelTimeCache interface {
	Get(ctx context.Context, origin, destination domain.Coordinates) (seconds float64, ok bool, err error)
	Put(ctx context.Context, origin, destination domain.Coordinates, seconds float64) error
}
