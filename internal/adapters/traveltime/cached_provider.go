package traveltime

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"atm-route-service/internal/ports"
	"context"
	"errors"
	"log"
)

// CachedProvider puts a read-through cache in front of another provider.
//
// Cache failures are logged and bypassed; only the inner provider's errors
// reach the caller. Failed measurements are never cached.
type CachedProvider struct {
	inner ports.TravelTimeProvider
	cache ports.TravelTimeCache
}

func NewCachedProvider(inner ports.TravelTimeProvider, cache ports.TravelTimeCache) (*CachedProvider, error) {
	if inner == nil {
		return nil, errors.New("cached provider: inner provider is nil")
	}
	return &CachedProvider{inner: inner, cache: cache}, nil
}

func (c *CachedProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (float64, error) {
	if c.cache != nil {
		seconds, ok, err := c.cache.Get(ctx, origin, destination)
		if err != nil {
			log.Printf("req_id=%s travel time cache read failed: %v", obs.RequestID(ctx), err)
		} else if ok {
			return seconds, nil
		}
	}

	seconds, err := c.inner.TravelTime(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, origin, destination, seconds); err != nil {
			log.Printf("req_id=%s travel time cache write failed: %v", obs.RequestID(ctx), err)
		}
	}

	return seconds, nil
}
