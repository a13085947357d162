package cache

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "traveltime:"

// RedisTravelTimeCache stores travel times as plain string values with a TTL.
type RedisTravelTimeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTravelTimeCache(client *redis.Client, ttl time.Duration) *RedisTravelTimeCache {
	return &RedisTravelTimeCache{Client: client, TTL: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func redisKey(origin, destination domain.Coordinates) string {
	return redisKeyPrefix + origin.Key() + "|" + destination.Key()
}

func (r *RedisTravelTimeCache) Get(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ float64, _ bool, err error) {
	defer obs.Time(ctx, "traveltime.redis.Get")(&err)

	if r.Client == nil {
		return 0, false, errors.New("travel time cache: redis client is nil")
	}

	raw, err := r.Client.Get(ctx, redisKey(origin, destination)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get travel time cache: %w", err)
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("get travel time cache: parse %q: %w", raw, err)
	}

	return seconds, true, nil
}

func (r *RedisTravelTimeCache) Put(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	seconds float64,
) (err error) {
	defer obs.Time(ctx, "traveltime.redis.Put")(&err)

	if r.Client == nil {
		return errors.New("travel time cache: redis client is nil")
	}

	value := strconv.FormatFloat(seconds, 'f', -1, 64)
	if err := r.Client.Set(ctx, redisKey(origin, destination), value, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert travel time cache: %w", err)
	}
	return nil
}
