package traveltime

import (
	"atm-route-service/internal/domain"
	"context"
	"fmt"
	"sync/atomic"
)

type MockPair struct {
	From, To domain.Coordinates
	Seconds  float64
}

// MockProvider answers from a fixed table. Configure it fully before use;
// TravelTime is safe for concurrent calls afterwards.
type MockProvider struct {
	m     map[string]float64
	fail  map[string]error
	calls atomic.Int64
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		m[pairKey(p.From, p.To)] = p.Seconds
	}
	return &MockProvider{m: m, fail: map[string]error{}}
}

// Fail makes every lookup from -> to return err.
func (p *MockProvider) Fail(from, to domain.Coordinates, err error) {
	p.fail[pairKey(from, to)] = err
}

// Calls returns the number of TravelTime invocations so far.
func (p *MockProvider) Calls() int64 { return p.calls.Load() }

func (p *MockProvider) TravelTime(ctx context.Context, origin, destination domain.Coordinates) (float64, error) {
	p.calls.Add(1)

	key := pairKey(origin, destination)
	if err, ok := p.fail[key]; ok {
		return 0, err
	}

	s, ok := p.m[key]
	if !ok {
		return 0, fmt.Errorf("missing pair %s -> %s", origin.Key(), destination.Key())
	}
	return s, nil
}

func pairKey(from, to domain.Coordinates) string {
	return from.Key() + "|" + to.Key()
}
