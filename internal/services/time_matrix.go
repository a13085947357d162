package services

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"atm-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNoTargets   = errors.New("target list must not be empty")
	ErrNilProvider = errors.New("travel time provider must not be nil")
)

const DefaultMatrixConcurrency = 8

type MatrixOptions struct {
	// Maximum in-flight provider calls. Zero means DefaultMatrixConcurrency,
	// a negative value removes the limit.
	Concurrency int
}

// BuildTimeMatrix measures the travel time from start to every target and
// between every ordered pair of targets.
//
// All n + n*(n-1) measurements are issued independently. A failed or invalid
// measurement degrades to domain.UnreachableSeconds for that slot only; the
// build as a whole fails only on invalid input or context cancellation.
// Diagonal entries are zero and never requested.
func BuildTimeMatrix(
	ctx context.Context,
	start domain.Coordinates,
	targets []domain.Coordinates,
	provider ports.TravelTimeProvider,
	opts MatrixOptions,
) (_ domain.TimeMatrix, err error) {
	if len(targets) == 0 {
		return domain.TimeMatrix{}, fmt.Errorf("build time matrix: %w", ErrNoTargets)
	}
	if provider == nil {
		return domain.TimeMatrix{}, fmt.Errorf("build time matrix: %w", ErrNilProvider)
	}
	if f, ok := provider.(ports.TravelTimeFunc); ok && f == nil {
		return domain.TimeMatrix{}, fmt.Errorf("build time matrix: %w", ErrNilProvider)
	}

	defer obs.Time(ctx, "matrix.Build")(&err)

	n := len(targets)
	fromStart := make([]float64, n)
	between := make([][]float64, n)
	for i := range between {
		between[i] = make([]float64, n)
	}

	limit := opts.Concurrency
	if limit == 0 {
		limit = DefaultMatrixConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)

	var failed atomic.Int64
	reqID := obs.RequestID(ctx)

	// measure writes into its own slot; slots never overlap between calls.
	measure := func(slot *float64, from, to domain.Coordinates, label string) {
		g.Go(func() error {
			seconds, err := provider.TravelTime(ctx, from, to)
			if err == nil && (math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0) {
				err = fmt.Errorf("invalid duration %v", seconds)
			}
			if err != nil {
				failed.Add(1)
				log.Printf("req_id=%s op=matrix.pair pair=%s err=%v", reqID, label, err)
				*slot = domain.UnreachableSeconds
				return nil
			}
			*slot = seconds
			return nil
		})
	}

	for i := range targets {
		measure(&fromStart[i], start, targets[i], fmt.Sprintf("start->%d", i))
	}
	for i := range targets {
		for j := range targets {
			if i == j {
				continue
			}
			measure(&between[i][j], targets[i], targets[j], fmt.Sprintf("%d->%d", i, j))
		}
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.TimeMatrix{}, fmt.Errorf("build time matrix: %w", err)
	}

	if f := failed.Load(); f > 0 {
		log.Printf("req_id=%s op=matrix.Build degraded=%d total=%d", reqID, f, n*n)
	}

	return domain.TimeMatrix{FromStart: fromStart, Between: between}, nil
}
