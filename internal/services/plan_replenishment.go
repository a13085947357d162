package services

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	AlgorithmBestFirst       = "best_first"
	AlgorithmNearestNeighbor = "nearest_neighbor"
)

var (
	ErrInvalidWeights   = errors.New("alpha and beta must be within [0, 1]")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrUnknownATMs      = errors.New("unknown atm ids")
)

type PlanReplenishmentRequest struct {
	Start domain.Coordinates
	// Inline targets take precedence over ATMIDs. They are validated one by
	// one; rejected records are reported, not fatal.
	ATMs []domain.ATM
	// Stored ATMs to visit. Empty means every stored ATM.
	ATMIDs            []string
	Alpha             float64
	Beta              float64
	Algorithm         string
	DepartAt          time.Time
	MaxExpansions     int
	// Zero means DefaultMaxNodes.
	MaxNodes          int
	SearchTimeout     time.Duration
	MatrixConcurrency int
}

type PlanReplenishmentResult struct {
	Plan     *domain.RoutePlan
	Rejected []*domain.ValidationError
}

// PlanReplenishment resolves the targets, measures travel times and orders the
// visits. Input problems (bad start, weights, algorithm, unknown ids) are
// returned as errors wrapping the package sentinels.
func PlanReplenishment(
	ctx context.Context,
	req PlanReplenishmentRequest,
	repo ports.ATMRepository,
	provider ports.TravelTimeProvider,
) (*PlanReplenishmentResult, error) {
	if err := req.Start.Validate(); err != nil {
		return nil, fmt.Errorf("plan replenishment: start: %w", err)
	}
	if req.Alpha < 0 || req.Alpha > 1 || req.Beta < 0 || req.Beta > 1 {
		return nil, fmt.Errorf("plan replenishment: %w (alpha=%v beta=%v)", ErrInvalidWeights, req.Alpha, req.Beta)
	}

	algorithm := strings.TrimSpace(req.Algorithm)
	switch algorithm {
	case "", "astar", AlgorithmBestFirst:
		algorithm = AlgorithmBestFirst
	case AlgorithmNearestNeighbor:
	default:
		return nil, fmt.Errorf("plan replenishment: %w %q", ErrUnknownAlgorithm, req.Algorithm)
	}

	atms, rejected, err := resolveTargets(ctx, req, repo)
	if err != nil {
		return nil, fmt.Errorf("plan replenishment: %w", err)
	}

	plan := &domain.RoutePlan{
		Start:     req.Start,
		DepartAt:  req.DepartAt,
		Algorithm: algorithm,
		Alpha:     req.Alpha,
		Beta:      req.Beta,
		Stops:     []domain.RouteStop{},
	}
	if len(atms) == 0 {
		return &PlanReplenishmentResult{Plan: plan, Rejected: rejected}, nil
	}

	locations := make([]domain.Coordinates, len(atms))
	for i, a := range atms {
		locations[i] = a.Location
	}

	times, err := BuildTimeMatrix(ctx, req.Start, locations, provider, MatrixOptions{Concurrency: req.MatrixConcurrency})
	if err != nil {
		return nil, fmt.Errorf("plan replenishment: %w", err)
	}

	opts := SearchOptions{Alpha: req.Alpha, Beta: req.Beta, MaxExpansions: req.MaxExpansions, MaxNodes: req.MaxNodes}
	cash := remainingCash(atms)

	var order []int
	switch algorithm {
	case AlgorithmNearestNeighbor:
		order = NearestNeighborOrder(len(atms), times)
		plan.TotalCost = RouteCost(cash, times, order, opts)
	default:
		searchCtx := ctx
		if req.SearchTimeout > 0 {
			var cancel context.CancelFunc
			searchCtx, cancel = context.WithTimeout(ctx, req.SearchTimeout)
			defer cancel()
		}
		res := BestFirstOrder(searchCtx, cash, times, opts)
		order = res.Order
		plan.TotalCost = res.Cost
		plan.Expansions = res.Expansions
		plan.Truncated = res.Truncated
	}

	currentTime := req.DepartAt
	previous := -1
	for _, idx := range order {
		leg := times.Leg(previous, idx)
		currentTime = currentTime.Add(time.Duration(leg * float64(time.Second)))
		plan.TotalDurationSeconds += leg

		plan.Stops = append(plan.Stops, domain.RouteStop{
			ATM:         atms[idx],
			LegSeconds:  leg,
			ArriveAt:    currentTime,
			Unreachable: leg >= domain.UnreachableSeconds,
		})
		previous = idx
	}

	return &PlanReplenishmentResult{Plan: plan, Rejected: rejected}, nil
}

func resolveTargets(
	ctx context.Context,
	req PlanReplenishmentRequest,
	repo ports.ATMRepository,
) ([]domain.ATM, []*domain.ValidationError, error) {
	if len(req.ATMs) > 0 {
		valid, rejected := domain.ValidateATMs(req.ATMs)
		return valid, rejected, nil
	}

	if repo == nil {
		return nil, nil, errors.New("resolve targets: no inline atms and no repository")
	}

	if len(req.ATMIDs) == 0 {
		atms, err := repo.ListATMs(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve targets: list atms: %w", err)
		}
		return atms, nil, nil
	}

	atms, missing, err := repo.GetATMs(ctx, req.ATMIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve targets: get atms: %w", err)
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("resolve targets: %w: %s", ErrUnknownATMs, strings.Join(missing, ", "))
	}
	return atms, nil, nil
}
