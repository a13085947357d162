package services

import (
	"atm-route-service/internal/domain"
	"context"
	"errors"
	"testing"
	"time"
)

type fakeATMRepository struct {
	atms []domain.ATM
}

func (r *fakeATMRepository) ListATMs(ctx context.Context) ([]domain.ATM, error) {
	return r.atms, nil
}

func (r *fakeATMRepository) GetATMs(ctx context.Context, ids []string) ([]domain.ATM, []string, error) {
	var out []domain.ATM
	var missing []string
	for _, id := range ids {
		found := false
		for _, a := range r.atms {
			if a.ID == id {
				out = append(out, a)
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, id)
		}
	}
	return out, missing, nil
}

func (r *fakeATMRepository) UpsertATMs(ctx context.Context, atms []domain.ATM) error {
	r.atms = append(r.atms, atms...)
	return nil
}

func TestPlanReplenishmentFixture(t *testing.T) {
	depart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	repo := &fakeATMRepository{atms: fixtureATMs()}

	res, err := PlanReplenishment(context.Background(), PlanReplenishmentRequest{
		Start:    depot,
		Alpha:    0.5,
		Beta:     0.5,
		DepartAt: depart,
	}, repo, fixtureProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plan := res.Plan
	if plan.Algorithm != AlgorithmBestFirst {
		t.Fatalf("algorithm = %q, want %q", plan.Algorithm, AlgorithmBestFirst)
	}
	if len(plan.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(plan.Stops))
	}

	wantIDs := []string{"B", "A", "C"}
	wantArrive := []time.Duration{100 * time.Second, 250 * time.Second, 400 * time.Second}
	for i, s := range plan.Stops {
		if s.ATM.ID != wantIDs[i] {
			t.Fatalf("stop %d = %q, want %q", i, s.ATM.ID, wantIDs[i])
		}
		if !s.ArriveAt.Equal(depart.Add(wantArrive[i])) {
			t.Errorf("stop %d arrives %v, want %v", i, s.ArriveAt, depart.Add(wantArrive[i]))
		}
		if s.Unreachable {
			t.Errorf("stop %d unexpectedly unreachable", i)
		}
	}

	if plan.TotalDurationSeconds != 400 {
		t.Fatalf("duration = %v, want 400", plan.TotalDurationSeconds)
	}
	if plan.TotalCost != 295 {
		t.Fatalf("cost = %v, want 295", plan.TotalCost)
	}

	wp := plan.Waypoints()
	if len(wp) != 4 || wp[0][0] != depot.Lon || wp[1][0] != atmB.Lon {
		t.Fatalf("unexpected waypoints: %v", wp)
	}
}

func TestPlanReplenishmentInlineRecords(t *testing.T) {
	atms := fixtureATMs()
	atms = append(atms, domain.ATM{ID: "bad", Name: "Broken", Location: domain.Coordinates{Lon: 500, Lat: 0}, RemainingCash: 10})

	res, err := PlanReplenishment(context.Background(), PlanReplenishmentRequest{
		Start:     depot,
		ATMs:      atms,
		Alpha:     0.5,
		Beta:      0.5,
		Algorithm: AlgorithmNearestNeighbor,
	}, nil, fixtureProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Rejected) != 1 || res.Rejected[0].ID != "bad" {
		t.Fatalf("expected the broken record to be rejected, got %v", res.Rejected)
	}
	if len(res.Plan.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(res.Plan.Stops))
	}
	// Nearest neighbor: B is closest to the start, then ties resolve to the lower index.
	if res.Plan.Stops[0].ATM.ID != "B" || res.Plan.Stops[1].ATM.ID != "A" || res.Plan.Stops[2].ATM.ID != "C" {
		t.Fatalf("unexpected order: %s %s %s", res.Plan.Stops[0].ATM.ID, res.Plan.Stops[1].ATM.ID, res.Plan.Stops[2].ATM.ID)
	}
	if res.Plan.TotalCost != 295 {
		t.Fatalf("cost = %v, want 295", res.Plan.TotalCost)
	}
}

func TestPlanReplenishmentFlagsUnreachableLeg(t *testing.T) {
	provider := fixtureProvider()
	provider.Fail(depot, atmA, errors.New("no route"))
	provider.Fail(depot, atmB, errors.New("no route"))
	provider.Fail(depot, atmC, errors.New("no route"))

	res, err := PlanReplenishment(context.Background(), PlanReplenishmentRequest{
		Start: depot,
		ATMs:  fixtureATMs(),
		Alpha: 0.5,
		Beta:  0.5,
	}, nil, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Plan.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(res.Plan.Stops))
	}
	if !res.Plan.Stops[0].Unreachable {
		t.Fatal("first leg should be flagged unreachable")
	}
	if res.Plan.Stops[1].Unreachable || res.Plan.Stops[2].Unreachable {
		t.Fatal("inter-ATM legs should be reachable")
	}
}

func TestPlanReplenishmentValidation(t *testing.T) {
	ctx := context.Background()
	repo := &fakeATMRepository{atms: fixtureATMs()}
	provider := fixtureProvider()

	_, err := PlanReplenishment(ctx, PlanReplenishmentRequest{Start: depot, Alpha: 1.5}, repo, provider)
	if !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}

	_, err = PlanReplenishment(ctx, PlanReplenishmentRequest{Start: depot, Algorithm: "dijkstra"}, repo, provider)
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}

	_, err = PlanReplenishment(ctx, PlanReplenishmentRequest{Start: domain.Coordinates{Lon: 0, Lat: 95}}, repo, provider)
	if !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}

	_, err = PlanReplenishment(ctx, PlanReplenishmentRequest{Start: depot, ATMIDs: []string{"A", "nope"}}, repo, provider)
	if !errors.Is(err, ErrUnknownATMs) {
		t.Fatalf("expected ErrUnknownATMs, got %v", err)
	}
}

func TestPlanReplenishmentNoTargets(t *testing.T) {
	res, err := PlanReplenishment(context.Background(), PlanReplenishmentRequest{Start: depot, Alpha: 0.3, Beta: 0.7},
		&fakeATMRepository{}, fixtureProvider())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Plan == nil || len(res.Plan.Stops) != 0 {
		t.Fatalf("expected empty plan, got %+v", res.Plan)
	}
}
