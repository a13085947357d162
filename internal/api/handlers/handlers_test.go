package handlers

import (
	"atm-route-service/internal/adapters/traveltime"
	"atm-route-service/internal/api/dto"
	"atm-route-service/internal/domain"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var (
	depot = domain.Coordinates{Lon: 106.80, Lat: -6.20}
	atmA  = domain.Coordinates{Lon: 106.81, Lat: -6.20}
	atmB  = domain.Coordinates{Lon: 106.82, Lat: -6.20}
	atmC  = domain.Coordinates{Lon: 106.83, Lat: -6.20}
)

type memoryRepository struct {
	atms    []domain.ATM
	failErr error
}

func (r *memoryRepository) ListATMs(ctx context.Context) ([]domain.ATM, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	return r.atms, nil
}

func (r *memoryRepository) GetATMs(ctx context.Context, ids []string) ([]domain.ATM, []string, error) {
	if r.failErr != nil {
		return nil, nil, r.failErr
	}
	byID := make(map[string]domain.ATM, len(r.atms))
	for _, a := range r.atms {
		byID[a.ID] = a
	}
	var out []domain.ATM
	var missing []string
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		} else {
			missing = append(missing, id)
		}
	}
	return out, missing, nil
}

func (r *memoryRepository) UpsertATMs(ctx context.Context, atms []domain.ATM) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.atms = append(r.atms, atms...)
	return nil
}

func storedATMs() []domain.ATM {
	return []domain.ATM{
		{ID: "A", Name: "A", Location: atmA, RemainingCash: 10},
		{ID: "B", Name: "B", Location: atmB, RemainingCash: 90},
		{ID: "C", Name: "C", Location: atmC, RemainingCash: 50},
	}
}

func mockProvider() *traveltime.MockProvider {
	pairs := []traveltime.MockPair{
		{From: depot, To: atmA, Seconds: 300},
		{From: depot, To: atmB, Seconds: 100},
		{From: depot, To: atmC, Seconds: 200},
	}
	targets := []domain.Coordinates{atmA, atmB, atmC}
	for _, from := range targets {
		for _, to := range targets {
			if from != to {
				pairs = append(pairs, traveltime.MockPair{From: from, To: to, Seconds: 150})
			}
		}
	}
	return traveltime.NewMockProvider(pairs)
}

func newPlanHandler(repo *memoryRepository) *PlanHandler {
	start := depot
	return &PlanHandler{
		Repo:     repo,
		Provider: mockProvider(),
		Defaults: PlanDefaults{
			Start:         &start,
			Alpha:         0.5,
			Beta:          0.5,
			MaxExpansions: 1000,
			SearchTimeout: time.Second,
		},
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestPlanStoredATMs(t *testing.T) {
	h := newPlanHandler(&memoryRepository{atms: storedATMs()})

	rec := postJSON(t, h.Plan, "/plans", `{"depart_at":"2026-01-01T08:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.PlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Algorithm != "best_first" {
		t.Fatalf("algorithm = %q", res.Algorithm)
	}
	if len(res.Stops) != 3 || res.Stops[0].ATM.ID != "B" || res.Stops[1].ATM.ID != "A" || res.Stops[2].ATM.ID != "C" {
		t.Fatalf("unexpected stops: %+v", res.Stops)
	}
	if res.TotalCost != 295 || res.TotalDurationSeconds != 400 {
		t.Fatalf("cost = %v duration = %v, want 295 and 400", res.TotalCost, res.TotalDurationSeconds)
	}
	want := time.Date(2026, 1, 1, 8, 6, 40, 0, time.UTC)
	if !res.Stops[2].ArriveAt.Equal(want) {
		t.Fatalf("last arrival = %v, want %v", res.Stops[2].ArriveAt, want)
	}
	if len(res.Waypoints) != 4 {
		t.Fatalf("waypoints = %v", res.Waypoints)
	}
}

func TestPlanInlineATMsReportsRejected(t *testing.T) {
	h := newPlanHandler(&memoryRepository{})

	body := `{
		"start": {"lon": 106.80, "lat": -6.20},
		"algorithm": "nearest_neighbor",
		"atms": [
			{"id": "A", "name": "A", "coordinates": [106.81, -6.20], "remaining_cash": 10},
			{"id": "B", "name": "B", "coordinates": [106.82, -6.20], "remaining_cash": 90},
			{"id": "B", "name": "B again", "coordinates": [106.83, -6.20], "remaining_cash": 50},
			{"id": "X", "name": "No cash", "coordinates": [106.83, -6.20]}
		]
	}`
	rec := postJSON(t, h.Plan, "/plans", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res dto.PlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Stops) != 2 || res.Stops[0].ATM.ID != "B" {
		t.Fatalf("unexpected stops: %+v", res.Stops)
	}
	if len(res.Rejected) != 2 || res.Rejected[0].Index != 2 || res.Rejected[1].Index != 3 {
		t.Fatalf("unexpected rejected records: %+v", res.Rejected)
	}
}

func TestPlanErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"alpha":`, http.StatusBadRequest},
		{"unknown field", `{"gamma": 1}`, http.StatusBadRequest},
		{"weights out of range", `{"alpha": 2}`, http.StatusBadRequest},
		{"unknown algorithm", `{"algorithm": "dijkstra"}`, http.StatusBadRequest},
		{"bad start", `{"start": {"lon": 0, "lat": 91}}`, http.StatusBadRequest},
		{"negative budget", `{"max_expansions": -1}`, http.StatusBadRequest},
		{"unknown ids", `{"atm_ids": ["A", "Z"]}`, http.StatusNotFound},
		{"all inline rejected", `{"atms": [{"id": "", "coordinates": [0, 0], "remaining_cash": 5}]}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newPlanHandler(&memoryRepository{atms: storedATMs()})
			rec := postJSON(t, h.Plan, "/plans", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestPlanRepositoryFailure(t *testing.T) {
	h := newPlanHandler(&memoryRepository{failErr: errors.New("db down")})

	rec := postJSON(t, h.Plan, "/plans", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestATMsUpsertAndList(t *testing.T) {
	repo := &memoryRepository{}
	h := &ATMHandler{Repo: repo}

	body := `{"atms": [
		{"id": "A", "name": "A", "coordinates": [106.81, -6.20], "remaining_cash": 10, "denomination": 50000},
		{"id": "B", "name": "B", "coordinates": [106.82], "remaining_cash": 90}
	]}`
	rec := postJSON(t, h.ATMs, "/atms", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var up dto.UpsertATMsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &up); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if up.Accepted != 1 || len(up.Rejected) != 1 || up.Rejected[0].Field != "coordinates" {
		t.Fatalf("unexpected upsert response: %+v", up)
	}

	rec = httptest.NewRecorder()
	h.ATMs(rec, httptest.NewRequest(http.MethodGet, "/atms", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list dto.ListATMsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list.ATMs) != 1 || list.ATMs[0].ID != "A" || list.ATMs[0].Denomination == nil || *list.ATMs[0].Denomination != 50000 {
		t.Fatalf("unexpected list: %+v", list.ATMs)
	}

	rec = httptest.NewRecorder()
	h.ATMs(rec, httptest.NewRequest(http.MethodDelete, "/atms", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
