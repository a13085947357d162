package traveltime

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const orsBaseURL = "https://api.openrouteservice.org"

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// ORSProvider implements TravelTimeProvider using the OpenRouteService matrix
// endpoint with a single source and destination.
// The provider is safe for concurrent use.
type ORSProvider struct {
	client  apiClient
	profile string
}

func NewORSProvider(apiKey string) (*ORSProvider, error) {
	return NewORSProviderWithBaseURL(apiKey, orsBaseURL)
}

func NewORSProviderWithBaseURL(apiKey, baseURL string) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		client:  newAPIClient(baseURL, map[string]string{"Authorization": apiKey}),
		profile: "driving-car",
	}, nil
}

func (o *ORSProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ float64, err error) {
	defer obs.Time(ctx, "ors.TravelTime")(&err)

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.client.baseURL, o.profile)

	bodyObj := matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"duration"},
		Sources:      []int{0},
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return 0, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.client.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.client.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return 0, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return 0, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != 1 || len(mr.Durations[0]) != 1 {
		return 0, fmt.Errorf("expected a 1x1 duration matrix; got %d rows", len(mr.Durations))
	}

	// ORS reports unroutable pairs as null.
	seconds := mr.Durations[0][0]
	if seconds == nil {
		return 0, fmt.Errorf("no route %s -> %s", origin.Key(), destination.Key())
	}

	return *seconds, nil
}
