package traveltime

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const tomTomBaseURL = "https://api.tomtom.com"

type tomTomRouteResponse struct {
	Routes []struct {
		Summary struct {
			TravelTimeInSeconds *float64 `json:"travelTimeInSeconds"`
		} `json:"summary"`
	} `json:"routes"`
}

// TomTomProvider implements TravelTimeProvider using the TomTom Routing API
// (calculateRoute, car, live traffic). It is safe for concurrent use.
type TomTomProvider struct {
	client apiClient
	apiKey string
}

func NewTomTomProvider(apiKey string) (*TomTomProvider, error) {
	return NewTomTomProviderWithBaseURL(apiKey, tomTomBaseURL)
}

func NewTomTomProviderWithBaseURL(apiKey, baseURL string) (*TomTomProvider, error) {
	if apiKey == "" {
		return nil, errors.New("TomTom api key is empty")
	}
	return &TomTomProvider{
		client: newAPIClient(baseURL, nil),
		apiKey: apiKey,
	}, nil
}

func (t *TomTomProvider) TravelTime(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ float64, err error) {
	defer obs.Time(ctx, "tomtom.TravelTime")(&err)

	// TomTom expects lat,lon order.
	endpoint := fmt.Sprintf(
		"%s/routing/1/calculateRoute/%f,%f:%f,%f/json",
		t.client.baseURL, origin.Lat, origin.Lon, destination.Lat, destination.Lon,
	)

	q := url.Values{}
	q.Set("key", t.apiKey)
	q.Set("travelMode", "car")
	q.Set("traffic", "true")

	resp, err := t.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := t.client.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return 0, fmt.Errorf("tomtom calculate route: %w", err)
	}
	defer resp.Body.Close()

	var decoded tomTomRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("decode tomtom route response: %w", err)
	}

	if len(decoded.Routes) == 0 || decoded.Routes[0].Summary.TravelTimeInSeconds == nil {
		return 0, fmt.Errorf("no route found %s -> %s", origin.Key(), destination.Key())
	}

	return *decoded.Routes[0].Summary.TravelTimeInSeconds, nil
}
