package osm

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"
)

var ErrInvalidBBox = errors.New("bbox must be \"south,west,north,east\"")

// OverpassATMSource lists amenity=atm nodes from an Overpass endpoint.
// OSM carries no cash levels, so every imported ATM starts at remainingCash.
type OverpassATMSource struct {
	client        overpass.Client
	remainingCash float64
}

func NewOverpassATMSource(endpoint string, timeout time.Duration, remainingCash float64) (*OverpassATMSource, error) {
	if remainingCash < 0 || remainingCash > domain.MaxRemainingCash {
		return nil, fmt.Errorf("overpass atm source: remaining cash %v out of range [0, %v]", remainingCash, domain.MaxRemainingCash)
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}
	return &OverpassATMSource{
		client:        overpass.NewWithSettings(endpoint, 2, httpClient),
		remainingCash: remainingCash,
	}, nil
}

func (s *OverpassATMSource) FetchATMs(ctx context.Context, bbox string) (_ []domain.ATM, err error) {
	defer obs.Time(ctx, "osm.fetch_atms")(&err)

	box, err := parseBBox(bbox)
	if err != nil {
		return nil, fmt.Errorf("fetch atms: %w", err)
	}

	query := fmt.Sprintf(`
		[out:json];
		node["amenity"="atm"](%s);
		out body;
	`, box)

	result, err := s.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch atms: %w", err)
	}

	atms, rejected := convertNodes(result, s.remainingCash)
	for _, r := range rejected {
		log.Printf("fetch atms: skipped node: %v", r)
	}
	return atms, nil
}

// query runs q and gives up when ctx ends. The client has no context support,
// so an abandoned request still finishes in the background.
func (s *OverpassATMSource) query(ctx context.Context, q string) (overpass.Result, error) {
	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.client.Query(q)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return overpass.Result{}, ctx.Err()
	case o := <-done:
		if o.err != nil {
			return overpass.Result{}, fmt.Errorf("overpass query failed: %w", o.err)
		}
		return o.result, nil
	}
}

// convertNodes maps nodes to ATMs ordered by OSM id.
func convertNodes(result overpass.Result, remainingCash float64) ([]domain.ATM, []*domain.ValidationError) {
	ids := make([]int64, 0, len(result.Nodes))
	for id := range result.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	atms := make([]domain.ATM, 0, len(ids))
	var rejected []*domain.ValidationError
	for i, id := range ids {
		node := result.Nodes[id]
		if node == nil {
			continue
		}

		a := domain.ATM{
			ID:            "osm-" + strconv.FormatInt(id, 10),
			Name:          atmName(id, node.Tags),
			Location:      domain.Coordinates{Lon: node.Lon, Lat: node.Lat},
			RemainingCash: remainingCash,
		}
		if err := a.Validate(i); err != nil {
			rejected = append(rejected, err.(*domain.ValidationError))
			continue
		}
		atms = append(atms, a)
	}
	return atms, rejected
}

func atmName(id int64, tags map[string]string) string {
	for _, k := range []string{"name", "operator", "brand"} {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return "ATM " + strconv.FormatInt(id, 10)
}

// parseBBox normalizes "s,w,n,e" and checks the ranges.
func parseBBox(bbox string) (string, error) {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return "", ErrInvalidBBox
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBBox, err)
		}
		v[i] = f
	}

	south, west, north, east := v[0], v[1], v[2], v[3]
	sw := domain.Coordinates{Lon: west, Lat: south}
	ne := domain.Coordinates{Lon: east, Lat: north}
	if sw.Validate() != nil || ne.Validate() != nil || south > north || west > east {
		return "", ErrInvalidBBox
	}

	return strconv.FormatFloat(south, 'f', -1, 64) + "," +
		strconv.FormatFloat(west, 'f', -1, 64) + "," +
		strconv.FormatFloat(north, 'f', -1, 64) + "," +
		strconv.FormatFloat(east, 'f', -1, 64), nil
}
