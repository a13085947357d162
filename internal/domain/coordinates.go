package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Validate reports whether both components are finite and inside WGS84 bounds.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) || math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) {
		return fmt.Errorf("%w: non-finite component (lon=%v lat=%v)", ErrInvalidCoordinates, c.Lon, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, c.Lat)
	}
	return nil
}

// Key renders a stable cache key rounded to ~10cm.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b Coordinates) float64 {
	const earthRadius = 6371000.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
