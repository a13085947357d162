package domain

import "time"

// Represents a single stop in a replenishment route.
// A RouteStop corresponds to arriving at one ATM at a computed time.
// LegSeconds is the travel time from the previous stop (or the start).
type RouteStop struct {
	ATM         ATM
	LegSeconds  float64
	ArriveAt    time.Time
	Unreachable bool
}

// Represents the planned replenishment route for one vehicle.
// A RoutePlan is the output of a routing algorithm and describes the ordered
// sequence of ATM visits, along with aggregate duration and search metrics.
// It is immutable planning data and contains no side effects.
type RoutePlan struct {
	Start                Coordinates
	DepartAt             time.Time
	Algorithm            string
	Alpha                float64
	Beta                 float64
	Stops                []RouteStop
	TotalDurationSeconds float64
	TotalCost            float64
	Expansions           int
	Truncated            bool
}

// Waypoints returns the start followed by every stop as [lon, lat] pairs,
// the form consumed by geometry renderers.
func (p *RoutePlan) Waypoints() [][]float64 {
	out := make([][]float64, 0, 1+len(p.Stops))
	out = append(out, p.Start.CoordsToList())
	for _, s := range p.Stops {
		out = append(out, s.ATM.Location.CoordsToList())
	}
	return out
}
