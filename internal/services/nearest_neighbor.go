package services

import (
	"atm-route-service/internal/domain"
	"math"
)

// Order targets using a greedy nearest-neighbor walk from the start.
//
// The algorithm minimizes immediate travel time at each step and ignores
// remaining cash. It does not attempt global route optimization.
// The design prioritizes determinism and simplicity over optimality.
// An empty result means the times are not ready for n targets.
func NearestNeighborOrder(n int, times domain.TimeMatrix) []int {
	if n == 0 || !times.Ready(n) {
		return []int{}
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)
	current := -1

	for len(order) < n {
		best := -1
		minDuration := math.Inf(1)

		// Select next stop by minimum travel time (greedy step).
		// Strict comparison keeps the lowest index on ties.
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			if d := times.Leg(current, i); best == -1 || d < minDuration {
				minDuration = d
				best = i
			}
		}

		visited[best] = true
		order = append(order, best)
		current = best
	}

	return order
}
