package domain

import "math"

// Placeholder duration for a pair whose travel time could not be measured.
// It keeps the pair usable but strongly disfavored.
const UnreachableSeconds = 999999.0

// TimeMatrix holds travel times for one planning request.
//
// FromStart[i] is the time from the reference location to target i.
// Between[i][j] is the directed time from target i to target j; the diagonal is zero.
// A TimeMatrix is built once and treated as read-only afterwards.
type TimeMatrix struct {
	FromStart []float64
	Between   [][]float64
}

// Size returns the number of targets covered.
func (m TimeMatrix) Size() int { return len(m.FromStart) }

// Ready reports whether both the vector and the matrix are present,
// consistently sized for n targets, and hold only finite non-negative times.
func (m TimeMatrix) Ready(n int) bool {
	if m.FromStart == nil || m.Between == nil {
		return false
	}
	if len(m.FromStart) != n || len(m.Between) != n {
		return false
	}
	if !validDurations(m.FromStart) {
		return false
	}
	for _, row := range m.Between {
		if len(row) != n || !validDurations(row) {
			return false
		}
	}
	return true
}

func validDurations(d []float64) bool {
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// Leg returns the travel time from `from` to `to`, where from < 0 means the
// reference location.
func (m TimeMatrix) Leg(from, to int) float64 {
	if from < 0 {
		return m.FromStart[to]
	}
	return m.Between[from][to]
}
