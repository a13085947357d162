package services

import (
	"atm-route-service/internal/domain"
	"slices"
	"testing"
)

func TestNearestNeighborOrder(t *testing.T) {
	// HUB->A 300, HUB->B 600, HUB->C 450; A-B 240, A-C 210, B-C 270.
	times := domain.TimeMatrix{
		FromStart: []float64{300, 600, 450},
		Between: [][]float64{
			{0, 240, 210},
			{240, 0, 270},
			{210, 270, 0},
		},
	}

	order := NearestNeighborOrder(3, times)
	if !slices.Equal(order, []int{0, 2, 1}) {
		t.Fatalf("order = %v, want [0 2 1]", order)
	}
}

func TestNearestNeighborOrderTieBreaksOnIndex(t *testing.T) {
	order := NearestNeighborOrder(3, fixtureTimes())
	if !slices.Equal(order, []int{1, 0, 2}) {
		t.Fatalf("order = %v, want [1 0 2]", order)
	}
}

func TestNearestNeighborOrderNotReady(t *testing.T) {
	if order := NearestNeighborOrder(2, domain.TimeMatrix{FromStart: []float64{1, 2}}); len(order) != 0 {
		t.Fatalf("expected empty order, got %v", order)
	}
}
