package repositories

import (
	"atm-route-service/internal/domain"
	"atm-route-service/internal/ports"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// ATMSeed is the JSON exchange form of one ATM record.
type ATMSeed struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Coordinates   []float64 `json:"coordinates"`
	RemainingCash *float64  `json:"remaining_cash"`
	Denomination  *int      `json:"denomination,omitempty"`
	StartingCash  *int      `json:"starting_cash,omitempty"`
}

// LoadATMSeeds reads a JSON array of ATM records.
// Invalid records are skipped and reported; a malformed file is an error.
func LoadATMSeeds(jsonPath string) ([]domain.ATM, []*domain.ValidationError, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load atm seeds: read %q: %w", jsonPath, err)
	}

	var data []ATMSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, nil, fmt.Errorf("load atm seeds: parse json: %w", err)
	}

	atms := make([]domain.ATM, 0, len(data))
	var rejected []*domain.ValidationError
	seen := make(map[string]struct{}, len(data))
	for i, item := range data {
		a, verr := domain.ATMFromFields(i, item.ID, item.Name, item.Coordinates, item.RemainingCash, item.Denomination, item.StartingCash)
		if verr != nil {
			rejected = append(rejected, verr)
			continue
		}
		if _, ok := seen[a.ID]; ok {
			rejected = append(rejected, &domain.ValidationError{Index: i, ID: a.ID, Field: "id", Reason: "duplicate id"})
			continue
		}
		seen[a.ID] = struct{}{}
		atms = append(atms, a)
	}

	return atms, rejected, nil
}

// Populate the repository with ATM data from a JSON file.
// Returns the number of stored records.
func SeedFromJSON(ctx context.Context, repo ports.ATMRepository, jsonPath string) (int, error) {
	atms, rejected, err := LoadATMSeeds(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed atms: %w", err)
	}

	for _, r := range rejected {
		log.Printf("seed atms: skipped invalid record: %v", r)
	}

	if err := repo.UpsertATMs(ctx, atms); err != nil {
		return 0, fmt.Errorf("seed atms: %w", err)
	}

	return len(atms), nil
}
