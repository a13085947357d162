package domain

import (
	"fmt"
	"math"
	"strings"
)

// Upper bound for RemainingCash, which is a percentage of cassette capacity.
const MaxRemainingCash = 100.0

// Represents a single cash-dispensing point that needs a replenishment visit.
// RemainingCash is the only field that feeds route scoring; Denomination and
// StartingCash are carried for reporting.
type ATM struct {
	ID            string
	Name          string
	Location      Coordinates
	RemainingCash float64
	Denomination  *int
	StartingCash  *int
}

// ValidationError describes why a single ATM record was rejected.
type ValidationError struct {
	Index  int
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (id=%q): %s: %s", e.Index, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Validate checks required fields and numeric finiteness.
// Index is only used to label the returned error.
func (a ATM) Validate(index int) error {
	id := strings.TrimSpace(a.ID)
	if id == "" {
		return &ValidationError{Index: index, Field: "id", Reason: "must be non-empty"}
	}

	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Index: index, ID: id, Field: "name", Reason: "must be non-empty"}
	}

	if err := a.Location.Validate(); err != nil {
		return &ValidationError{Index: index, ID: id, Field: "coordinates", Reason: err.Error()}
	}

	c := a.RemainingCash
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return &ValidationError{Index: index, ID: id, Field: "remaining_cash", Reason: "must be finite"}
	}
	if c < 0 || c > MaxRemainingCash {
		return &ValidationError{
			Index:  index,
			ID:     id,
			Field:  "remaining_cash",
			Reason: fmt.Sprintf("%v out of range [0, %v]", c, MaxRemainingCash),
		}
	}

	if a.Denomination != nil && *a.Denomination <= 0 {
		return &ValidationError{Index: index, ID: id, Field: "denomination", Reason: "must be positive"}
	}
	if a.StartingCash != nil && *a.StartingCash < 0 {
		return &ValidationError{Index: index, ID: id, Field: "starting_cash", Reason: "must be non-negative"}
	}

	return nil
}

// ValidateATMs filters a batch down to its valid records.
// Invalid and duplicate-id records are skipped individually and reported;
// the remaining records keep their input order.
func ValidateATMs(atms []ATM) ([]ATM, []*ValidationError) {
	valid := make([]ATM, 0, len(atms))
	var rejected []*ValidationError

	seen := make(map[string]struct{}, len(atms))
	for i, a := range atms {
		if err := a.Validate(i); err != nil {
			rejected = append(rejected, err.(*ValidationError))
			continue
		}

		a.ID = strings.TrimSpace(a.ID)
		if _, ok := seen[a.ID]; ok {
			rejected = append(rejected, &ValidationError{Index: i, ID: a.ID, Field: "id", Reason: "duplicate id"})
			continue
		}
		seen[a.ID] = struct{}{}
		valid = append(valid, a)
	}

	return valid, rejected
}

// ATMFromFields builds an ATM from loosely-typed exchange fields
// ([lon, lat] coordinates, optional pointers) and validates it.
// Missing required values are rejected rather than zero-filled.
func ATMFromFields(
	index int,
	id string,
	name string,
	coordinates []float64,
	remainingCash *float64,
	denomination *int,
	startingCash *int,
) (ATM, *ValidationError) {
	id = strings.TrimSpace(id)
	if len(coordinates) != 2 {
		return ATM{}, &ValidationError{Index: index, ID: id, Field: "coordinates", Reason: "must be a [lon, lat] pair"}
	}
	if remainingCash == nil {
		return ATM{}, &ValidationError{Index: index, ID: id, Field: "remaining_cash", Reason: "is required"}
	}

	a := ATM{
		ID:            id,
		Name:          strings.TrimSpace(name),
		Location:      Coordinates{Lon: coordinates[0], Lat: coordinates[1]},
		RemainingCash: *remainingCash,
		Denomination:  denomination,
		StartingCash:  startingCash,
	}
	if err := a.Validate(index); err != nil {
		return ATM{}, err.(*ValidationError)
	}
	return a, nil
}
