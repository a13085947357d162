package ports

import (
	"atm-route-service/internal/domain"
	"context"
)

// Port: a boundary for reading and storing ATM records.
type ATMRepository interface {
	// Retrieve all ATMs available for routing, ordered by id.
	ListATMs(ctx context.Context) ([]domain.ATM, error)
	// Retrieve the ATMs with the given ids, in the order requested.
	// Unknown ids are returned in missing.
	GetATMs(ctx context.Context, ids []string) (atms []domain.ATM, missing []string, err error)
	// Insert or replace the given (already validated) ATMs.
	UpsertATMs(ctx context.Context, atms []domain.ATM) error
}

// Port: an external catalogue of ATM locations.
type ATMSource interface {
	FetchATMs(ctx context.Context, bbox string) ([]domain.ATM, error)
}
