package ports

import (
	"context"
	"location-capture-service/internal/domain"
)

// Port: append-only storage of captured positions.
type LocationStore interface {
	// Create the backing table if it does not exist. Safe to call on every start.
	EnsureSchema(ctx context.Context) error
	// Persist one position and return its newly assigned id.
	Insert(ctx context.Context, latitude, longitude float64) (int64, error)
	// Return every stored record ordered by id ascending.
	ListAll(ctx context.Context) ([]domain.LocationRecord, error)
	// Release the underlying engine.
	Close() error
}
