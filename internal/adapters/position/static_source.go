package position

import (
	"context"
	"location-capture-service/internal/domain"
)

// StaticSource always reports the same configured fix.
// Useful on hosts without a location subsystem.
type StaticSource struct {
	Fix domain.Coordinates
}

func (s StaticSource) Sample(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}
	return s.Fix, nil
}
