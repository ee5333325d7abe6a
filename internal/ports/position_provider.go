package ports

import (
	"context"
	"location-capture-service/internal/domain"
)

// Contract for obtaining the device's current position.
type PositionProvider interface {
	// Ask once for foreground location access. Denial is not retried.
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	// Return the best current fix. Implementations must honor ctx cancellation
	// and must not impose their own timeout.
	SampleCurrentPosition(ctx context.Context) (domain.Coordinates, error)
}
