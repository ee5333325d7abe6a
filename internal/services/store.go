package services

import (
	"context"
	"location-capture-service/internal/adapters/repositories"
	"location-capture-service/internal/ports"

	"github.com/rs/zerolog"
)

// EnsureStore prepares primary for use. When the schema cannot be created
// it closes primary and returns an in-memory store instead, so the session
// keeps working without persistence. degraded reports which one was chosen.
func EnsureStore(ctx context.Context, primary ports.LocationStore, logger zerolog.Logger) (store ports.LocationStore, degraded bool) {
	if primary != nil {
		err := primary.EnsureSchema(ctx)
		if err == nil {
			return primary, false
		}

		logger.Warn().Err(err).Msg("location store unavailable, records will not survive a restart")
		if cerr := primary.Close(); cerr != nil {
			logger.Debug().Err(cerr).Msg("close unusable location store")
		}
	} else {
		logger.Warn().Msg("no location store configured, records will not survive a restart")
	}

	return repositories.NewMemoryLocationRepository(), true
}
