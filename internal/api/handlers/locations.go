package handlers

import (
	"context"
	"location-capture-service/internal/api/dto"
	"location-capture-service/internal/domain"
	"net/http"

	"github.com/rs/zerolog"
)

type LocationLister interface {
	ListAll(ctx context.Context) ([]domain.LocationRecord, error)
}

// SnapshotReader serves the list published by the last capture or refresh.
type SnapshotReader interface {
	Snapshot() []domain.LocationRecord
}

// LocationHandler exposes the stored history, oldest first.
type LocationHandler struct {
	Store     LocationLister
	Snapshots SnapshotReader
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	records, err := h.Store.ListAll(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list locations failed")
		writeError(w, r, http.StatusServiceUnavailable, string(domain.ReasonOf(err)))
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListLocationsResponse{Locations: toLocations(records)})
}

// Published returns the last published list without reading the store.
func (h *LocationHandler) Published(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListLocationsResponse{Locations: toLocations(h.Snapshots.Snapshot())})
}
