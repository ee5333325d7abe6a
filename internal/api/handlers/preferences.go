package handlers

import (
	"context"
	"location-capture-service/internal/api/dto"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type DarkModeStore interface {
	Get(ctx context.Context) (bool, error)
	Set(ctx context.Context, enabled bool) error
	Toggle(ctx context.Context) (bool, error)
}

type PreferenceHandler struct {
	Prefs DarkModeStore
}

// DarkMode serves GET and PUT on the flag.
func (h *PreferenceHandler) DarkMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		enabled, err := h.Prefs.Get(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.DarkModeResponse{Enabled: enabled})

	case http.MethodPut:
		var req dto.DarkModeRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Enabled == nil {
			writeError(w, r, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.Prefs.Set(r.Context(), *req.Enabled); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, dto.DarkModeResponse{Enabled: *req.Enabled})

	default:
		methodNotAllowed(w, r, strings.Join([]string{http.MethodGet, http.MethodPut}, ", "))
	}
}

func (h *PreferenceHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	enabled, err := h.Prefs.Toggle(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.DarkModeResponse{Enabled: enabled})
}

func (h *PreferenceHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("dark mode preference failed")
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}
