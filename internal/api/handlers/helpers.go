package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"location-capture-service/internal/api/dto"
	"location-capture-service/internal/domain"
	"net/http"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

// decodeBody reads exactly one JSON object with no unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

// statusFor maps a taxonomy error to an HTTP status.
func statusFor(err error) int {
	switch domain.ReasonOf(err) {
	case domain.ReasonNone:
		return http.StatusOK
	case domain.ReasonPermissionDenied:
		return http.StatusForbidden
	case domain.ReasonCaptureInProgress:
		return http.StatusConflict
	case domain.ReasonInvalidCoordinate:
		return http.StatusUnprocessableEntity
	case domain.ReasonCancelled:
		// the client is usually gone; the status only reaches logs
		return http.StatusServiceUnavailable
	default:
		return http.StatusServiceUnavailable
	}
}

func toLocations(records []domain.LocationRecord) []dto.LocationResponse {
	out := make([]dto.LocationResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.LocationResponse{
			ID:        r.ID,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return out
}
