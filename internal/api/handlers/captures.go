package handlers

import (
	"context"
	"location-capture-service/internal/api/dto"
	"location-capture-service/internal/domain"
	"net/http"

	"github.com/rs/zerolog"
)

type Capturer interface {
	Capture(ctx context.Context) (domain.CaptureResult, error)
}

type CaptureHandler struct {
	Controller Capturer
}

// Capture runs one capture attempt and reports its terminal state.
// The attempt is bound to the request; a client disconnect cancels it.
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	res, err := h.Controller.Capture(r.Context())

	body := dto.CaptureResponse{
		AttemptID: res.AttemptID,
		State:     string(res.State),
		Reason:    string(res.Reason),
		RecordID:  res.RecordID,
	}
	if res.State == domain.StateDone {
		body.Locations = toLocations(res.Records)
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("attempt_id", res.AttemptID).Msg("capture rejected")
		body.Error = string(res.Reason)
	}

	writeJSON(w, r, statusFor(err), body)
}
