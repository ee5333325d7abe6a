package domain

import (
	"errors"
)

// Capture failure taxonomy. Adapters wrap engine and platform errors with
// one of these so callers can match on them with errors.Is.
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrCaptureInProgress   = errors.New("capture already in progress")

	// The caller's context ended before the attempt finished.
	ErrCaptureCancelled = errors.New("capture cancelled")
)

// FailureReason is the presentation-facing name of a failed capture.
type FailureReason string

const (
	ReasonNone                FailureReason = ""
	ReasonPermissionDenied    FailureReason = "permission_denied"
	ReasonPositionUnavailable FailureReason = "position_unavailable"
	ReasonStorageUnavailable  FailureReason = "storage_unavailable"
	ReasonInvalidCoordinate   FailureReason = "invalid_coordinate"
	ReasonCaptureInProgress   FailureReason = "capture_in_progress"
	ReasonCancelled           FailureReason = "cancelled"
)

// ReasonOf maps an error onto the taxonomy.
// Errors outside the taxonomy are reported as storage failures.
func ReasonOf(err error) FailureReason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrCaptureInProgress):
		return ReasonCaptureInProgress
	case errors.Is(err, ErrCaptureCancelled):
		return ReasonCancelled
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrInvalidCoordinate):
		return ReasonInvalidCoordinate
	case errors.Is(err, ErrPositionUnavailable):
		return ReasonPositionUnavailable
	default:
		return ReasonStorageUnavailable
	}
}
