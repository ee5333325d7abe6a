package domain

import "time"

// Step of a single capture attempt.
type CaptureState string

const (
	StateIdle                 CaptureState = "idle"
	StateRequestingPermission CaptureState = "requesting_permission"
	StateSampling             CaptureState = "sampling"
	StatePersisting           CaptureState = "persisting"
	StateRefreshing           CaptureState = "refreshing"
	StateDone                 CaptureState = "done"
	StateFailed               CaptureState = "failed"
)

// Terminal reports whether the attempt has finished.
func (s CaptureState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Represents the terminal outcome of one capture attempt.
// Records holds the refreshed list when the attempt reached Refreshing.
type CaptureResult struct {
	AttemptID string
	State     CaptureState
	Reason    FailureReason
	RecordID  int64
	Records   []LocationRecord
	Duration  time.Duration
}
