package dto

type CaptureResponse struct {
	AttemptID string             `json:"attempt_id,omitempty"`
	State     string             `json:"state"`
	Reason    string             `json:"reason,omitempty"`
	RecordID  int64              `json:"record_id,omitempty"`
	Locations []LocationResponse `json:"locations,omitempty"`
	Error     string             `json:"error,omitempty"`
}
