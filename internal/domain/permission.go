package domain

import "fmt"

// Outcome of a one-shot foreground location permission request.
type PermissionStatus string

const (
	PermissionGranted    PermissionStatus = "granted"
	PermissionDenied     PermissionStatus = "denied"
	PermissionRestricted PermissionStatus = "restricted"
)

// ParsePermissionStatus accepts the three canonical status names.
func ParsePermissionStatus(s string) (PermissionStatus, error) {
	switch PermissionStatus(s) {
	case PermissionGranted, PermissionDenied, PermissionRestricted:
		return PermissionStatus(s), nil
	}
	return "", fmt.Errorf("parse permission status: unknown value %q", s)
}
