package ports

import "context"

// Port: small string key/value settings kept outside the location database.
type PreferenceStore interface {
	// Return the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
