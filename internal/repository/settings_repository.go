package repository

import "context"

// SettingsRepository is the persistence port for key/value application
// settings (e.g. the "retention_days" value read by the cleanup sweep).
type SettingsRepository interface {
	// Get returns the value for key. Returns ("", entity.ErrNotFound) when
	// the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Put inserts or updates the value for key.
	Put(ctx context.Context, key, value string) error
}
