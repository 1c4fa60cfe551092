// Package cache provides the read-side cache port and its backends.
//
// The cache holds serialized copies of data whose source of truth is the
// database. Callers must treat every error from this package as non-fatal:
// a failed Get is a miss, a failed Set or Delete is logged and ignored.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
