// Package cache defines the port for the dynamic-record read cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value cache with per-entry TTLs. Keys are
// tenant-scoped by the caller; the cache itself is tenant-agnostic.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete drops the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
