// Package cache provides the shared read-through cache: pluggable TTL stores
// (in-process LRU or Badger) behind a loader that coalesces concurrent misses.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
