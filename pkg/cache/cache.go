// Package cache stores analysis results keyed by circuit content.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the server, and [NullCache] when caching is disabled. Keys come from
// a [Keyer], which hashes the circuit together with every option that
// changes the result.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
