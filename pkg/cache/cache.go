// Package cache provides pluggable byte caches for the rendering pipeline.
//
// Three backends are available:
//   - FileCache: on-disk entries for CLI usage
//   - RedisCache: shared cache for the HTTP server
//   - NullCache: no-op, for tests and --no-cache runs
//
// Keys are generated through a Keyer so every pipeline stage (scan tree,
// layout, rendered image) gets a stable, collision-resistant namespace.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface all backends implement.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per pipeline stage. Scanned trees go stale as the filesystem
// changes; layouts and images are pure functions of their inputs and can
// live longer.
const (
	TTLTree   = 10 * time.Minute
	TTLLayout = 24 * time.Hour
	TTLImage  = 24 * time.Hour
)
