// Package cache provides response caching for the advisor collaborator.
//
// Design advice for an identical prompt is stable enough to reuse, and
// advisor calls are the slowest non-diffusion part of banner creation.
// Backends:
//   - file: on-disk cache for CLI usage
//   - redis: shared cache for server deployments
//   - null: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLAdvice is how long cached advisor responses stay fresh. Design
// advice for the same prompt drifts slowly, so a week is generous
// without being stale forever.
const TTLAdvice = 7 * 24 * time.Hour

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from request parameters.
type Keyer interface {
	Key(prefix string, parts ...any) string
}

// DefaultKeyer hashes the parts into a collision-resistant key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// Key implements Keyer.
func (DefaultKeyer) Key(prefix string, parts ...any) string {
	return hashKey(prefix, parts...)
}
