// Package cache provides TTL key/value caching on Redis with an in-memory
// fallback, plus the cart and local favorites stores built on it.
package cache

import (
	"context"
	"time"
)

// TTLCache stores JSON-encoded values with an expiry
type TTLCache interface {
	// Get decodes the value for key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key; ttl <= 0 means no expiry
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
