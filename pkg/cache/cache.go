// Package cache stores rendered artifacts and layouts keyed by content
// hash.
//
// Three backends implement [Cache]:
//   - [FileCache]: files under the user cache directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for multi-instance servers
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer] so that every component derives them the same
// way:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RenderKey(text, cache.RenderKeyOpts{Format: "svg", Theme: "default"})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
