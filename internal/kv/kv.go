// Package kv abstracts the key-value store used for sessions and the
// profile cache: string get/set/delete with millisecond expiry.
// Implementations must remain stateless and opaque; namespacing is done by
// the caller through key prefixes.
package kv

import (
	"context"
	"time"
)

// Store is the minimal protocol both backends share.
type Store interface {
	// Get returns the value for key and whether it was present. An absent
	// or expired key is (_, false, nil), not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set upserts key with the given time-to-live. A ttl <= 0 is invalid.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error
}
