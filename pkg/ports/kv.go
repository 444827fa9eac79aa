package ports

import (
	"context"
)

// KVStore is the persistence backend for calculator history: a plain
// string key-value store. Implementations may block on I/O and must honour
// the context.
type KVStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key has no value.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
