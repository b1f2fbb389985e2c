// Package cache provides the key/value stores used by the tolapi client for
// response and token caching. Stores hold opaque byte values; serialization
// is the client's concern.
package cache

import (
	"context"
	"time"
)

// Store is a key/value store with optional expiry. A zero ttl stores the
// value without an explicit lifetime. Get reports a miss rather than an error
// for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Nop returns a store that holds nothing: every Get is a miss and writes are
// discarded. It is the default store for clients constructed without one.
func Nop() Store {
	return nopStore{}
}

type nopStore struct{}

func (nopStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (nopStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (nopStore) Delete(context.Context, string) error {
	return nil
}
