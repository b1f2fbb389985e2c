package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcache is a store backed by a memcached cluster. It survives process
// restarts, which is what makes deterministic cache keys matter: the same
// logical request finds the same entry in a fresh process.
type Memcache struct {
	client *memcache.Client
}

// NewMemcache creates a store connected to the given memcached servers.
func NewMemcache(servers ...string) *Memcache {
	return &Memcache{client: memcache.New(servers...)}
}

func (m *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := m.client.Get(storageKey(key))
	if err != nil {
		// Misses are expected; anything else is a real error.
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("memcache get: %w", err)
	}

	return item.Value, true, nil
}

func (m *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        storageKey(key),
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		return fmt.Errorf("memcache set: %w", err)
	}

	return nil
}

func (m *Memcache) Delete(_ context.Context, key string) error {
	err := m.client.Delete(storageKey(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcache delete: %w", err)
	}

	return nil
}

// storageKey hashes the logical key: memcached keys are limited to 250 bytes
// and may not contain whitespace, while derived request keys contain both.
func storageKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "tolapi:" + hex.EncodeToString(sum[:])
}
