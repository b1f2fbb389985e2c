package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-memory store backed by otter. Entries carry their own
// expiry, checked on read, so per-entry TTLs (such as a token's reported
// lifetime) are honoured; capacity eviction is otter's.
type Memory struct {
	cache   *otter.Cache[string, memoryEntry]
	counter *stats.Counter
}

// NewMemory creates an in-memory store holding at most maxSize entries.
func NewMemory(maxSize int) (*Memory, error) {
	counter := stats.NewCounter()
	cache := otter.Must(&otter.Options[string, memoryEntry]{
		MaximumSize:   maxSize,
		StatsRecorder: counter,
	})

	return &Memory{
		cache:   cache,
		counter: counter,
	}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.cache.GetEntry(key)
	if !ok {
		return nil, false, nil
	}

	if !entry.Value.expiresAt.IsZero() && time.Now().After(entry.Value.expiresAt) {
		m.cache.Invalidate(key)
		return nil, false, nil
	}

	return entry.Value.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.cache.Set(key, entry)

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Invalidate(key)
	return nil
}

// Stats exposes otter's hit/miss counters, useful in tests and diagnostics.
func (m *Memory) Stats() stats.Stats {
	return m.counter.Snapshot()
}
