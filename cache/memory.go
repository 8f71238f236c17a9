package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds the in-memory store when no size is configured.
const DefaultMemoryEntries = 256

// sweepInterval is the minimum time between two sweeps of expired entries.
const sweepInterval = time.Minute

type entry struct {
	value   []byte
	expires time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// Memory is an in-process Store holding at most a fixed number of entries.
// The least recently used entry is evicted first; expired entries are swept
// on Set at most once per sweepInterval.
type Memory struct {
	mu        sync.Mutex
	entries   *lru.Cache[string, entry]
	now       func() time.Time
	lastSweep time.Time
}

// NewMemory creates an empty store bounded to DefaultMemoryEntries.
func NewMemory() *Memory {
	return NewMemorySize(DefaultMemoryEntries)
}

// NewMemorySize creates an empty store holding at most size entries.
func NewMemorySize(size int) *Memory {
	if size < 1 {
		size = DefaultMemoryEntries
	}
	entries, _ := lru.New[string, entry](size)
	m := &Memory{entries: entries, now: time.Now}
	m.lastSweep = m.now()
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if e.expired(m.now()) {
		m.entries.Remove(key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.entries.Add(key, e)
	return nil
}

// sweep must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	for _, key := range m.entries.Keys() {
		if e, ok := m.entries.Peek(key); ok && e.expired(now) {
			m.entries.Remove(key)
		}
	}
	m.lastSweep = now
}

// Len returns the number of stored entries, expired ones not yet swept included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries.Len()
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries.Purge()
	return nil
}
