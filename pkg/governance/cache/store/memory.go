package store

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process fast tier.
//
// Values are copied on the way in and out so cached bytes are never
// aliased by callers. Expired entries are invisible to Get immediately
// but occupy memory until the janitor's next sweep removes them; that
// slack is what lets the cache serve stale data while degraded.
type Memory struct {
	// entries maps physical keys to cached values.
	entries map[string]*memoryEntry

	// mu protects concurrent access to the entries map.
	mu sync.RWMutex
}

// memoryEntry is one cached value with its bookkeeping.
type memoryEntry struct {
	value        []byte
	createdAt    time.Time
	expiresAt    time.Time // zero = no expiry
	lastAccessed time.Time
}

// expired reports whether the entry is past its expiry at now.
func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
	}
}

// Get returns the value for key if present and unexpired.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	now := time.Now()

	m.mu.RLock()
	entry, ok := m.entries[key]
	if !ok || entry.expired(now) {
		m.mu.RUnlock()
		return nil, false, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	m.mu.RUnlock()

	// Touch the access time under the write lock; the entry may have
	// been deleted between locks.
	m.mu.Lock()
	if entry, ok := m.entries[key]; ok {
		entry.lastAccessed = now
	}
	m.mu.Unlock()

	return value, true, nil
}

// GetStale returns the value for key even if it has expired, as long as
// the janitor has not swept it yet. Used for degraded reads when the
// downstream dependency is unavailable.
func (m *Memory) GetStale(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, true, nil
}

// Set stores value under key with the given TTL (0 = no expiry).
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	stored := make([]byte, len(value))
	copy(stored, value)

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = &memoryEntry{
		value:        stored,
		createdAt:    now,
		expiresAt:    expiresAt,
		lastAccessed: now,
	}
	return nil
}

// Delete removes a key. Absent keys are a no-op.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Scan visits every key with the given prefix. Keys are snapshotted
// under the read lock so the scan tolerates concurrent mutation; fn runs
// outside any lock.
func (m *Memory) Scan(ctx context.Context, prefix string, fn func(key string) bool) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	m.mu.RUnlock()

	for _, key := range keys {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !fn(key) {
			return nil
		}
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Close releases nothing; the memory store has no external resources.
func (m *Memory) Close() error {
	return nil
}

// RemoveExpired deletes entries past their expiry. Implements Maintainer.
func (m *Memory) RemoveExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// EvictToSize evicts least-recently-used entries until at most max
// remain. Implements Maintainer.
func (m *Memory) EvictToSize(max int) int {
	if max < 0 {
		max = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for len(m.entries) > max {
		var oldestKey string
		var oldestTime time.Time
		for key, entry := range m.entries {
			if oldestKey == "" || entry.lastAccessed.Before(oldestTime) {
				oldestKey = key
				oldestTime = entry.lastAccessed
			}
		}
		delete(m.entries, oldestKey)
		evicted++
	}
	return evicted
}
