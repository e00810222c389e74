package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/cache/store"
)

// Record tags written to the fast tier. Every fast-tier value carries a
// one-byte tag so a pointer record can never be confused with payload
// bytes that happen to look like one.
const (
	recordInline  byte = 'i'
	recordPointer byte = 'p'
)

// deleteBatchSize bounds how many keys an invalidation scan accumulates
// before issuing deletes, so a large invalidation never holds a key list
// for the whole keyspace.
const deleteBatchSize = 128

// staleReader is the optional fast-tier capability behind GetStale.
type staleReader interface {
	GetStale(ctx context.Context, key string) ([]byte, bool, error)
}

// Manager is the response cache: versioned keys, namespace and pattern
// invalidation, two-tier placement, statistics and a background janitor.
//
// Construct with NewManager and stop with Close; the janitor goroutine is
// owned by the manager and never outlives it.
type Manager struct {
	config Config
	fast   store.Store
	slow   store.Store // nil when no high-capacity tier is configured

	// version is the current key generation; prevVersion is kept so
	// degraded reads can fall back to the last generation's data.
	version     atomic.Uint64
	prevVersion atomic.Uint64

	stats  statistics
	logger *slog.Logger

	janitor *janitor
}

// NewManager creates a cache manager over the given tiers and starts its
// janitor. fast must not be nil; pass a nil slow store to run single-tier.
func NewManager(cfg Config, fast, slow store.Store) (*Manager, error) {
	if fast == nil {
		return nil, fmt.Errorf("cache: fast tier cannot be nil")
	}
	cfg = cfg.withDefaults()

	m := &Manager{
		config: cfg,
		fast:   fast,
		slow:   slow,
		logger: slog.Default().With("component", "governance.cache"),
	}
	m.version.Store(cfg.InitialVersion)
	m.prevVersion.Store(cfg.InitialVersion)

	m.janitor = newJanitor(m, cfg.JanitorInterval)
	m.janitor.start()

	return m, nil
}

// Get returns the cached value for rawKey in namespace, or ok=false on a
// miss. Hit/miss and latency are recorded atomically with the lookup.
func (m *Manager) Get(ctx context.Context, rawKey, namespace string) ([]byte, bool) {
	start := time.Now()
	defer m.stats.observe(start)

	key := composeKey(m.version.Load(), namespace, rawKey)

	value, ok := m.getPhysical(ctx, key)
	if ok {
		m.stats.hits.Add(1)
		return value, true
	}
	m.stats.misses.Add(1)
	return nil, false
}

// getPhysical resolves one physical key across both tiers.
func (m *Manager) getPhysical(ctx context.Context, key string) ([]byte, bool) {
	record, ok, err := m.fast.Get(ctx, key)
	if err == nil && ok && len(record) > 0 {
		switch record[0] {
		case recordInline:
			return record[1:], true
		case recordPointer:
			if value, ok := m.getSlow(ctx, key); ok {
				return value, true
			}
			// Pointer with no target: slow tier lost it or is down.
			return nil, false
		}
	}

	// Fast-tier miss. The pointer record may have been evicted while the
	// value still lives in the high-capacity tier.
	return m.getSlow(ctx, key)
}

// getSlow reads the high-capacity tier, treating unavailability as a miss.
func (m *Manager) getSlow(ctx context.Context, key string) ([]byte, bool) {
	if m.slow == nil {
		return nil, false
	}
	value, ok, err := m.slow.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			m.logger.Warn("high-capacity tier unavailable, degrading to fast tier", "error", err)
		} else {
			m.logger.Warn("high-capacity tier read failed", "error", err)
		}
		return nil, false
	}
	return value, ok
}

// GetStale returns a value for rawKey even if it has expired or belongs
// to the previous key version. Used to serve degraded responses while
// the downstream dependency is unavailable. Not counted as a hit or miss.
func (m *Manager) GetStale(ctx context.Context, rawKey, namespace string) ([]byte, bool) {
	versions := []uint64{m.version.Load()}
	if prev := m.prevVersion.Load(); prev != versions[0] {
		versions = append(versions, prev)
	}

	for _, v := range versions {
		key := composeKey(v, namespace, rawKey)

		if sr, ok := m.fast.(staleReader); ok {
			if record, found, err := sr.GetStale(ctx, key); err == nil && found && len(record) > 0 {
				if record[0] == recordInline {
					return record[1:], true
				}
				if value, found := m.getSlow(ctx, key); found {
					return value, true
				}
			}
		}

		if value, found := m.getSlow(ctx, key); found {
			return value, true
		}
	}
	return nil, false
}

// Set stores value for rawKey in namespace. A zero ttl uses the
// configured default. Values above the large-value threshold go to the
// high-capacity tier with a pointer record kept in the fast tier.
func (m *Manager) Set(ctx context.Context, rawKey, namespace string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer m.stats.observe(start)

	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}
	key := composeKey(m.version.Load(), namespace, rawKey)

	if m.slow != nil && len(value) > m.config.LargeValueThreshold {
		if err := m.slow.Set(ctx, key, value, ttl); err == nil {
			if err := m.fast.Set(ctx, key, []byte{recordPointer}, ttl); err != nil {
				return fmt.Errorf("cache: set pointer record: %w", err)
			}
			m.stats.sets.Add(1)
			return nil
		}
		// High-capacity tier rejected the write; keep the value inline
		// rather than losing it.
		m.logger.Warn("high-capacity tier write failed, storing inline", "namespace", namespace)
	}

	record := make([]byte, 0, len(value)+1)
	record = append(record, recordInline)
	record = append(record, value...)
	if err := m.fast.Set(ctx, key, record, ttl); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	m.stats.sets.Add(1)
	return nil
}

// Delete removes rawKey in namespace from both tiers.
func (m *Manager) Delete(ctx context.Context, rawKey, namespace string) error {
	key := composeKey(m.version.Load(), namespace, rawKey)

	if err := m.fast.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}
	if m.slow != nil {
		if err := m.slow.Delete(ctx, key); err != nil {
			m.logger.Warn("high-capacity tier delete failed", "error", err)
		}
	}
	m.stats.deletes.Add(1)
	return nil
}

// DeletePattern removes every entry of the current version whose composed
// key matches the glob pattern, optionally restricted to one namespace.
// The scan is cursor-style and deletes happen in batches; no store-wide
// lock is held for the scan's duration. Returns how many keys were removed.
func (m *Manager) DeletePattern(ctx context.Context, pattern, namespace string) (int, error) {
	version := m.version.Load()
	prefix := versionPrefix(version)
	if namespace != "" {
		prefix = namespacePrefix(version, namespace)
	}

	match := func(key string) bool { return matchGlob(pattern, key) }
	count, err := m.deleteScan(ctx, prefix, match)
	if err != nil {
		return count, fmt.Errorf("cache: delete pattern %q: %w", pattern, err)
	}
	return count, nil
}

// InvalidateNamespace removes every current-version entry in the
// namespace and returns how many keys were removed.
func (m *Manager) InvalidateNamespace(ctx context.Context, namespace string) (int, error) {
	prefix := namespacePrefix(m.version.Load(), namespace)

	count, err := m.deleteScan(ctx, prefix, func(string) bool { return true })
	if err != nil {
		return count, fmt.Errorf("cache: invalidate namespace %q: %w", namespace, err)
	}
	m.logger.Info("namespace invalidated", "namespace", namespace, "removed", count)
	return count, nil
}

// deleteScan walks both tiers under prefix, deleting matching keys in
// batches. Keys present in both tiers are counted once.
func (m *Manager) deleteScan(ctx context.Context, prefix string, match func(string) bool) (int, error) {
	seen := make(map[string]struct{})

	tiers := []store.Store{m.fast}
	if m.slow != nil {
		tiers = append(tiers, m.slow)
	}

	var scanErr error
	for _, tier := range tiers {
		batch := make([]string, 0, deleteBatchSize)

		flush := func() {
			for _, key := range batch {
				if err := tier.Delete(ctx, key); err != nil {
					m.logger.Warn("invalidation delete failed", "key", key, "error", err)
					continue
				}
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					m.stats.invalidations.Add(1)
				}
			}
			batch = batch[:0]
		}

		err := tier.Scan(ctx, prefix, func(key string) bool {
			if match(key) {
				batch = append(batch, key)
				if len(batch) >= deleteBatchSize {
					flush()
				}
			}
			return true
		})
		flush()

		if err != nil {
			if errors.Is(err, store.ErrStoreUnavailable) {
				// Degrade: the reachable tier has still been cleaned.
				m.logger.Warn("invalidation scan skipped unavailable tier", "error", err)
				continue
			}
			scanErr = err
		}
	}

	return len(seen), scanErr
}

// UpdateVersion bumps the key version to newVersion, logically
// invalidating every existing entry, and returns the previous version.
// Versions are monotonic; a non-increasing newVersion is rejected.
// Old-generation data persists physically until swept or expired, which
// is what allows GetStale to serve it during degraded reads.
func (m *Manager) UpdateVersion(newVersion uint64) (uint64, error) {
	for {
		current := m.version.Load()
		if newVersion <= current {
			return current, fmt.Errorf("cache: version %d is not greater than current %d", newVersion, current)
		}
		if m.version.CompareAndSwap(current, newVersion) {
			m.prevVersion.Store(current)
			m.logger.Info("cache version updated", "previous", current, "current", newVersion)
			return current, nil
		}
	}
}

// Version returns the current key version.
func (m *Manager) Version() uint64 {
	return m.version.Load()
}

// Stats returns a snapshot of the cache counters.
func (m *Manager) Stats() Statistics {
	return m.stats.snapshot()
}

// ResetStats zeroes every counter.
func (m *Manager) ResetStats() {
	m.stats.reset()
}

// Has reports whether rawKey is currently cached, without recording a hit
// or a miss. The warmer uses it to skip keys that are already warm.
func (m *Manager) Has(ctx context.Context, rawKey, namespace string) bool {
	key := composeKey(m.version.Load(), namespace, rawKey)
	_, ok := m.getPhysical(ctx, key)
	return ok
}

// Close stops the janitor, waiting a bounded time for its final sweep,
// and closes the backing tiers.
func (m *Manager) Close() error {
	var errs []error

	if err := m.janitor.stop(5 * time.Second); err != nil {
		errs = append(errs, err)
	}
	if err := m.fast.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close fast tier: %w", err))
	}
	if m.slow != nil {
		if err := m.slow.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close high-capacity tier: %w", err))
		}
	}
	return errors.Join(errs...)
}
