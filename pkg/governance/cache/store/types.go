package store

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when a backing tier cannot be reached.
// Callers should degrade to the remaining tier rather than fail the
// governed operation.
var ErrStoreUnavailable = errors.New("store: backing store unavailable")

// Store is a byte-transparent key-value store with TTLs.
//
// Implementations must be safe for concurrent use and must return exactly
// the bytes previously passed to Set for a key: no prepended metadata, no
// re-encoding, no mutation.
type Store interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on a
	// clean miss. Transport or IO failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Scan visits every key with the given prefix, cursor-style: fn is
	// called in batches and iteration stops early if fn returns false.
	// Implementations must not hold a store-wide lock across the whole
	// scan; concurrent mutation during a scan is allowed and keys
	// created or deleted mid-scan may or may not be visited.
	Scan(ctx context.Context, prefix string, fn func(key string) bool) error

	// Len returns the number of keys currently stored.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Maintainer is implemented by stores that support in-process
// maintenance. The cache janitor uses it on the fast tier; stores with
// native expiry and eviction (Redis) do not implement it.
type Maintainer interface {
	// RemoveExpired deletes entries past their expiry and returns how
	// many were removed.
	RemoveExpired(now time.Time) int

	// EvictToSize evicts least-recently-used entries until at most max
	// remain, returning how many were evicted.
	EvictToSize(max int) int
}
