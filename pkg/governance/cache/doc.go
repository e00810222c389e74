// Package cache provides the multi-tier response cache for governed AI calls.
//
// # Overview
//
// The Manager wraps one or two backing stores behind versioned, namespaced
// keys. Every physical key has the form
//
//	version:namespace:rawKey
//
// so bumping the version logically invalidates every prior entry without
// traversing the keyspace, and a namespace partitions keys for bulk
// invalidation.
//
// # Tiering
//
// Small values live in the fast in-memory tier. Values whose size exceeds
// the configured threshold are written to the high-capacity tier (Redis)
// with only a small pointer record kept in the fast tier; callers never
// see the difference. When a tier is unreachable the manager degrades to
// the remaining one instead of failing the operation.
//
// # Maintenance
//
// A background janitor runs on a fixed interval: it removes entries past
// their expiry, then evicts least-recently-used entries until the fast
// tier is back under its size bound. The janitor is stopped explicitly
// via Close, which waits a bounded time for the final sweep to finish.
//
// A Warmer pre-populates configured keys from generator functions, with
// bounded parallelism and an optional cron schedule for periodic
// re-warming.
//
// # Statistics
//
// Hits, misses, sets, deletes, invalidations and cumulative latency are
// recorded atomically with each operation; the hit rate is derived on
// read and never stored.
package cache
