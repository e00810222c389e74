// Package store provides pluggable backing stores for the response cache.
//
// # Overview
//
// A Store is a byte-transparent key-value store with TTLs and prefix
// scanning. Two implementations are provided:
//
//   - Memory: a bounded in-process map, the fast tier. Tracks access
//     times so the cache janitor can sweep expired entries and evict
//     least-recently-used ones.
//   - Redis: a remote store for large or shared values, the
//     high-capacity tier. TTLs and eviction are delegated to Redis;
//     scanning uses the cursor-based SCAN command so no operation holds
//     the server for the duration of a full keyspace walk.
//
// # Error Handling
//
// A store that cannot reach its backing service returns
// ErrStoreUnavailable (possibly wrapped). The cache manager treats that
// as a degraded tier, not a failure: reads fall back to the remaining
// tier and at worst the cache behaves as "always miss".
package store
