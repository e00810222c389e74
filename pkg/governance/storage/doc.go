// Package storage provides persistence backends for quota window state.
//
// # Overview
//
// Quota windows live in memory; without persistence a process restart
// would reset every counter and let a burst of requests through. A
// Backend saves the tracker's snapshot and restores it at startup:
//
//   - Memory: keeps the snapshot in-process (default, no persistence).
//     Useful for tests and deployments that accept reset-on-restart.
//   - SQLite: durable single-file persistence using the pure-Go
//     modernc.org/sqlite driver, suitable for single-instance
//     deployments.
//
// # Thread Safety
//
// All backends are safe for concurrent use; locking is handled
// internally by each backend.
package storage
