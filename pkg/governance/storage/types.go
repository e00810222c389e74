package storage

import (
	"context"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
)

// Backend persists quota window snapshots across restarts.
// Implementations must be thread-safe.
type Backend interface {
	// SaveSnapshot persists the tracker snapshot, replacing any
	// previously saved one.
	SaveSnapshot(ctx context.Context, snap quota.Snapshot) error

	// LoadSnapshot returns the last saved snapshot, or nil when none
	// has been saved.
	LoadSnapshot(ctx context.Context) (*quota.Snapshot, error)

	// Close releases resources held by the backend.
	Close() error
}
