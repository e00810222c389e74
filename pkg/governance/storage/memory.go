package storage

import (
	"context"
	"sync"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
)

// MemoryBackend keeps the snapshot in-process. All state is lost when
// the process exits; it is the default when no persistence is configured.
type MemoryBackend struct {
	mu   sync.RWMutex
	snap *quota.Snapshot
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// SaveSnapshot replaces the held snapshot.
func (m *MemoryBackend) SaveSnapshot(ctx context.Context, snap quota.Snapshot) error {
	copied := snap
	copied.Windows = make([]quota.WindowUsage, len(snap.Windows))
	copy(copied.Windows, snap.Windows)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &copied
	return nil
}

// LoadSnapshot returns the held snapshot, or nil when none was saved.
func (m *MemoryBackend) LoadSnapshot(ctx context.Context) (*quota.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return nil, nil
	}
	copied := *m.snap
	copied.Windows = make([]quota.WindowUsage, len(m.snap.Windows))
	copy(copied.Windows, m.snap.Windows)
	return &copied, nil
}

// Close releases nothing; the memory backend has no external resources.
func (m *MemoryBackend) Close() error {
	return nil
}
