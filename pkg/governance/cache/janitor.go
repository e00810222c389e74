package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/cache/store"
)

// janitor is the cache's background maintenance loop. On every tick it
// removes entries past their expiry from the fast tier, then evicts
// least-recently-used entries until the tier is back under the configured
// size bound. Tiers with native expiry (Redis) maintain themselves.
//
// The janitor is owned by its Manager: started once, stopped explicitly
// with a bounded join, never fire-and-forget.
type janitor struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

func newJanitor(m *Manager, interval time.Duration) *janitor {
	return &janitor{
		manager:  m,
		interval: interval,
		logger:   slog.Default().With("component", "governance.cache.janitor"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// start launches the maintenance loop.
func (j *janitor) start() {
	go j.run()
}

func (j *janitor) run() {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopCh:
			return
		}
	}
}

// sweep performs one maintenance pass over the fast tier.
func (j *janitor) sweep() {
	maintainer, ok := j.manager.fast.(store.Maintainer)
	if !ok {
		return
	}

	runID := uuid.NewString()
	start := time.Now()

	expired := maintainer.RemoveExpired(start)
	evicted := maintainer.EvictToSize(j.manager.config.MaxSize)

	if expired > 0 || evicted > 0 {
		j.logger.Debug("janitor sweep completed",
			"run_id", runID,
			"expired", expired,
			"evicted", evicted,
			"duration", time.Since(start),
		)
	}
}

// stop signals the loop and waits up to timeout for it to finish.
func (j *janitor) stop(timeout time.Duration) error {
	select {
	case <-j.stopCh:
		// Already stopped.
		return nil
	default:
		close(j.stopCh)
	}

	select {
	case <-j.doneCh:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("cache: janitor did not stop within %v", timeout)
	}
}

// SweepNow runs one maintenance pass immediately, outside the schedule.
// Exposed for the administrative surface and tests.
func (m *Manager) SweepNow() {
	m.janitor.sweep()
}
