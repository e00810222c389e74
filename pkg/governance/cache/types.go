package cache

import (
	"sync/atomic"
	"time"
)

// Config configures the cache manager.
type Config struct {
	// MaxSize bounds the number of entries in the fast tier. The janitor
	// evicts LRU entries beyond it. Default: 10,000.
	MaxSize int

	// DefaultTTL applies to Set calls with a zero TTL. Default: 1 hour.
	DefaultTTL time.Duration

	// JanitorInterval is how often the janitor sweeps. Default: 60s.
	JanitorInterval time.Duration

	// LargeValueThreshold is the serialized size in bytes above which a
	// value is placed in the high-capacity tier. Only relevant when a
	// slow tier is configured. Default: 64 KiB.
	LargeValueThreshold int

	// InitialVersion seeds the key version. Default: 1.
	InitialVersion uint64
}

// withDefaults fills in zero fields.
func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 10000
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = time.Hour
	}
	if c.JanitorInterval <= 0 {
		c.JanitorInterval = 60 * time.Second
	}
	if c.LargeValueThreshold <= 0 {
		c.LargeValueThreshold = 64 * 1024
	}
	if c.InitialVersion == 0 {
		c.InitialVersion = 1
	}
	return c
}

// Statistics is a point-in-time view of cache counters.
// All counters increase monotonically until Reset.
type Statistics struct {
	// Hits is the number of Get calls that found a value.
	Hits uint64

	// Misses is the number of Get calls that found nothing.
	Misses uint64

	// Sets is the number of values written.
	Sets uint64

	// Deletes is the number of explicit single-key deletions.
	Deletes uint64

	// Invalidations is the number of entries removed by pattern or
	// namespace invalidation.
	Invalidations uint64

	// TotalLatency is the cumulative time spent in Get and Set.
	TotalLatency time.Duration
}

// HitRate returns the fraction of lookups that hit, derived, never stored.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// statistics is the live atomic counter set behind Statistics.
type statistics struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	sets          atomic.Uint64
	deletes       atomic.Uint64
	invalidations atomic.Uint64
	latencyNanos  atomic.Int64
}

// snapshot copies the counters into an exported view.
func (s *statistics) snapshot() Statistics {
	return Statistics{
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Sets:          s.sets.Load(),
		Deletes:       s.deletes.Load(),
		Invalidations: s.invalidations.Load(),
		TotalLatency:  time.Duration(s.latencyNanos.Load()),
	}
}

// reset zeroes every counter.
func (s *statistics) reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.sets.Store(0)
	s.deletes.Store(0)
	s.invalidations.Store(0)
	s.latencyNanos.Store(0)
}

// observe records one operation's latency.
func (s *statistics) observe(start time.Time) {
	s.latencyNanos.Add(int64(time.Since(start)))
}
