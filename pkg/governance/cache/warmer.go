package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// WarmSpec names one cache entry to pre-populate. The core makes no
// assumption about why a key is worth warming; callers supply the list.
type WarmSpec struct {
	// Namespace is the cache namespace for the entry.
	Namespace string

	// Key is the raw cache key.
	Key string

	// TTL for the warmed entry; 0 uses the manager default.
	TTL time.Duration

	// Generator produces the value to cache.
	Generator func(ctx context.Context) ([]byte, error)
}

// WarmerConfig configures a Warmer.
type WarmerConfig struct {
	// Concurrency bounds how many generators run in parallel. Default: 4.
	Concurrency int

	// Schedule is an optional cron expression (e.g. "0 * * * *") for
	// periodic re-warming. Empty means warm only on demand.
	Schedule string
}

// Warmer pre-populates cache entries from generator functions.
//
// Warming is best-effort: a failing generator is logged and skipped, and
// keys that are already cached are not regenerated. With a cron schedule
// configured, Start re-runs the configured specs periodically; Stop waits
// for any running job to finish.
type Warmer struct {
	manager *Manager
	config  WarmerConfig
	specs   []WarmSpec
	logger  *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewWarmer creates a warmer over the given manager and specs.
func NewWarmer(m *Manager, cfg WarmerConfig, specs []WarmSpec) *Warmer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Warmer{
		manager: m,
		config:  cfg,
		specs:   specs,
		logger:  slog.Default().With("component", "governance.cache.warmer"),
		cron:    cron.New(),
	}
}

// Warm generates and caches every spec whose key is not already present.
// Generators run with bounded parallelism. Returns how many entries were
// written; generator failures are logged, skipped and reported only
// through the count.
func (w *Warmer) Warm(ctx context.Context, specs []WarmSpec) (int, error) {
	runID := uuid.NewString()
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Concurrency)

	var mu sync.Mutex
	counts := struct{ warmed, skipped, failed int }{}

	for _, spec := range specs {
		spec := spec
		if spec.Generator == nil {
			continue
		}
		g.Go(func() error {
			if w.manager.Has(ctx, spec.Key, spec.Namespace) {
				mu.Lock()
				counts.skipped++
				mu.Unlock()
				return nil
			}

			value, err := spec.Generator(ctx)
			if err != nil {
				w.logger.Warn("warm generator failed",
					"run_id", runID,
					"namespace", spec.Namespace,
					"key", spec.Key,
					"error", err,
				)
				mu.Lock()
				counts.failed++
				mu.Unlock()
				return nil
			}

			if err := w.manager.Set(ctx, spec.Key, spec.Namespace, value, spec.TTL); err != nil {
				w.logger.Warn("warm set failed",
					"run_id", runID,
					"namespace", spec.Namespace,
					"key", spec.Key,
					"error", err,
				)
				mu.Lock()
				counts.failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			counts.warmed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return counts.warmed, err
	}

	w.logger.Info("cache warming completed",
		"run_id", runID,
		"warmed", counts.warmed,
		"skipped", counts.skipped,
		"failed", counts.failed,
		"duration", time.Since(start),
	)
	return counts.warmed, nil
}

// Start begins scheduled re-warming of the configured specs. A missing
// schedule makes Start a no-op, matching on-demand-only deployments.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.config.Schedule == "" {
		return nil
	}
	if w.running {
		return fmt.Errorf("cache: warmer already started")
	}

	if _, err := cron.ParseStandard(w.config.Schedule); err != nil {
		return fmt.Errorf("cache: invalid warm schedule %q: %w", w.config.Schedule, err)
	}

	_, err := w.cron.AddFunc(w.config.Schedule, func() {
		if _, err := w.Warm(ctx, w.specs); err != nil {
			w.logger.Error("scheduled warming failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cache: schedule warming: %w", err)
	}

	w.cron.Start()
	w.running = true
	w.logger.Info("cache warmer started", "schedule", w.config.Schedule, "specs", len(w.specs))
	return nil
}

// Stop halts scheduled warming and waits for a running job to complete.
func (w *Warmer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	<-w.cron.Stop().Done()
	w.running = false
	w.logger.Info("cache warmer stopped")
}
