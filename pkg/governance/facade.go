package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/config"
	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/breaker"
	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/cache"
	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/cache/store"
	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/storage"
)

// snapshotInterval is how often quota usage is persisted to the
// storage backend.
const snapshotInterval = time.Minute

// Facade composes the quota tracker, the breaker registry and the
// response cache into the single entry point the application calls.
//
// One breaker exists per namespace: a namespace maps to one downstream
// dependency, so every concurrent caller of that dependency shares its
// failure accounting.
type Facade struct {
	config   *config.Config
	tracker  *quota.Tracker
	breakers *breaker.Registry
	cache    *cache.Manager
	warmer   *cache.Warmer
	backend  storage.Backend
	metrics  *Metrics
	logger   *slog.Logger

	// group collapses concurrent misses for the same key into one
	// downstream call.
	group singleflight.Group

	mu      sync.Mutex
	watcher *config.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Options customizes facade construction beyond the file configuration.
type Options struct {
	// Metrics receives the facade's Prometheus collectors. Nil registers
	// them with the default registerer.
	Metrics *Metrics

	// WarmSpecs is the list of entries the warmer pre-populates, on
	// demand via Warm and on the configured schedule.
	WarmSpecs []cache.WarmSpec

	// Logger overrides the default slog logger.
	Logger *slog.Logger
}

// New creates a facade from the configuration with default options.
func New(ctx context.Context, cfg *config.Config) (*Facade, error) {
	return NewWithOptions(ctx, cfg, Options{})
}

// NewWithOptions creates a facade, wiring the cache tiers, the storage
// backend and the warmer, and restoring persisted quota usage.
func NewWithOptions(ctx context.Context, cfg *config.Config, opts Options) (*Facade, error) {
	if cfg == nil {
		return nil, fmt.Errorf("governance: config cannot be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "governance")

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	f := &Facade{
		config:  cfg,
		tracker: quota.NewTracker(quotaConfig(cfg.Quota)),
		metrics: metrics,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	f.breakers = breaker.NewRegistry(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		Timeout:          cfg.Breaker.Timeout,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		OnStateChange: func(name string, from, to breaker.State) {
			logger.Warn("circuit state changed",
				"dependency", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.recordTransition(name, from.String(), to.String())
		},
	})

	fast := store.NewMemory()
	var slow store.Store
	if cfg.Cache.Redis.Addr != "" {
		redisStore, err := store.NewRedis(ctx, store.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			// Degrade to single-tier rather than refusing to start.
			logger.Warn("high-capacity tier unreachable, running single-tier",
				"addr", cfg.Cache.Redis.Addr,
				"error", err,
			)
		} else {
			slow = redisStore
		}
	}

	manager, err := cache.NewManager(cache.Config{
		MaxSize:             cfg.Cache.MaxSize,
		DefaultTTL:          cfg.Cache.DefaultTTL,
		JanitorInterval:     cfg.Cache.JanitorInterval,
		LargeValueThreshold: cfg.Cache.LargeValueThreshold,
	}, fast, slow)
	if err != nil {
		return nil, fmt.Errorf("governance: create cache: %w", err)
	}
	f.cache = manager

	f.warmer = cache.NewWarmer(manager, cache.WarmerConfig{
		Concurrency: cfg.Warming.Concurrency,
		Schedule:    cfg.Warming.Schedule,
	}, opts.WarmSpecs)
	if err := f.warmer.Start(ctx); err != nil {
		manager.Close()
		return nil, fmt.Errorf("governance: start warmer: %w", err)
	}

	backend, err := newBackend(cfg.Storage)
	if err != nil {
		f.warmer.Stop()
		manager.Close()
		return nil, fmt.Errorf("governance: open quota storage: %w", err)
	}
	f.backend = backend

	if snap, err := backend.LoadSnapshot(ctx); err != nil {
		logger.Warn("quota snapshot load failed, starting fresh", "error", err)
	} else if snap != nil {
		f.tracker.Restore(*snap)
		logger.Info("quota usage restored", "taken_at", snap.TakenAt)
	}

	go f.persistLoop()

	return f, nil
}

// Execute governs one downstream call.
//
// The path is cache lookup, then quota admission, then the breaker-wrapped
// compute call, then usage recording and cache population. Quota denials
// and open circuits come back as typed outcomes with a nil error; only
// compute's own failure is returned as an error.
//
// Concurrent calls for the same key and namespace collapse into a single
// compute invocation. Followers receive the leader's result; the leader's
// context drives the shared call.
func (f *Facade) Execute(ctx context.Context, key, namespace string, estimatedTokens int64, compute ComputeFunc) (Result, error) {
	if compute == nil {
		return Result{}, fmt.Errorf("governance: compute function cannot be nil")
	}

	if value, ok := f.cache.Get(ctx, key, namespace); ok {
		f.metrics.recordOutcome(namespace, OutcomeHit)
		return Result{Outcome: OutcomeHit, Value: value}, nil
	}

	v, err, _ := f.group.Do(namespace+"\x00"+key, func() (interface{}, error) {
		return f.executeMiss(ctx, key, namespace, estimatedTokens, compute)
	})
	if err != nil {
		return Result{}, err
	}

	result := v.(Result)
	f.metrics.recordOutcome(namespace, result.Outcome)
	return result, nil
}

// executeMiss is the collapsed miss path: admission, breaker call,
// reconciliation and cache populate.
func (f *Facade) executeMiss(ctx context.Context, key, namespace string, estimatedTokens int64, compute ComputeFunc) (Result, error) {
	// An earlier flight may have populated the key between the caller's
	// lookup and this flight starting.
	if value, ok := f.cache.Get(ctx, key, namespace); ok {
		return Result{Outcome: OutcomeHit, Value: value}, nil
	}

	decision := f.tracker.CheckAdmission(estimatedTokens)
	if !decision.Allowed {
		f.metrics.recordDenial(string(decision.Reason))
		f.logger.Warn("request denied by quota",
			"namespace", namespace,
			"reason", string(decision.Reason),
			"limit", decision.Limit,
			"used", decision.Used,
			"retry_after", decision.RetryAfter,
		)
		return Result{
			Outcome:    OutcomeQuotaExceeded,
			Reason:     decision.Reason,
			Limit:      decision.Limit,
			Used:       decision.Used,
			RetryAfter: decision.RetryAfter,
		}, nil
	}

	cb := f.breakers.Get(namespace)

	var (
		value        []byte
		actualTokens int64
	)
	start := time.Now()
	err := cb.Call(ctx, func(ctx context.Context) error {
		v, tokens, err := compute(ctx)
		if err != nil {
			return err
		}
		value = v
		actualTokens = tokens
		return nil
	})

	switch {
	case errors.Is(err, breaker.ErrCircuitOpen):
		// The call never ran, so the token reservation reconciles to zero.
		f.tracker.RecordUsage(estimatedTokens, 0)

		stale, ok := f.cache.GetStale(ctx, key, namespace)
		f.logger.Warn("circuit open, serving degraded",
			"namespace", namespace,
			"key", key,
			"stale_available", ok,
		)
		return Result{Outcome: OutcomeDegraded, Value: stale, Stale: ok}, nil

	case err != nil:
		f.metrics.observeCompute(namespace, "error", time.Since(start).Seconds())
		return Result{}, err
	}
	f.metrics.observeCompute(namespace, "success", time.Since(start).Seconds())

	f.tracker.RecordUsage(estimatedTokens, actualTokens)

	if err := f.cache.Set(ctx, key, namespace, value, 0); err != nil {
		// A failed populate costs a future miss, not this request.
		f.logger.Warn("cache populate failed",
			"namespace", namespace,
			"key", key,
			"error", err,
		)
	}

	return Result{Outcome: OutcomeComputed, Value: value}, nil
}

// Warm pre-populates the given entries through the cache warmer and
// returns how many were written.
func (f *Facade) Warm(ctx context.Context, specs []cache.WarmSpec) (int, error) {
	return f.warmer.Warm(ctx, specs)
}

// QuotaSnapshot returns current usage across all quota dimensions.
func (f *Facade) QuotaSnapshot() quota.Snapshot {
	return f.tracker.Snapshot()
}

// SetQuotaLimits applies new limits, preserving current-window usage.
func (f *Facade) SetQuotaLimits(cfg config.QuotaConfig) {
	f.tracker.SetLimits(quotaConfig(cfg))
	f.logger.Info("quota limits updated",
		"rpm", cfg.RequestsPerMinute,
		"rpd", cfg.RequestsPerDay,
		"tpm", cfg.TokensPerMinute,
		"tpd", cfg.TokensPerDay,
	)
}

// BreakerStatus returns the state of the breaker guarding the named
// dependency, creating it if no call has touched it yet.
func (f *Facade) BreakerStatus(name string) breaker.Status {
	return f.breakers.Get(name).Status()
}

// BreakerStatuses returns the state of every breaker created so far.
func (f *Facade) BreakerStatuses() []breaker.Status {
	return f.breakers.Statuses()
}

// ResetBreaker returns the named breaker to its initial closed state.
func (f *Facade) ResetBreaker(name string) {
	f.breakers.Get(name).Reset()
	f.logger.Info("circuit breaker reset", "dependency", name)
}

// CacheStats returns a snapshot of the cache counters.
func (f *Facade) CacheStats() cache.Statistics {
	return f.cache.Stats()
}

// InvalidateNamespace removes every cached entry in the namespace and
// returns how many keys were removed.
func (f *Facade) InvalidateNamespace(ctx context.Context, namespace string) (int, error) {
	return f.cache.InvalidateNamespace(ctx, namespace)
}

// DeletePattern removes cached entries whose composed key matches the
// glob pattern, optionally restricted to one namespace.
func (f *Facade) DeletePattern(ctx context.Context, pattern, namespace string) (int, error) {
	return f.cache.DeletePattern(ctx, pattern, namespace)
}

// UpdateCacheVersion bumps the cache key version, logically invalidating
// all prior entries, and returns the previous version.
func (f *Facade) UpdateCacheVersion(newVersion uint64) (uint64, error) {
	return f.cache.UpdateVersion(newVersion)
}

// WatchConfig starts watching the configuration file at path and applies
// quota limit changes without a restart. Call at most once; Shutdown
// stops the watcher.
func (f *Facade) WatchConfig(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher != nil {
		return fmt.Errorf("governance: config watcher already running")
	}

	w, err := config.NewWatcher(path, f.logger)
	if err != nil {
		return fmt.Errorf("governance: create config watcher: %w", err)
	}
	f.watcher = w

	go func() {
		err := w.Watch(context.Background(), func(cfg *config.Config) {
			f.SetQuotaLimits(cfg.Quota)
		})
		if err != nil {
			f.logger.Error("config watcher exited", "error", err)
		}
	}()

	return nil
}

// Shutdown stops the warmer, the config watcher and the persistence
// loop, saves a final quota snapshot and closes the cache and the
// storage backend.
func (f *Facade) Shutdown(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })

	select {
	case <-f.doneCh:
	case <-ctx.Done():
		return fmt.Errorf("governance: shutdown interrupted: %w", ctx.Err())
	}

	f.warmer.Stop()

	f.mu.Lock()
	watcher := f.watcher
	f.watcher = nil
	f.mu.Unlock()

	var errs []error
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop config watcher: %w", err))
		}
	}

	if err := f.backend.SaveSnapshot(ctx, f.tracker.Snapshot()); err != nil {
		errs = append(errs, fmt.Errorf("persist final quota snapshot: %w", err))
	}
	if err := f.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := f.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close quota storage: %w", err))
	}

	return errors.Join(errs...)
}

// persistLoop saves quota usage on a fixed interval until Shutdown.
func (f *Facade) persistLoop() {
	defer close(f.doneCh)

	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			if err := f.backend.SaveSnapshot(context.Background(), f.tracker.Snapshot()); err != nil {
				f.logger.Warn("quota snapshot persist failed", "error", err)
			}
		}
	}
}

// quotaConfig converts the file configuration into tracker limits.
func quotaConfig(cfg config.QuotaConfig) quota.Config {
	return quota.Config{
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequestsPerDay:    cfg.RequestsPerDay,
		TokensPerMinute:   cfg.TokensPerMinute,
		TokensPerDay:      cfg.TokensPerDay,
	}
}

// newBackend selects the storage backend from configuration.
func newBackend(cfg config.StorageConfig) (storage.Backend, error) {
	if cfg.SQLitePath == "" {
		return storage.NewMemoryBackend(), nil
	}
	return storage.NewSQLiteBackend(cfg.SQLitePath)
}
