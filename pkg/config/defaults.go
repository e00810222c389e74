package config

import "time"

// Default values applied when the configuration file omits a field.
const (
	DefaultFailureThreshold = 5
	DefaultBreakerTimeout   = 60 * time.Second
	DefaultSuccessThreshold = 2

	DefaultCacheMaxSize        = 10000
	DefaultCacheTTL            = time.Hour
	DefaultJanitorInterval     = 60 * time.Second
	DefaultLargeValueThreshold = 64 * 1024
	DefaultWarmingConcurrency  = 4
)

// ApplyDefaults fills in zero-valued fields with sensible defaults.
// Quota limits are left untouched; a zero limit disables that dimension.
func ApplyDefaults(cfg *Config) {
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.Breaker.Timeout == 0 {
		cfg.Breaker.Timeout = DefaultBreakerTimeout
	}
	if cfg.Breaker.SuccessThreshold == 0 {
		cfg.Breaker.SuccessThreshold = DefaultSuccessThreshold
	}

	if cfg.Cache.MaxSize == 0 {
		cfg.Cache.MaxSize = DefaultCacheMaxSize
	}
	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.JanitorInterval == 0 {
		cfg.Cache.JanitorInterval = DefaultJanitorInterval
	}
	if cfg.Cache.LargeValueThreshold == 0 {
		cfg.Cache.LargeValueThreshold = DefaultLargeValueThreshold
	}

	if cfg.Warming.Concurrency == 0 {
		cfg.Warming.Concurrency = DefaultWarmingConcurrency
	}
}
