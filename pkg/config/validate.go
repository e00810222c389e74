package config

import "fmt"

// Validate checks the configuration for values that cannot be used.
// It is called after defaults and environment overrides have been applied.
func Validate(cfg *Config) error {
	if cfg.Quota.RequestsPerMinute < 0 {
		return fmt.Errorf("quota: requests_per_minute cannot be negative (got %d)", cfg.Quota.RequestsPerMinute)
	}
	if cfg.Quota.RequestsPerDay < 0 {
		return fmt.Errorf("quota: requests_per_day cannot be negative (got %d)", cfg.Quota.RequestsPerDay)
	}
	if cfg.Quota.TokensPerMinute < 0 {
		return fmt.Errorf("quota: tokens_per_minute cannot be negative (got %d)", cfg.Quota.TokensPerMinute)
	}
	if cfg.Quota.TokensPerDay < 0 {
		return fmt.Errorf("quota: tokens_per_day cannot be negative (got %d)", cfg.Quota.TokensPerDay)
	}

	if cfg.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("breaker: failure_threshold must be at least 1 (got %d)", cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.SuccessThreshold < 1 {
		return fmt.Errorf("breaker: success_threshold must be at least 1 (got %d)", cfg.Breaker.SuccessThreshold)
	}
	if cfg.Breaker.Timeout <= 0 {
		return fmt.Errorf("breaker: timeout must be positive (got %v)", cfg.Breaker.Timeout)
	}

	if cfg.Cache.MaxSize < 1 {
		return fmt.Errorf("cache: max_size must be at least 1 (got %d)", cfg.Cache.MaxSize)
	}
	if cfg.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache: default_ttl must be positive (got %v)", cfg.Cache.DefaultTTL)
	}
	if cfg.Cache.JanitorInterval <= 0 {
		return fmt.Errorf("cache: janitor_interval must be positive (got %v)", cfg.Cache.JanitorInterval)
	}
	if cfg.Cache.LargeValueThreshold < 1 {
		return fmt.Errorf("cache: large_value_threshold must be at least 1 (got %d)", cfg.Cache.LargeValueThreshold)
	}

	if cfg.Warming.Concurrency < 1 {
		return fmt.Errorf("warming: concurrency must be at least 1 (got %d)", cfg.Warming.Concurrency)
	}

	return nil
}
