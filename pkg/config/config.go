package config

import "time"

// Config is the root configuration for the governance layer.
type Config struct {
	// Quota contains the per-dimension admission limits.
	Quota QuotaConfig `yaml:"quota"`

	// Breaker contains circuit breaker thresholds.
	Breaker BreakerConfig `yaml:"breaker"`

	// Cache contains cache sizing, TTLs and tier settings.
	Cache CacheConfig `yaml:"cache"`

	// Storage configures quota snapshot persistence.
	Storage StorageConfig `yaml:"storage"`

	// Warming configures scheduled cache warming.
	Warming WarmingConfig `yaml:"warming"`
}

// QuotaConfig mirrors the AI vendor's usage limits locally.
// Zero values disable enforcement of a dimension.
type QuotaConfig struct {
	// RequestsPerMinute limits requests in a one-minute window.
	RequestsPerMinute int64 `yaml:"requests_per_minute"`

	// RequestsPerDay limits requests in a one-day window.
	RequestsPerDay int64 `yaml:"requests_per_day"`

	// TokensPerMinute limits tokens per minute.
	TokensPerMinute int64 `yaml:"tokens_per_minute"`

	// TokensPerDay limits tokens per day.
	TokensPerDay int64 `yaml:"tokens_per_day"`
}

// BreakerConfig contains circuit breaker settings shared by all
// registered breakers.
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count that trips a
	// closed circuit.
	FailureThreshold int `yaml:"failure_threshold"`

	// Timeout is how long an open circuit waits before probing.
	Timeout time.Duration `yaml:"timeout"`

	// SuccessThreshold is the consecutive half-open success count that
	// closes the circuit.
	SuccessThreshold int `yaml:"success_threshold"`
}

// CacheConfig contains cache sizing and tier settings.
type CacheConfig struct {
	// MaxSize bounds the number of fast-tier entries.
	MaxSize int `yaml:"max_size"`

	// DefaultTTL applies to cache writes without an explicit TTL.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// JanitorInterval is how often the janitor sweeps.
	JanitorInterval time.Duration `yaml:"janitor_interval"`

	// LargeValueThreshold is the size in bytes above which values are
	// placed in the high-capacity tier.
	LargeValueThreshold int `yaml:"large_value_threshold"`

	// Redis configures the optional high-capacity tier. An empty Addr
	// runs the cache single-tier.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the optional Redis tier.
type RedisConfig struct {
	// Addr is the host:port of the Redis server; empty disables the tier.
	Addr string `yaml:"addr"`

	// Password authenticates against the server.
	Password string `yaml:"password"`

	// DB selects the logical database.
	DB int `yaml:"db"`
}

// StorageConfig configures quota snapshot persistence.
type StorageConfig struct {
	// SQLitePath is the path of the quota snapshot database. Empty
	// keeps snapshots in memory only.
	SQLitePath string `yaml:"sqlite_path"`
}

// WarmingConfig configures scheduled cache warming.
type WarmingConfig struct {
	// Schedule is a cron expression; empty disables scheduled warming.
	Schedule string `yaml:"schedule"`

	// Concurrency bounds parallel warm generators.
	Concurrency int `yaml:"concurrency"`
}
