package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use LoadWithEnvOverrides
// for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// KNOWALLEDGE_SECTION_FIELD (e.g. KNOWALLEDGE_QUOTA_REQUESTS_PER_MINUTE)
// and always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format KNOWALLEDGE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Quota overrides
	if v, ok := envInt64("KNOWALLEDGE_QUOTA_REQUESTS_PER_MINUTE"); ok {
		cfg.Quota.RequestsPerMinute = v
	}
	if v, ok := envInt64("KNOWALLEDGE_QUOTA_REQUESTS_PER_DAY"); ok {
		cfg.Quota.RequestsPerDay = v
	}
	if v, ok := envInt64("KNOWALLEDGE_QUOTA_TOKENS_PER_MINUTE"); ok {
		cfg.Quota.TokensPerMinute = v
	}
	if v, ok := envInt64("KNOWALLEDGE_QUOTA_TOKENS_PER_DAY"); ok {
		cfg.Quota.TokensPerDay = v
	}

	// Breaker overrides
	if v, ok := envInt("KNOWALLEDGE_BREAKER_FAILURE_THRESHOLD"); ok {
		cfg.Breaker.FailureThreshold = v
	}
	if v, ok := envDuration("KNOWALLEDGE_BREAKER_TIMEOUT"); ok {
		cfg.Breaker.Timeout = v
	}
	if v, ok := envInt("KNOWALLEDGE_BREAKER_SUCCESS_THRESHOLD"); ok {
		cfg.Breaker.SuccessThreshold = v
	}

	// Cache overrides
	if v, ok := envInt("KNOWALLEDGE_CACHE_MAX_SIZE"); ok {
		cfg.Cache.MaxSize = v
	}
	if v, ok := envDuration("KNOWALLEDGE_CACHE_DEFAULT_TTL"); ok {
		cfg.Cache.DefaultTTL = v
	}
	if v, ok := envDuration("KNOWALLEDGE_CACHE_JANITOR_INTERVAL"); ok {
		cfg.Cache.JanitorInterval = v
	}
	if v, ok := envInt("KNOWALLEDGE_CACHE_LARGE_VALUE_THRESHOLD"); ok {
		cfg.Cache.LargeValueThreshold = v
	}
	if val := os.Getenv("KNOWALLEDGE_CACHE_REDIS_ADDR"); val != "" {
		cfg.Cache.Redis.Addr = val
	}
	if val := os.Getenv("KNOWALLEDGE_CACHE_REDIS_PASSWORD"); val != "" {
		cfg.Cache.Redis.Password = val
	}
	if v, ok := envInt("KNOWALLEDGE_CACHE_REDIS_DB"); ok {
		cfg.Cache.Redis.DB = v
	}

	// Storage overrides
	if val := os.Getenv("KNOWALLEDGE_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLitePath = val
	}

	// Warming overrides
	if val := os.Getenv("KNOWALLEDGE_WARMING_SCHEDULE"); val != "" {
		cfg.Warming.Schedule = val
	}
	if v, ok := envInt("KNOWALLEDGE_WARMING_CONCURRENCY"); ok {
		cfg.Warming.Concurrency = v
	}
}

func envInt(name string) (int, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return i, true
}

func envInt64(name string) (int64, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

func envDuration(name string) (time.Duration, bool) {
	val := os.Getenv(name)
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}
