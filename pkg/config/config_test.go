package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "governance.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  requests_per_minute: 60
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Quota.RequestsPerMinute != 60 {
		t.Errorf("expected rpm 60, got %d", cfg.Quota.RequestsPerMinute)
	}
	if cfg.Quota.RequestsPerDay != 0 {
		t.Errorf("expected rpd to stay 0 (disabled), got %d", cfg.Quota.RequestsPerDay)
	}
	if cfg.Breaker.FailureThreshold != DefaultFailureThreshold {
		t.Errorf("expected default failure threshold %d, got %d", DefaultFailureThreshold, cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.Timeout != DefaultBreakerTimeout {
		t.Errorf("expected default breaker timeout %v, got %v", DefaultBreakerTimeout, cfg.Breaker.Timeout)
	}
	if cfg.Cache.MaxSize != DefaultCacheMaxSize {
		t.Errorf("expected default cache max size %d, got %d", DefaultCacheMaxSize, cfg.Cache.MaxSize)
	}
	if cfg.Cache.DefaultTTL != DefaultCacheTTL {
		t.Errorf("expected default cache TTL %v, got %v", DefaultCacheTTL, cfg.Cache.DefaultTTL)
	}
	if cfg.Warming.Concurrency != DefaultWarmingConcurrency {
		t.Errorf("expected default warming concurrency %d, got %d", DefaultWarmingConcurrency, cfg.Warming.Concurrency)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  requests_per_minute: 60
  requests_per_day: 1500
  tokens_per_minute: 100000
  tokens_per_day: 2000000
breaker:
  failure_threshold: 3
  timeout: 30s
  success_threshold: 1
cache:
  max_size: 500
  default_ttl: 10m
  janitor_interval: 15s
  large_value_threshold: 1024
  redis:
    addr: localhost:6379
    db: 2
storage:
  sqlite_path: /var/lib/governance/quota.db
warming:
  schedule: "0 * * * *"
  concurrency: 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Quota.TokensPerDay != 2000000 {
		t.Errorf("expected tpd 2000000, got %d", cfg.Quota.TokensPerDay)
	}
	if cfg.Breaker.FailureThreshold != 3 || cfg.Breaker.Timeout != 30*time.Second || cfg.Breaker.SuccessThreshold != 1 {
		t.Errorf("breaker config mismatch: %+v", cfg.Breaker)
	}
	if cfg.Cache.MaxSize != 500 || cfg.Cache.DefaultTTL != 10*time.Minute {
		t.Errorf("cache config mismatch: %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Addr != "localhost:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("redis config mismatch: %+v", cfg.Cache.Redis)
	}
	if cfg.Storage.SQLitePath != "/var/lib/governance/quota.db" {
		t.Errorf("storage config mismatch: %+v", cfg.Storage)
	}
	if cfg.Warming.Schedule != "0 * * * *" || cfg.Warming.Concurrency != 8 {
		t.Errorf("warming config mismatch: %+v", cfg.Warming)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "quota: [not a mapping")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestLoad_RejectsNegativeLimits(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  requests_per_minute: -1
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation to reject a negative limit")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  requests_per_minute: 60
breaker:
  timeout: 30s
`)

	t.Setenv("KNOWALLEDGE_QUOTA_REQUESTS_PER_MINUTE", "120")
	t.Setenv("KNOWALLEDGE_BREAKER_TIMEOUT", "45s")
	t.Setenv("KNOWALLEDGE_CACHE_REDIS_ADDR", "redis.internal:6379")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Quota.RequestsPerMinute != 120 {
		t.Errorf("expected env override rpm 120, got %d", cfg.Quota.RequestsPerMinute)
	}
	if cfg.Breaker.Timeout != 45*time.Second {
		t.Errorf("expected env override timeout 45s, got %v", cfg.Breaker.Timeout)
	}
	if cfg.Cache.Redis.Addr != "redis.internal:6379" {
		t.Errorf("expected env override redis addr, got %q", cfg.Cache.Redis.Addr)
	}
}

func TestLoadWithEnvOverrides_InvalidValueIgnored(t *testing.T) {
	path := writeConfigFile(t, `
quota:
  requests_per_minute: 60
`)

	t.Setenv("KNOWALLEDGE_QUOTA_REQUESTS_PER_MINUTE", "not-a-number")

	cfg, err := LoadWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Quota.RequestsPerMinute != 60 {
		t.Errorf("expected file value 60 to survive an unparseable override, got %d", cfg.Quota.RequestsPerMinute)
	}
}

func TestLoadWithEnvOverrides_RevalidatesAfterOverride(t *testing.T) {
	path := writeConfigFile(t, `
breaker:
  failure_threshold: 3
`)

	t.Setenv("KNOWALLEDGE_BREAKER_FAILURE_THRESHOLD", "-2")

	_, err := LoadWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation to reject the override")
	}
}
