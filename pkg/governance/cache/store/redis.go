package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the remote high-capacity tier, backed by a Redis server.
//
// TTL enforcement and memory-pressure eviction are native to Redis, so
// the store does not implement Maintainer; the cache janitor only tends
// the fast tier. Scans use the cursor-based SCAN command and therefore
// never block the server for the duration of a keyspace walk.
type Redis struct {
	client *redis.Client

	// scanBatch is the COUNT hint passed to SCAN.
	scanBatch int64
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates against the server (optional).
	Password string

	// DB selects the logical database.
	DB int

	// DialTimeout bounds connection establishment. Default: 5 seconds.
	DialTimeout time.Duration

	// ScanBatch is the batch size hint for SCAN. Default: 100.
	ScanBatch int64
}

// NewRedis creates a Redis-backed store. The connection is verified with
// a PING so a misconfigured tier surfaces at startup, not mid-request.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr cannot be empty")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ScanBatch <= 0 {
		cfg.ScanBatch = 100
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrStoreUnavailable, cfg.Addr, err)
	}

	return &Redis{client: client, scanBatch: cfg.ScanBatch}, nil
}

// Get returns the value for key if present.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// Set stores value under key with the given TTL (0 = no expiry).
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a key. Absent keys are a no-op.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Scan visits every key with the given prefix using cursor-based SCAN.
func (r *Redis) Scan(ctx context.Context, prefix string, fn func(key string) bool) error {
	var cursor uint64
	match := prefix + "*"

	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, r.scanBatch).Result()
		if err != nil {
			return fmt.Errorf("%w: scan: %v", ErrStoreUnavailable, err)
		}

		for _, key := range keys {
			if !fn(key) {
				return nil
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Len returns the number of keys in the selected database.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: dbsize: %v", ErrStoreUnavailable, err)
	}
	return int(n), nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
