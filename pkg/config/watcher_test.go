package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "governance.yaml")
	if err := os.WriteFile(path, []byte("quota:\n  requests_per_minute: 60\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	reloaded := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		w.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("quota:\n  requests_per_minute: 90\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Quota.RequestsPerMinute != 90 {
			t.Errorf("expected reloaded rpm 90, got %d", cfg.Quota.RequestsPerMinute)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reload")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "governance.yaml")
	if err := os.WriteFile(path, []byte("quota:\n  requests_per_minute: 60\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	reloaded := make(chan *Config, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		w.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("quota: [broken"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("expected no reload for an invalid file, got %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestWatcher_StopBeforeWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "governance.yaml")
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("stop on an unstarted watcher failed: %v", err)
	}
}
