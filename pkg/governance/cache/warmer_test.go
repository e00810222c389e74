package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func staticGenerator(value string) func(context.Context) ([]byte, error) {
	return func(context.Context) ([]byte, error) {
		return []byte(value), nil
	}
}

func TestWarmer_WarmsConfiguredKeys(t *testing.T) {
	m := newTestManager(t, Config{}, nil)
	w := NewWarmer(m, WarmerConfig{}, nil)
	ctx := context.Background()

	specs := []WarmSpec{
		{Namespace: "notes", Key: "popular-1", Generator: staticGenerator("one")},
		{Namespace: "notes", Key: "popular-2", Generator: staticGenerator("two")},
	}

	warmed, err := w.Warm(ctx, specs)
	if err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if warmed != 2 {
		t.Errorf("expected 2 warmed entries, got %d", warmed)
	}

	value, ok := m.Get(ctx, "popular-1", "notes")
	if !ok || string(value) != "one" {
		t.Errorf("expected warmed value, ok=%v value=%q", ok, value)
	}
}

func TestWarmer_SkipsPresentKeys(t *testing.T) {
	m := newTestManager(t, Config{}, nil)
	w := NewWarmer(m, WarmerConfig{}, nil)
	ctx := context.Background()

	m.Set(ctx, "present", "notes", []byte("already here"), 0)

	var calls atomic.Int32
	specs := []WarmSpec{{
		Namespace: "notes",
		Key:       "present",
		Generator: func(context.Context) ([]byte, error) {
			calls.Add(1)
			return []byte("regenerated"), nil
		},
	}}

	warmed, err := w.Warm(ctx, specs)
	if err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if warmed != 0 {
		t.Errorf("expected 0 warmed, got %d", warmed)
	}
	if calls.Load() != 0 {
		t.Error("generator must not run for a key that is already cached")
	}

	value, _ := m.Get(ctx, "present", "notes")
	if string(value) != "already here" {
		t.Errorf("warming overwrote an existing entry: %q", value)
	}
}

func TestWarmer_FailingGeneratorIsSkipped(t *testing.T) {
	m := newTestManager(t, Config{}, nil)
	w := NewWarmer(m, WarmerConfig{}, nil)
	ctx := context.Background()

	specs := []WarmSpec{
		{Namespace: "notes", Key: "bad", Generator: func(context.Context) ([]byte, error) {
			return nil, errors.New("upstream down")
		}},
		{Namespace: "notes", Key: "good", Generator: staticGenerator("fine")},
	}

	warmed, err := w.Warm(ctx, specs)
	if err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if warmed != 1 {
		t.Errorf("expected 1 warmed despite failure, got %d", warmed)
	}
	if _, ok := m.Get(ctx, "bad", "notes"); ok {
		t.Error("failed generation must not populate the cache")
	}
}

func TestWarmer_BoundedParallelism(t *testing.T) {
	m := newTestManager(t, Config{}, nil)
	w := NewWarmer(m, WarmerConfig{Concurrency: 2}, nil)
	ctx := context.Background()

	var inFlight, peak atomic.Int32
	gen := func(context.Context) ([]byte, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return []byte("v"), nil
	}

	var specs []WarmSpec
	for i := 0; i < 20; i++ {
		specs = append(specs, WarmSpec{
			Namespace: "notes",
			Key:       string(rune('a' + i)),
			Generator: gen,
		})
	}

	if _, err := w.Warm(ctx, specs); err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent generators, saw %d", peak.Load())
	}
}

func TestWarmer_StartRequiresValidSchedule(t *testing.T) {
	m := newTestManager(t, Config{}, nil)

	w := NewWarmer(m, WarmerConfig{Schedule: "not a cron expr"}, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected invalid schedule to be rejected")
	}

	// No schedule means Start is a no-op and Stop is safe.
	w2 := NewWarmer(m, WarmerConfig{}, nil)
	if err := w2.Start(context.Background()); err != nil {
		t.Errorf("expected no-op start, got %v", err)
	}
	w2.Stop()
}
