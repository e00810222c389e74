package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Set(ctx, "k1", []byte("hello"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, ok, err := m.Get(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(value) != "hello" {
		t.Errorf("expected %q, got %q", "hello", value)
	}
}

func TestMemory_ValueNotAliased(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	original := []byte("immutable")
	m.Set(ctx, "k1", original, 0)

	// Mutating the caller's slice must not affect the stored value.
	original[0] = 'X'

	value, _, _ := m.Get(ctx, "k1")
	if string(value) != "immutable" {
		t.Errorf("stored value was aliased: got %q", value)
	}

	// Mutating the returned slice must not affect later reads.
	value[0] = 'Y'
	again, _, _ := m.Get(ctx, "k1")
	if string(again) != "immutable" {
		t.Errorf("returned value was aliased: got %q", again)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "k1", []byte("v"), 50*time.Millisecond)

	if _, ok, _ := m.Get(ctx, "k1"); !ok {
		t.Fatal("expected hit before TTL elapsed")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := m.Get(ctx, "k1"); ok {
		t.Error("expected miss after TTL elapsed")
	}

	// The expired entry is still readable as stale until swept.
	if _, ok, _ := m.GetStale(ctx, "k1"); !ok {
		t.Error("expected stale read before sweep")
	}

	if removed := m.RemoveExpired(time.Now()); removed != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", removed)
	}
	if _, ok, _ := m.GetStale(ctx, "k1"); ok {
		t.Error("expected stale miss after sweep")
	}
}

func TestMemory_ScanPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "1:notes:a", []byte("v"), 0)
	m.Set(ctx, "1:notes:b", []byte("v"), 0)
	m.Set(ctx, "1:quiz:a", []byte("v"), 0)

	var seen []string
	err := m.Scan(ctx, "1:notes:", func(key string) bool {
		seen = append(seen, key)
		return true
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 keys with prefix, got %v", seen)
	}
}

func TestMemory_ScanEarlyStop(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, k := range []string{"p:a", "p:b", "p:c"} {
		m.Set(ctx, k, []byte("v"), 0)
	}

	visited := 0
	m.Scan(ctx, "p:", func(key string) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("expected scan to stop after first key, got %d", visited)
	}
}

func TestMemory_EvictToSize(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Set(ctx, "old", []byte("v"), 0)
	time.Sleep(5 * time.Millisecond)
	m.Set(ctx, "mid", []byte("v"), 0)
	time.Sleep(5 * time.Millisecond)
	m.Set(ctx, "new", []byte("v"), 0)

	// Touch "old" so "mid" becomes the least recently used.
	m.Get(ctx, "old")

	if evicted := m.EvictToSize(2); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}

	if _, ok, _ := m.Get(ctx, "mid"); ok {
		t.Error("expected LRU entry 'mid' to be evicted")
	}
	for _, k := range []string{"old", "new"} {
		if _, ok, _ := m.Get(ctx, k); !ok {
			t.Errorf("expected %q to survive eviction", k)
		}
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 100; j++ {
				m.Set(ctx, key, []byte("v"), 0)
				m.Get(ctx, key)
				m.Scan(ctx, key, func(string) bool { return true })
			}
		}(i)
	}
	wg.Wait()

	n, _ := m.Len(ctx)
	if n != 10 {
		t.Errorf("expected 10 entries, got %d", n)
	}
}
