package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
)

func testSnapshot() quota.Snapshot {
	now := time.Now().Truncate(time.Second)
	return quota.Snapshot{
		TakenAt: now,
		Windows: []quota.WindowUsage{
			{Dimension: quota.DimensionRPM, Limit: 60, Used: 12, WindowStart: now.Add(-10 * time.Second), WindowLength: time.Minute},
			{Dimension: quota.DimensionRPD, Limit: 1500, Used: 340, WindowStart: now.Add(-3 * time.Hour), WindowLength: 24 * time.Hour},
			{Dimension: quota.DimensionTPM, Limit: 100000, Used: 4200, WindowStart: now.Add(-10 * time.Second), WindowLength: time.Minute},
			{Dimension: quota.DimensionTPD, Limit: 2000000, Used: 90000, WindowStart: now.Add(-3 * time.Hour), WindowLength: 24 * time.Hour},
		},
	}
}

func assertSnapshotsEqual(t *testing.T, want quota.Snapshot, got *quota.Snapshot) {
	t.Helper()
	if got == nil {
		t.Fatal("expected a snapshot, got nil")
	}
	if len(got.Windows) != len(want.Windows) {
		t.Fatalf("expected %d windows, got %d", len(want.Windows), len(got.Windows))
	}

	byDim := make(map[quota.Dimension]quota.WindowUsage)
	for _, w := range got.Windows {
		byDim[w.Dimension] = w
	}
	for _, w := range want.Windows {
		g, ok := byDim[w.Dimension]
		if !ok {
			t.Errorf("dimension %s missing from loaded snapshot", w.Dimension)
			continue
		}
		if g.Limit != w.Limit || g.Used != w.Used || g.WindowLength != w.WindowLength {
			t.Errorf("dimension %s: expected %+v, got %+v", w.Dimension, w, g)
		}
		if !g.WindowStart.Equal(w.WindowStart) {
			t.Errorf("dimension %s: expected window start %v, got %v", w.Dimension, w.WindowStart, g.WindowStart)
		}
	}
}

func TestMemoryBackend_RoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	loaded, err := backend.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil snapshot from a fresh backend")
	}

	snap := testSnapshot()
	if err := backend.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err = backend.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertSnapshotsEqual(t, snap, loaded)
}

func TestMemoryBackend_LoadReturnsCopy(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	snap := testSnapshot()
	backend.SaveSnapshot(ctx, snap)

	loaded, _ := backend.LoadSnapshot(ctx)
	loaded.Windows[0].Used = 999999

	again, _ := backend.LoadSnapshot(ctx)
	if again.Windows[0].Used == 999999 {
		t.Error("mutating a loaded snapshot leaked into the backend")
	}
}

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.db")
	backend, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	loaded, err := backend.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil snapshot from a fresh database")
	}

	snap := testSnapshot()
	if err := backend.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err = backend.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertSnapshotsEqual(t, snap, loaded)
}

func TestSQLiteBackend_SaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.db")
	backend, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	backend.SaveSnapshot(ctx, testSnapshot())

	second := testSnapshot()
	second.Windows = second.Windows[:1]
	second.Windows[0].Used = 55
	if err := backend.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := backend.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Windows) != 1 {
		t.Fatalf("expected the second snapshot to replace the first, got %d windows", len(loaded.Windows))
	}
	if loaded.Windows[0].Used != 55 {
		t.Errorf("expected used 55, got %d", loaded.Windows[0].Used)
	}
}

func TestSQLiteBackend_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.db")
	ctx := context.Background()

	backend, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	snap := testSnapshot()
	if err := backend.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	backend.Close()

	reopened, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertSnapshotsEqual(t, snap, loaded)
}
