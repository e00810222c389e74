package quota

import (
	"testing"
	"time"
)

func TestWindowCounter_Basic(t *testing.T) {
	now := time.Now()
	w := NewWindowCounter(10, time.Minute)

	if w.WouldExceed(now, 5) {
		t.Error("fresh window should admit usage under the limit")
	}

	w.Add(now, 5)
	if got := w.Used(now); got != 5 {
		t.Errorf("expected used 5, got %d", got)
	}
	if got := w.Remaining(now); got != 5 {
		t.Errorf("expected remaining 5, got %d", got)
	}

	if !w.WouldExceed(now, 6) {
		t.Error("expected 5+6 to exceed limit 10")
	}
	if w.WouldExceed(now, 5) {
		t.Error("expected 5+5 to fit limit 10 exactly")
	}
}

func TestWindowCounter_Rollover(t *testing.T) {
	start := time.Now()
	w := NewWindowCounter(2, time.Minute)

	w.Add(start, 2)
	if !w.WouldExceed(start, 1) {
		t.Error("exhausted window should reject")
	}

	// One window length later the counter is discarded and recreated.
	later := start.Add(time.Minute)
	if w.WouldExceed(later, 1) {
		t.Error("expected a fresh window after the length elapsed")
	}
	if got := w.Used(later); got != 0 {
		t.Errorf("expected used 0 after rollover, got %d", got)
	}
	if got := w.windowStart; !got.Equal(later) {
		t.Errorf("expected window start %v, got %v", later, got)
	}
}

func TestWindowCounter_ClampAtZero(t *testing.T) {
	now := time.Now()
	w := NewWindowCounter(100, time.Minute)

	w.Add(now, 10)
	w.Add(now, -30)

	if got := w.Used(now); got != 0 {
		t.Errorf("expected used clamped to 0, got %d", got)
	}
}

func TestWindowCounter_RetryAfter(t *testing.T) {
	start := time.Now()
	w := NewWindowCounter(1, time.Minute)

	w.Add(start, 1)

	at := start.Add(20 * time.Second)
	retry := w.RetryAfter(at)
	if retry != 40*time.Second {
		t.Errorf("expected retry-after 40s, got %v", retry)
	}
}

func TestWindowCounter_ZeroLimitNeverExceeds(t *testing.T) {
	now := time.Now()
	w := NewWindowCounter(0, time.Minute)

	w.Add(now, 1000000)
	if w.WouldExceed(now, 1000000) {
		t.Error("unenforced dimension should always admit")
	}
}
