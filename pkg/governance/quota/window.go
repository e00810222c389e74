package quota

import "time"

// WindowCounter is a usage counter over a fixed time window.
//
// A window is current while now falls in [windowStart, windowStart+length).
// Once the window has elapsed the counter is discarded and recreated with
// a fresh start on the next touch; no timer is involved, which keeps idle
// trackers free of background work.
//
// WindowCounter is not internally locked. The owning Tracker serializes
// all access, the same way the buckets inside a rolling window are guarded
// by their parent.
type WindowCounter struct {
	limit       int64
	length      time.Duration
	windowStart time.Time
	used        int64
}

// NewWindowCounter creates a counter for one limit dimension.
// A limit of 0 disables enforcement but still accumulates usage.
func NewWindowCounter(limit int64, length time.Duration) *WindowCounter {
	return &WindowCounter{
		limit:  limit,
		length: length,
	}
}

// rollover discards an elapsed window and starts a new one at now.
func (w *WindowCounter) rollover(now time.Time) {
	if w.windowStart.IsZero() || now.Sub(w.windowStart) >= w.length {
		w.windowStart = now
		w.used = 0
	}
}

// WouldExceed reports whether adding n to the current window would push
// usage past the limit. It rolls the window over first, so a previously
// exhausted window admits again once its length has elapsed.
func (w *WindowCounter) WouldExceed(now time.Time, n int64) bool {
	if w.limit <= 0 {
		return false
	}
	w.rollover(now)
	return w.used+n > w.limit
}

// Add records n units of usage in the current window.
// Negative n refunds usage; the counter clamps at zero so reconciliation
// can never drive a window negative.
func (w *WindowCounter) Add(now time.Time, n int64) {
	w.rollover(now)
	w.used += n
	if w.used < 0 {
		w.used = 0
	}
}

// Used returns the usage accumulated in the current window.
func (w *WindowCounter) Used(now time.Time) int64 {
	w.rollover(now)
	return w.used
}

// Remaining returns how much usage the current window still admits.
func (w *WindowCounter) Remaining(now time.Time) int64 {
	if w.limit <= 0 {
		return 0
	}
	w.rollover(now)
	remaining := w.limit - w.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter returns how long until the current window resets.
func (w *WindowCounter) RetryAfter(now time.Time) time.Duration {
	w.rollover(now)
	elapsed := now.Sub(w.windowStart)
	if elapsed >= w.length {
		return 0
	}
	return w.length - elapsed
}

// SetLimit replaces the configured limit. Usage in the current window is
// kept; an over-limit window simply stops admitting until it resets.
func (w *WindowCounter) SetLimit(limit int64) {
	w.limit = limit
}

// Restore replaces the window state, used when loading a persisted
// snapshot at startup. A restored window that has already elapsed is
// rolled over on the next touch as usual.
func (w *WindowCounter) Restore(windowStart time.Time, used int64) {
	w.windowStart = windowStart
	w.used = used
	if w.used < 0 {
		w.used = 0
	}
}
