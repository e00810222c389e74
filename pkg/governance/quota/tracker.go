package quota

import (
	"sync"
	"time"
)

// Tracker coordinates admission control across all four quota dimensions.
//
// CheckAdmission evaluates the dimensions in deterministic order
// (RPM → RPD → TPM → TPD) and rejects at the first exhausted one. Nothing
// is committed on rejection: the check runs check-all-then-commit under
// the tracker mutex, so a denied request leaves every window untouched.
//
// On admission the request counters are incremented and the caller's token
// estimate is reserved in both token windows. RecordUsage later reconciles
// the reservation with the actual cost.
type Tracker struct {
	rpm *WindowCounter
	rpd *WindowCounter
	tpm *WindowCounter
	tpd *WindowCounter

	mu sync.Mutex

	// now is swapped in tests to drive window rollover deterministically.
	now func() time.Time
}

// NewTracker creates a tracker with the given per-dimension limits.
// Zero limits disable enforcement for that dimension.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		rpm: NewWindowCounter(cfg.RequestsPerMinute, time.Minute),
		rpd: NewWindowCounter(cfg.RequestsPerDay, 24*time.Hour),
		tpm: NewWindowCounter(cfg.TokensPerMinute, time.Minute),
		tpd: NewWindowCounter(cfg.TokensPerDay, 24*time.Hour),
		now: time.Now,
	}
}

// CheckAdmission decides whether a request with the given token estimate
// may proceed. On allow, the request counters and token reservations are
// committed atomically with the check.
func (t *Tracker) CheckAdmission(estimatedTokens int64) Decision {
	if estimatedTokens < 0 {
		estimatedTokens = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	checks := []struct {
		counter *WindowCounter
		cost    int64
		reason  Reason
	}{
		{t.rpm, 1, ReasonRPMExceeded},
		{t.rpd, 1, ReasonRPDExceeded},
		{t.tpm, estimatedTokens, ReasonTPMExceeded},
		{t.tpd, estimatedTokens, ReasonTPDExceeded},
	}

	for _, c := range checks {
		if c.counter.WouldExceed(now, c.cost) {
			return Decision{
				Allowed:    false,
				Reason:     c.reason,
				Limit:      c.counter.limit,
				Used:       c.counter.Used(now),
				RetryAfter: c.counter.RetryAfter(now),
			}
		}
	}

	// All dimensions admit; commit the increments.
	t.rpm.Add(now, 1)
	t.rpd.Add(now, 1)
	t.tpm.Add(now, estimatedTokens)
	t.tpd.Add(now, estimatedTokens)

	return Decision{Allowed: true, Reason: ReasonOK}
}

// RecordUsage reconciles a prior reservation with the actual token cost of
// a completed request. Call it only after a successful downstream call,
// passing the same estimate that was given to CheckAdmission.
//
// When the estimate was high the difference is refunded; when it was low
// the shortfall is added. Either way the windows clamp at zero.
func (t *Tracker) RecordUsage(estimatedTokens, actualTokens int64) {
	if estimatedTokens < 0 {
		estimatedTokens = 0
	}
	if actualTokens < 0 {
		actualTokens = 0
	}

	delta := actualTokens - estimatedTokens
	if delta == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.tpm.Add(now, delta)
	t.tpd.Add(now, delta)
}

// Snapshot returns the current usage of every dimension.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	return Snapshot{
		TakenAt: now,
		Windows: []WindowUsage{
			t.usageLocked(t.rpm, DimensionRPM, now),
			t.usageLocked(t.rpd, DimensionRPD, now),
			t.usageLocked(t.tpm, DimensionTPM, now),
			t.usageLocked(t.tpd, DimensionTPD, now),
		},
	}
}

// SetLimits applies new limits, typically from a config reload. Usage in
// the current windows is preserved.
func (t *Tracker) SetLimits(cfg Config) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rpm.SetLimit(cfg.RequestsPerMinute)
	t.rpd.SetLimit(cfg.RequestsPerDay)
	t.tpm.SetLimit(cfg.TokensPerMinute)
	t.tpd.SetLimit(cfg.TokensPerDay)
}

// Restore loads window state from a persisted snapshot. Unknown dimensions
// are ignored; elapsed windows roll over on the next touch.
func (t *Tracker) Restore(snap Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, w := range snap.Windows {
		switch w.Dimension {
		case DimensionRPM:
			t.rpm.Restore(w.WindowStart, w.Used)
		case DimensionRPD:
			t.rpd.Restore(w.WindowStart, w.Used)
		case DimensionTPM:
			t.tpm.Restore(w.WindowStart, w.Used)
		case DimensionTPD:
			t.tpd.Restore(w.WindowStart, w.Used)
		}
	}
}

// usageLocked builds the usage view for one counter.
// Caller must hold the tracker mutex.
func (t *Tracker) usageLocked(w *WindowCounter, dim Dimension, now time.Time) WindowUsage {
	return WindowUsage{
		Dimension:    dim,
		Limit:        w.limit,
		Used:         w.Used(now),
		WindowStart:  w.windowStart,
		WindowLength: w.length,
	}
}
