package quota

import "time"

// Dimension identifies one quota limit dimension.
type Dimension string

const (
	// DimensionRPM limits requests per minute.
	DimensionRPM Dimension = "rpm"

	// DimensionRPD limits requests per day.
	DimensionRPD Dimension = "rpd"

	// DimensionTPM limits tokens per minute.
	DimensionTPM Dimension = "tpm"

	// DimensionTPD limits tokens per day.
	DimensionTPD Dimension = "tpd"
)

// Reason explains an admission decision.
type Reason string

const (
	// ReasonOK means every dimension admitted the request.
	ReasonOK Reason = "ok"

	// ReasonRPMExceeded means the requests-per-minute window is exhausted.
	ReasonRPMExceeded Reason = "rpm_exceeded"

	// ReasonRPDExceeded means the requests-per-day window is exhausted.
	ReasonRPDExceeded Reason = "rpd_exceeded"

	// ReasonTPMExceeded means the tokens-per-minute window is exhausted.
	ReasonTPMExceeded Reason = "tpm_exceeded"

	// ReasonTPDExceeded means the tokens-per-day window is exhausted.
	ReasonTPDExceeded Reason = "tpd_exceeded"
)

// Config contains the per-dimension limits for a tracker.
// Zero values mean the dimension is not enforced.
type Config struct {
	// RequestsPerMinute limits requests in a rolling one-minute window.
	RequestsPerMinute int64

	// RequestsPerDay limits requests in a rolling one-day window.
	RequestsPerDay int64

	// TokensPerMinute limits tokens (prompt+completion) per minute.
	TokensPerMinute int64

	// TokensPerDay limits tokens per day.
	TokensPerDay int64
}

// Decision is the result of an admission check.
// Decisions are values, never errors: callers branch on Allowed and use
// Reason and RetryAfter to shape their response.
type Decision struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason names the first exhausted dimension, or ReasonOK.
	Reason Reason

	// Limit is the configured limit of the rejecting dimension.
	Limit int64

	// Used is the current usage of the rejecting dimension.
	Used int64

	// RetryAfter hints how long until the rejecting window resets.
	RetryAfter time.Duration
}

// WindowUsage reports the state of one dimension's window.
type WindowUsage struct {
	// Dimension is the limit dimension this window tracks.
	Dimension Dimension

	// Limit is the configured limit (0 = unenforced).
	Limit int64

	// Used is the usage accumulated in the current window.
	Used int64

	// WindowStart is when the current window began.
	WindowStart time.Time

	// WindowLength is the duration of the window.
	WindowLength time.Duration
}

// Snapshot is a point-in-time view of all four dimensions.
// It is what the administrative surface exposes and what the storage
// backends persist across restarts.
type Snapshot struct {
	// Windows holds one entry per configured dimension.
	Windows []WindowUsage

	// TakenAt is when the snapshot was taken.
	TakenAt time.Time
}
