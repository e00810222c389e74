// Package quota provides multi-window admission control for AI requests.
//
// # Overview
//
// The quota package mirrors the AI vendor's usage limits locally so that
// requests can be rejected before they consume downstream quota or budget.
// Four dimensions are tracked, each with its own fixed time window:
//
//   - Requests per minute (RPM)
//   - Requests per day (RPD)
//   - Tokens per minute (TPM)
//   - Tokens per day (TPD)
//
// # Usage
//
//	tracker := quota.NewTracker(quota.Config{
//	    RequestsPerMinute: 60,
//	    RequestsPerDay:    1500,
//	    TokensPerMinute:   100000,
//	    TokensPerDay:      2000000,
//	})
//
//	// Before calling the AI service
//	decision := tracker.CheckAdmission(estimatedTokens)
//	if !decision.Allowed {
//	    // decision.Reason names the exhausted dimension,
//	    // decision.RetryAfter hints when it admits again
//	}
//
//	// After a successful call
//	tracker.RecordUsage(estimatedTokens, actualTokens)
//
// # Token reservation
//
// Admission reserves the caller's token estimate in the token windows so
// that concurrent in-flight requests cannot collectively exceed TPM/TPD.
// RecordUsage reconciles the reservation with the actual cost; when the
// estimate was high the difference is refunded, clamped so a window's
// usage never drops below zero.
//
// # Thread Safety
//
// Tracker is safe for concurrent use. The admission check and the commit
// of its increments happen under a single tracker mutex so the
// deterministic RPM→RPD→TPM→TPD check order can never observe a partially
// committed admission.
package quota
