package governance

import (
	"context"
	"time"

	"github.com/arnav-156/KnowAllEdge-sub002/pkg/governance/quota"
)

// ComputeFunc is the downstream call the facade governs. It returns the
// serialized result and the number of tokens the call actually consumed.
type ComputeFunc func(ctx context.Context) (value []byte, tokensConsumed int64, err error)

// Outcome classifies how a governed request resolved.
type Outcome string

const (
	// OutcomeHit means the value was served from cache; no quota was
	// consumed and the downstream dependency was not touched.
	OutcomeHit Outcome = "hit"

	// OutcomeComputed means the downstream call ran and succeeded; the
	// value was cached and usage recorded.
	OutcomeComputed Outcome = "computed"

	// OutcomeQuotaExceeded means admission was denied. Result.Reason names
	// the exhausted dimension and Result.RetryAfter hints when to retry.
	OutcomeQuotaExceeded Outcome = "quota_exceeded"

	// OutcomeDegraded means the circuit for the dependency is open. When
	// stale data was available, Result.Value carries it and Stale is true.
	OutcomeDegraded Outcome = "degraded"
)

// Result is the typed outcome of one Execute call.
type Result struct {
	// Outcome classifies the resolution.
	Outcome Outcome

	// Value is the response payload. Set on OutcomeHit and
	// OutcomeComputed, and on OutcomeDegraded when stale data was found.
	Value []byte

	// Stale is true when Value was served past its TTL or from a
	// previous cache generation.
	Stale bool

	// Reason names the exhausted quota dimension on OutcomeQuotaExceeded.
	Reason quota.Reason

	// Limit is the configured limit of the rejecting dimension.
	Limit int64

	// Used is the usage of the rejecting dimension at denial time.
	Used int64

	// RetryAfter hints how long until the rejecting window resets.
	RetryAfter time.Duration
}
