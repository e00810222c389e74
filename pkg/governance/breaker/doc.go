// Package breaker provides circuit breaking for downstream AI dependencies.
//
// # Overview
//
// A circuit breaker wraps a blocking downstream call and tracks consecutive
// failures and successes to decide whether the dependency is healthy:
//
//   - CLOSED: calls pass through; consecutive failures trip the breaker.
//   - OPEN: calls fail immediately with ErrCircuitOpen, sparing the
//     dependency; after the configured timeout the next attempt probes.
//   - HALF_OPEN: one trial call at a time; enough consecutive successes
//     close the circuit, any failure reopens it.
//
// Breakers are identified by the name of the dependency they guard. Use a
// Registry so every concurrent caller of the same dependency shares one
// instance and its accounting:
//
//	reg := breaker.NewRegistry(breaker.Config{
//	    FailureThreshold: 5,
//	    Timeout:          60 * time.Second,
//	    SuccessThreshold: 2,
//	})
//
//	cb := reg.Get("ai-text")
//	err := cb.Call(ctx, func(ctx context.Context) error {
//	    return callModel(ctx)
//	})
//	if errors.Is(err, breaker.ErrCircuitOpen) {
//	    // degrade: serve stale cache, canned response, etc.
//	}
//
// # Thread Safety
//
// All operations, including the manual overrides ForceOpen, ForceClose and
// Reset, are safe against concurrent in-flight calls. State transitions
// happen only under the breaker mutex; the wrapped call itself runs outside
// it so a slow dependency never blocks state inspection.
package breaker
