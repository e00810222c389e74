// Package governance is the request governance layer for AI API calls.
//
// # Overview
//
// The Facade is the single entry point the application depends on. It
// composes the quota tracker, the circuit breaker registry and the
// response cache into one call path:
//
//	cache lookup → quota admission → breaker-wrapped call → cache populate
//
// Quota denials and open circuits are returned as typed outcomes, never
// as errors: callers branch on Result.Outcome and use RetryAfter or the
// stale value to shape their response. Only the downstream call's own
// failure propagates as an error.
//
// # Usage
//
//	cfg, err := config.Load("governance.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	facade, err := governance.New(context.Background(), cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer facade.Shutdown(context.Background())
//
//	result, err := facade.Execute(ctx, "topic:algebra", "summaries", 800,
//		func(ctx context.Context) ([]byte, int64, error) {
//			return callModel(ctx, prompt)
//		})
//
// # Thread Safety
//
// All Facade methods are safe for concurrent use. Concurrent Execute
// calls for the same key and namespace collapse into a single downstream
// call; the followers share the leader's result.
package governance
