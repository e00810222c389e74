package breaker

import "errors"

// Sentinel errors for breaker-gated calls.
var (
	// ErrCircuitOpen is returned when the circuit is open and the
	// downstream call was not attempted.
	ErrCircuitOpen = errors.New("breaker: circuit is open")
)
