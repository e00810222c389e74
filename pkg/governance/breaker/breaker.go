package breaker

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through normally.
	StateClosed State = iota
	// StateOpen means calls fail immediately without reaching downstream.
	StateOpen
	// StateHalfOpen means the breaker is probing for recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips
	// a closed circuit. Default: 5.
	FailureThreshold int

	// Timeout is how long an open circuit waits after the last failure
	// before allowing a probe. Default: 60 seconds.
	Timeout time.Duration

	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit. Default: 2.
	SuccessThreshold int

	// OnStateChange is called after every state transition, outside the
	// breaker mutex. Used for logging and metrics.
	OnStateChange func(name string, from, to State)
}

// withDefaults fills in zero fields.
func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	return c
}

// Status is a point-in-time view of a breaker for the admin surface.
type Status struct {
	// Name identifies the downstream dependency.
	Name string

	// State is the current circuit state.
	State State

	// Failures is the consecutive failure count.
	Failures int

	// Successes is the consecutive half-open success count.
	Successes int

	// LastFailure is when the most recent counted failure happened.
	LastFailure time.Time
}

// CircuitBreaker guards one named downstream dependency.
//
// The open→half-open transition is lazy: it happens on the first call
// attempt after the timeout has elapsed, not on a timer. Half-open admits
// a single in-flight probe; concurrent callers see ErrCircuitOpen until
// the probe resolves.
type CircuitBreaker struct {
	name   string
	config Config

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailure   time.Time
	probeInFlight bool

	// now is swapped in tests.
	now func() time.Time
}

// New creates a circuit breaker for the named dependency.
// Prefer Registry.Get so concurrent callers share accounting.
func New(name string, config Config) *CircuitBreaker {
	return &CircuitBreaker{
		name:   name,
		config: config.withDefaults(),
		state:  StateClosed,
		now:    time.Now,
	}
}

// Name returns the dependency name this breaker guards.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Call runs op through the circuit breaker.
//
// When the circuit is open, Call returns ErrCircuitOpen without invoking
// op. Otherwise op's own error (if any) is counted against the breaker
// and returned unchanged.
func (cb *CircuitBreaker) Call(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterCall(err)
	return err
}

// State returns the current circuit state, applying the lazy open→half-open
// transition if the timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	state, transition := cb.currentStateLocked()
	cb.mu.Unlock()

	cb.notify(transition)
	return state
}

// Status returns a snapshot of the breaker for observability.
func (cb *CircuitBreaker) Status() Status {
	cb.mu.Lock()
	state, transition := cb.currentStateLocked()
	status := Status{
		Name:        cb.name,
		State:       state,
		Failures:    cb.failures,
		Successes:   cb.successes,
		LastFailure: cb.lastFailure,
	}
	cb.mu.Unlock()

	cb.notify(transition)
	return status
}

// ForceOpen trips the circuit regardless of its current state.
// In-flight calls complete and are counted as usual.
func (cb *CircuitBreaker) ForceOpen() {
	cb.mu.Lock()
	transition := cb.setStateLocked(StateOpen)
	cb.lastFailure = cb.now()
	cb.mu.Unlock()

	cb.notify(transition)
}

// ForceClose closes the circuit and clears both counters.
func (cb *CircuitBreaker) ForceClose() {
	cb.mu.Lock()
	transition := cb.setStateLocked(StateClosed)
	cb.failures = 0
	cb.successes = 0
	cb.mu.Unlock()

	cb.notify(transition)
}

// Reset returns the breaker to its initial closed state.
func (cb *CircuitBreaker) Reset() {
	cb.ForceClose()
}

// beforeCall decides whether a call may proceed and claims the half-open
// probe slot when applicable.
func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	state, transition := cb.currentStateLocked()

	var err error
	switch state {
	case StateOpen:
		err = ErrCircuitOpen
	case StateHalfOpen:
		if cb.probeInFlight {
			// A probe is already testing the dependency.
			err = ErrCircuitOpen
		} else {
			cb.probeInFlight = true
		}
	}
	cb.mu.Unlock()

	cb.notify(transition)
	return err
}

// afterCall records the call outcome and drives state transitions.
func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()

	var transition *stateChange
	switch cb.state {
	case StateClosed:
		if err != nil {
			cb.failures++
			cb.lastFailure = cb.now()
			if cb.failures >= cb.config.FailureThreshold {
				transition = cb.setStateLocked(StateOpen)
			}
		} else {
			cb.failures = 0
		}

	case StateHalfOpen:
		cb.probeInFlight = false
		if err != nil {
			cb.lastFailure = cb.now()
			cb.successes = 0
			transition = cb.setStateLocked(StateOpen)
		} else {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.failures = 0
				cb.successes = 0
				transition = cb.setStateLocked(StateClosed)
			}
		}

	case StateOpen:
		// A call that was in flight when ForceOpen fired. Count failures
		// so lastFailure stays fresh; successes change nothing.
		if err != nil {
			cb.lastFailure = cb.now()
		}
	}
	cb.mu.Unlock()

	cb.notify(transition)
}

// stateChange captures a transition for out-of-lock notification.
type stateChange struct {
	from, to State
}

// currentStateLocked applies the lazy open→half-open transition.
// Caller must hold the mutex.
func (cb *CircuitBreaker) currentStateLocked() (State, *stateChange) {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) >= cb.config.Timeout {
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.probeInFlight = false
		return cb.state, &stateChange{from: StateOpen, to: StateHalfOpen}
	}
	return cb.state, nil
}

// setStateLocked records a transition. Caller must hold the mutex.
func (cb *CircuitBreaker) setStateLocked(state State) *stateChange {
	if cb.state == state {
		return nil
	}
	change := &stateChange{from: cb.state, to: state}
	cb.state = state
	if state == StateHalfOpen {
		cb.probeInFlight = false
	}
	return change
}

// notify invokes the OnStateChange hook outside the mutex.
func (cb *CircuitBreaker) notify(change *stateChange) {
	if change != nil && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, change.from, change.to)
	}
}
