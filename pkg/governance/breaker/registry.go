package breaker

import "sync"

// Registry hands out one shared CircuitBreaker per dependency name.
//
// Re-requesting the same name always returns the same instance, so every
// concurrent caller of a dependency shares its failure accounting.
type Registry struct {
	defaults Config

	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry. The given config is applied to every
// breaker the registry creates.
func NewRegistry(defaults Config) *Registry {
	return &Registry{
		defaults: defaults,
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Get returns the breaker for the named dependency, creating it on first use.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check: another caller may have created it between locks.
	if cb, ok := r.breakers[name]; ok {
		return cb
	}

	cb = New(name, r.defaults)
	r.breakers[name] = cb
	return cb
}

// Statuses returns a snapshot of every breaker the registry has created.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	breakers := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		breakers = append(breakers, cb)
	}
	r.mu.RUnlock()

	statuses := make([]Status, 0, len(breakers))
	for _, cb := range breakers {
		statuses = append(statuses, cb.Status())
	}
	return statuses
}
