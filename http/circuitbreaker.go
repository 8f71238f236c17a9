package http

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal state where requests are allowed.
	CircuitClosed CircuitState = iota
	// CircuitOpen is the state where requests fail fast.
	CircuitOpen
	// CircuitHalfOpen lets a single probe request through.
	CircuitHalfOpen
)

// String returns the string representation of a circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures circuit breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive transient failures that open the circuit.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before a probe is allowed.
	RecoveryTimeout time.Duration
}

// DefaultBreakerConfig returns the defaults used for youtube.com.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

type circuit struct {
	state    CircuitState
	failures int
	changed  time.Time
	probing  bool
}

// CircuitBreaker fails fast for a host after repeated transient failures.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	circuits map[string]*circuit
	now      func() time.Time
}

// NewCircuitBreaker creates a circuit breaker. Zero config fields take defaults.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = def.RecoveryTimeout
	}
	return &CircuitBreaker{
		cfg:      cfg,
		circuits: make(map[string]*circuit),
		now:      time.Now,
	}
}

// Allow returns ErrCircuitOpen when requests to host should not be sent.
func (cb *CircuitBreaker) Allow(host string) error {
	if cb == nil {
		return nil
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(host)
	switch c.state {
	case CircuitOpen:
		if cb.now().Sub(c.changed) < cb.cfg.RecoveryTimeout {
			return ErrCircuitOpen
		}
		c.state = CircuitHalfOpen
		c.changed = cb.now()
		c.probing = true
		return nil
	case CircuitHalfOpen:
		if c.probing {
			return ErrCircuitOpen
		}
		c.probing = true
		return nil
	default:
		return nil
	}
}

// RecordSuccess closes the circuit for host.
func (cb *CircuitBreaker) RecordSuccess(host string) {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(host)
	if c.state != CircuitClosed {
		c.changed = cb.now()
	}
	c.state = CircuitClosed
	c.failures = 0
	c.probing = false
}

// RecordFailure counts a transient failure against host. A non-transient
// error during a half-open probe still settles the probe: an answer from the
// host closes the circuit, a cancelled probe leaves it half-open for the next
// request.
func (cb *CircuitBreaker) RecordFailure(host string, err error) {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(host)
	if !IsTransient(err) {
		if c.state == CircuitHalfOpen && c.probing {
			c.probing = false
			if hostAnswered(err) {
				c.state = CircuitClosed
				c.failures = 0
				c.changed = cb.now()
			}
		}
		return
	}

	c.failures++
	c.probing = false
	switch c.state {
	case CircuitHalfOpen:
		c.state = CircuitOpen
		c.changed = cb.now()
	case CircuitClosed:
		if c.failures >= cb.cfg.FailureThreshold {
			c.state = CircuitOpen
			c.changed = cb.now()
		}
	}
}

// hostAnswered reports whether err carries an HTTP response from the host.
func hostAnswered(err error) bool {
	var httpErr *HTTPError
	return IsRateLimited(err) || errors.As(err, &httpErr)
}

// State returns the current state of host's circuit.
func (cb *CircuitBreaker) State(host string) CircuitState {
	if cb == nil {
		return CircuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[host]
	if !ok {
		return CircuitClosed
	}
	if c.state == CircuitOpen && cb.now().Sub(c.changed) >= cb.cfg.RecoveryTimeout {
		return CircuitHalfOpen
	}
	return c.state
}

// get must be called with mu held.
func (cb *CircuitBreaker) get(host string) *circuit {
	c, ok := cb.circuits[host]
	if !ok {
		c = &circuit{state: CircuitClosed, changed: cb.now()}
		cb.circuits[host] = c
	}
	return c
}
