package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker guarding calls to the customer/contract directory.
// States: Closed (requests flow) → Open (fast-fail) → Half-Open (one probe).
// While the circuit is open, callers fall back to the last-synced local
// customer record instead of blocking on an unreachable directory.

// BreakerState is the current circuit state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig holds tunable parameters.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures to trip open
	SuccessThreshold int           // consecutive half-open successes to close
	OpenTimeout      time.Duration // how long to stay open before probing
}

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
	cfg       BreakerConfig
}

// NewCircuitBreaker creates a breaker in the Closed state.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{state: BreakerClosed, cfg: cfg}
}

// State returns the current state, transitioning open → half-open when the
// open timeout has elapsed. Used by the health endpoint.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = BreakerHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn through the breaker, returning ErrCircuitOpen immediately
// when the circuit is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == BreakerOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

// recordFailure must be called under lock.
func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.openedAt = time.Now()
	switch cb.state {
	case BreakerClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = BreakerOpen
			cb.successes = 0
		}
	case BreakerHalfOpen:
		// Probe failed — back to open for another timeout.
		cb.state = BreakerOpen
		cb.failures = 0
	}
}

// recordSuccess must be called under lock.
func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case BreakerClosed:
		cb.failures = 0
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = BreakerClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
