package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/rpcshield/clock"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the endpoint recovered.
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

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of failures inside Window that opens
	// the circuit.
	// Default: 5
	FailureThreshold int

	// Window is the sliding window over which failures are counted.
	// Failures older than Window are pruned and no longer count.
	// Default: 60 seconds
	Window time.Duration

	// Cooldown is how long the circuit stays open before the next call is
	// allowed through as a half-open probe.
	// Default: 30 seconds
	Cooldown time.Duration

	// SuccessThreshold is the number of consecutive half-open successes
	// required to close the circuit.
	// Default: 1
	SuccessThreshold int

	// Clock is the time source for window pruning and cooldown checks.
	// Default: the system clock.
	Clock clock.Clock

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// CircuitBreaker is a three-state failure isolator with sliding-window
// failure counting.
//
// Failures and successes are recorded only for calls that were actually let
// through; calls rejected while open never touch the window. At most one
// probe is in flight while half-open.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu        sync.Mutex
	state     State
	failures  []time.Time
	successes int
	openedAt  time.Time
	forced    bool
	probing   bool
}

// NewCircuitBreaker creates a new circuit breaker. Zero-valued fields
// receive defaults; out-of-range values are rejected with ErrInvalidConfig.
func NewCircuitBreaker(config CircuitBreakerConfig) (*CircuitBreaker, error) {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.Window == 0 {
		config.Window = 60 * time.Second
	}
	if config.Cooldown == 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.SuccessThreshold == 0 {
		config.SuccessThreshold = 1
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}

	switch {
	case config.FailureThreshold < 1:
		return nil, fmt.Errorf("%w: FailureThreshold must be >= 1, got %d", ErrInvalidConfig, config.FailureThreshold)
	case config.Window < 0:
		return nil, fmt.Errorf("%w: Window must be >= 0, got %v", ErrInvalidConfig, config.Window)
	case config.Cooldown < 0:
		return nil, fmt.Errorf("%w: Cooldown must be >= 0, got %v", ErrInvalidConfig, config.Cooldown)
	case config.SuccessThreshold < 1:
		return nil, fmt.Errorf("%w: SuccessThreshold must be >= 1, got %d", ErrInvalidConfig, config.SuccessThreshold)
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}, nil
}

// Call runs the operation through the circuit breaker. The operation runs
// outside the breaker's lock.
func (cb *CircuitBreaker) Call(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterCall(err)
	return err
}

// IsOpen reports whether the circuit is currently open. It does not trigger
// the open-to-half-open transition; that happens on the next Call after the
// cooldown elapses.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state == StateOpen
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ForceOpen opens the circuit and pins it open: the automatic transition to
// half-open is suppressed until Close is called.
func (cb *CircuitBreaker) ForceOpen() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.forced = true
	cb.probing = false
	if cb.state != StateOpen {
		cb.openedAt = cb.config.Clock.Now()
		cb.setStateLocked(StateOpen)
	}
}

// Close unconditionally returns the circuit to closed, clearing all failure
// history, success counters, and the forced flag.
func (cb *CircuitBreaker) Close() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = nil
	cb.successes = 0
	cb.forced = false
	cb.probing = false
	cb.setStateLocked(StateClosed)
}

// Metrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.pruneLocked(cb.config.Clock.Now())

	return CircuitBreakerMetrics{
		State:                cb.state,
		FailuresInWindow:     len(cb.failures),
		ConsecutiveSuccesses: cb.successes,
		OpenedAt:             cb.openedAt,
		Forced:               cb.forced,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State                State
	FailuresInWindow     int
	ConsecutiveSuccesses int
	OpenedAt             time.Time
	Forced               bool
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		now := cb.config.Clock.Now()
		if cb.forced || now.Sub(cb.openedAt) < cb.config.Cooldown {
			return ErrCircuitOpen
		}
		// Cooldown elapsed; this call becomes the half-open probe.
		cb.successes = 0
		cb.setStateLocked(StateHalfOpen)
		cb.probing = true
		return nil

	case StateHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		return nil
	}

	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.config.Clock.Now()

	switch cb.state {
	case StateClosed:
		if err != nil {
			cb.failures = append(cb.failures, now)
			cb.pruneLocked(now)
			if len(cb.failures) >= cb.config.FailureThreshold {
				cb.openedAt = now
				cb.setStateLocked(StateOpen)
			}
		}

	case StateHalfOpen:
		cb.probing = false
		if err != nil {
			cb.successes = 0
			cb.openedAt = now
			cb.setStateLocked(StateOpen)
			return
		}
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.failures = nil
			cb.successes = 0
			cb.setStateLocked(StateClosed)
		}

	case StateOpen:
		// A call admitted earlier finished after the circuit was forced
		// open. Its outcome no longer matters.
	}
}

func (cb *CircuitBreaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-cb.config.Window)
	i := 0
	for i < len(cb.failures) && !cb.failures[i].After(cutoff) {
		i++
	}
	if i > 0 {
		cb.failures = append(cb.failures[:0], cb.failures[i:]...)
	}
}

func (cb *CircuitBreaker) setStateLocked(state State) {
	if cb.state == state {
		return
	}
	from := cb.state
	cb.state = state
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, state)
	}
}
