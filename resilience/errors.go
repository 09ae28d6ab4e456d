package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrBulkheadFull is returned when the bulkhead is at capacity.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrRateLimited is returned when a non-blocking acquisition is denied.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrExceedsCapacity is returned when a token request can never be
	// satisfied because it is larger than the bucket capacity.
	ErrExceedsCapacity = errors.New("resilience: requested tokens exceed bucket capacity")

	// ErrInvalidConfig is returned by constructors for out-of-range
	// configuration values. Wrapped errors carry the offending field.
	ErrInvalidConfig = errors.New("resilience: invalid configuration")
)
