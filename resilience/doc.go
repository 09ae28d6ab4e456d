// Package resilience protects outbound RPC calls to unreliable remote
// endpoints from cascading failure and resource exhaustion.
//
// This package implements common resilience patterns that can be composed
// together to guard a shared endpoint against overload.
//
// # Patterns
//
// The package provides the following resilience patterns:
//
//   - Circuit Breaker: Prevents cascading failures by failing fast once a
//     failure threshold is crossed inside a sliding window, then probing
//     for recovery after a cooldown.
//
//   - Retry: Automatically retries failed operations with bounded
//     exponential backoff and uniform jitter.
//
//   - Rate Limiter: Token bucket admission control with exact fractional
//     refill rates.
//
//   - Bulkhead: Caps simultaneous in-flight operations to isolate failure
//     domains. Admission never blocks; it rejects when full.
//
// # Usage
//
// Each pattern can be used independently or composed together:
//
//	// Create a circuit breaker
//	cb, err := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    Window:           time.Minute,
//	    Cooldown:         30 * time.Second,
//	})
//
//	// Create a retry policy
//	retry, err := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   100 * time.Millisecond,
//	    MaxDelay:    5 * time.Second,
//	    Multiplier:  2.0,
//	})
//
//	// Create a rate limiter
//	rl, err := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    Rate:     100, // tokens per second
//	    Capacity: 10,
//	})
//
//	// Compose patterns
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(rl),
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithRetry(retry),
//	)
//
//	err = executor.Execute(ctx, func(ctx context.Context) error {
//	    return callEndpoint(ctx)
//	})
//
// All components are safe for concurrent use; one instance is intended to
// be shared by every caller of the endpoint it protects.
package resilience
