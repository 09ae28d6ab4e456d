package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/rpcshield/clock"
)

// RateLimiterConfig configures the token bucket rate limiter.
type RateLimiterConfig struct {
	// Rate is the token refill rate per second. Fractional rates are
	// supported exactly (0.5 means one token every two seconds).
	// Default: 100
	Rate float64

	// Capacity is the maximum number of tokens the bucket holds.
	// Default: 10
	Capacity int

	// Clock is the time source used for refill accounting.
	// Default: the system clock.
	Clock clock.Clock

	// Sleep is the delay hook used by the blocking Acquire path.
	// Default: a timer that honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RateLimiter implements a token bucket. The bucket starts full; tokens
// accumulate as a float so fractional rates refill exactly rather than
// rounding to whole-second grants.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter. Zero-valued fields receive
// defaults; out-of-range values are rejected with ErrInvalidConfig.
func NewRateLimiter(config RateLimiterConfig) (*RateLimiter, error) {
	if config.Rate == 0 {
		config.Rate = 100
	}
	if config.Capacity == 0 {
		config.Capacity = 10
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	switch {
	case config.Rate < 0:
		return nil, fmt.Errorf("%w: Rate must be >= 0, got %f", ErrInvalidConfig, config.Rate)
	case config.Capacity < 0:
		return nil, fmt.Errorf("%w: Capacity must be >= 0, got %d", ErrInvalidConfig, config.Capacity)
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Capacity),
		lastRefill: config.Clock.Now(),
	}, nil
}

// TryAcquire attempts to take one token without blocking.
func (rl *RateLimiter) TryAcquire() bool {
	return rl.TryAcquireN(1)
}

// TryAcquireN attempts to take n tokens without blocking. A request larger
// than the bucket capacity can never succeed and always returns false.
func (rl *RateLimiter) TryAcquireN(n int) bool {
	if n < 1 || n > rl.config.Capacity {
		return false
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens >= float64(n) {
		rl.tokens -= float64(n)
		return true
	}

	return false
}

// Acquire blocks until one token is available or ctx is cancelled.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	return rl.AcquireN(ctx, 1)
}

// AcquireN blocks until n tokens are available or ctx is cancelled. It polls
// TryAcquireN roughly once per refill interval (1/Rate seconds). Requesting
// more than Capacity tokens is rejected with ErrExceedsCapacity rather than
// blocking forever.
func (rl *RateLimiter) AcquireN(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: n must be >= 1, got %d", ErrInvalidConfig, n)
	}
	if n > rl.config.Capacity {
		return fmt.Errorf("%w: requested %d, capacity %d", ErrExceedsCapacity, n, rl.config.Capacity)
	}

	interval := time.Duration(float64(time.Second) / rl.config.Rate)

	for {
		if rl.TryAcquireN(n) {
			return nil
		}
		if err := rl.config.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// Tokens reports the currently available tokens. A refill is applied first
// so the report never lags behind elapsed time.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Capacity returns the configured bucket capacity.
func (rl *RateLimiter) Capacity() int {
	return rl.config.Capacity
}

func (rl *RateLimiter) refillLocked() {
	now := rl.config.Clock.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed <= 0 {
		return
	}
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() * rl.config.Rate
	if rl.tokens > float64(rl.config.Capacity) {
		rl.tokens = float64(rl.config.Capacity)
	}
}
