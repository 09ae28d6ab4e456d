package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the retry policy.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry, before jitter.
	// Default: 100ms
	BaseDelay time.Duration

	// Multiplier is the exponential backoff multiplier. Must be >= 1.0.
	// Default: 2.0
	Multiplier float64

	// JitterBound is the upper bound of the uniform random jitter added to
	// every computed delay. Zero disables jitter.
	JitterBound time.Duration

	// MaxDelay caps the pre-jitter delay between retries.
	// Default: 30s (or BaseDelay, whichever is larger)
	MaxDelay time.Duration

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep is the delay hook invoked between attempts. Tests substitute a
	// no-op or a virtual-clock advance.
	// Default: a timer that honors context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error

	// Rand returns a uniform value in [0, 1) used to scale JitterBound.
	// Default: math/rand/v2.
	Rand func() float64
}

// Retry implements bounded retry with exponential backoff and jitter.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry policy. Zero-valued fields receive defaults;
// out-of-range values are rejected with ErrInvalidConfig.
func NewRetry(config RetryConfig) (*Retry, error) {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay == 0 {
		config.BaseDelay = 100 * time.Millisecond
	}
	if config.Multiplier == 0 {
		config.Multiplier = 2.0
	}
	if config.MaxDelay == 0 {
		config.MaxDelay = 30 * time.Second
		if config.BaseDelay > config.MaxDelay {
			config.MaxDelay = config.BaseDelay
		}
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}
	if config.Rand == nil {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		config.Rand = rand.Float64
	}

	switch {
	case config.MaxAttempts < 1:
		return nil, fmt.Errorf("%w: MaxAttempts must be >= 1, got %d", ErrInvalidConfig, config.MaxAttempts)
	case config.BaseDelay < 0:
		return nil, fmt.Errorf("%w: BaseDelay must be >= 0, got %v", ErrInvalidConfig, config.BaseDelay)
	case config.Multiplier < 1.0:
		return nil, fmt.Errorf("%w: Multiplier must be >= 1.0, got %f", ErrInvalidConfig, config.Multiplier)
	case config.JitterBound < 0:
		return nil, fmt.Errorf("%w: JitterBound must be >= 0, got %v", ErrInvalidConfig, config.JitterBound)
	case config.MaxDelay < config.BaseDelay:
		return nil, fmt.Errorf("%w: MaxDelay must be >= BaseDelay, got %v < %v", ErrInvalidConfig, config.MaxDelay, config.BaseDelay)
	}

	return &Retry{config: config}, nil
}

// Execute runs the operation with retry logic.
//
// A non-retryable error is returned immediately without consuming the
// remaining attempts. When all attempts are exhausted the last error is
// returned unchanged. No delay is taken after the final failed attempt.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}

		if attempt >= r.config.MaxAttempts {
			break
		}

		// Delay is computed for the attempt about to run.
		delay := r.CalculateDelay(attempt + 1)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		if err := r.config.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// CalculateDelay returns the delay taken before the given attempt number.
// Attempt 1 has no delay. For attempt n >= 2 the delay is
// min(BaseDelay*Multiplier^(n-2), MaxDelay) plus uniform jitter in
// [0, JitterBound). Exposed so tests can assert exact schedules.
func (r *Retry) CalculateDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delay := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt-2))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	if r.config.JitterBound > 0 {
		delay += r.config.Rand() * float64(r.config.JitterBound)
	}

	return time.Duration(delay)
}

// Config returns the retry configuration with defaults applied.
func (r *Retry) Config() RetryConfig {
	return r.config
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
