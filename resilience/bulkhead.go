package resilience

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent operations.
	// Default: 10
	MaxConcurrent int

	// MaxQueueSize is accepted for forward compatibility but no queueing is
	// implemented: once MaxConcurrent slots are held, TryAcquire rejects
	// immediately regardless of this value.
	MaxQueueSize int
}

// Bulkhead caps the number of simultaneous in-flight operations. Admission
// either succeeds immediately or fails fast with ErrBulkheadFull; it never
// blocks.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu       sync.Mutex
	active   int
	rejected int64
}

// NewBulkhead creates a new bulkhead. Zero-valued fields receive defaults;
// out-of-range values are rejected with ErrInvalidConfig.
func NewBulkhead(config BulkheadConfig) (*Bulkhead, error) {
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = 10
	}

	switch {
	case config.MaxConcurrent < 0:
		return nil, fmt.Errorf("%w: MaxConcurrent must be >= 0, got %d", ErrInvalidConfig, config.MaxConcurrent)
	case config.MaxQueueSize < 0:
		return nil, fmt.Errorf("%w: MaxQueueSize must be >= 0, got %d", ErrInvalidConfig, config.MaxQueueSize)
	}

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}, nil
}

// TryAcquire takes a slot if one is free. Returns ErrBulkheadFull otherwise.
// The caller must call Release when done if TryAcquire returns nil.
func (b *Bulkhead) TryAcquire() error {
	if !b.sem.TryAcquire(1) {
		b.mu.Lock()
		b.rejected++
		b.mu.Unlock()
		return ErrBulkheadFull
	}

	b.mu.Lock()
	b.active++
	b.mu.Unlock()
	return nil
}

// Release returns a previously acquired slot. Releasing without a matching
// acquire is a no-op rather than a panic.
func (b *Bulkhead) Release() {
	b.mu.Lock()
	if b.active == 0 {
		b.mu.Unlock()
		return
	}
	b.active--
	b.mu.Unlock()

	b.sem.Release(1)
}

// Execute runs the operation within the bulkhead. The slot is released even
// if the operation fails or panics.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.TryAcquire(); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Stats returns current bulkhead statistics.
func (b *Bulkhead) Stats() BulkheadStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadStats{
		Active:        b.active,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Utilization:   float64(b.active) / float64(b.config.MaxConcurrent),
		Rejected:      b.rejected,
	}
}

// BulkheadStats contains bulkhead statistics.
type BulkheadStats struct {
	Active        int
	Available     int
	MaxConcurrent int
	Utilization   float64
	Rejected      int64
}
