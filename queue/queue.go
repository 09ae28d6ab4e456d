package queue

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonwraymond/rpcshield/clock"
)

// Config configures the queue.
type Config struct {
	// MaxAttempts is the attempt budget per job. A job whose incremented
	// attempt count reaches this value is dropped rather than re-enqueued.
	// Default: 3
	MaxAttempts int

	// BaseBackoff is the backoff unit for the retry schedule: a job on its
	// Nth attempt becomes eligible after min(BaseBackoff*2^N, MaxBackoff).
	// Default: 1s
	BaseBackoff time.Duration

	// MaxBackoff caps the computed backoff delay.
	// Default: 2m
	MaxBackoff time.Duration

	// Clock is the time source for eligibility checks.
	// Default: the system clock.
	Clock clock.Clock

	// Dedup enables idempotency deduplication when set. Enqueue of a job
	// whose key has been seen is a silent no-op.
	Dedup DedupStore

	// Jitter transforms the computed backoff delay before scheduling.
	// Tests substitute an identity or fixed-offset function.
	// Default: identity (no jitter).
	Jitter func(d time.Duration) time.Duration

	// Events receives observability hooks.
	// Default: NopEvents.
	Events Events
}

// Queue is an ordered holding area for jobs with deterministic backoff
// scheduling. All operations serialize on one mutex, including the dedup
// check-and-mark, so two concurrent enqueues of the same idempotency key
// cannot both observe "not seen". Event hooks fire outside the lock.
type Queue struct {
	config Config

	mu   sync.Mutex
	jobs []Job
}

// New creates a queue. Zero-valued fields receive defaults; out-of-range
// values are rejected with ErrInvalidConfig.
func New(config Config) (*Queue, error) {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.BaseBackoff == 0 {
		config.BaseBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 2 * time.Minute
	}
	if config.Clock == nil {
		config.Clock = clock.Real{}
	}
	if config.Jitter == nil {
		config.Jitter = func(d time.Duration) time.Duration { return d }
	}
	if config.Events == nil {
		config.Events = NopEvents{}
	}

	switch {
	case config.MaxAttempts < 1:
		return nil, fmt.Errorf("%w: MaxAttempts must be >= 1, got %d", ErrInvalidConfig, config.MaxAttempts)
	case config.BaseBackoff < 0:
		return nil, fmt.Errorf("%w: BaseBackoff must be >= 0, got %v", ErrInvalidConfig, config.BaseBackoff)
	case config.MaxBackoff < config.BaseBackoff:
		return nil, fmt.Errorf("%w: MaxBackoff must be >= BaseBackoff, got %v < %v", ErrInvalidConfig, config.MaxBackoff, config.BaseBackoff)
	}

	return &Queue{config: config}, nil
}

// Enqueue appends a job. When a dedup store is attached and the job carries
// an idempotency key that has already been seen, the enqueue is a silent
// no-op; otherwise the key is recorded as seen. The check, the mark, and
// the append happen under one lock so concurrent enqueues of the same key
// cannot both land.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	if q.config.Dedup != nil && job.IdempotencyKey != "" {
		seen, err := q.config.Dedup.Seen(ctx, job.IdempotencyKey)
		if err != nil {
			q.mu.Unlock()
			return err
		}
		if seen {
			q.mu.Unlock()
			return nil
		}
		if err := q.config.Dedup.MarkSeen(ctx, job.IdempotencyKey); err != nil {
			q.mu.Unlock()
			return err
		}
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	q.config.Events.OnEnqueued(job.ID, job.Attempts, job.NextEligibleAt)
	return nil
}

// Dequeue removes and returns the first job, in insertion order, whose
// eligibility time has been reached. It returns false when no job is
// eligible; jobs that are not yet eligible are left in place untouched.
func (q *Queue) Dequeue() (Job, bool) {
	now := q.config.Clock.Now()

	q.mu.Lock()
	idx := -1
	for i, job := range q.jobs {
		if !job.NextEligibleAt.After(now) {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return Job{}, false
	}
	job := q.jobs[idx]
	q.jobs = append(q.jobs[:idx], q.jobs[idx+1:]...)
	q.mu.Unlock()

	q.config.Events.OnDequeued(job.ID, job.Attempts)
	return job, true
}

// RecordFailure routes a failed job back through the retry schedule. The
// job's attempt count is incremented; if the budget is spent the job is
// dropped and an exhaustion event fires, otherwise a new Job value is
// enqueued, eligible after min(BaseBackoff*2^attempts, MaxBackoff) passed
// through the jitter hook.
//
// The retry path bypasses deduplication: the job's idempotency key was
// recorded on first enqueue and must not suppress its own retries.
func (q *Queue) RecordFailure(job Job, cause error) {
	attempts := job.Attempts + 1

	if attempts >= q.config.MaxAttempts {
		q.config.Events.OnJobExhausted(job.ID, attempts, SanitizeError(cause))
		return
	}

	delay := q.backoff(attempts)
	next := job.retried(attempts, q.config.Clock.Now().Add(delay))

	q.mu.Lock()
	q.jobs = append(q.jobs, next)
	q.mu.Unlock()

	q.config.Events.OnEnqueued(next.ID, next.Attempts, next.NextEligibleAt)
}

// Acknowledge marks a dequeued job as done. The in-memory queue has already
// removed the job, so this is a hook reserved for durable backends; it
// exists so callers do not grow a backend-specific code path later.
func (q *Queue) Acknowledge(job Job) {
	q.config.Events.OnJobSuccess(job.ID)
}

// Len reports the number of jobs currently held, eligible or not.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) backoff(attempts int) time.Duration {
	d := time.Duration(float64(q.config.BaseBackoff) * math.Pow(2, float64(attempts)))
	if d > q.config.MaxBackoff || d < 0 {
		d = q.config.MaxBackoff
	}
	return q.config.Jitter(d)
}
