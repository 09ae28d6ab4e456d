package batch

import (
	"context"
	"fmt"

	"github.com/jonwraymond/rpcshield/queue"
)

// Submitter is the boundary to the transport: it dispatches one payload and
// reports the outcome. Implementations perform network I/O and must honor
// ctx cancellation.
type Submitter interface {
	Submit(ctx context.Context, payload []byte) error
}

// BatchSubmitter is a Submitter that can also dispatch a group of payloads
// in one call. Outcomes are aligned by position with the input. The second
// return value reports a batch-level failure that produced no per-job
// outcomes; when it is non-nil every payload in the batch is considered
// failed.
type BatchSubmitter interface {
	Submitter
	SubmitBatch(ctx context.Context, payloads [][]byte) ([]error, error)
}

// Config configures the batcher.
type Config struct {
	// BatchSize is the maximum number of ready jobs drained per Dispatch.
	// Default: 10
	BatchSize int

	// Events receives batch and per-job observability hooks. Per-job
	// success events fire through Queue.Acknowledge; the batcher itself
	// fires batch-start, batch-complete, and per-job failure events.
	// Default: NopEvents.
	Events queue.Events
}

// Batcher drains ready jobs and dispatches them through the submission
// capability. Submission always happens outside the queue's lock.
type Batcher struct {
	config    Config
	queue     *queue.Queue
	submitter Submitter
	batcher   BatchSubmitter // nil when the capability is non-batching
}

// New creates a batcher over the given queue and submission capability.
// Batch support is detected here, once: a capability that does not
// implement BatchSubmitter is dispatched sequentially.
func New(q *queue.Queue, s Submitter, config Config) (*Batcher, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: queue is required", ErrInvalidConfig)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: submitter is required", ErrInvalidConfig)
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BatchSize < 0 {
		return nil, fmt.Errorf("%w: BatchSize must be >= 0, got %d", ErrInvalidConfig, config.BatchSize)
	}
	if config.Events == nil {
		config.Events = queue.NopEvents{}
	}

	b := &Batcher{
		config:    config,
		queue:     q,
		submitter: s,
	}
	if bs, ok := s.(BatchSubmitter); ok {
		b.batcher = bs
	}
	return b, nil
}

// Dispatch drains up to BatchSize ready jobs, submits them, and reconciles
// outcomes. Failures re-enter the queue's retry schedule; successes are
// acknowledged. An empty drain returns an empty result without touching the
// capability.
func (b *Batcher) Dispatch(ctx context.Context) BatchResult {
	jobs := b.drain()
	if len(jobs) == 0 {
		return BatchResult{}
	}

	b.config.Events.OnBatchStart(len(jobs))

	var result BatchResult
	if b.batcher != nil {
		result = b.dispatchBatch(ctx, jobs)
	} else {
		result = b.dispatchSequential(ctx, jobs)
	}

	for _, fj := range result.Failed {
		b.config.Events.OnJobFailure(fj.Job.ID, queue.SanitizeError(fj.Err))
		b.queue.RecordFailure(fj.Job, fj.Err)
	}
	for _, job := range result.Successful {
		b.queue.Acknowledge(job)
	}

	b.config.Events.OnBatchComplete(len(result.Successful), len(result.Failed))
	return result
}

func (b *Batcher) drain() []queue.Job {
	jobs := make([]queue.Job, 0, b.config.BatchSize)
	for len(jobs) < b.config.BatchSize {
		job, ok := b.queue.Dequeue()
		if !ok {
			break
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func (b *Batcher) dispatchBatch(ctx context.Context, jobs []queue.Job) BatchResult {
	payloads := make([][]byte, len(jobs))
	for i, job := range jobs {
		payloads[i] = job.Payload
	}

	outcomes, err := b.batcher.SubmitBatch(ctx, payloads)
	if err == nil && len(outcomes) != len(jobs) {
		err = fmt.Errorf("%w: got %d outcomes for %d jobs", ErrOutcomeMismatch, len(outcomes), len(jobs))
	}
	if err != nil {
		// The batch call failed before producing per-job outcomes; every
		// drained job is treated as failed.
		result := BatchResult{Failed: make([]JobError, len(jobs))}
		for i, job := range jobs {
			result.Failed[i] = JobError{Job: job, Err: err}
		}
		return result
	}

	var result BatchResult
	for i, job := range jobs {
		if outcomes[i] != nil {
			result.Failed = append(result.Failed, JobError{Job: job, Err: outcomes[i]})
		} else {
			result.Successful = append(result.Successful, job)
		}
	}
	return result
}

func (b *Batcher) dispatchSequential(ctx context.Context, jobs []queue.Job) BatchResult {
	var result BatchResult
	for _, job := range jobs {
		// One job failing must not stop the rest of the cycle.
		if err := b.submitter.Submit(ctx, job.Payload); err != nil {
			result.Failed = append(result.Failed, JobError{Job: job, Err: err})
			continue
		}
		result.Successful = append(result.Successful, job)
	}
	return result
}
