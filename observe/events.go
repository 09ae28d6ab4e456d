package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// EventsRecorder implements the queue's event hooks with OTel counters and
// structured logs. Error strings passed to it are already sanitized by the
// queue and batcher.
type EventsRecorder struct {
	logger Logger

	enqueued  metric.Int64Counter
	dequeued  metric.Int64Counter
	batches   metric.Int64Counter
	succeeded metric.Int64Counter
	failed    metric.Int64Counter
	exhausted metric.Int64Counter
}

// NewEventsRecorder creates a recorder on the given meter and logger.
func NewEventsRecorder(meter metric.Meter, logger Logger) (*EventsRecorder, error) {
	r := &EventsRecorder{logger: logger}

	var err error
	if r.enqueued, err = meter.Int64Counter(
		"queue.jobs.enqueued",
		metric.WithDescription("Jobs accepted into the queue"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create enqueued counter: %w", err)
	}
	if r.dequeued, err = meter.Int64Counter(
		"queue.jobs.dequeued",
		metric.WithDescription("Jobs handed to dispatch"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dequeued counter: %w", err)
	}
	if r.batches, err = meter.Int64Counter(
		"batch.dispatch.total",
		metric.WithDescription("Dispatch cycles started"),
		metric.WithUnit("{batch}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create batch counter: %w", err)
	}
	if r.succeeded, err = meter.Int64Counter(
		"queue.jobs.succeeded",
		metric.WithDescription("Jobs acknowledged after successful submission"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create success counter: %w", err)
	}
	if r.failed, err = meter.Int64Counter(
		"queue.jobs.failed",
		metric.WithDescription("Job submission failures"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}
	if r.exhausted, err = meter.Int64Counter(
		"queue.jobs.exhausted",
		metric.WithDescription("Jobs dropped after exhausting retry attempts"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create exhausted counter: %w", err)
	}

	return r, nil
}

func (r *EventsRecorder) OnEnqueued(jobID string, attempts int, nextEligibleAt time.Time) {
	ctx := context.Background()
	r.enqueued.Add(ctx, 1)
	r.logger.Debug(ctx, "job enqueued",
		Field{Key: "job_id", Value: jobID},
		Field{Key: "attempts", Value: attempts},
		Field{Key: "next_eligible_at", Value: nextEligibleAt.Format(time.RFC3339Nano)},
	)
}

func (r *EventsRecorder) OnDequeued(jobID string, attempts int) {
	ctx := context.Background()
	r.dequeued.Add(ctx, 1)
	r.logger.Debug(ctx, "job dequeued",
		Field{Key: "job_id", Value: jobID},
		Field{Key: "attempts", Value: attempts},
	)
}

func (r *EventsRecorder) OnBatchStart(jobCount int) {
	ctx := context.Background()
	r.batches.Add(ctx, 1)
	r.logger.Debug(ctx, "batch dispatch started",
		Field{Key: "job_count", Value: jobCount},
	)
}

func (r *EventsRecorder) OnBatchComplete(successCount, failureCount int) {
	ctx := context.Background()
	r.logger.Info(ctx, "batch dispatch complete",
		Field{Key: "success_count", Value: successCount},
		Field{Key: "failure_count", Value: failureCount},
	)
}

func (r *EventsRecorder) OnJobSuccess(jobID string) {
	ctx := context.Background()
	r.succeeded.Add(ctx, 1)
	r.logger.Debug(ctx, "job succeeded",
		Field{Key: "job_id", Value: jobID},
	)
}

func (r *EventsRecorder) OnJobFailure(jobID string, sanitizedError string) {
	ctx := context.Background()
	r.failed.Add(ctx, 1)
	r.logger.Warn(ctx, "job failed",
		Field{Key: "job_id", Value: jobID},
		Field{Key: "error", Value: sanitizedError},
	)
}

func (r *EventsRecorder) OnJobExhausted(jobID string, attempts int, sanitizedError string) {
	ctx := context.Background()
	r.exhausted.Add(ctx, 1)
	r.logger.Error(ctx, "job exhausted retry attempts",
		Field{Key: "job_id", Value: jobID},
		Field{Key: "attempts", Value: attempts},
		Field{Key: "error", Value: sanitizedError},
	)
}
