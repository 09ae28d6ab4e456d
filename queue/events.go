package queue

import "time"

// Events is the observability boundary exposed by the queue and the batch
// dispatcher. Every field is non-sensitive: job identifiers, attempt counts,
// and error text already passed through SanitizeError. Payload contents must
// never cross this boundary.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: hooks must be best-effort and must not panic.
type Events interface {
	// OnEnqueued fires when a job enters the queue, including re-entry
	// through the retry path.
	OnEnqueued(jobID string, attempts int, nextEligibleAt time.Time)

	// OnDequeued fires when a job is handed to a consumer.
	OnDequeued(jobID string, attempts int)

	// OnBatchStart fires at the beginning of a dispatch cycle.
	OnBatchStart(jobCount int)

	// OnBatchComplete fires at the end of a dispatch cycle.
	OnBatchComplete(successCount, failureCount int)

	// OnJobSuccess fires for each job whose submission succeeded.
	OnJobSuccess(jobID string)

	// OnJobFailure fires for each job whose submission failed and which
	// re-entered the retry path.
	OnJobFailure(jobID string, sanitizedError string)

	// OnJobExhausted fires when a job is dropped after spending its attempt
	// budget. It is distinct from OnJobFailure: an exhausted job will not
	// be retried again.
	OnJobExhausted(jobID string, attempts int, sanitizedError string)
}

// NopEvents is an Events implementation that does nothing.
type NopEvents struct{}

func (NopEvents) OnEnqueued(string, int, time.Time)  {}
func (NopEvents) OnDequeued(string, int)             {}
func (NopEvents) OnBatchStart(int)                   {}
func (NopEvents) OnBatchComplete(int, int)           {}
func (NopEvents) OnJobSuccess(string)                {}
func (NopEvents) OnJobFailure(string, string)        {}
func (NopEvents) OnJobExhausted(string, int, string) {}

var _ Events = NopEvents{}
