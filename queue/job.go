package queue

import (
	"time"

	"github.com/google/uuid"
)

// Job is one unit of retryable work. The payload is opaque to the engine;
// only the scheduling fields are interpreted.
//
// Jobs are immutable by replacement: a retry produces a new Job value with
// an incremented attempt count and a recomputed eligibility time, never a
// mutation of a value already handed to a caller.
type Job struct {
	// ID uniquely identifies the job and is stable across retries.
	ID string

	// Payload is the opaque submission body.
	Payload []byte

	// Metadata carries non-sensitive annotations. It must never contain
	// payload contents or credentials; it crosses the observability
	// boundary verbatim.
	Metadata map[string]string

	// Attempts counts failed submission attempts so far.
	Attempts int

	// NextEligibleAt is the earliest time the job may be dequeued. The
	// zero value means immediately eligible.
	NextEligibleAt time.Time

	// IdempotencyKey deduplicates logically identical submissions when the
	// queue has a DedupStore attached. Empty means no deduplication.
	IdempotencyKey string
}

// NewJob creates an immediately eligible job with a generated ID.
func NewJob(payload []byte) Job {
	return Job{
		ID:      uuid.NewString(),
		Payload: payload,
	}
}

// WithIdempotencyKey returns a copy of the job with the given key.
func (j Job) WithIdempotencyKey(key string) Job {
	j.IdempotencyKey = key
	return j
}

// WithMetadata returns a copy of the job with the given annotation added.
// The metadata map is copied, not shared.
func (j Job) WithMetadata(key, value string) Job {
	md := make(map[string]string, len(j.Metadata)+1)
	for k, v := range j.Metadata {
		md[k] = v
	}
	md[key] = value
	j.Metadata = md
	return j
}

// retried returns the successor value scheduled at the given time. The ID
// and payload carry over; only the scheduling fields change.
func (j Job) retried(attempts int, at time.Time) Job {
	j.Attempts = attempts
	j.NextEligibleAt = at
	return j
}
