// Package queue provides a backoff-aware in-memory job queue with optional
// idempotency deduplication.
//
// A Job is an immutable unit of retryable work. Jobs become eligible for
// dequeue at their scheduled time; among equally eligible jobs, insertion
// order is preserved. RecordFailure re-schedules a failed job with
// exponential backoff, producing a new Job value rather than mutating the
// old one, and drops the job with an exhaustion event once its attempt
// budget is spent.
//
// Deduplication is delegated to an optional DedupStore: enqueuing a job
// whose idempotency key has already been seen is a silent no-op. Two
// implementations are provided, an in-process map and a Redis-backed store
// for multi-instance deployments.
//
// Jobs are not persisted across process restarts.
package queue
