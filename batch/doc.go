// Package batch drains ready jobs from a queue and dispatches them through
// a submission capability, reconciling partial success and failure.
//
// The capability is either a plain Submitter (jobs dispatched one at a
// time, a failure on one job never stops the rest of the cycle) or a
// BatchSubmitter (one batch call, per-job outcomes aligned by position).
// Which path is used is resolved once at construction, not per call.
//
// Failed jobs are routed back into the queue's retry schedule; successful
// jobs are acknowledged. Each Dispatch returns a BatchResult whose
// successful and failed sets are disjoint and together account for every
// job drained that cycle.
package batch
