package batch

import "github.com/jonwraymond/rpcshield/queue"

// JobError pairs a failed job with its submission error.
type JobError struct {
	Job queue.Job
	Err error
}

// BatchResult is the outcome of one drain-and-dispatch cycle. The
// successful and failed sets are disjoint; their sizes sum to the number of
// jobs drained in the cycle.
type BatchResult struct {
	Successful []queue.Job
	Failed     []JobError
}

// SuccessCount returns the number of jobs that succeeded this cycle.
func (r BatchResult) SuccessCount() int {
	return len(r.Successful)
}

// FailureCount returns the number of jobs that failed this cycle.
func (r BatchResult) FailureCount() int {
	return len(r.Failed)
}

// Drained returns the total number of jobs processed this cycle.
func (r BatchResult) Drained() int {
	return len(r.Successful) + len(r.Failed)
}
