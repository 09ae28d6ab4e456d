package queue

import "errors"

// Sentinel errors for queue operations.
var (
	// ErrInvalidConfig is returned by constructors for out-of-range
	// configuration values. Wrapped errors carry the offending field.
	ErrInvalidConfig = errors.New("queue: invalid configuration")
)
