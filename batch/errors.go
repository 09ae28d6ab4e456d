package batch

import "errors"

// Sentinel errors for batch dispatch.
var (
	// ErrInvalidConfig is returned by New for missing or out-of-range
	// construction parameters.
	ErrInvalidConfig = errors.New("batch: invalid configuration")

	// ErrOutcomeMismatch is reported when a batch submission returns a
	// different number of outcomes than payloads. The whole batch is
	// treated as failed in that case.
	ErrOutcomeMismatch = errors.New("batch: outcome count does not match payload count")
)
