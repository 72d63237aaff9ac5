package queue

import "errors"

// Sentinel errors classified by workers to decide retry vs. dead-letter.
var (
	// ErrNoJobsAvailable is returned internally when a blocking pop times out
	// with nothing pending; workers treat it as a normal idle cycle, never logged
	// as an error.
	ErrNoJobsAvailable = errors.New("queue: no jobs available")

	// ErrMaxRetriesExceeded marks a job that exhausted its retry budget and was
	// moved to the dead list.
	ErrMaxRetriesExceeded = errors.New("queue: max retries exceeded")
)
