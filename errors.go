package jobpool

import (
	"errors"
)

var (
	// ErrInvalidWorkers is returned when a pool is created with a
	// non-positive worker count.
	ErrInvalidWorkers = errors.New("jobpool: worker count must be positive")

	// ErrNilJob is returned when a nil Job is submitted.
	ErrNilJob = errors.New("jobpool: job is nil")

	// ErrAlreadySubmitted is returned when the same job is submitted twice.
	ErrAlreadySubmitted = errors.New("jobpool: job already submitted")

	// ErrAddingCompleted is returned by WorkQueue.Add once CompleteAdding
	// has been called.
	ErrAddingCompleted = errors.New("jobpool: queue adding completed")

	// ErrInvalidPriority is returned for NaN priorities.
	ErrInvalidPriority = errors.New("jobpool: invalid priority")

	// ErrPoolClosed is returned when submitting to a pool that is shutting down.
	ErrPoolClosed = errors.New("jobpool: pool closed")

	// ErrAlreadyCompleted reports a second SignalCompletion on the same job.
	ErrAlreadyCompleted = errors.New("jobpool: job already completed")

	// ErrNonTerminalState reports SignalCompletion(NotCompleted).
	ErrNonTerminalState = errors.New("jobpool: completion state is not terminal")

	// ErrJobPanicked wraps a value recovered from a panicking job body.
	ErrJobPanicked = errors.New("jobpool: job panicked")

	// ErrAbortTimeout is returned by Worker.Abort when the worker is still
	// executing a job when the abort deadline expires.
	ErrAbortTimeout = errors.New("jobpool: worker did not stop before abort deadline")

	// ErrInvalidThreadConfig wraps the ThreadConfig field that failed
	// validation.
	ErrInvalidThreadConfig = errors.New("jobpool: invalid thread config")

	// ErrUnknownConfigFormat is returned by ParseThreadConfig and
	// LoadThreadConfig for formats other than TOML and YAML.
	ErrUnknownConfigFormat = errors.New("jobpool: unknown config format")
)
