package jobpool

import (
	"context"
	"time"
)

const (
	defaultShutdownPollInitial = time.Millisecond
	defaultShutdownPollMax     = 50 * time.Millisecond
)

// Options configure a Pool or a SingleThreadScheduler.
//
// Zero values are replaced with defaults in FillDefaults, except Workers:
// a pool must be given an explicit positive worker count.
type Options struct {
	// Workers is the number of worker goroutines, each locked to its own
	// OS thread. Ignored by SingleThreadScheduler.
	Workers int

	// Thread holds the idle backoff thresholds. The zero value selects
	// DefaultThreadConfig.
	Thread ThreadConfig

	// PinWorkers pins worker i to CPU i modulo runtime.NumCPU (Linux only).
	PinWorkers bool

	// Dispatcher runs completion callbacks of jobs that have none of
	// their own. Defaults to a new MainThreadQueue, drained by Update and
	// at the end of Shutdown. Set InlineDispatcher to run callbacks on
	// the worker that completed the job.
	Dispatcher Dispatcher

	// Ctx is passed to Job.Execute and carries the logger.
	Ctx context.Context

	// OnJobError is called after a job body returns an error or panics.
	OnJobError func(job Job, err error)

	// OnInternalError is called for failures not caused by a job body.
	OnInternalError func(err error)

	// ShutdownPollInitial and ShutdownPollMax bound the delay between
	// the wait cycles of ShutdownNow.
	ShutdownPollInitial time.Duration
	ShutdownPollMax     time.Duration

	// MaxJobsPerUpdate caps how many jobs SingleThreadScheduler.Update
	// runs. Zero means no cap.
	MaxJobsPerUpdate int
}

func (o *Options) FillDefaults() {
	if o.Thread == (ThreadConfig{}) {
		o.Thread = DefaultThreadConfig()
	}
	if o.Dispatcher == nil {
		o.Dispatcher = NewMainThreadQueue()
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.ShutdownPollInitial <= 0 {
		o.ShutdownPollInitial = defaultShutdownPollInitial
	}
	if o.ShutdownPollMax <= 0 {
		o.ShutdownPollMax = defaultShutdownPollMax
	}
	if o.ShutdownPollMax < o.ShutdownPollInitial {
		o.ShutdownPollMax = o.ShutdownPollInitial
	}
	if o.MaxJobsPerUpdate < 0 {
		o.MaxJobsPerUpdate = 0
	}
}

// Validate checks the options required by a Pool.
func (o *Options) Validate() error {
	if o.Workers <= 0 {
		return ErrInvalidWorkers
	}
	return o.Thread.Validate()
}
