package jobpool

import (
	"context"
	"fmt"
)

// executor runs jobs inside a failure boundary and drives them to a
// terminal state. One executor is shared by all workers of a pool.
type executor struct {
	ctx             context.Context
	metrics         MetricsPolicy
	dispatcher      Dispatcher
	onJobError      func(Job, error)
	onInternalError func(error)
}

func newExecutor(opts Options, metrics MetricsPolicy) *executor {
	return &executor{
		ctx:             opts.Ctx,
		metrics:         metrics,
		dispatcher:      opts.Dispatcher,
		onJobError:      opts.OnJobError,
		onInternalError: opts.OnInternalError,
	}
}

// admit binds pool defaults to job before it is queued.
func (e *executor) admit(job Job) error {
	b := baseOf(job)
	if b == nil {
		return ErrNilJob
	}
	return b.bind(e.dispatcher, e.reportCompletionError)
}

// baseOf returns the JobBase of job, or nil for a nil job. A typed nil
// pointer panics inside the promoted base method.
func baseOf(job Job) (b *JobBase) {
	if job == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			b = nil
		}
	}()
	return job.base()
}

// run executes job and returns its final state together with the error
// produced by the body, if any.
//
// A job that did not signal completion itself is marked Completed on
// success and Aborted on error or panic.
func (e *executor) run(job Job) (CompletionState, error) {
	err := e.safeExecute(job)
	if err != nil {
		e.reportJobError(job, err)
	}

	if job.State() == NotCompleted {
		want := Completed
		if err != nil {
			want = Aborted
		}
		_ = job.SignalCompletion(want)
	}

	state := job.State()
	switch state {
	case Completed:
		e.metrics.IncCompleted()
	case Aborted:
		e.metrics.IncAborted()
	}
	return state, err
}

func (e *executor) safeExecute(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return job.Execute(e.ctx)
}

// abandon marks a job that will never run as Aborted.
func (e *executor) abandon(job Job) {
	if job.SignalCompletion(Aborted) == nil {
		e.metrics.IncAborted()
	}
}
