package jobpool

import (
	"context"
	"sync/atomic"
)

// ResultJob is a JobBase with a result slot. Embed it in jobs that
// produce a value and call SetResult from Execute.
type ResultJob[T any] struct {
	JobBase
	result atomic.Pointer[T]
}

// SetResult stores v. Intended to be called from Execute.
func (r *ResultJob[T]) SetResult(v T) {
	r.result.Store(&v)
}

// Result returns the last value passed to SetResult, or the zero value.
// It is meaningful once the job is completed; an Aborted job keeps
// whatever was set before the failure, so check State as well.
func (r *ResultJob[T]) Result() T {
	if p := r.result.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Await blocks until the job completes or ctx is done and returns the
// result together with the completion state.
func (r *ResultJob[T]) Await(ctx context.Context) (T, CompletionState, error) {
	state, err := r.Wait(ctx)
	if err != nil {
		var zero T
		return zero, state, err
	}
	return r.Result(), state, nil
}

// Then registers a continuation receiving the result and final state.
// It runs on the job's dispatcher exactly once.
func (r *ResultJob[T]) Then(fn func(T, CompletionState)) {
	if fn == nil {
		return
	}
	r.OnComplete(func() {
		fn(r.Result(), r.State())
	})
}

// Task is a result-producing job built from a function.
type Task[T any] struct {
	ResultJob[T]
	fn func(ctx context.Context) (T, error)
}

// NewTask returns a task running fn at priority prio. The value returned
// by fn is stored even when fn also returns an error.
func NewTask[T any](prio Priority, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{fn: fn}
	t.SetPriority(prio)
	return t
}

func (t *Task[T]) Execute(ctx context.Context) error {
	v, err := t.fn(ctx)
	t.SetResult(v)
	return err
}
