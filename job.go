package jobpool

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/google/uuid"
)

// CompletionState is the outcome of a job.
type CompletionState int32

const (
	NotCompleted CompletionState = iota
	Completed
	Aborted
)

// IsTerminal reports whether s is Completed or Aborted.
func (s CompletionState) IsTerminal() bool {
	return s == Completed || s == Aborted
}

func (s CompletionState) String() string {
	switch s {
	case NotCompleted:
		return "NotCompleted"
	case Completed:
		return "Completed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Job is a unit of work executed by exactly one worker.
//
// Implementations embed JobBase, which provides everything except
// Execute. Execute may run on any worker goroutine. Returning an error
// or panicking marks the job Aborted unless the body already called
// SignalCompletion itself.
type Job interface {
	Priority() Priority
	Execute(ctx context.Context) error
	State() CompletionState
	SignalCompletion(state CompletionState) error

	base() *JobBase
}

// JobBase carries the priority, identity and completion state of a job.
// The zero value is ready to use and runs at Normal priority until
// SetPriority is called.
//
// A JobBase must not be copied after first use.
type JobBase struct {
	initOnce sync.Once
	id       uuid.UUID
	done     chan struct{}

	prio      atomic.Uint64
	prioSet   atomic.Bool
	state     atomic.Int32
	submitted atomic.Bool

	mu         sync.Mutex
	callbacks  []func()
	dispatcher Dispatcher
	report     func(error)
	// boundDispatcher is set when dispatcher came from the pool rather
	// than from SetDispatcher.
	boundDispatcher bool
}

func (b *JobBase) base() *JobBase { return b }

func (b *JobBase) lazyInit() {
	b.initOnce.Do(func() {
		b.id = uuid.New()
		b.done = make(chan struct{})
	})
}

// ID returns a random identifier assigned on first use.
func (b *JobBase) ID() uuid.UUID {
	b.lazyInit()
	return b.id
}

// Priority returns the job priority. Jobs without an explicit priority
// run at Normal.
func (b *JobBase) Priority() Priority {
	if !b.prioSet.Load() {
		return Normal
	}
	return Priority(math.Float64frombits(b.prio.Load()))
}

// SetPriority changes the priority. It only has an effect before the job
// is submitted.
func (b *JobBase) SetPriority(p Priority) {
	b.prio.Store(math.Float64bits(float64(p)))
	b.prioSet.Store(true)
}

// SetDispatcher sets where completion callbacks run. Without one the
// pool's dispatcher is used.
func (b *JobBase) SetDispatcher(d Dispatcher) {
	b.mu.Lock()
	b.dispatcher = d
	b.boundDispatcher = false
	b.mu.Unlock()
}

// State returns the current completion state.
func (b *JobBase) State() CompletionState {
	return CompletionState(b.state.Load())
}

// IsCompleted reports whether the job reached a terminal state.
func (b *JobBase) IsCompleted() bool {
	return b.State().IsTerminal()
}

// Done is closed when the job reaches a terminal state.
func (b *JobBase) Done() <-chan struct{} {
	b.lazyInit()
	return b.done
}

// Wait blocks until the job completes or ctx is done.
func (b *JobBase) Wait(ctx context.Context) (CompletionState, error) {
	select {
	case <-b.Done():
		return b.State(), nil
	case <-ctx.Done():
		return b.State(), ctx.Err()
	}
}

// OnComplete registers fn to run once the job completes. fn is handed to
// the job's dispatcher, never run on the completing worker directly
// unless the dispatcher does so. Registering on a completed job
// dispatches fn immediately.
func (b *JobBase) OnComplete(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	if !b.State().IsTerminal() {
		b.callbacks = append(b.callbacks, fn)
		b.mu.Unlock()
		return
	}
	d := b.dispatcher
	b.mu.Unlock()
	dispatchOn(d, fn)
}

// SignalCompletion moves the job from NotCompleted to state.
//
// Only the first call succeeds. Later calls and calls with a
// non-terminal state change nothing; they are reported to the owning
// pool and returned as ErrAlreadyCompleted or ErrNonTerminalState.
func (b *JobBase) SignalCompletion(state CompletionState) error {
	b.lazyInit()

	if !state.IsTerminal() {
		err := fmt.Errorf("%w: job %s: %s", ErrNonTerminalState, b.id, state)
		b.reportError(err)
		return err
	}
	if !b.state.CompareAndSwap(int32(NotCompleted), int32(state)) {
		err := fmt.Errorf("%w: job %s is %s, got %s", ErrAlreadyCompleted, b.id, b.State(), state)
		b.reportError(err)
		return err
	}
	close(b.done)

	b.mu.Lock()
	cbs := b.callbacks
	b.callbacks = nil
	d := b.dispatcher
	b.mu.Unlock()

	for _, fn := range cbs {
		dispatchOn(d, fn)
	}
	return nil
}

// bind attaches pool defaults. It fails if the job was already submitted.
func (b *JobBase) bind(d Dispatcher, report func(error)) error {
	b.lazyInit()
	if !b.submitted.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: job %s", ErrAlreadySubmitted, b.id)
	}
	b.mu.Lock()
	if b.dispatcher == nil {
		b.dispatcher = d
		b.boundDispatcher = true
	}
	b.report = report
	b.mu.Unlock()
	return nil
}

// unbind undoes bind after a rejected submit so the job can be handed
// to another pool.
func (b *JobBase) unbind() {
	b.mu.Lock()
	if b.boundDispatcher {
		b.dispatcher = nil
		b.boundDispatcher = false
	}
	b.report = nil
	b.mu.Unlock()
	b.submitted.Store(false)
}

func (b *JobBase) reportError(err error) {
	b.mu.Lock()
	report := b.report
	b.mu.Unlock()

	if report != nil {
		report(err)
		return
	}
	lg.FromContext(context.Background()).Error("job completion error", lg.Any("error", err))
}

func dispatchOn(d Dispatcher, fn func()) {
	if d == nil {
		d = InlineDispatcher{}
	}
	d.Dispatch(fn)
}

// FuncJob adapts a function to the Job interface.
type FuncJob struct {
	JobBase
	fn func(ctx context.Context) error
}

// NewFuncJob returns a job running fn at priority prio.
func NewFuncJob(prio Priority, fn func(ctx context.Context) error) *FuncJob {
	j := &FuncJob{fn: fn}
	j.SetPriority(prio)
	return j
}

func (j *FuncJob) Execute(ctx context.Context) error {
	return j.fn(ctx)
}
