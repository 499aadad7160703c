package jobpool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Worker pulls jobs from a shared WorkQueue on a dedicated OS thread.
//
// While the queue is empty the worker escalates through Spinning,
// Yielding, Napping and Sleeping according to its ThreadConfig. Any
// successful take resets it to Spinning.
type Worker struct {
	id    int
	cpu   int // -1 when not pinned
	queue *WorkQueue[Job]
	cfg   ThreadConfig
	top   PowerState
	exec  *executor

	state     atomic.Int32
	executed  atomic.Uint64
	idlePolls atomic.Uint64
	lastErr   atomic.Pointer[error]

	// cycles counts consecutive empty polls in the current state.
	// Owned by the worker goroutine.
	cycles int

	shutdown atomic.Bool
	aborted  atomic.Bool

	// wake cuts a nap or sleep short. It holds at most one pending
	// signal; shutdown and aborted are the lasting state.
	wake chan struct{}
	done chan struct{}
}

func newWorker(id, cpu int, q *WorkQueue[Job], cfg ThreadConfig, exec *executor) *Worker {
	w := &Worker{
		id:    id,
		cpu:   cpu,
		queue: q,
		cfg:   cfg,
		top:   cfg.MaxState(),
		exec:  exec,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	w.state.Store(int32(Spinning))
	return w
}

func (w *Worker) start() {
	go w.loop()
}

func (w *Worker) loop() {
	defer close(w.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if w.cpu >= 0 {
		if err := PinToCPU(w.cpu); err != nil {
			w.exec.reportInternalError(fmt.Errorf("jobpool: pin worker %d to cpu %d: %w", w.id, w.cpu, err))
		}
	}

	for !w.aborted.Load() {
		if job, ok := w.queue.TryTake(); ok {
			w.setState(Spinning)
			w.cycles = 0
			w.runJob(job)
			continue
		}
		if w.shutdown.Load() && w.queue.IsCompleted() {
			break
		}
		w.idle()
	}

	w.setState(Offline)
	lg.FromContext(w.exec.ctx).Info("worker offline",
		lg.Int("worker", w.id),
		lg.Any("executed", w.executed.Load()),
		lg.Any("aborted", w.aborted.Load()),
	)
}

func (w *Worker) runJob(job Job) {
	_, err := w.exec.run(job)
	if err != nil {
		w.lastErr.Store(&err)
	}
	w.executed.Add(1)
}

// idle performs one empty-poll step of the current state and escalates
// when the state's cycle budget is used up.
func (w *Worker) idle() {
	cur := w.State()
	switch cur {
	case Spinning:
	case Yielding:
		runtime.Gosched()
	case Napping:
		w.pause(w.cfg.napDuration())
	case Sleeping:
		w.pause(w.cfg.sleepDuration())
	}

	w.cycles++
	w.idlePolls.Add(1)
	if cur >= w.top {
		return
	}
	if w.cycles >= w.cfg.cyclesFor(cur) {
		w.setState(cur + 1)
		w.cycles = 0
	}
}

// pause sleeps for d unless the worker is told to stop.
func (w *Worker) pause(d time.Duration) {
	if d <= 0 {
		runtime.Gosched()
		return
	}
	timer := time.NewTimer(d)
	select {
	case <-timer.C:
	case <-w.wake:
		timer.Stop()
	}
}

func (w *Worker) setState(s PowerState) {
	if PowerState(w.state.Swap(int32(s))) != s {
		statTransition(s)
	}
}

func (w *Worker) signalWake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// ID returns the worker index within its pool.
func (w *Worker) ID() int { return w.id }

// State returns the current power state.
func (w *Worker) State() PowerState {
	return PowerState(w.state.Load())
}

// Executed returns the number of jobs this worker has run.
func (w *Worker) Executed() uint64 {
	return w.executed.Load()
}

// LastError returns the most recent error produced by a job on this
// worker, or nil.
func (w *Worker) LastError() error {
	if p := w.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Shutdown asks the worker to stop once its queue is both closed for
// adding and empty. It does not wait.
func (w *Worker) Shutdown() {
	w.shutdown.Store(true)
	w.signalWake()
}

// Abort stops the worker without draining the queue and waits for it to
// exit. A job that is already running is not interrupted; if it is still
// running when ctx ends, Abort returns ErrAbortTimeout and the worker
// exits as soon as the job returns.
func (w *Worker) Abort(ctx context.Context) error {
	w.aborted.Store(true)
	w.signalWake()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: worker %d: %w", ErrAbortTimeout, w.id, ctx.Err())
	}
}
