package jobpool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// Pool is a fixed set of workers sharing one WorkQueue.
//
// Jobs are submitted with Submit and picked up by whichever worker polls
// the queue first, lowest priority value first. The pool stops accepting
// jobs once Shutdown or ShutdownNow has been called.
type Pool[M MetricsPolicy] struct {
	opts    Options
	queue   *WorkQueue[Job]
	workers []*Worker
	exec    *executor
	metrics M

	initialized atomic.Bool
}

// NewPool creates a pool of threadCount workers using cfg and atomic
// metrics. It fails with ErrInvalidWorkers when threadCount <= 0.
func NewPool(threadCount int, cfg ThreadConfig) (*Pool[*AtomicMetrics], error) {
	return NewPoolFromOptions(&AtomicMetrics{}, Options{
		Workers: threadCount,
		Thread:  cfg,
	})
}

// NewPoolFromOptions creates a pool and starts its workers.
func NewPoolFromOptions[M MetricsPolicy](metrics M, opts Options) (*Pool[M], error) {
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Pool[M]{
		opts:    opts,
		queue:   NewWorkQueue[Job](),
		workers: make([]*Worker, opts.Workers),
		metrics: metrics,
	}
	p.exec = newExecutor(opts, metrics)

	ncpu := runtime.NumCPU()
	for i := range p.workers {
		cpu := -1
		if opts.PinWorkers {
			cpu = i % ncpu
		}
		p.workers[i] = newWorker(i, cpu, p.queue, opts.Thread, p.exec)
	}
	for _, w := range p.workers {
		w.start()
	}

	lg.FromContext(opts.Ctx).Info("pool started",
		lg.Int("workers", opts.Workers),
		lg.Any("thread_config", opts.Thread),
		lg.Any("pinned", opts.PinWorkers),
	)
	return p, nil
}

// Submit queues job at its current priority.
//
// It fails with ErrNilJob for a nil job, ErrAlreadySubmitted when the
// job was queued before and ErrPoolClosed once shutdown has started.
func (p *Pool[M]) Submit(job Job) error {
	if err := p.exec.admit(job); err != nil {
		return err
	}
	if err := p.queue.Add(job, job.Priority()); err != nil {
		job.base().unbind()
		return fmt.Errorf("%w: %w", ErrPoolClosed, err)
	}
	p.metrics.IncSubmitted()
	return nil
}

// Dispatch is Submit.
func (p *Pool[M]) Dispatch(job Job) error { return p.Submit(job) }

// Shutdown stops accepting jobs and blocks until every queued job has
// run and every worker is Offline. There is no timeout. Continuations
// still waiting on a MainThreadQueue dispatcher run before it returns,
// so call it from the frame loop.
func (p *Pool[M]) Shutdown() {
	logger := lg.FromContext(p.opts.Ctx)
	logger.Info("pool shutting down", lg.Int("queued", p.queue.Len()))

	p.queue.CompleteAdding()
	for _, w := range p.workers {
		w.Shutdown()
	}
	for _, w := range p.workers {
		<-w.Done()
	}
	p.Update()

	logger.Info("pool stopped")
}

// ShutdownNow stops accepting jobs and gives the workers waitCycles
// polling cycles to drain the queue. Workers still running after that
// are aborted and jobs left in the queue are marked Aborted.
//
// It returns the number of workers that had to be aborted.
func (p *Pool[M]) ShutdownNow(waitCycles int) int {
	logger := lg.FromContext(p.opts.Ctx)

	p.queue.CompleteAdding()
	for _, w := range p.workers {
		w.Shutdown()
	}

	bo := boff.New(p.opts.ShutdownPollInitial, p.opts.ShutdownPollMax, time.Now().UnixNano())
	for cycle := 0; cycle < waitCycles; cycle++ {
		if p.allOffline() {
			p.Update()
			logger.Info("pool stopped", lg.Int("cycles", cycle))
			return 0
		}
		time.Sleep(bo.Next())
	}
	if p.allOffline() {
		p.Update()
		logger.Info("pool stopped", lg.Int("cycles", waitCycles))
		return 0
	}

	logger.Warn("graceful shutdown exceeded wait budget; aborting workers",
		lg.Int("cycles", waitCycles),
		lg.Int("queued", p.queue.Len()),
	)

	aborted := 0
	for _, w := range p.workers {
		if w.State() == Offline {
			continue
		}
		aborted++
		ctx, cancel := context.WithTimeout(context.Background(), p.opts.ShutdownPollMax)
		if err := w.Abort(ctx); err != nil {
			logger.Warn("worker still busy after abort", lg.Int("worker", w.ID()), lg.Any("error", err))
		}
		cancel()
	}

	abandoned := 0
	for {
		job, ok := p.queue.TryTake()
		if !ok {
			break
		}
		p.exec.abandon(job)
		abandoned++
	}
	p.Update()

	logger.Warn("pool force stopped",
		lg.Int("aborted_workers", aborted),
		lg.Int("abandoned_jobs", abandoned),
	)
	return aborted
}

func (p *Pool[M]) allOffline() bool {
	for _, w := range p.workers {
		if w.State() != Offline {
			return false
		}
	}
	return true
}

// Initialize is the frame-loop start hook. Workers already run after
// construction, so it only rejects a pool that has been shut down.
func (p *Pool[M]) Initialize() error {
	if p.queue.IsAddingCompleted() {
		return ErrPoolClosed
	}
	if p.initialized.CompareAndSwap(false, true) {
		lg.FromContext(p.opts.Ctx).Info("pool initialized", lg.Int("workers", len(p.workers)))
	}
	return nil
}

// Update runs the continuations waiting on the pool's dispatcher when it
// is a MainThreadQueue. Call it once per frame from the main loop.
func (p *Pool[M]) Update() {
	if mq, ok := p.opts.Dispatcher.(*MainThreadQueue); ok {
		mq.RunPending()
	}
}

// FixedUpdate does nothing: jobs run as soon as a worker takes them.
func (p *Pool[M]) FixedUpdate() {}

// Workers returns the pool's workers.
func (p *Pool[M]) Workers() []*Worker {
	out := make([]*Worker, len(p.workers))
	copy(out, p.workers)
	return out
}

// WorkerStates returns the current power state of every worker.
func (p *Pool[M]) WorkerStates() []PowerState {
	out := make([]PowerState, len(p.workers))
	for i, w := range p.workers {
		out[i] = w.State()
	}
	return out
}

func (p *Pool[M]) QueueLength() int { return p.queue.Len() }
func (p *Pool[M]) Metrics() M       { return p.metrics }
