package jobpool

import (
	"fmt"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Scheduler is the surface a frame loop drives.
//
// Initialize is called once before the first frame, Update once per
// frame, FixedUpdate once per fixed step and Shutdown when the
// application exits.
type Scheduler interface {
	Initialize() error
	Update()
	FixedUpdate()
	Shutdown()
	Submit(job Job) error
}

var (
	_ Scheduler = (*Pool[*AtomicMetrics])(nil)
	_ Scheduler = (*SingleThreadScheduler[*AtomicMetrics])(nil)
)

// SingleThreadScheduler runs jobs on the goroutine that calls Update,
// in priority order. It suits platforms or tests where jobs must not
// leave the main loop.
type SingleThreadScheduler[M MetricsPolicy] struct {
	opts    Options
	queue   *WorkQueue[Job]
	exec    *executor
	metrics M
}

// NewSingleThreadScheduler returns a scheduler that executes jobs during
// Update. opts.Workers and the thread config are ignored.
func NewSingleThreadScheduler[M MetricsPolicy](metrics M, opts Options) *SingleThreadScheduler[M] {
	opts.FillDefaults()
	return &SingleThreadScheduler[M]{
		opts:    opts,
		queue:   NewWorkQueue[Job](),
		exec:    newExecutor(opts, metrics),
		metrics: metrics,
	}
}

func (s *SingleThreadScheduler[M]) Initialize() error {
	if s.queue.IsAddingCompleted() {
		return ErrPoolClosed
	}
	return nil
}

func (s *SingleThreadScheduler[M]) Submit(job Job) error {
	if err := s.exec.admit(job); err != nil {
		return err
	}
	if err := s.queue.Add(job, job.Priority()); err != nil {
		job.base().unbind()
		return fmt.Errorf("%w: %w", ErrPoolClosed, err)
	}
	s.metrics.IncSubmitted()
	return nil
}

// Update runs up to MaxJobsPerUpdate queued jobs, then the pending
// continuations of a MainThreadQueue dispatcher.
func (s *SingleThreadScheduler[M]) Update() {
	s.drain(s.opts.MaxJobsPerUpdate)
	if mq, ok := s.opts.Dispatcher.(*MainThreadQueue); ok {
		mq.RunPending()
	}
}

func (s *SingleThreadScheduler[M]) FixedUpdate() {}

// Shutdown stops accepting jobs and runs everything still queued.
func (s *SingleThreadScheduler[M]) Shutdown() {
	s.queue.CompleteAdding()
	n := s.drain(0)
	if mq, ok := s.opts.Dispatcher.(*MainThreadQueue); ok {
		mq.RunPending()
	}
	lg.FromContext(s.opts.Ctx).Info("single thread scheduler stopped", lg.Int("drained", n))
}

// drain runs queued jobs until the queue is empty or limit jobs ran.
// A limit of zero means no limit.
func (s *SingleThreadScheduler[M]) drain(limit int) int {
	n := 0
	for limit == 0 || n < limit {
		job, ok := s.queue.TryTake()
		if !ok {
			break
		}
		s.exec.run(job)
		n++
	}
	return n
}

func (s *SingleThreadScheduler[M]) QueueLength() int { return s.queue.Len() }
func (s *SingleThreadScheduler[M]) Metrics() M       { return s.metrics }
