package jobpool

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quickConfig = ThreadConfig{SpinCycles: 50, YieldCycles: 50, NapCycles: 5, NapInterval: 1, SleepInterval: 2}

func newTestExecutor(t *testing.T) (*executor, *AtomicMetrics) {
	t.Helper()
	opts := Options{}
	opts.FillDefaults()
	m := &AtomicMetrics{}
	return newExecutor(opts, m), m
}

func startTestWorker(t *testing.T, cfg ThreadConfig) (*Worker, *WorkQueue[Job], *executor) {
	t.Helper()
	exec, _ := newTestExecutor(t)
	q := NewWorkQueue[Job]()
	w := newWorker(0, -1, q, cfg, exec)
	w.start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = w.Abort(ctx)
	})
	return w, q, exec
}

func submitTo(t *testing.T, exec *executor, q *WorkQueue[Job], job Job) {
	t.Helper()
	require.NoError(t, exec.admit(job))
	require.NoError(t, q.Add(job, job.Priority()))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

func TestWorkerEscalatesToSleeping(t *testing.T) {
	w, _, _ := startTestWorker(t, quickConfig)

	waitFor(t, 2*time.Second, func() bool { return w.State() == Sleeping })
}

func TestWorkerResetsToSpinningOnWork(t *testing.T) {
	w, q, exec := startTestWorker(t, quickConfig)
	waitFor(t, 2*time.Second, func() bool { return w.State() == Sleeping })

	running := make(chan struct{})
	release := make(chan struct{})
	job := NewFuncJob(Normal, func(context.Context) error {
		close(running)
		<-release
		return nil
	})
	submitTo(t, exec, q, job)

	<-running
	assert.Equal(t, Spinning, w.State())
	close(release)

	state, err := job.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Completed, state)

	// Idle again after the job: escalates from the start.
	waitFor(t, 2*time.Second, func() bool { return w.State() == Sleeping })
}

func TestWorkerHoldsAtLastEnabledState(t *testing.T) {
	tests := []struct {
		name string
		cfg  ThreadConfig
		want PowerState
	}{
		{"spinning", ThreadConfig{SpinCycles: Disabled}, Spinning},
		{"yielding", ThreadConfig{SpinCycles: 10, YieldCycles: Disabled}, Yielding},
		{"napping", ThreadConfig{SpinCycles: 10, YieldCycles: 10, NapCycles: Disabled, NapInterval: 1}, Napping},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, _, _ := startTestWorker(t, tc.cfg)

			waitFor(t, 2*time.Second, func() bool { return w.State() == tc.want })
			time.Sleep(30 * time.Millisecond)
			assert.Equal(t, tc.want, w.State())
		})
	}
}

func TestWorkerShutdownDrainsQueue(t *testing.T) {
	w, q, exec := startTestWorker(t, quickConfig)

	jobs := make([]*FuncJob, 20)
	for i := range jobs {
		jobs[i] = NewFuncJob(Priority(i), func(context.Context) error { return nil })
		submitTo(t, exec, q, jobs[i])
	}

	q.CompleteAdding()
	w.Shutdown()

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not go offline")
	}

	assert.Equal(t, Offline, w.State())
	assert.Equal(t, uint64(len(jobs)), w.Executed())
	for _, j := range jobs {
		assert.Equal(t, Completed, j.State())
	}
}

func TestWorkerShutdownWakesSleepingWorker(t *testing.T) {
	cfg := ThreadConfig{SpinCycles: 1, YieldCycles: 1, NapCycles: 1, NapInterval: 1, SleepInterval: 10_000}
	w, q, _ := startTestWorker(t, cfg)
	waitFor(t, 2*time.Second, func() bool { return w.State() == Sleeping })

	q.CompleteAdding()
	w.Shutdown()

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("sleeping worker ignored shutdown")
	}
}

func TestWorkerShutdownOnOpenQueueKeepsSleeping(t *testing.T) {
	cfg := ThreadConfig{SpinCycles: 1, YieldCycles: 1, NapCycles: 1, NapInterval: 1, SleepInterval: 10}
	w, _, _ := startTestWorker(t, cfg)
	waitFor(t, 2*time.Second, func() bool { return w.State() == Sleeping })

	// The queue stays open, so the worker must keep its sleep cadence
	// instead of polling flat out.
	w.Shutdown()
	before := w.idlePolls.Load()
	time.Sleep(100 * time.Millisecond)
	polls := w.idlePolls.Load() - before

	assert.LessOrEqual(t, polls, uint64(30), "worker polled %d times in 100ms", polls)
	assert.Equal(t, Sleeping, w.State())
	select {
	case <-w.Done():
		t.Fatal("worker exited with the queue still open")
	default:
	}
}

func TestWorkerAbortDoesNotDrain(t *testing.T) {
	w, q, exec := startTestWorker(t, quickConfig)

	running := make(chan struct{})
	release := make(chan struct{})
	blocker := NewFuncJob(Highest, func(context.Context) error {
		close(running)
		<-release
		return nil
	})
	pending := NewFuncJob(Lowest, func(context.Context) error { return nil })

	submitTo(t, exec, q, blocker)
	<-running
	submitTo(t, exec, q, pending)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.Abort(ctx)
	require.ErrorIs(t, err, ErrAbortTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-w.Done()

	assert.Equal(t, Offline, w.State())
	assert.Equal(t, Completed, blocker.State())
	assert.Equal(t, NotCompleted, pending.State())
	assert.Equal(t, 1, q.Len())
}

func TestWorkerRecordsLastError(t *testing.T) {
	w, q, exec := startTestWorker(t, quickConfig)
	assert.NoError(t, w.LastError())

	boom := errors.New("boom")
	failing := NewFuncJob(Normal, func(context.Context) error { return boom })
	panicking := NewFuncJob(Low, func(context.Context) error { panic("kaboom") })
	submitTo(t, exec, q, failing)
	submitTo(t, exec, q, panicking)

	waitFor(t, 2*time.Second, func() bool { return w.Executed() == 2 })

	assert.Equal(t, Aborted, failing.State())
	assert.Equal(t, Aborted, panicking.State())
	assert.ErrorIs(t, w.LastError(), ErrJobPanicked)
}
