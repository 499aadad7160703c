package jobpool_test

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	jp "github.com/azargarov/jobpool"
	"github.com/stretchr/testify/require"
)

var testThreadConfig = jp.ThreadConfig{
	SpinCycles:    100,
	YieldCycles:   100,
	NapCycles:     10,
	NapInterval:   1,
	SleepInterval: 2,
}

func newTestOptions(workers int) jp.Options {
	return jp.Options{
		Workers:             workers,
		Thread:              testThreadConfig,
		ShutdownPollInitial: time.Millisecond,
		ShutdownPollMax:     5 * time.Millisecond,
	}
}

func newTestPool(t *testing.T, workers int) (*jp.Pool[*jp.AtomicMetrics], *jp.AtomicMetrics) {
	t.Helper()
	return newTestPoolFromOptions(t, newTestOptions(workers))
}

func newTestPoolFromOptions(t *testing.T, opts jp.Options) (*jp.Pool[*jp.AtomicMetrics], *jp.AtomicMetrics) {
	t.Helper()

	m := &jp.AtomicMetrics{}
	p, err := jp.NewPoolFromOptions(m, opts)
	require.NoError(t, err)
	t.Cleanup(func() { p.ShutdownNow(10) })
	return p, m
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
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

func waitUntilB(b *testing.B, timeout time.Duration, cond func() bool) {
	b.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	b.Fatal("condition not satisfied before timeout")
}

func percentile(samples []int64, q float64) time.Duration {
	pos := int(float64(len(samples)-1) * q)
	return time.Duration(samples[pos])
}

func getenvInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func waitJob(t *testing.T, job interface {
	Wait(context.Context) (jp.CompletionState, error)
}) jp.CompletionState {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	state, err := job.Wait(ctx)
	require.NoError(t, err, "job did not complete")
	return state
}

// gate is a job that blocks its worker until released.
type gate struct {
	jp.JobBase
	started chan struct{}
	release chan struct{}
}

func newGate(prio jp.Priority) *gate {
	g := &gate{started: make(chan struct{}), release: make(chan struct{})}
	g.SetPriority(prio)
	return g
}

func (g *gate) Execute(context.Context) error {
	close(g.started)
	<-g.release
	return nil
}

func (g *gate) awaitStart(t *testing.T) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("gate job did not start")
	}
}

func (g *gate) open() { close(g.release) }

// recorder collects labels in execution order.
type recorder struct {
	mu  sync.Mutex
	got []string
}

func (r *recorder) job(label string, prio jp.Priority) *jp.FuncJob {
	return jp.NewFuncJob(prio, func(context.Context) error {
		r.mu.Lock()
		r.got = append(r.got, label)
		r.mu.Unlock()
		return nil
	})
}

func (r *recorder) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}
