package jobpool

import (
	"sync"

	"github.com/eapache/queue"
)

// Dispatcher runs completion callbacks. Game or UI code that must only be
// touched from its own loop uses a MainThreadQueue so callbacks never run
// on a worker.
type Dispatcher interface {
	Dispatch(fn func())
}

// InlineDispatcher runs callbacks immediately on the goroutine that
// completed the job.
type InlineDispatcher struct{}

func (InlineDispatcher) Dispatch(fn func()) { fn() }

// MainThreadQueue buffers callbacks until the owning loop calls RunPending.
type MainThreadQueue struct {
	mu sync.Mutex
	q  *queue.Queue
}

// NewMainThreadQueue returns an empty queue.
func NewMainThreadQueue() *MainThreadQueue {
	return &MainThreadQueue{q: queue.New()}
}

// Dispatch appends fn. Safe for concurrent use.
func (m *MainThreadQueue) Dispatch(fn func()) {
	m.mu.Lock()
	m.q.Add(fn)
	m.mu.Unlock()
}

// Len returns the number of pending callbacks.
func (m *MainThreadQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Length()
}

// RunPending runs, in FIFO order, the callbacks queued when it was
// called. Callbacks dispatched while it runs wait for the next call.
// It returns the number of callbacks run and must only be called from
// the owning loop.
func (m *MainThreadQueue) RunPending() int {
	m.mu.Lock()
	n := m.q.Length()
	m.mu.Unlock()

	for i := 0; i < n; i++ {
		m.mu.Lock()
		fn := m.q.Remove().(func())
		m.mu.Unlock()
		fn()
	}
	return n
}
