package jobpool

import (
	"container/heap"
	"math"
	"sync"
	"sync/atomic"
)

const (
	initialQueueCapacity = 256
)

// WorkQueue is a priority-ordered queue shared by many producers and
// many consumers.
//
// Consumers never block: TryTake reports false on an empty queue and the
// caller decides how to wait. After CompleteAdding the queue rejects new
// items but already queued items remain available to TryTake.
type WorkQueue[T any] struct {
	mu   sync.Mutex
	pq   priorityHeap[T]
	next uint64

	// size mirrors pq.Len() so idle consumers can probe without the lock.
	size atomic.Int64

	addingCompleted atomic.Bool
}

// NewWorkQueue returns an empty queue accepting items.
func NewWorkQueue[T any]() *WorkQueue[T] {
	q := &WorkQueue[T]{}
	q.pq = make(priorityHeap[T], 0, initialQueueCapacity)
	heap.Init(&q.pq)
	return q
}

// Add inserts v with priority prio.
//
// It fails with ErrAddingCompleted once CompleteAdding has been called
// and with ErrInvalidPriority for NaN priorities.
func (q *WorkQueue[T]) Add(v T, prio Priority) error {
	if math.IsNaN(float64(prio)) {
		return ErrInvalidPriority
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.addingCompleted.Load() {
		return ErrAddingCompleted
	}
	heap.Push(&q.pq, &item[T]{value: v, prio: prio, seq: q.next})
	q.next++
	q.size.Add(1)
	return nil
}

// TryTake removes and returns the item with the lowest priority value.
// It returns false when the queue is empty.
func (q *WorkQueue[T]) TryTake() (T, bool) {
	var zero T
	if q.size.Load() == 0 {
		return zero, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pq.Len() == 0 {
		return zero, false
	}
	it := heap.Pop(&q.pq).(*item[T])
	q.size.Add(-1)
	return it.value, true
}

// CompleteAdding marks the queue as closed for additions. It is idempotent.
func (q *WorkQueue[T]) CompleteAdding() {
	q.mu.Lock()
	q.addingCompleted.Store(true)
	q.mu.Unlock()
}

// IsAddingCompleted reports whether CompleteAdding has been called.
func (q *WorkQueue[T]) IsAddingCompleted() bool {
	return q.addingCompleted.Load()
}

// IsCompleted reports whether adding is completed and the queue is drained.
// Once true it stays true.
func (q *WorkQueue[T]) IsCompleted() bool {
	return q.addingCompleted.Load() && q.size.Load() == 0
}

// Len returns the number of queued items.
func (q *WorkQueue[T]) Len() int {
	return int(q.size.Load())
}
