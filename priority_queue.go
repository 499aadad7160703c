package jobpool

// item is a queued value together with the data the heap orders by.
type item[T any] struct {
	value T

	// prio is the priority supplied to Add.
	prio Priority

	// seq is the arrival number. Equal priorities pop in arrival order.
	seq uint64

	// index is maintained by container/heap.
	index int
}

// priorityHeap is a min-heap on (prio, seq).
type priorityHeap[T any] []*item[T]

func (pq priorityHeap[T]) Len() int { return len(pq) }

func (pq priorityHeap[T]) Less(i, j int) bool {
	if pq[i].prio != pq[j].prio {
		return pq[i].prio < pq[j].prio
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityHeap[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityHeap[T]) Push(x any) {
	it := x.(*item[T])
	it.index = len(*pq)
	*pq = append(*pq, it)
}

func (pq *priorityHeap[T]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*pq = old[:n-1]
	return it
}
