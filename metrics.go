package jobpool

import (
	"fmt"
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the pool to report job activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted counts a job accepted by Submit.
	IncSubmitted()

	// IncCompleted counts a job that reached Completed.
	IncCompleted()

	// IncAborted counts a job that reached Aborted, including jobs
	// abandoned by a forced shutdown.
	IncAborted()

	// IncDoubleCompletion counts rejected SignalCompletion calls.
	IncDoubleCompletion()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	_         [56]byte // padding to avoid false sharing

	completed atomic.Uint64
	_         [56]byte

	aborted atomic.Uint64
	_       [56]byte

	doubleCompletion atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of AtomicMetrics.
type MetricsSnapshot struct {
	Submitted        uint64
	Completed        uint64
	Aborted          uint64
	DoubleCompletion uint64
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf("submitted=%d completed=%d aborted=%d double_completion=%d",
		s.Submitted, s.Completed, s.Aborted, s.DoubleCompletion)
}

func (m *AtomicMetrics) IncSubmitted()        { m.submitted.Add(1) }
func (m *AtomicMetrics) IncCompleted()        { m.completed.Add(1) }
func (m *AtomicMetrics) IncAborted()          { m.aborted.Add(1) }
func (m *AtomicMetrics) IncDoubleCompletion() { m.doubleCompletion.Add(1) }

// Submitted returns the number of accepted jobs.
func (m *AtomicMetrics) Submitted() uint64 { return m.submitted.Load() }

// Completed returns the number of jobs that finished successfully.
func (m *AtomicMetrics) Completed() uint64 { return m.completed.Load() }

// Aborted returns the number of failed or abandoned jobs.
func (m *AtomicMetrics) Aborted() uint64 { return m.aborted.Load() }

// Snapshot copies all counters. The copy is not atomic as a whole.
func (m *AtomicMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Submitted:        m.submitted.Load(),
		Completed:        m.completed.Load(),
		Aborted:          m.aborted.Load(),
		DoubleCompletion: m.doubleCompletion.Load(),
	}
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted()        {}
func (m *NoopMetrics) IncCompleted()        {}
func (m *NoopMetrics) IncAborted()          {}
func (m *NoopMetrics) IncDoubleCompletion() {}
