// Package jobpool provides a priority-aware job scheduler for frame-driven
// applications such as game engines.
//
// Architecture overview
//
// The scheduler is composed of three loosely coupled layers:
//
//  1. Queueing (WorkQueue)
//     A priority queue shared by all producers and all workers. Lower
//     priority values are taken first; equal priorities are taken in
//     arrival order. Taking never blocks.
//
//  2. Execution (Pool / Worker)
//     Each worker is a goroutine locked to its own OS thread that polls
//     the queue. Jobs run inside a recover boundary so a failing job
//     never takes down its worker.
//
//  3. Job lifecycle (Job / JobBase / Task)
//     Every job reaches exactly one terminal state, Completed or Aborted.
//     Completion callbacks are handed to a Dispatcher, typically a
//     MainThreadQueue drained by the frame loop.
//
// Idle backoff
//
// Workers do not park on a condition variable. An idle worker escalates
// through four power states while the queue stays empty:
//
//	Spinning -> Yielding -> Napping -> Sleeping
//
// Spinning polls with no delay, Yielding calls runtime.Gosched, Napping and
// Sleeping sleep for the configured intervals. The number of empty polls
// spent in each state comes from ThreadConfig. Taking a job resets the
// worker to Spinning. This trades some CPU for low wake-up latency under
// light load.
//
// Shutdown
//
// Shutdown closes the queue for adding and waits, without a timeout, for
// the workers to drain it. ShutdownNow waits a bounded number of polling
// cycles and then aborts the workers that are still running; jobs left in
// the queue are marked Aborted so nobody waits on them forever.
//
// Error handling
//
// The pool distinguishes between two classes of errors:
//
//   - Job errors: returned by job bodies or produced by panic recovery
//   - Internal errors: double completion, failed CPU pinning
//
// Both are logged and reported through the optional handlers in Options.
// Neither stops a worker.
package jobpool
