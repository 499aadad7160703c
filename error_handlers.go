package jobpool

import (
	"fmt"

	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError reports a failure that is not the result of a job
// body, such as a rejected SignalCompletion or a failed CPU pin.
//
// It is logged and forwarded to Options.OnInternalError when set.
func (e *executor) reportInternalError(err error) {
	lg.FromContext(e.ctx).Error("internal error", lg.Any("error", err))
	if e.onInternalError != nil {
		e.onInternalError(err)
	}
}

// reportCompletionError is the JobBase report hook installed on submit.
func (e *executor) reportCompletionError(err error) {
	e.metrics.IncDoubleCompletion()
	e.reportInternalError(err)
}

// reportJobError reports an error returned by a job or produced by
// panic recovery. Job errors never stop a worker.
func (e *executor) reportJobError(job Job, err error) {
	lg.FromContext(e.ctx).Error("job failed",
		lg.String("job_id", job.base().ID().String()),
		lg.String("job_type", fmt.Sprintf("%T", job)),
		lg.Any("error", err),
	)
	if e.onJobError != nil {
		e.onJobError(job, err)
	}
}
