// Package prometheus exports jobpool activity as Prometheus collectors.
package prometheus

import (
	"errors"
	"fmt"

	jp "github.com/azargarov/jobpool"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics implements jobpool.MetricsPolicy on top of Prometheus counters.
// Pass it to jobpool.NewPoolFromOptions.
type Metrics struct {
	pool string

	submitted        prom.Counter
	completed        prom.Counter
	aborted          prom.Counter
	doubleCompletion prom.Counter
}

var _ jp.MetricsPolicy = (*Metrics)(nil)

// NewMetrics registers the jobpool collectors on reg and returns a policy
// whose samples carry the given pool label. A nil reg means the default
// registerer. Registering twice on the same registry reuses the
// collectors.
func NewMetrics(namespace, pool string, reg prom.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "jobpool"
	}
	if pool == "" {
		pool = "default"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	jobs := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_total",
		Help:      "Jobs seen by the pool, by outcome.",
	}, []string{"pool", "outcome"})
	double := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "double_completion_total",
		Help:      "Rejected attempts to complete an already completed job.",
	}, []string{"pool"})

	var err error
	if jobs, err = registerCollector(reg, jobs); err != nil {
		return nil, err
	}
	if double, err = registerCollector(reg, double); err != nil {
		return nil, err
	}

	return &Metrics{
		pool:             pool,
		submitted:        jobs.WithLabelValues(pool, "submitted"),
		completed:        jobs.WithLabelValues(pool, "completed"),
		aborted:          jobs.WithLabelValues(pool, "aborted"),
		doubleCompletion: double.WithLabelValues(pool),
	}, nil
}

func (m *Metrics) IncSubmitted()        { m.submitted.Inc() }
func (m *Metrics) IncCompleted()        { m.completed.Inc() }
func (m *Metrics) IncAborted()          { m.aborted.Inc() }
func (m *Metrics) IncDoubleCompletion() { m.doubleCompletion.Inc() }

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prom.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("prometheus: collector type mismatch for %T", collector)
		}
		return existing, nil
	}
	return collector, err
}
