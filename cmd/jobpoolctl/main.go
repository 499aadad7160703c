// Command jobpoolctl runs a synthetic workload through a job pool and
// prints the resulting metrics. It is meant for tuning ThreadConfig
// files before shipping them with a game build.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	jp "github.com/azargarov/jobpool"
	jpprom "github.com/azargarov/jobpool/observability/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var bands = []jp.Priority{jp.Highest, jp.High, jp.Normal, jp.Low, jp.Lowest}

func main() {
	workers := flag.Int("workers", 4, "number of worker threads")
	jobs := flag.Int("jobs", 10000, "number of jobs to submit")
	failRatio := flag.Float64("fail", 0, "fraction of jobs that return an error")
	work := flag.Duration("work", 20*time.Microsecond, "busy time per job")
	configPath := flag.String("config", "", "thread config file (.toml, .yaml)")
	pin := flag.Bool("pin", false, "pin workers to CPUs (linux)")
	waitCycles := flag.Int("wait-cycles", 0, "use ShutdownNow with this many wait cycles instead of Shutdown")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2112")
	linger := flag.Duration("linger", 0, "keep serving metrics this long after the run")
	flag.Parse()

	ctx := context.Background()
	logger := lg.FromContext(ctx)

	cfg := jp.DefaultThreadConfig()
	if *configPath != "" {
		var err error
		if cfg, err = jp.LoadThreadConfig(*configPath); err != nil {
			logger.Error("load thread config", lg.Any("error", err))
			os.Exit(1)
		}
	}

	metrics := &jp.AtomicMetrics{}
	policy := tee{metrics}
	if *metricsAddr != "" {
		pm, err := jpprom.NewMetrics("jobpool", "jobpoolctl", nil)
		if err != nil {
			logger.Error("register metrics", lg.Any("error", err))
			os.Exit(1)
		}
		policy = append(policy, pm)

		http.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Error("metrics server", lg.Any("error", err))
			}
		}()
		logger.Info("serving metrics", lg.String("addr", *metricsAddr))
	}

	pool, err := jp.NewPoolFromOptions(policy, jp.Options{
		Workers:    *workers,
		Thread:     cfg,
		PinWorkers: *pin,
		Ctx:        ctx,
	})
	if err != nil {
		logger.Error("create pool", lg.Any("error", err))
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	errSynthetic := errors.New("synthetic failure")
	var latency atomic.Int64

	start := time.Now()
	for i := 0; i < *jobs; i++ {
		fail := rng.Float64() < *failRatio
		queuedAt := time.Now()
		job := jp.NewFuncJob(bands[i%len(bands)], func(context.Context) error {
			latency.Add(int64(time.Since(queuedAt)))
			spin(*work)
			if fail {
				return errSynthetic
			}
			return nil
		})
		if err := pool.Submit(job); err != nil {
			logger.Error("submit", lg.Any("error", err))
			os.Exit(1)
		}
	}

	aborted := 0
	if *waitCycles > 0 {
		aborted = pool.ShutdownNow(*waitCycles)
	} else {
		pool.Shutdown()
	}
	elapsed := time.Since(start)

	snap := metrics.Snapshot()
	fmt.Printf("workers=%d jobs=%d elapsed=%s\n", *workers, *jobs, elapsed)
	fmt.Printf("%s\n", snap)
	if done := snap.Completed + snap.Aborted; done > 0 {
		fmt.Printf("avg queue latency=%s\n", time.Duration(latency.Load()/int64(done)))
	}
	if aborted > 0 {
		fmt.Printf("force-aborted workers=%d\n", aborted)
	}
	for _, w := range pool.Workers() {
		fmt.Printf("worker %d: executed=%d state=%s\n", w.ID(), w.Executed(), w.State())
	}

	if *metricsAddr != "" && *linger > 0 {
		time.Sleep(*linger)
	}
}

// tee fans metrics out to several policies.
type tee []jp.MetricsPolicy

func (t tee) IncSubmitted() {
	for _, m := range t {
		m.IncSubmitted()
	}
}

func (t tee) IncCompleted() {
	for _, m := range t {
		m.IncCompleted()
	}
}

func (t tee) IncAborted() {
	for _, m := range t {
		m.IncAborted()
	}
}

func (t tee) IncDoubleCompletion() {
	for _, m := range t {
		m.IncDoubleCompletion()
	}
}

func spin(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
