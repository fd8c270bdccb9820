package runner

import (
	"sync"

	"github.com/modelbench/client/pkg/client"
	"github.com/modelbench/client/pkg/collector"
	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/metrics"
	"github.com/modelbench/client/pkg/prom"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// Runner drives one benchmark workload: it batches the dataset, pushes
// every batch through the dispatch pool and aggregates the outcomes.
type Runner struct {
	cfg    Config
	client client.Client
	ds     dataset.Dataset
	agg    *metrics.Aggregator

	mu   sync.Mutex
	coll *collector.Collector // set while an async run is active
}

func New(cfg Config, cli client.Client, ds dataset.Dataset) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:    cfg,
		client: cli,
		ds:     ds,
		agg:    metrics.NewAggregator(),
	}, nil
}

// Aggregator exposes the run counters, e.g. for the status route.
func (r *Runner) Aggregator() *metrics.Aggregator {
	return r.agg
}

// InFlight reports the number of unresolved async requests; zero
// outside an async run.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.coll == nil {
		return 0
	}
	return r.coll.InFlight()
}

// Run executes the workload to completion and returns the submission
// durations in seconds, one per batch, in completion order. The
// returned slice is cleared from the runner, so a subsequent Run starts
// from an empty sequence. Success/failure counts stay available on the
// aggregator.
func (r *Runner) Run() []float64 {
	runID := xid.New().String()
	total := r.ds.Len()
	zap.S().Infow("starting client runner", "run", runID, "samples", total,
		"batchSize", r.cfg.BatchSize, "workers", r.cfg.Workers, "async", r.cfg.Async)

	span := opentracing.StartSpan("benchmark-run")
	span.SetTag("run", runID)
	defer span.Finish()

	lc := &lifecycle{
		client: r.client,
		agg:    r.agg,
		async:  r.cfg.Async,
		total:  total,
	}
	if r.cfg.Async {
		// the collector must be consuming before the first pending
		// request can exist
		coll := collector.New(r.agg, 0)
		coll.Start()
		lc.coll = coll
		r.mu.Lock()
		r.coll = coll
		r.mu.Unlock()
	}

	pool := NewPool(r.cfg.Workers, func(error) {
		r.agg.IncFailure()
	})

	it := dataset.NewIterator(r.ds, false)
	var handles []*TaskHandle
	Assemble(it, r.cfg.BatchSize, func(batch []dataset.Sample) {
		prom.BatchesSubmitted.Inc()
		handles = append(handles, pool.Submit(func() Outcome {
			bs := opentracing.StartSpan("batch-dispatch", opentracing.ChildOf(span.Context()))
			defer bs.Finish()
			out, _ := lc.dispatch(batch)
			return out
		}))
	})

	outcomes := pool.AwaitAll(handles)

	if lc.coll != nil {
		// all submission tasks are drained, so nothing can be enqueued
		// anymore; the collector still resolves everything queued
		lc.coll.Close()
		lc.coll.Wait()
		r.mu.Lock()
		r.coll = nil
		r.mu.Unlock()
	}

	success, failure := r.agg.Counts()
	if failure > 0 {
		zap.S().Warnw("run finished with failures", "failures", failure)
	}
	times := r.agg.TakeExecutionTimes()
	stats := metrics.Summarize(times)
	zap.S().Infow("finished client runner", "run", runID, "batches", len(outcomes),
		"success", success, "failure", failure,
		"p50", stats.P50, "p95", stats.P95, "p99", stats.P99, "max", stats.Max)
	return times
}
