package runner

import (
	"time"

	"github.com/modelbench/client/pkg/client"
	"github.com/modelbench/client/pkg/collector"
	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/metrics"
	"go.uber.org/zap"
)

// lifecycle performs the submission call for one batch and classifies
// its result. One instance is shared by all dispatch workers of a run.
type lifecycle struct {
	client client.Client
	agg    *metrics.Aggregator
	coll   *collector.Collector // nil in sync mode
	async  bool
	total  int
}

// dispatch submits one batch. The returned bool is false when the batch
// was rejected without producing an outcome (empty batch).
//
// The recorded duration is that of the submission call in both modes:
// for async requests this understates the round trip, the true latency
// is tracked separately by the client's round-trip histogram.
func (l *lifecycle) dispatch(batch []dataset.Sample) (Outcome, bool) {
	if len(batch) == 0 {
		zap.S().Warnw("refusing to dispatch an empty batch")
		return Outcome{}, false
	}
	zap.S().Debugw("sending batch", "size", len(batch), "async", l.async)
	if l.async {
		return l.dispatchAsync(batch), true
	}
	return l.dispatchSync(batch), true
}

func (l *lifecycle) dispatchSync(batch []dataset.Sample) Outcome {
	start := time.Now()
	res, err := l.client.InferBatch(batch)
	l.agg.RecordDuration(time.Since(start))
	defer l.agg.ItemsProcessed(len(batch), l.total)
	if err != nil || res == nil {
		zap.S().Warnw("batch submission failed", "size", len(batch), "err", err)
		l.agg.IncFailure()
		return Outcome{Success: false, Reason: err}
	}
	l.agg.IncSuccess()
	return Outcome{Success: true}
}

// dispatchAsync hands the pending request to the collector, which owns
// it from then on. A successful outcome here means the submission
// succeeded; the resolution outcome is counted by the collector.
func (l *lifecycle) dispatchAsync(batch []dataset.Sample) Outcome {
	start := time.Now()
	p, err := l.client.InferBatchAsync(batch)
	l.agg.RecordDuration(time.Since(start))
	defer l.agg.ItemsProcessed(len(batch), l.total)
	if err != nil || p == nil {
		zap.S().Warnw("async batch submission failed", "size", len(batch), "err", err)
		l.agg.IncFailure()
		return Outcome{Success: false, Reason: err}
	}
	l.coll.Enqueue(p)
	return Outcome{Success: true}
}
