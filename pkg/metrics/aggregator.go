package metrics

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// progress is logged every time roughly this fraction of the total
// items has been processed since the last report; this keeps the number
// of progress lines near ten per run regardless of workload size
const progressReportFraction = 0.1

// Aggregator is the single piece of shared mutable state of a run:
// success/failure counters, the recorded submission durations and the
// progress state. Every mutation happens under one mutex, so no update
// is lost and no progress line is emitted twice.
//
// An Aggregator is owned by its Runner and passed to worker tasks by
// pointer; there is no package-level instance.
type Aggregator struct {
	mu sync.Mutex

	success int
	failure int

	processed   int
	sinceReport int

	execTimes []float64
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) IncSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.success++
}

func (a *Aggregator) IncFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failure++
}

func (a *Aggregator) Counts() (success, failure int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.success, a.failure
}

// RecordDuration appends one submission-call duration, in seconds.
// Entries land in completion order, not submission order.
func (a *Aggregator) RecordDuration(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.execTimes = append(a.execTimes, d.Seconds())
}

// ExecutionCount returns the number of durations recorded so far.
func (a *Aggregator) ExecutionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.execTimes)
}

// ItemsProcessed accounts n processed items out of total and emits one
// cumulative progress line whenever the running fraction crosses the
// report threshold.
func (a *Aggregator) ItemsProcessed(n, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.processed += n
	a.sinceReport += n
	if total <= 0 {
		return
	}
	if float64(a.sinceReport)/float64(total) > progressReportFraction {
		zap.S().Infow("progress", "processed", a.processed, "total", total,
			"percent", 100*a.processed/total)
		a.sinceReport = 0
	}
}

// TakeExecutionTimes returns the recorded durations and clears them, so
// the next run starts from an empty sequence.
func (a *Aggregator) TakeExecutionTimes() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	times := a.execTimes
	a.execTimes = nil
	a.processed = 0
	a.sinceReport = 0
	return times
}
