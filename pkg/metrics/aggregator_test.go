package metrics

import (
	"sync"
	"testing"
	"time"

	_ "github.com/modelbench/client/pkg/tools/log"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAggregatorConcurrentCounters(t *testing.T) {
	Convey("no counter update is lost under concurrent mutation", t, func() {
		agg := NewAggregator()
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%4 == 0 {
					agg.IncFailure()
				} else {
					agg.IncSuccess()
				}
				agg.RecordDuration(time.Millisecond)
				agg.ItemsProcessed(1, 100)
			}(i)
		}
		wg.Wait()

		success, failure := agg.Counts()
		So(success, ShouldEqual, 75)
		So(failure, ShouldEqual, 25)
		So(agg.ExecutionCount(), ShouldEqual, 100)
	})
}

func TestAggregatorTakeExecutionTimes(t *testing.T) {
	Convey("taking the durations clears them for the next run", t, func() {
		agg := NewAggregator()
		agg.RecordDuration(2 * time.Millisecond)
		agg.RecordDuration(5 * time.Millisecond)

		times := agg.TakeExecutionTimes()
		So(len(times), ShouldEqual, 2)
		for _, d := range times {
			So(d, ShouldBeGreaterThan, 0)
		}

		So(agg.ExecutionCount(), ShouldEqual, 0)
		So(len(agg.TakeExecutionTimes()), ShouldEqual, 0)
	})
}

func TestAggregatorProgressCadence(t *testing.T) {
	Convey("roughly ten progress lines per run, regardless of item count", t, func() {
		core, logs := observer.New(zap.InfoLevel)
		prev := zap.L()
		zap.ReplaceGlobals(zap.New(core))
		defer zap.ReplaceGlobals(prev)

		agg := NewAggregator()
		for i := 0; i < 1000; i++ {
			agg.ItemsProcessed(1, 1000)
		}

		progress := 0
		for _, entry := range logs.All() {
			if entry.Message == "progress" {
				progress++
			}
		}
		// the running count resets after each crossing of the 10%
		// threshold, so 1000 single-item updates cross it 9 times
		So(progress, ShouldBeBetweenOrEqual, 9, 10)
	})

	Convey("a small run emits no more lines than it has updates", t, func() {
		core, logs := observer.New(zap.InfoLevel)
		prev := zap.L()
		zap.ReplaceGlobals(zap.New(core))
		defer zap.ReplaceGlobals(prev)

		agg := NewAggregator()
		agg.ItemsProcessed(3, 4)
		agg.ItemsProcessed(1, 4)

		progress := 0
		for _, entry := range logs.All() {
			if entry.Message == "progress" {
				progress++
			}
		}
		So(progress, ShouldEqual, 2)
	})
}

func TestAggregatorProgressWithZeroTotal(t *testing.T) {
	Convey("progress accounting tolerates an unknown total", t, func() {
		agg := NewAggregator()
		agg.ItemsProcessed(5, 0)
		agg.ItemsProcessed(5, -1)
		success, failure := agg.Counts()
		So(success, ShouldEqual, 0)
		So(failure, ShouldEqual, 0)
	})
}

func TestSummarize(t *testing.T) {
	Convey("summary percentiles over a known distribution", t, func() {
		times := make([]float64, 0, 100)
		for i := 1; i <= 100; i++ {
			times = append(times, float64(i)/1000)
		}
		stats := Summarize(times)
		So(stats.Count, ShouldEqual, 100)
		So(stats.Min, ShouldAlmostEqual, 0.001)
		So(stats.Max, ShouldAlmostEqual, 0.1)
		So(stats.P50, ShouldAlmostEqual, 0.05)
		So(stats.P95, ShouldAlmostEqual, 0.095)
		So(stats.P99, ShouldAlmostEqual, 0.099)
		So(stats.Mean, ShouldAlmostEqual, 0.0505)
	})

	Convey("summary of an empty run", t, func() {
		stats := Summarize(nil)
		So(stats.Count, ShouldEqual, 0)
		So(stats.Max, ShouldEqual, 0)
	})
}
