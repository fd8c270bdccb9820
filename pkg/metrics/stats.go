package metrics

import (
	"math"
	"sort"
)

// Stats summarizes the submission durations of a run, in seconds.
type Stats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
}

// Summarize computes latency percentiles over the recorded durations.
func Summarize(times []float64) Stats {
	stats := Stats{Count: len(times)}
	if len(times) == 0 {
		return stats
	}

	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	var sum float64
	for _, t := range sorted {
		sum += t
	}

	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
	stats.Mean = sum / float64(len(sorted))
	stats.P50 = pct(sorted, 50)
	stats.P95 = pct(sorted, 95)
	stats.P99 = pct(sorted, 99)
	return stats
}

func pct(sorted []float64, p float64) float64 {
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
