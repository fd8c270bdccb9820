package runner

import (
	"testing"

	"github.com/modelbench/client/pkg/dataset"
	_ "github.com/modelbench/client/pkg/tools/log"
	. "github.com/smartystreets/goconvey/convey"
)

func makeSamples(n int) []dataset.Sample {
	samples := make([]dataset.Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, dataset.Sample{
			"input": dataset.Tensor{
				Name:     "input",
				Datatype: "FP32",
				Shape:    []int64{4},
				Data:     []float32{float32(i), 0, 0, 0},
			},
		})
	}
	return samples
}

func TestAssemble(t *testing.T) {
	testcases := []struct {
		caseName      string
		samples       int
		batchSize     int
		expectBatches int
	}{
		{
			caseName:      "even split",
			samples:       12,
			batchSize:     3,
			expectBatches: 4,
		},
		{
			caseName:      "short final batch",
			samples:       10,
			batchSize:     3,
			expectBatches: 4,
		},
		{
			caseName:      "single full batch",
			samples:       5,
			batchSize:     5,
			expectBatches: 1,
		},
		{
			caseName:      "batch larger than dataset",
			samples:       2,
			batchSize:     10,
			expectBatches: 1,
		},
		{
			caseName:      "empty dataset",
			samples:       0,
			batchSize:     4,
			expectBatches: 0,
		},
	}
	for _, testcase := range testcases {
		tc := testcase
		Convey(tc.caseName, t, func() {
			ds := dataset.NewInMemory(makeSamples(tc.samples))
			it := dataset.NewIterator(ds, false)
			var emitted [][]dataset.Sample
			n := Assemble(it, tc.batchSize, func(batch []dataset.Sample) {
				emitted = append(emitted, batch)
			})
			So(n, ShouldEqual, tc.expectBatches)
			So(len(emitted), ShouldEqual, tc.expectBatches)
			total := 0
			for i, batch := range emitted {
				So(len(batch), ShouldBeGreaterThan, 0)
				if i < len(emitted)-1 {
					So(len(batch), ShouldEqual, tc.batchSize)
				} else {
					So(len(batch), ShouldBeLessThanOrEqualTo, tc.batchSize)
				}
				total += len(batch)
			}
			So(total, ShouldEqual, tc.samples)
		})
	}
}
