package common

import "github.com/modelbench/client/pkg/dataset"

// CopySample returns a deep copy of a sample: tensor buffers and shapes
// are copied, so the result is insulated from later mutation of the
// original.
func CopySample(s dataset.Sample) dataset.Sample {
	out := make(dataset.Sample, len(s))
	for name, t := range s {
		data := make([]float32, len(t.Data))
		copy(data, t.Data)
		shape := make([]int64, len(t.Shape))
		copy(shape, t.Shape)
		out[name] = dataset.Tensor{
			Name:     t.Name,
			Datatype: t.Datatype,
			Shape:    shape,
			Data:     data,
		}
	}
	return out
}

// CopyBatch deep-copies every sample of a batch.
func CopyBatch(batch []dataset.Sample) []dataset.Sample {
	out := make([]dataset.Sample, 0, len(batch))
	for _, s := range batch {
		out = append(out, CopySample(s))
	}
	return out
}
