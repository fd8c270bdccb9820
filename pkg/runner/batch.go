package runner

import "github.com/modelbench/client/pkg/dataset"

// Assemble consumes the iterator and emits batches of batchSize as soon
// as they are full; the last batch may be shorter but is never empty.
// Emission is streaming, emit is typically a pool submission that
// blocks while all workers are busy.
// Returns the number of batches emitted.
func Assemble(it *dataset.Iterator, batchSize int, emit func(batch []dataset.Sample)) int {
	batches := 0
	batch := make([]dataset.Sample, 0, batchSize)
	for {
		sample, ok := it.Next()
		if !ok {
			break
		}
		batch = append(batch, sample)
		if len(batch) == batchSize {
			emit(batch)
			batches++
			batch = make([]dataset.Sample, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		emit(batch)
		batches++
	}
	return batches
}
