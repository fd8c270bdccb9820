package dataset

// Tensor is one named input of a sample, carried in the KServe v2 wire
// representation: a flat FP32 buffer plus its logical shape.
type Tensor struct {
	Name     string    `json:"name"`
	Datatype string    `json:"datatype"`
	Shape    []int64   `json:"shape"`
	Data     []float32 `json:"data"`
}

// Sample maps input names to their tensors.
type Sample map[string]Tensor

// Dataset is a finite, ordered, multi-pass collection of samples.
type Dataset interface {
	Len() int
	Get(i int) Sample
}

// Iterator is a single-pass view over a Dataset.
// With infinite set, it wraps around instead of stopping at the end.
type Iterator struct {
	ds       Dataset
	pos      int
	infinite bool
}

func NewIterator(ds Dataset, infinite bool) *Iterator {
	return &Iterator{
		ds:       ds,
		infinite: infinite,
	}
}

// Next returns the next sample, or false when a finite iterator is exhausted.
func (it *Iterator) Next() (Sample, bool) {
	if it.ds.Len() == 0 {
		return nil, false
	}
	if it.pos >= it.ds.Len() {
		if !it.infinite {
			return nil, false
		}
		it.pos = 0
	}
	s := it.ds.Get(it.pos)
	it.pos++
	return s, true
}

// InMemory is the trivial Dataset over a sample slice.
type InMemory struct {
	samples []Sample
}

func NewInMemory(samples []Sample) *InMemory {
	return &InMemory{samples: samples}
}

func (d *InMemory) Len() int {
	return len(d.samples)
}

func (d *InMemory) Get(i int) Sample {
	return d.samples[i]
}
