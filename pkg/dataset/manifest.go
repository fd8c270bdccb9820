package dataset

import (
	"io/ioutil"
	"math/rand"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// InputSpec describes one model input to synthesize samples for.
type InputSpec struct {
	Name     string  `yaml:"name"`
	Datatype string  `yaml:"datatype"`
	Shape    []int64 `yaml:"shape"`
}

// Manifest is the yaml description of a synthetic dataset:
// which inputs each sample carries, how many samples, and the rng seed
// so that two runs against the same manifest see the same data.
type Manifest struct {
	Inputs []InputSpec `yaml:"inputs"`
	Count  int         `yaml:"count"`
	Seed   int64       `yaml:"seed"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, err
	}
	zap.S().Infow("loaded dataset manifest", "path", path, "inputs", len(m.Inputs), "count", m.Count)
	return m, nil
}

// NewSynthetic generates the manifest's samples eagerly.
// Generation is deterministic for a given seed.
func NewSynthetic(m *Manifest) Dataset {
	rng := rand.New(rand.NewSource(m.Seed))
	samples := make([]Sample, 0, m.Count)
	for i := 0; i < m.Count; i++ {
		s := Sample{}
		for _, in := range m.Inputs {
			n := int64(1)
			for _, d := range in.Shape {
				n *= d
			}
			data := make([]float32, n)
			for j := range data {
				data[j] = rng.Float32()
			}
			s[in.Name] = Tensor{
				Name:     in.Name,
				Datatype: in.Datatype,
				Shape:    in.Shape,
				Data:     data,
			}
		}
		samples = append(samples, s)
	}
	return NewInMemory(samples)
}

// DefaultManifest is used when no manifest file is given: a single
// flat FP32 input, sized by the datasetSize flag.
func DefaultManifest(count int) *Manifest {
	return &Manifest{
		Inputs: []InputSpec{
			{Name: "input", Datatype: "FP32", Shape: []int64{16}},
		},
		Count: count,
		Seed:  1,
	}
}
