package runner

import (
	"fmt"

	"github.com/modelbench/client/pkg/tools/errorutils"
)

// Config holds the knobs of one benchmark run. It is validated at
// runner construction and immutable afterwards.
type Config struct {
	BatchSize int
	Workers   int
	Async     bool
}

func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return errorutils.NewConfigurationError("batchSize", fmt.Sprintf("must be >= 1, got %d", c.BatchSize))
	}
	if c.Workers < 1 {
		return errorutils.NewConfigurationError("workers", fmt.Sprintf("must be >= 1, got %d", c.Workers))
	}
	return nil
}
