package dataset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisSample is the stored form of one sample: a json object with
// an "inputs" array of tensors.
type redisSample struct {
	Inputs []Tensor `json:"inputs"`
}

// NewRedisDataset loads all samples from a redis list into memory.
// Each list entry is one json-encoded sample. Loading is eager so that
// the benchmark run itself never touches redis.
func NewRedisDataset(ctx context.Context, addr, password string, db int, key string) (Dataset, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	defer cli.Close()

	raw, err := cli.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read dataset key %s: %w", key, err)
	}
	samples := make([]Sample, 0, len(raw))
	for i, entry := range raw {
		rs := redisSample{}
		if err := json.Unmarshal([]byte(entry), &rs); err != nil {
			return nil, fmt.Errorf("decode sample %d of key %s: %w", i, key, err)
		}
		s := Sample{}
		for _, t := range rs.Inputs {
			s[t.Name] = t
		}
		samples = append(samples, s)
	}
	zap.S().Infow("loaded dataset from redis", "addr", addr, "key", key, "samples", len(samples))
	return NewInMemory(samples), nil
}
