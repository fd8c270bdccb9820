package client

import (
	"sync"
	"time"

	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/tools/common"
	"github.com/rs/xid"
)

// mockClient answers every request locally. Used with the mock flag and
// in tests; failures are injected per call index.
type mockClient struct {
	model   string
	latency time.Duration

	// nil funcs mean every call succeeds
	submitErr  func(call int) error
	resolveErr func(call int) error

	mu      sync.Mutex
	calls   int
	batches [][]dataset.Sample
}

type MockOption func(*mockClient)

func WithLatency(d time.Duration) MockOption {
	return func(m *mockClient) { m.latency = d }
}

// WithSubmitErr injects an error into the n-th submission call (0-based).
func WithSubmitErr(fn func(call int) error) MockOption {
	return func(m *mockClient) { m.submitErr = fn }
}

// WithResolveErr injects an error into the resolution of the n-th
// async submission (0-based).
func WithResolveErr(fn func(call int) error) MockOption {
	return func(m *mockClient) { m.resolveErr = fn }
}

func NewMockClient(model string, opts ...MockOption) *mockClient {
	m := &mockClient{
		model: model,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *mockClient) Model() string {
	return m.model
}

func (m *mockClient) InferBatch(batch []dataset.Sample) (*InferResult, error) {
	call := m.record(batch)
	if m.latency > 0 {
		time.Sleep(m.latency)
	}
	if m.submitErr != nil {
		if err := m.submitErr(call); err != nil {
			return nil, err
		}
	}
	return NewInferResult([]byte(`{"outputs":[]}`)), nil
}

func (m *mockClient) InferBatchAsync(batch []dataset.Sample) (*PendingRequest, error) {
	call := m.record(batch)
	if m.submitErr != nil {
		if err := m.submitErr(call); err != nil {
			return nil, err
		}
	}
	p := newPendingRequest(xid.New().String(), m.model)
	go func() {
		if m.latency > 0 {
			time.Sleep(m.latency)
		}
		if m.resolveErr != nil {
			if err := m.resolveErr(call); err != nil {
				p.complete(nil, err)
				return
			}
		}
		p.complete(NewInferResult([]byte(`{"outputs":[]}`)), nil)
	}()
	return p, nil
}

func (m *mockClient) record(batch []dataset.Sample) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.calls
	m.calls++
	m.batches = append(m.batches, common.CopyBatch(batch))
	return call
}

// Batches returns a deep copy of every batch submitted so far, captured
// at submission time.
func (m *mockClient) Batches() [][]dataset.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	batches := make([][]dataset.Sample, len(m.batches))
	copy(batches, m.batches)
	return batches
}

// BatchSizes returns the sizes of every batch submitted so far.
func (m *mockClient) BatchSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, 0, len(m.batches))
	for _, batch := range m.batches {
		sizes = append(sizes, len(batch))
	}
	return sizes
}
