package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/prom"
	"github.com/tidwall/gjson"
)

// Client is the capability the runner drives. Both calls submit one
// batched inference request; the async variant returns a handle that is
// resolved later for the outcome.
type Client interface {
	Model() string
	InferBatch(batch []dataset.Sample) (*InferResult, error)
	InferBatchAsync(batch []dataset.Sample) (*PendingRequest, error)
}

// InferResult wraps the raw response body of one inference request.
type InferResult struct {
	body []byte
}

func NewInferResult(body []byte) *InferResult {
	return &InferResult{body: body}
}

// Output returns the named output tensor node of the response.
func (r *InferResult) Output(name string) gjson.Result {
	outputs := gjson.GetBytes(r.body, "outputs")
	var found gjson.Result
	outputs.ForEach(func(_, value gjson.Result) bool {
		if value.Get("name").String() == name {
			found = value
			return false
		}
		return true
	})
	return found
}

func (r *InferResult) Raw() []byte {
	return r.body
}

type asyncResult struct {
	res *InferResult
	err error
}

// PendingRequest is the handle of one in-flight async request.
// It is produced by InferBatchAsync and consumed exactly once by Resolve.
type PendingRequest struct {
	id       string
	model    string
	issued   time.Time
	ch       chan asyncResult
	resolved sync.Once
	outcome  asyncResult
}

func newPendingRequest(id, model string) *PendingRequest {
	return &PendingRequest{
		id:     id,
		model:  model,
		issued: time.Now(),
		ch:     make(chan asyncResult, 1),
	}
}

func (p *PendingRequest) ID() string {
	return p.id
}

// complete hands the request its final outcome; called by the issuing client.
func (p *PendingRequest) complete(res *InferResult, err error) {
	p.ch <- asyncResult{res: res, err: err}
}

// Resolve blocks until the request finishes and returns its outcome.
// Repeated calls return the same outcome without re-waiting.
func (p *PendingRequest) Resolve() (*InferResult, error) {
	p.resolved.Do(func() {
		p.outcome = <-p.ch
		prom.AsyncRoundtrip.WithLabelValues(p.model).Observe(time.Since(p.issued).Seconds())
	})
	return p.outcome.res, p.outcome.err
}

// InferenceServerError carries the diagnostic detail the server returned
// for a failed submission or resolution.
type InferenceServerError struct {
	Status  int
	Message string
}

func (e *InferenceServerError) Error() string {
	return fmt.Sprintf("inference server error (status %d): %s", e.Status, e.Message)
}
