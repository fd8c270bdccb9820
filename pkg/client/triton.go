package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/modelbench/client/pkg/dataset"
	"github.com/modelbench/client/pkg/prom"
	"github.com/modelbench/client/pkg/tools/errorutils"
	"github.com/rs/xid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const defaultModelVersion = "1"

// TritonClient talks the KServe v2 REST protocol to a triton-compatible
// inference server.
type TritonClient struct {
	serverURL string
	model     string
	version   string
	http      *http.Client

	// input name -> datatype, from model metadata
	inputs  map[string]string
	outputs []string
}

type inferInput struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferOutput struct {
	Name string `json:"name"`
}

type inferRequest struct {
	ID      string        `json:"id"`
	Inputs  []inferInput  `json:"inputs"`
	Outputs []inferOutput `json:"outputs"`
}

// NewTritonClient checks server and model readiness, fetches the model
// metadata and caches the input/output specs.
// Construction fails if the server does not become ready; this is fatal
// for the run, no benchmark starts against a dead server.
func NewTritonClient(serverURL, model, version string) (*TritonClient, error) {
	if version == "" {
		version = defaultModelVersion
	}
	c := &TritonClient{
		serverURL: serverURL,
		model:     model,
		version:   version,
		http:      &http.Client{},
		inputs:    map[string]string{},
	}
	zap.S().Infow("creating triton client", "server", serverURL, "model", model, "version", version)
	err := retry.Do(
		func() error {
			return c.serverCheck()
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
	)
	if err != nil {
		return nil, err
	}
	zap.S().Info("triton server check successful, server is ready to handle requests")
	if err := c.loadMetadata(); err != nil {
		return nil, err
	}
	prom.ClientInfo.WithLabelValues(c.model).Set(1)
	return c, nil
}

func (c *TritonClient) Model() string {
	return c.model
}

func (c *TritonClient) serverCheck() error {
	var errs []string
	if !c.ok("/v2/health/live") {
		errs = append(errs, fmt.Sprintf("server %s is not up", c.serverURL))
	}
	if !c.ok("/v2/health/ready") {
		errs = append(errs, fmt.Sprintf("server %s is not ready", c.serverURL))
	}
	if !c.ok(fmt.Sprintf("/v2/models/%s/versions/%s/ready", c.model, c.version)) {
		errs = append(errs, fmt.Sprintf("model %s:%s is not ready", c.model, c.version))
	}
	if len(errs) > 0 {
		return errorutils.NewServerNotReadyError(c.serverURL, errs)
	}
	return nil
}

func (c *TritonClient) ok(path string) bool {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *TritonClient) loadMetadata() error {
	resp, err := c.http.Get(fmt.Sprintf("%s/v2/models/%s/versions/%s", c.serverURL, c.model, c.version))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &InferenceServerError{Status: resp.StatusCode, Message: gjson.GetBytes(body, "error").String()}
	}
	zap.S().Infow("model metadata", "metadata", string(body))
	gjson.GetBytes(body, "inputs").ForEach(func(_, in gjson.Result) bool {
		c.inputs[in.Get("name").String()] = in.Get("datatype").String()
		return true
	})
	gjson.GetBytes(body, "outputs").ForEach(func(_, out gjson.Result) bool {
		c.outputs = append(c.outputs, out.Get("name").String())
		return true
	})
	return nil
}

func (c *TritonClient) InferBatch(batch []dataset.Sample) (*InferResult, error) {
	body, err := c.buildRequest(batch)
	if err != nil {
		prom.InferFailed.WithLabelValues(c.model, strconv.Itoa(len(batch))).Inc()
		return nil, err
	}
	start := time.Now()
	res, err := c.doInfer(body)
	prom.InferLatency.WithLabelValues(c.model, strconv.Itoa(len(batch))).Observe(time.Since(start).Seconds())
	if err != nil {
		prom.InferFailed.WithLabelValues(c.model, strconv.Itoa(len(batch))).Inc()
		return nil, err
	}
	prom.InferSuccess.WithLabelValues(c.model, strconv.Itoa(len(batch))).Inc()
	return res, nil
}

// InferBatchAsync fires the same request without waiting for it.
// The returned handle owns the in-flight call; its Resolve blocks until
// the response arrives. Only request building can fail here, the
// network outcome surfaces at resolution.
func (c *TritonClient) InferBatchAsync(batch []dataset.Sample) (*PendingRequest, error) {
	body, err := c.buildRequest(batch)
	if err != nil {
		prom.InferFailed.WithLabelValues(c.model, strconv.Itoa(len(batch))).Inc()
		return nil, err
	}
	p := newPendingRequest(xid.New().String(), c.model)
	size := strconv.Itoa(len(batch))
	go func() {
		res, err := c.doInfer(body)
		if err != nil {
			prom.InferFailed.WithLabelValues(c.model, size).Inc()
		} else {
			prom.InferSuccess.WithLabelValues(c.model, size).Inc()
		}
		p.complete(res, err)
	}()
	return p, nil
}

func (c *TritonClient) doInfer(body []byte) (*InferResult, error) {
	url := fmt.Sprintf("%s/v2/models/%s/versions/%s/infer", c.serverURL, c.model, c.version)
	resp, err := c.http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &InferenceServerError{Status: resp.StatusCode, Message: gjson.GetBytes(raw, "error").String()}
	}
	return NewInferResult(raw), nil
}

// buildRequest stacks the samples per input: the flat buffers are
// concatenated and the shape gains a leading batch dimension.
func (c *TritonClient) buildRequest(batch []dataset.Sample) ([]byte, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("cannot build a request from an empty batch")
	}
	req := inferRequest{ID: xid.New().String()}
	for name, datatype := range c.inputs {
		var data []float32
		var shape []int64
		for i, sample := range batch {
			t, ok := sample[name]
			if !ok {
				return nil, fmt.Errorf("sample is missing input %q", name)
			}
			if i == 0 {
				shape = t.Shape
			} else if !shapeEqual(shape, t.Shape) {
				return nil, fmt.Errorf("input %q shape mismatch within batch: %v vs %v", name, shape, t.Shape)
			}
			data = append(data, t.Data...)
		}
		req.Inputs = append(req.Inputs, inferInput{
			Name:     name,
			Shape:    append([]int64{int64(len(batch))}, shape...),
			Datatype: datatype,
			Data:     data,
		})
	}
	for _, out := range c.outputs {
		req.Outputs = append(req.Outputs, inferOutput{Name: out})
	}
	return json.Marshal(req)
}

func shapeEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
