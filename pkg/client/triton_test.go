package client

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/modelbench/client/pkg/dataset"
	_ "github.com/modelbench/client/pkg/tools/log"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tidwall/gjson"
)

const modelMetadata = `{
	"name": "resnet",
	"versions": ["1"],
	"inputs": [{"name": "input", "datatype": "FP32", "shape": [-1, 4]}],
	"outputs": [{"name": "output", "datatype": "FP32", "shape": [-1, 2]}]
}`

// fakeTritonServer answers the v2 health, metadata and infer routes.
type fakeTritonServer struct {
	ready      int32
	failInfer  int32
	lastBody   atomic.Value
	inferCalls int32
}

func (f *fakeTritonServer) handler() http.Handler {
	mux := http.NewServeMux()
	ok := func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&f.ready) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}
	mux.HandleFunc("/v2/health/live", ok)
	mux.HandleFunc("/v2/health/ready", ok)
	mux.HandleFunc("/v2/models/resnet/versions/1/ready", ok)
	mux.HandleFunc("/v2/models/resnet/versions/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(modelMetadata))
	})
	mux.HandleFunc("/v2/models/resnet/versions/1/infer", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.inferCalls, 1)
		body, _ := ioutil.ReadAll(r.Body)
		f.lastBody.Store(body)
		if atomic.LoadInt32(&f.failInfer) != 0 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "inference exec failed"}`))
			return
		}
		w.Write([]byte(`{"outputs": [{"name": "output", "datatype": "FP32", "shape": [1, 2], "data": [0.9, 0.1]}]}`))
	})
	return mux
}

func batchOf(n int) []dataset.Sample {
	batch := make([]dataset.Sample, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, dataset.Sample{
			"input": dataset.Tensor{Name: "input", Datatype: "FP32", Shape: []int64{4}, Data: []float32{1, 2, 3, 4}},
		})
	}
	return batch
}

func TestTritonClientConstruction(t *testing.T) {
	Convey("construction succeeds against a ready server and caches metadata", t, func() {
		fake := &fakeTritonServer{ready: 1}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		c, err := NewTritonClient(srv.URL, "resnet", "1")
		So(err, ShouldBeNil)
		So(c.Model(), ShouldEqual, "resnet")
		So(c.inputs["input"], ShouldEqual, "FP32")
		So(c.outputs, ShouldResemble, []string{"output"})
	})

	Convey("construction fails fast when the server never becomes ready", t, func() {
		fake := &fakeTritonServer{}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		_, err := NewTritonClient(srv.URL, "resnet", "1")
		So(err, ShouldNotBeNil)
	})
}

func TestTritonClientInferBatch(t *testing.T) {
	fake := &fakeTritonServer{ready: 1}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c, err := NewTritonClient(srv.URL, "resnet", "1")
	if err != nil {
		t.Fatalf("NewTritonClient: %v", err)
	}

	Convey("a batch is stacked into a single request with a batch dimension", t, func() {
		res, err := c.InferBatch(batchOf(3))
		So(err, ShouldBeNil)
		So(res, ShouldNotBeNil)

		body := fake.lastBody.Load().([]byte)
		input := gjson.GetBytes(body, "inputs.0")
		So(input.Get("name").String(), ShouldEqual, "input")
		So(input.Get("shape.0").Int(), ShouldEqual, 3)
		So(input.Get("shape.1").Int(), ShouldEqual, 4)
		So(len(input.Get("data").Array()), ShouldEqual, 12)

		out := res.Output("output")
		So(out.Get("data.0").Float(), ShouldAlmostEqual, 0.9)
	})

	Convey("a server error surfaces as an InferenceServerError with detail", t, func() {
		atomic.StoreInt32(&fake.failInfer, 1)
		defer atomic.StoreInt32(&fake.failInfer, 0)

		res, err := c.InferBatch(batchOf(1))
		So(res, ShouldBeNil)
		So(err, ShouldNotBeNil)
		serverErr, isServerErr := err.(*InferenceServerError)
		So(isServerErr, ShouldBeTrue)
		So(serverErr.Status, ShouldEqual, http.StatusInternalServerError)
		So(serverErr.Message, ShouldEqual, "inference exec failed")
	})

	Convey("an empty batch cannot be built into a request", t, func() {
		_, err := c.InferBatch(nil)
		So(err, ShouldNotBeNil)
	})

	Convey("samples with differing shapes cannot be stacked into one batch", t, func() {
		before := atomic.LoadInt32(&fake.inferCalls)
		batch := batchOf(2)
		batch[1] = dataset.Sample{
			"input": dataset.Tensor{Name: "input", Datatype: "FP32", Shape: []int64{8}, Data: make([]float32, 8)},
		}
		res, err := c.InferBatch(batch)
		So(res, ShouldBeNil)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "shape mismatch")
		// the request build fails before anything reaches the server
		So(atomic.LoadInt32(&fake.inferCalls), ShouldEqual, before)
	})
}

func TestTritonClientInferBatchAsync(t *testing.T) {
	fake := &fakeTritonServer{ready: 1}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c, err := NewTritonClient(srv.URL, "resnet", "1")
	if err != nil {
		t.Fatalf("NewTritonClient: %v", err)
	}

	Convey("async submission returns a handle resolved later", t, func() {
		p, err := c.InferBatchAsync(batchOf(2))
		So(err, ShouldBeNil)
		So(p, ShouldNotBeNil)
		So(p.ID(), ShouldNotBeEmpty)

		res, err := p.Resolve()
		So(err, ShouldBeNil)
		So(res, ShouldNotBeNil)

		Convey("resolving again returns the same outcome", func() {
			again, err := p.Resolve()
			So(err, ShouldBeNil)
			So(again, ShouldEqual, res)
		})
	})

	Convey("a failed async request surfaces its error at resolution", t, func() {
		atomic.StoreInt32(&fake.failInfer, 1)
		defer atomic.StoreInt32(&fake.failInfer, 0)

		p, err := c.InferBatchAsync(batchOf(1))
		So(err, ShouldBeNil)

		res, err := p.Resolve()
		So(res, ShouldBeNil)
		_, isServerErr := err.(*InferenceServerError)
		So(isServerErr, ShouldBeTrue)
	})
}
