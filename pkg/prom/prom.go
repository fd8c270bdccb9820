package prom

import "github.com/prometheus/client_golang/prometheus"

// client side metrics, exposed on the /metrics route
var (
	InferLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "client_infer_latency",
		Help: "Latency of inference submission calls in seconds",
	}, []string{"model", "batch_size"})

	InferSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "client_infer_requests_success",
		Help: "Number of successful inference requests",
	}, []string{"model", "batch_size"})

	InferFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "client_infer_requests_failed",
		Help: "Number of failed inference requests",
	}, []string{"model", "batch_size"})

	// round-trip time of async requests, measured at resolution;
	// kept separate from InferLatency which times the submission call only
	AsyncRoundtrip = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "client_async_roundtrip_latency",
		Help: "Round-trip latency of async inference requests in seconds",
	}, []string{"model"})

	BatchesSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runner_batches_submitted_total",
		Help: "Number of batches submitted to the dispatch pool",
	})

	ClientInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "client_info",
		Help: "Information about the benchmark client",
	}, []string{"model"})
)

// run before route define, now at root.go
func init() {
	_ = prometheus.Register(InferLatency)
	_ = prometheus.Register(InferSuccess)
	_ = prometheus.Register(InferFailed)
	_ = prometheus.Register(AsyncRoundtrip)
	_ = prometheus.Register(BatchesSubmitted)
	_ = prometheus.Register(ClientInfo)
}
