package collector

import (
	"sync"

	"github.com/modelbench/client/pkg/client"
	"github.com/modelbench/client/pkg/metrics"
	cmap "github.com/orcaman/concurrent-map"
	"go.uber.org/zap"
)

// defaultCapacity bounds the pending-request queue. A full queue blocks
// producers, which keeps the number of unresolved async requests, and
// therefore memory, bounded.
const defaultCapacity = 200

// Collector is the single background consumer of async pending
// requests. Dispatch workers hand it every pending request they create;
// it resolves them one by one and feeds the outcome into the aggregator.
type Collector struct {
	agg      *metrics.Aggregator
	ch       chan *client.PendingRequest
	inflight cmap.ConcurrentMap
	done     chan struct{}

	closeOnce sync.Once
	startOnce sync.Once
}

func New(agg *metrics.Aggregator, capacity int) *Collector {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Collector{
		agg:      agg,
		ch:       make(chan *client.PendingRequest, capacity),
		inflight: cmap.New(),
		done:     make(chan struct{}),
	}
}

// Start launches the resolver goroutine. It must run before the first
// Enqueue so that no pending request is ever produced without a
// consumer ready.
func (c *Collector) Start() {
	c.startOnce.Do(func() {
		go c.resolveLoop()
	})
}

// Enqueue hands one pending request to the collector, blocking when the
// queue is full.
func (c *Collector) Enqueue(p *client.PendingRequest) {
	c.inflight.Set(p.ID(), p)
	c.ch <- p
}

// InFlight reports how many enqueued requests are not yet resolved.
func (c *Collector) InFlight() int {
	return c.inflight.Count()
}

// Close signals that no further requests will be enqueued. The resolver
// keeps draining everything already queued before it exits, so closing
// never loses a request.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.ch)
	})
}

// Wait blocks until the resolver has drained the queue and exited.
func (c *Collector) Wait() {
	<-c.done
}

func (c *Collector) resolveLoop() {
	defer close(c.done)
	for p := range c.ch {
		_, err := p.Resolve()
		c.inflight.Remove(p.ID())
		if err != nil {
			zap.S().Warnw("async request failed at resolution", "request", p.ID(), "err", err)
			c.agg.IncFailure()
			continue
		}
		c.agg.IncSuccess()
	}
}
