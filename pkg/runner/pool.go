package runner

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Outcome is the final result of one dispatch task.
type Outcome struct {
	Success bool
	Reason  error
}

// TaskHandle tracks one submitted dispatch task.
type TaskHandle struct {
	done chan Outcome
}

// Outcome blocks until the task completes.
func (h *TaskHandle) Outcome() Outcome {
	return <-h.done
}

// Pool executes dispatch tasks with at most workers of them in flight.
// Submit blocks while every slot is busy, which gives the submission
// path bounded-queue semantics instead of unbounded fan-out.
type Pool struct {
	sem chan struct{}

	// onFailure is invoked for a task that panicked; the panic is
	// recovered at the pool boundary and never aborts other tasks
	onFailure func(err error)
}

func NewPool(workers int, onFailure func(err error)) *Pool {
	return &Pool{
		sem:       make(chan struct{}, workers),
		onFailure: onFailure,
	}
}

// Submit runs fn on a free slot, blocking for one if none is free.
func (p *Pool) Submit(fn func() Outcome) *TaskHandle {
	p.sem <- struct{}{}
	h := &TaskHandle{done: make(chan Outcome, 1)}
	go func() {
		out := p.runGuarded(fn)
		<-p.sem
		h.done <- out
	}()
	return h
}

func (p *Pool) runGuarded(fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("dispatch task panic: %v", r)
			zap.S().Errorw("dispatch task panicked", "err", err)
			if p.onFailure != nil {
				p.onFailure(err)
			}
			out = Outcome{Success: false, Reason: err}
		}
	}()
	return fn()
}

// AwaitAll blocks until every handle completes and returns the outcomes
// in completion order, which is generally not submission order.
func (p *Pool) AwaitAll(handles []*TaskHandle) []Outcome {
	completions := make(chan Outcome, len(handles))
	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *TaskHandle) {
			defer wg.Done()
			completions <- h.Outcome()
		}(h)
	}
	wg.Wait()
	close(completions)

	outcomes := make([]Outcome, 0, len(handles))
	for out := range completions {
		outcomes = append(outcomes, out)
	}
	return outcomes
}
