package capture

import (
	"log"
	"sync"
)

// ProbeCallback is invoked on probe completion (from the worker goroutine).
// The coordinator passes a closure that posts back into its own loop.
type ProbeCallback func(text string, err error)

// Pool runs clipboard probes off the coordinator loop on a single worker
// with a 1-slot queue (strict back-pressure). The loop must never block on
// a probe's sleeps, and two probes must never overlap.
type Pool struct {
	jobs chan probeJob
	wg   sync.WaitGroup
}

type probeJob struct {
	prober *Prober
	cb     ProbeCallback
}

func NewPool() *Pool {
	p := &Pool{jobs: make(chan probeJob, 1)}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for j := range p.jobs {
			text, err := j.prober.Probe()
			log.Printf("capture: probe completed, text length=%d, err=%v", len(text), err)
			j.cb(text, err)
		}
	}()
	return p
}

// Submit enqueues a probe if the single-slot queue is free. Returns false
// if dropped.
func (p *Pool) Submit(prober *Prober, cb ProbeCallback) bool {
	select {
	case p.jobs <- probeJob{prober: prober, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
