package nav

import (
	"sync"
	"sync/atomic"
)

// Pool bounds the number of goroutines running path searches. Submit
// never blocks the simulation tick: when the backlog is full the
// search runs on its own goroutine instead of waiting for a worker.
type Pool struct {
	jobs   chan *Search
	quit   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

func NewPool(workers, backlog int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if backlog <= 0 {
		backlog = workers * 4
	}
	p := &Pool{
		jobs: make(chan *Search, backlog),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case search := <-p.jobs:
			if search != nil {
				search.Run()
			}
		}
	}
}

// Submit queues a search for execution. An aborted search still passes
// through a worker but finishes immediately.
func (p *Pool) Submit(search *Search) {
	if search == nil {
		return
	}
	if p == nil || p.closed.Load() {
		go search.Run()
		return
	}
	select {
	case p.jobs <- search:
	default:
		go search.Run()
	}
}

// Close stops the workers. Queued searches that never ran resolve as
// aborted from the caller's point of view once they are abandoned.
func (p *Pool) Close() {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.quit)
	p.wg.Wait()
}
