package workers

import (
	"context"
	"errors"
	"sync"

	"photo-library/internal/metrics"
)

var (
	// ErrPoolStopped is returned when work is submitted to a stopped pool.
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrPoolNotStarted is returned when work is submitted before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")
)

// Pool runs submitted jobs on a fixed number of goroutines. Each job runs to
// completion on a single worker.
type Pool struct {
	size int
	jobs chan func()

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewPool creates a pool of size workers with room for queue pending jobs.
func NewPool(size, queue int) *Pool {
	if size < 1 {
		size = 1
	}
	if queue < 0 {
		queue = 0
	}
	return &Pool{
		size: size,
		jobs: make(chan func(), queue),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		metrics.WorkerQueueDepth.Dec()
		metrics.WorkersBusy.Inc()
		job()
		metrics.WorkersBusy.Dec()
	}
}

// Submit queues job. It blocks until the job is accepted or ctx is done.
// A pool only takes jobs between Start and Stop, so every accepted job has a
// worker to run it.
func (p *Pool) Submit(ctx context.Context, job func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if !p.started {
		return ErrPoolNotStarted
	}

	metrics.WorkerQueueDepth.Inc()
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		metrics.WorkerQueueDepth.Dec()
		return ctx.Err()
	}
}

// Stop refuses new jobs, lets queued jobs finish and waits for the workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	started := p.started
	p.mu.Unlock()

	if started {
		p.wg.Wait()
	}
}

// Run executes fn on the pool and waits for its result. ctx only bounds the
// wait for a queue slot: once accepted, fn runs to completion and Run
// returns its result.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)

	err := p.Submit(ctx, func() {
		v, err := fn()
		done <- result{v: v, err: err}
	})
	if err != nil {
		var zero T
		return zero, err
	}

	r := <-done
	return r.v, r.err
}
