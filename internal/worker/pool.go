package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeQueue sync.Once
	closeOnce  sync.Once
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2), // Buffered to prevent blocking
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution. It must not be called
// after Close or Wait.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Close signals that no more jobs will be submitted
func (p *Pool) Close() {
	p.closeQueue.Do(func() {
		close(p.jobQueue)
	})
}

// Wait closes the queue, waits for all jobs to complete and returns the
// results in completion order
func (p *Pool) Wait() []Result {
	p.Close()
	return p.collect()
}

// Run executes jobs and returns their results. Jobs are fed from a separate
// goroutine so any number of jobs can be queued without deadlock.
func (p *Pool) Run(jobs []Job) []Result {
	p.Start()
	go func() {
		defer p.Close()
		for _, job := range jobs {
			select {
			case <-p.ctx.Done():
				return
			case p.jobQueue <- job:
			}
		}
	}()
	return p.collect()
}

func (p *Pool) collect() []Result {
	// Close results once every worker has exited
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}

	p.cancelFunc()
	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
