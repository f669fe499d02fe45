package worker

import (
	"context"
	"sync"

	"github.com/halveric/CosmeticsCore_Go/internal/logger"
)

// Job represents a task to be executed by a worker.
type Job interface {
	Process(ctx context.Context) error
}

// Func adapts a plain function to the Job interface.
type Func func(ctx context.Context) error

// Process runs the wrapped function.
func (f Func) Process(ctx context.Context) error {
	return f(ctx)
}

// Pool executes I/O-bound gateway work off the primary game thread.
type Pool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	quit     chan struct{}
	stop     sync.Once
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int) *Pool {
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		quit:     make(chan struct{}),
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			// Jobs run detached from any caller context; teardown
			// happens via Stop, not cancellation.
			ctx := context.Background()
			if err := job.Process(ctx); err != nil {
				logger.FromContext(ctx).Error("worker job failed", "error", err)
			}
		case <-p.quit:
			return
		}
	}
}

// Enqueue adds a job to the queue, blocking if the queue is full.
func (p *Pool) Enqueue(job Job) {
	p.jobQueue <- job
}

// TryEnqueue adds a job without blocking. Returns false if the queue is full.
func (p *Pool) TryEnqueue(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop stops the workers and waits for in-flight jobs to finish.
// Queued but unstarted jobs are abandoned; callers that need their side
// effects run them synchronously during the shutdown cleanup pass.
// Safe to call more than once.
func (p *Pool) Stop() {
	p.stop.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
