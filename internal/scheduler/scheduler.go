package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/worker"
)

// Scheduler runs jobs at fixed intervals on the worker pool. Each job is
// guarded against re-entrant overlap: if a run is still in flight when
// the next tick fires, the tick is skipped.
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	wg         sync.WaitGroup
}

// New creates a new scheduler.
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a named job to run at a fixed interval. The first
// run happens after one interval, not immediately.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job) {
	var running atomic.Bool

	guarded := worker.Func(func(ctx context.Context) error {
		defer running.Store(false)
		return job.Process(ctx)
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !running.CompareAndSwap(false, true) {
					logger.Warn("scheduled job still running, skipping tick", "job", name)
					continue
				}
				if !s.workerPool.TryEnqueue(guarded) {
					running.Store(false)
					logger.Warn("worker queue full, skipping tick", "job", name)
				}
			case <-s.quit:
				return
			}
		}
	}()
}

// Stop stops all scheduled tickers. In-flight job runs are drained by
// the worker pool's own Stop.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}
