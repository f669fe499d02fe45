package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_ProcessesJobs(t *testing.T) {
	pool := NewPool(2, 16)
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	var processed atomic.Int32

	for i := 0; i < 10; i++ {
		wg.Add(1)
		pool.Enqueue(Func(func(context.Context) error {
			defer wg.Done()
			processed.Add(1)
			return nil
		}))
	}

	wg.Wait()
	assert.Equal(t, int32(10), processed.Load())
}

func TestPool_TryEnqueueFullQueue(t *testing.T) {
	// One slot, no workers started, so the queue never drains.
	pool := NewPool(1, 1)

	assert.True(t, pool.TryEnqueue(Func(func(context.Context) error { return nil })))
	assert.False(t, pool.TryEnqueue(Func(func(context.Context) error { return nil })))
}

func TestPool_StopWaitsForInFlightJobs(t *testing.T) {
	pool := NewPool(1, 16)
	pool.Start()

	started := make(chan struct{})
	var finished atomic.Bool

	pool.Enqueue(Func(func(context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	}))

	<-started
	pool.Stop()
	assert.True(t, finished.Load())
}

func TestPool_StopIsIdempotent(t *testing.T) {
	pool := NewPool(1, 16)
	pool.Start()

	pool.Stop()
	assert.NotPanics(t, func() { pool.Stop() })
}

func TestPool_JobErrorDoesNotKillWorker(t *testing.T) {
	pool := NewPool(1, 16)
	pool.Start()
	defer pool.Stop()

	done := make(chan struct{})
	pool.Enqueue(Func(func(context.Context) error {
		return assert.AnError
	}))
	pool.Enqueue(Func(func(context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker stopped processing after a failed job")
	}
}
