package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
)

// Counter names recorded by the engine.
const (
	CounterCreditsEarned  = "credits_earned"
	CounterCreditsSpent   = "credits_spent"
	CounterCratesOpened   = "crates_opened"
	CounterCratesBought   = "crates_bought"
	CounterRentalsStarted = "rentals_started"
	CounterRentalsExpired = "rentals_expired"
)

// Collector accumulates engine counters in memory and periodically
// flushes snapshots to persistence. Counters are cumulative for the
// process lifetime; each flush writes the running totals.
type Collector struct {
	mu       sync.Mutex
	counters map[string]int64
	repo     repository.Stats
	now      func() time.Time
}

// NewCollector creates a collector flushing to the given stats store.
func NewCollector(repo repository.Stats) *Collector {
	return &Collector{
		counters: make(map[string]int64),
		repo:     repo,
		now:      time.Now,
	}
}

// Incr adds delta to the named counter. Safe for concurrent use; nil
// collectors are tolerated so callers need no nil checks.
func (c *Collector) Incr(name string, delta int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() domain.StatsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	counters := make(map[string]int64, len(c.counters))
	for name, value := range c.counters {
		counters[name] = value
	}
	return domain.StatsSnapshot{TakenAt: c.now(), Counters: counters}
}

// Flush persists a snapshot of the current counters.
func (c *Collector) Flush(ctx context.Context) error {
	snapshot := c.Snapshot()
	if len(snapshot.Counters) == 0 {
		return nil
	}
	if err := c.repo.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to flush stats snapshot: %w", err)
	}
	logger.FromContext(ctx).Debug("stats snapshot flushed", "counters", len(snapshot.Counters))
	return nil
}
