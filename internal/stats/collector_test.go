package stats

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// MockStatsRepo implements repository.Stats for testing
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) SaveSnapshot(ctx context.Context, snapshot domain.StatsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func TestCollector_IncrAndSnapshot(t *testing.T) {
	c := NewCollector(new(MockStatsRepo))

	c.Incr(CounterCratesOpened, 1)
	c.Incr(CounterCratesOpened, 2)
	c.Incr(CounterCreditsSpent, 50)

	snapshot := c.Snapshot()
	assert.Equal(t, int64(3), snapshot.Counters[CounterCratesOpened])
	assert.Equal(t, int64(50), snapshot.Counters[CounterCreditsSpent])
	assert.False(t, snapshot.TakenAt.IsZero())
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Incr(CounterCratesOpened, 1)
	})
}

func TestCollector_FlushPersistsSnapshot(t *testing.T) {
	repo := new(MockStatsRepo)
	c := NewCollector(repo)
	c.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }

	c.Incr(CounterRentalsStarted, 4)

	repo.On("SaveSnapshot", mock.Anything, mock.MatchedBy(func(s domain.StatsSnapshot) bool {
		return s.Counters[CounterRentalsStarted] == 4 && s.TakenAt.Equal(c.now())
	})).Return(nil).Once()

	require.NoError(t, c.Flush(context.Background()))
	repo.AssertExpectations(t)
}

func TestCollector_FlushSkipsWhenEmpty(t *testing.T) {
	repo := new(MockStatsRepo)
	c := NewCollector(repo)

	require.NoError(t, c.Flush(context.Background()))
	repo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything)
}

func TestCollector_FlushError(t *testing.T) {
	repo := new(MockStatsRepo)
	c := NewCollector(repo)
	c.Incr(CounterCreditsEarned, 1)

	repo.On("SaveSnapshot", mock.Anything, mock.Anything).Return(errors.New("write failed"))

	assert.Error(t, c.Flush(context.Background()))
}

func TestCollector_ConcurrentIncr(t *testing.T) {
	c := NewCollector(new(MockStatsRepo))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Incr(CounterCratesBought, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), c.Snapshot().Counters[CounterCratesBought])
}
