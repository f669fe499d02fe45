package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/halveric/CosmeticsCore_Go/internal/concurrency"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/metrics"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
	"github.com/halveric/CosmeticsCore_Go/internal/stats"
)

// Sessions reports which players are online. The eviction sweep keeps
// cache entries only for players with a live session.
type Sessions interface {
	IsOnline(playerID string) bool
}

// Service defines the credit ledger interface. Mutations hold a
// per-player lock around the read-modify-write cycle, so the balance
// invariant [0, max] holds under concurrent callers. Business rejections
// (insufficient funds, already at max) are boolean results; the error
// return is reserved for infrastructure failure.
type Service interface {
	GetBalance(ctx context.Context, playerID string) (int, error)
	SetBalance(ctx context.Context, playerID string, value int) error
	AddBalance(ctx context.Context, playerID string, amount int) (bool, error)
	RemoveBalance(ctx context.Context, playerID string, amount int) (bool, error)

	// EvictOffline drops cache entries for players with no live session
	// and returns the number of entries removed.
	EvictOffline(ctx context.Context) int
}

type service struct {
	repo     repository.Ledger
	locks    *concurrency.LockManager
	cache    *balanceCache
	sessions Sessions
	statsSvc *stats.Collector

	maxBalance     int
	welcomeBalance int
}

// Options configures the ledger service.
type Options struct {
	MaxBalance     int
	WelcomeBalance int
	CacheSize      int
	CacheTTL       time.Duration
}

// NewService creates a new credit ledger.
func NewService(repo repository.Ledger, sessions Sessions, statsSvc *stats.Collector, opts Options) Service {
	return &service{
		repo:           repo,
		locks:          concurrency.NewLockManager(),
		cache:          newBalanceCache(opts.CacheSize, opts.CacheTTL),
		sessions:       sessions,
		statsSvc:       statsSvc,
		maxBalance:     opts.MaxBalance,
		welcomeBalance: opts.WelcomeBalance,
	}
}

func persistErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
}

// loadBalance resolves the current balance, creating the account with
// the welcome balance on first sighting. Caller must hold the player lock.
func (s *service) loadBalance(ctx context.Context, playerID string) (int, error) {
	if balance, ok := s.cache.Get(playerID); ok {
		return balance, nil
	}

	balance, found, err := s.repo.GetBalance(ctx, playerID)
	if err != nil {
		return 0, persistErr(err)
	}

	if !found {
		balance = s.welcomeBalance
		if err := s.repo.SetBalance(ctx, playerID, balance); err != nil {
			return 0, persistErr(err)
		}
		logger.FromContext(ctx).Info("account created", "player_id", playerID, "balance", balance)
	}

	s.cache.Set(playerID, balance)
	return balance, nil
}

func (s *service) GetBalance(ctx context.Context, playerID string) (int, error) {
	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	return s.loadBalance(ctx, playerID)
}

func (s *service) SetBalance(ctx context.Context, playerID string, value int) error {
	if value < 0 {
		value = 0
	}
	if value > s.maxBalance {
		value = s.maxBalance
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.repo.SetBalance(ctx, playerID, value); err != nil {
		return persistErr(err)
	}
	s.cache.Set(playerID, value)
	return nil
}

func (s *service) AddBalance(ctx context.Context, playerID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidInput, amount)
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.loadBalance(ctx, playerID)
	if err != nil {
		return false, err
	}

	if current >= s.maxBalance {
		return false, nil
	}

	next := current + amount
	if next > s.maxBalance {
		next = s.maxBalance
	}

	if err := s.repo.SetBalance(ctx, playerID, next); err != nil {
		return false, persistErr(err)
	}
	s.cache.Set(playerID, next)

	metrics.CreditsCredited.Add(float64(next - current))
	s.statsSvc.Incr(stats.CounterCreditsEarned, int64(next-current))
	return true, nil
}

func (s *service) RemoveBalance(ctx context.Context, playerID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidInput, amount)
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.loadBalance(ctx, playerID)
	if err != nil {
		return false, err
	}

	if current < amount {
		return false, nil
	}

	next := current - amount
	if err := s.repo.SetBalance(ctx, playerID, next); err != nil {
		return false, persistErr(err)
	}
	s.cache.Set(playerID, next)

	metrics.CreditsDebited.Add(float64(amount))
	s.statsSvc.Incr(stats.CounterCreditsSpent, int64(amount))
	return true, nil
}

func (s *service) EvictOffline(ctx context.Context) int {
	evicted := 0
	for _, playerID := range s.cache.Keys() {
		if s.sessions.IsOnline(playerID) {
			continue
		}
		s.cache.Remove(playerID)
		evicted++
	}
	if evicted > 0 {
		logger.FromContext(ctx).Debug("evicted offline balance cache entries", "count", evicted)
	}
	return evicted
}
