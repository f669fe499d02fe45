package crate

import (
	"context"
	"fmt"
	"sync"

	"github.com/halveric/CosmeticsCore_Go/internal/concurrency"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
)

// Inventory tracks per-player crate counts with a read-through cache
// over the gateway. Counts are persisted before the in-memory copy is
// touched, so a rejected write leaves no phantom crates.
type Inventory struct {
	mu     sync.RWMutex
	counts map[string]map[string]int // playerID -> tier -> count
	loaded map[string]bool

	locks *concurrency.LockManager
	repo  repository.Crates
}

// NewInventory creates a crate inventory over the given store.
func NewInventory(repo repository.Crates) *Inventory {
	return &Inventory{
		counts: make(map[string]map[string]int),
		loaded: make(map[string]bool),
		locks:  concurrency.NewLockManager(),
		repo:   repo,
	}
}

// ensureLoaded pulls a player's persisted counts into memory once.
// Caller must hold the player lock.
func (inv *Inventory) ensureLoaded(ctx context.Context, playerID string) error {
	inv.mu.RLock()
	done := inv.loaded[playerID]
	inv.mu.RUnlock()
	if done {
		return nil
	}

	counts, err := inv.repo.GetCrateCounts(ctx, playerID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	inv.mu.Lock()
	inv.counts[playerID] = counts
	inv.loaded[playerID] = true
	inv.mu.Unlock()
	return nil
}

// Count returns how many crates of the tier the player holds.
func (inv *Inventory) Count(ctx context.Context, playerID, tier string) (int, error) {
	mu := inv.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := inv.ensureLoaded(ctx, playerID); err != nil {
		return 0, err
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.counts[playerID][tier], nil
}

// Counts returns a copy of all of the player's crate counts.
func (inv *Inventory) Counts(ctx context.Context, playerID string) (map[string]int, error) {
	mu := inv.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := inv.ensureLoaded(ctx, playerID); err != nil {
		return nil, err
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	out := make(map[string]int, len(inv.counts[playerID]))
	for tier, count := range inv.counts[playerID] {
		out[tier] = count
	}
	return out, nil
}

// Add credits the player with qty crates of the tier.
func (inv *Inventory) Add(ctx context.Context, playerID, tier string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, qty)
	}

	mu := inv.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := inv.ensureLoaded(ctx, playerID); err != nil {
		return err
	}

	inv.mu.RLock()
	next := inv.counts[playerID][tier] + qty
	inv.mu.RUnlock()

	if err := inv.repo.UpsertCrateCount(ctx, playerID, tier, next); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	inv.mu.Lock()
	if inv.counts[playerID] == nil {
		inv.counts[playerID] = make(map[string]int)
	}
	inv.counts[playerID][tier] = next
	inv.mu.Unlock()
	return nil
}

// Consume removes one crate of the tier. Returns false when the player
// holds none; a count that reaches zero has its row deleted.
func (inv *Inventory) Consume(ctx context.Context, playerID, tier string) (bool, error) {
	mu := inv.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if err := inv.ensureLoaded(ctx, playerID); err != nil {
		return false, err
	}

	inv.mu.RLock()
	current := inv.counts[playerID][tier]
	inv.mu.RUnlock()

	if current <= 0 {
		return false, nil
	}

	next := current - 1
	var err error
	if next == 0 {
		err = inv.repo.DeleteCrateCount(ctx, playerID, tier)
	} else {
		err = inv.repo.UpsertCrateCount(ctx, playerID, tier, next)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	inv.mu.Lock()
	if next == 0 {
		delete(inv.counts[playerID], tier)
	} else {
		inv.counts[playerID][tier] = next
	}
	inv.mu.Unlock()
	return true, nil
}
