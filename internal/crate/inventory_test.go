package crate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

func TestInventory_AddAndCount(t *testing.T) {
	store := newFakeCrateStore()
	inv := NewInventory(store)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, "player-1", "common", 3))

	count, err := inv.Count(ctx, "player-1", "common")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, store.stored("player-1", "common"))
}

func TestInventory_LoadsPersistedCounts(t *testing.T) {
	store := newFakeCrateStore()
	store.counts["player-1"] = map[string]int{"rare": 2}
	inv := NewInventory(store)

	count, err := inv.Count(context.Background(), "player-1", "rare")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInventory_ConsumeDecrementsAndDeletesAtZero(t *testing.T) {
	store := newFakeCrateStore()
	inv := NewInventory(store)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, "player-1", "common", 2))

	consumed, err := inv.Consume(ctx, "player-1", "common")
	require.NoError(t, err)
	assert.True(t, consumed)
	assert.Equal(t, 1, store.stored("player-1", "common"))

	consumed, err = inv.Consume(ctx, "player-1", "common")
	require.NoError(t, err)
	assert.True(t, consumed)

	// Zero counts have no row.
	store.mu.Lock()
	_, exists := store.counts["player-1"]["common"]
	store.mu.Unlock()
	assert.False(t, exists)

	consumed, err = inv.Consume(ctx, "player-1", "common")
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestInventory_ConsumeWithoutCrates(t *testing.T) {
	inv := NewInventory(newFakeCrateStore())

	consumed, err := inv.Consume(context.Background(), "player-1", "common")
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestInventory_AddRejectsNonPositiveQuantity(t *testing.T) {
	inv := NewInventory(newFakeCrateStore())

	err := inv.Add(context.Background(), "player-1", "common", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInventory_PersistFailureLeavesMemoryUntouched(t *testing.T) {
	store := newFakeCrateStore()
	inv := NewInventory(store)
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, "player-1", "common", 1))

	store.fail = errors.New("write failed")
	err := inv.Add(ctx, "player-1", "common", 5)
	assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)

	store.fail = nil
	count, err := inv.Count(ctx, "player-1", "common")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInventory_Counts(t *testing.T) {
	inv := NewInventory(newFakeCrateStore())
	ctx := context.Background()

	require.NoError(t, inv.Add(ctx, "player-1", "common", 2))
	require.NoError(t, inv.Add(ctx, "player-1", "rare", 1))

	counts, err := inv.Counts(ctx, "player-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"common": 2, "rare": 1}, counts)
}
