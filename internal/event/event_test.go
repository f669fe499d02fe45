package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

func TestMemoryBus_DeliversToSubscribers(t *testing.T) {
	bus := NewMemoryBus()

	var received []Event
	bus.Subscribe(CrateOpened, func(_ context.Context, e Event) error {
		received = append(received, e)
		return nil
	})

	e := NewCrateOpenedEvent("player-1", domain.RewardEntry{
		Tier:   "common",
		Type:   domain.RewardCredits,
		Amount: 25,
		Rarity: domain.RarityCommon,
	})
	require.NoError(t, bus.Publish(context.Background(), e))

	require.Len(t, received, 1)
	assert.Equal(t, EventSchemaVersion, received[0].Version)

	payload, ok := received[0].Payload.(CrateOpenedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, "player-1", payload.PlayerID)
	assert.Equal(t, 25, payload.Amount)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	err := bus.Publish(context.Background(), NewCratePurchasedEvent("player-1", "common", 1, 50))
	assert.NoError(t, err)
}

func TestMemoryBus_TypeFiltering(t *testing.T) {
	bus := NewMemoryBus()

	var rentals int
	bus.Subscribe(RentalStarted, func(context.Context, Event) error {
		rentals++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewRentalEvent(RentalStarted, domain.RentalLease{})))
	require.NoError(t, bus.Publish(context.Background(), NewRentalEvent(RentalExpired, domain.RentalLease{})))

	assert.Equal(t, 1, rentals)
}

func TestMemoryBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewMemoryBus()

	failure := errors.New("handler broke")
	var delivered bool
	bus.Subscribe(SlotActivated, func(context.Context, Event) error { return failure })
	bus.Subscribe(SlotActivated, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := bus.Publish(context.Background(), NewSlotEvent(SlotActivated, "player-1", domain.CategoryHat, "hat_iron", ""))

	assert.ErrorIs(t, err, failure)
	assert.True(t, delivered)
}
