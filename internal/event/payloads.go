package event

import "github.com/halveric/CosmeticsCore_Go/internal/domain"

// Typed event payloads for type safety

// CrateOpenedPayloadV1 is the typed payload for crate opening events.
type CrateOpenedPayloadV1 struct {
	PlayerID   string            `json:"player_id"`
	Tier       string            `json:"tier"`
	RewardType domain.RewardType `json:"reward_type"`
	PayloadID  string            `json:"payload_id,omitempty"`
	Amount     int               `json:"amount"`
	Rarity     domain.Rarity     `json:"rarity"`
}

// CratePurchasedPayloadV1 is the typed payload for crate purchase events.
type CratePurchasedPayloadV1 struct {
	PlayerID string `json:"player_id"`
	Tier     string `json:"tier"`
	Quantity int    `json:"quantity"`
	Cost     int    `json:"cost"`
}

// RentalPayloadV1 is the typed payload for rental lifecycle events.
type RentalPayloadV1 struct {
	PlayerID   string `json:"player_id"`
	CosmeticID string `json:"cosmetic_id"`
	OptionID   string `json:"option_id"`
	ExpiresAt  int64  `json:"expires_at"`
}

// SlotPayloadV1 is the typed payload for activation slot events.
type SlotPayloadV1 struct {
	PlayerID   string          `json:"player_id"`
	Category   domain.Category `json:"category"`
	CosmeticID string          `json:"cosmetic_id"`
	Reason     string          `json:"reason,omitempty"`
}

// Type-safe event constructors

// NewCrateOpenedEvent creates a crate opened event.
func NewCrateOpenedEvent(playerID string, reward domain.RewardEntry) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    CrateOpened,
		Payload: CrateOpenedPayloadV1{
			PlayerID:   playerID,
			Tier:       reward.Tier,
			RewardType: reward.Type,
			PayloadID:  reward.PayloadID,
			Amount:     reward.Amount,
			Rarity:     reward.Rarity,
		},
	}
}

// NewCratePurchasedEvent creates a crate purchase event.
func NewCratePurchasedEvent(playerID, tier string, quantity, cost int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    CratePurchased,
		Payload: CratePurchasedPayloadV1{
			PlayerID: playerID,
			Tier:     tier,
			Quantity: quantity,
			Cost:     cost,
		},
	}
}

// NewRentalEvent creates a rental lifecycle event of the given type.
func NewRentalEvent(eventType Type, lease domain.RentalLease) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: RentalPayloadV1{
			PlayerID:   lease.PlayerID,
			CosmeticID: lease.CosmeticID,
			OptionID:   lease.OptionID,
			ExpiresAt:  lease.ExpiresAt.Unix(),
		},
	}
}

// NewSlotEvent creates an activation slot event of the given type.
func NewSlotEvent(eventType Type, playerID string, category domain.Category, cosmeticID, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: SlotPayloadV1{
			PlayerID:   playerID,
			Category:   category,
			CosmeticID: cosmeticID,
			Reason:     reason,
		},
	}
}
