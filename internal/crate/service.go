package crate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/event"
	"github.com/halveric/CosmeticsCore_Go/internal/ledger"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/metrics"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
	"github.com/halveric/CosmeticsCore_Go/internal/stats"
	"github.com/halveric/CosmeticsCore_Go/internal/worker"
)

// OpenResult describes the outcome of opening one crate.
type OpenResult struct {
	Reward         domain.RewardEntry
	CreditsGranted int
	// Duplicate is set when a cosmetic reward was converted to credits
	// because the player already owned it.
	Duplicate bool
	// LeasedCosmeticID is set when a rental token reward produced a lease.
	LeasedCosmeticID string
}

// RentalGranter lets the distributor turn rental-token rewards into
// real leases without importing the rental ledger directly.
type RentalGranter interface {
	GrantFree(ctx context.Context, playerID, cosmeticID string, kind domain.RentalOptionKind) (bool, error)
}

// Service defines the reward distributor interface.
type Service interface {
	// PurchaseCrate buys qty crates of a tier. The bool result is false
	// when the player cannot afford the purchase.
	PurchaseCrate(ctx context.Context, playerID, tierKey string, qty int) (bool, error)
	// OpenCrate consumes one crate, rolls the tier's reward table, and
	// applies the reward.
	OpenCrate(ctx context.Context, playerID, tierKey string) (*OpenResult, error)
	// CrateCounts returns the player's crate counts by tier.
	CrateCounts(ctx context.Context, playerID string) (map[string]int, error)
}

// specialEffect applies one named SPECIAL reward.
type specialEffect func(ctx context.Context, playerID string, reward domain.RewardEntry, result *OpenResult) error

type service struct {
	cat      catalog.Catalog
	tables   map[string]*Table
	ledger   ledger.Service
	owns     repository.Ownership
	inv      *Inventory
	audit    repository.Audit
	rentals  RentalGranter
	bus      event.Bus
	pool     *worker.Pool
	statsSvc *stats.Collector
	specials map[string]specialEffect

	rnd func() float64
	now func() time.Time
}

// NewService builds the reward tables and creates the distributor.
// A table that fails validation is fatal.
func NewService(
	cat catalog.Catalog,
	ledgerSvc ledger.Service,
	owns repository.Ownership,
	inv *Inventory,
	audit repository.Audit,
	rentals RentalGranter,
	bus event.Bus,
	pool *worker.Pool,
	statsSvc *stats.Collector,
) (Service, error) {
	tables, err := BuildTables(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to build reward tables: %w", err)
	}

	s := &service{
		cat:      cat,
		tables:   tables,
		ledger:   ledgerSvc,
		owns:     owns,
		inv:      inv,
		audit:    audit,
		rentals:  rentals,
		bus:      bus,
		pool:     pool,
		statsSvc: statsSvc,
		rnd:      rand.Float64, //nolint:gosec // game RNG, not security critical
		now:      time.Now,
	}
	s.specials = map[string]specialEffect{
		SpecialTierUpgrade: s.applyTierUpgrade,
	}
	return s, nil
}

func (s *service) PurchaseCrate(ctx context.Context, playerID, tierKey string, qty int) (bool, error) {
	log := logger.FromContext(ctx)

	if qty <= 0 || qty > domain.MaxCratePurchaseQuantity {
		return false, fmt.Errorf("%w: quantity %d outside [1, %d]", domain.ErrInvalidInput, qty, domain.MaxCratePurchaseQuantity)
	}

	tier, ok := s.cat.Tier(tierKey)
	if !ok {
		return false, fmt.Errorf("%w: tier %s", domain.ErrNotFound, tierKey)
	}
	if !tier.Purchasable {
		return false, fmt.Errorf("%w: tier %s is not purchasable", domain.ErrInvalidInput, tierKey)
	}

	cost := tier.Price * qty
	paid, err := s.ledger.RemoveBalance(ctx, playerID, cost)
	if err != nil {
		return false, err
	}
	if !paid {
		return false, nil
	}

	if err := s.inv.Add(ctx, playerID, tierKey, qty); err != nil {
		// The debit already landed; put the credits back rather than
		// leave the player short with no crates.
		if _, refundErr := s.ledger.AddBalance(ctx, playerID, cost); refundErr != nil {
			log.Error("failed to refund crate purchase", "player_id", playerID, "cost", cost, "error", refundErr)
		}
		return false, err
	}

	metrics.CratesPurchased.WithLabelValues(tierKey).Add(float64(qty))
	s.statsSvc.Incr(stats.CounterCratesBought, int64(qty))

	if s.bus != nil {
		_ = s.bus.Publish(ctx, event.NewCratePurchasedEvent(playerID, tierKey, qty, cost))
	}

	log.Info("crates purchased", "player_id", playerID, "tier", tierKey, "quantity", qty, "cost", cost)
	return true, nil
}

func (s *service) OpenCrate(ctx context.Context, playerID, tierKey string) (*OpenResult, error) {
	log := logger.FromContext(ctx)

	table, ok := s.tables[tierKey]
	if !ok {
		return nil, fmt.Errorf("%w: tier %s", domain.ErrNotFound, tierKey)
	}

	consumed, err := s.inv.Consume(ctx, playerID, tierKey)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, fmt.Errorf("%w: no %s crates to open", domain.ErrNotFound, tierKey)
	}

	reward := table.Select(s.rnd)
	result, err := s.applyReward(ctx, playerID, reward)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, playerID, reward)

	metrics.CratesOpened.WithLabelValues(tierKey).Inc()
	metrics.RewardsGranted.WithLabelValues(string(reward.Type)).Inc()
	s.statsSvc.Incr(stats.CounterCratesOpened, 1)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, event.NewCrateOpenedEvent(playerID, reward))
	}

	log.Info("crate opened",
		"player_id", playerID,
		"tier", tierKey,
		"reward_type", reward.Type,
		"payload", reward.PayloadID,
		"amount", reward.Amount)
	return result, nil
}

func (s *service) CrateCounts(ctx context.Context, playerID string) (map[string]int, error) {
	return s.inv.Counts(ctx, playerID)
}

// applyReward applies one selected reward. Persistence is confirmed
// before any in-memory effect so a gateway failure leaves no ghost state.
func (s *service) applyReward(ctx context.Context, playerID string, reward domain.RewardEntry) (*OpenResult, error) {
	result := &OpenResult{Reward: reward}

	switch reward.Type {
	case domain.RewardCredits:
		credited, err := s.ledger.AddBalance(ctx, playerID, reward.Amount)
		if err != nil {
			return nil, err
		}
		if credited {
			result.CreditsGranted = reward.Amount
		}

	case domain.RewardCosmetic:
		if err := s.applyCosmetic(ctx, playerID, reward, result); err != nil {
			return nil, err
		}

	case domain.RewardCrate:
		if err := s.inv.Add(ctx, playerID, reward.PayloadID, reward.Amount); err != nil {
			return nil, err
		}

	case domain.RewardRental:
		if err := s.applyRentalToken(ctx, playerID, reward, result); err != nil {
			return nil, err
		}

	case domain.RewardSpecial:
		effect, ok := s.specials[reward.PayloadID]
		if !ok {
			// Unknown special names degrade to a fixed credit grant.
			credited, err := s.ledger.AddBalance(ctx, playerID, fallbackSpecialCredits)
			if err != nil {
				return nil, err
			}
			if credited {
				result.CreditsGranted = fallbackSpecialCredits
			}
			break
		}
		if err := effect(ctx, playerID, reward, result); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unknown reward type %s", domain.ErrInvalidInput, reward.Type)
	}

	return result, nil
}

// applyCosmetic grants ownership, or converts the reward to credits when
// the player already owns the cosmetic.
func (s *service) applyCosmetic(ctx context.Context, playerID string, reward domain.RewardEntry, result *OpenResult) error {
	cosmetic, ok := s.cat.Lookup(reward.PayloadID)
	if !ok {
		return fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, reward.PayloadID)
	}

	owned, err := s.owns.HasCosmetic(ctx, playerID, cosmetic.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	if owned {
		refund := cosmetic.Price / domain.DuplicateCreditDivisor
		if refund < domain.DuplicateCreditFloor {
			refund = domain.DuplicateCreditFloor
		}
		credited, err := s.ledger.AddBalance(ctx, playerID, refund)
		if err != nil {
			return err
		}
		if credited {
			result.CreditsGranted = refund
		}
		result.Duplicate = true
		return nil
	}

	if err := s.owns.GiveCosmetic(ctx, playerID, cosmetic.ID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

// applyRentalToken grants a free lease on a random rentable cosmetic the
// player does not own. Falls back to credits when nothing qualifies.
func (s *service) applyRentalToken(ctx context.Context, playerID string, reward domain.RewardEntry, result *OpenResult) error {
	kind := domain.RentalOptionKind(reward.PayloadID)

	candidates := make([]domain.Cosmetic, 0)
	for _, cosmetic := range s.cat.All() {
		if cosmetic.Price <= 0 || cosmetic.Free || cosmetic.Gated() {
			continue
		}
		candidates = append(candidates, cosmetic)
	}

	// Try a random starting point, then walk the rest of the list.
	if len(candidates) > 0 {
		start := int(s.rnd() * float64(len(candidates)))
		for i := 0; i < len(candidates); i++ {
			cosmetic := candidates[(start+i)%len(candidates)]
			granted, err := s.rentals.GrantFree(ctx, playerID, cosmetic.ID, kind)
			if err != nil {
				return err
			}
			if granted {
				result.LeasedCosmeticID = cosmetic.ID
				return nil
			}
		}
	}

	// Everything is already owned or leased; pay credits instead.
	credited, err := s.ledger.AddBalance(ctx, playerID, fallbackSpecialCredits)
	if err != nil {
		return err
	}
	if credited {
		result.CreditsGranted = fallbackSpecialCredits
	}
	return nil
}

// applyTierUpgrade grants one crate of the next tier up.
func (s *service) applyTierUpgrade(ctx context.Context, playerID string, reward domain.RewardEntry, result *OpenResult) error {
	current, ok := s.cat.Tier(reward.Tier)
	if !ok {
		return fmt.Errorf("%w: tier %s", domain.ErrNotFound, reward.Tier)
	}

	for _, tier := range s.cat.Tiers() {
		if tier.Rank == current.Rank+1 {
			return s.inv.Add(ctx, playerID, tier.Key, 1)
		}
	}

	// Table construction never emits tier_upgrade for the top rank, but
	// degrade gracefully if the catalog changed underneath us.
	credited, err := s.ledger.AddBalance(ctx, playerID, fallbackSpecialCredits)
	if err != nil {
		return err
	}
	if credited {
		result.CreditsGranted = fallbackSpecialCredits
	}
	return nil
}

// appendAudit writes the opening to the audit log off the game thread.
// The log is write-only; a failed append is logged and dropped.
func (s *service) appendAudit(ctx context.Context, playerID string, reward domain.RewardEntry) {
	record := domain.AuditRecord{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Tier:       reward.Tier,
		RewardType: reward.Type,
		PayloadID:  reward.PayloadID,
		Amount:     reward.Amount,
		CreatedAt:  s.now(),
	}

	job := worker.Func(func(jobCtx context.Context) error {
		return s.audit.AppendAuditRecord(jobCtx, record)
	})

	if s.pool == nil || !s.pool.TryEnqueue(job) {
		if err := s.audit.AppendAuditRecord(ctx, record); err != nil {
			logger.FromContext(ctx).Error("failed to append audit record", "player_id", playerID, "error", err)
		}
	}
}
