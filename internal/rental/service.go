package rental

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/concurrency"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/event"
	"github.com/halveric/CosmeticsCore_Go/internal/ledger"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/metrics"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
	"github.com/halveric/CosmeticsCore_Go/internal/stats"
)

// SlotDeactivator lets the expiration sweep unequip a cosmetic whose
// lease just ended. Implemented by the activation slot manager.
type SlotDeactivator interface {
	DeactivateIfActive(ctx context.Context, playerID, cosmeticID string) bool
}

// Service defines the rental ledger interface. Business rejections
// (already owned, already leased, cannot afford, option not extendable)
// are boolean results; the error return is reserved for infrastructure
// failure and invalid input.
type Service interface {
	// Options lists the rental options derived for a cosmetic.
	Options(cosmeticID string) ([]domain.RentalOption, error)
	// Rent debits the option price and creates a lease.
	Rent(ctx context.Context, playerID, optionID string) (bool, error)
	// Extend debits the option price and pushes the lease expiry out by
	// the option duration, measured from the later of the current
	// expiry and now.
	Extend(ctx context.Context, playerID, cosmeticID, optionID string) (bool, error)
	// IsActive reports whether the player holds an unexpired lease.
	IsActive(playerID, cosmeticID string) bool
	// ActiveLeases returns the player's unexpired leases.
	ActiveLeases(playerID string) []domain.RentalLease
	// GrantFree creates a lease without a debit. Used for crate rental
	// tokens.
	GrantFree(ctx context.Context, playerID, cosmeticID string, kind domain.RentalOptionKind) (bool, error)
	// Sweep removes every expired lease, deactivating equipped
	// cosmetics and emitting expiry events. Returns the removal count.
	Sweep(ctx context.Context) int
	// Load populates memory from persistence, skipping expired rows.
	Load(ctx context.Context) error
	// BindSlots wires the slot manager in after construction; the slot
	// manager depends on IsActive, so the dependency is circular.
	BindSlots(slots SlotDeactivator)
}

type service struct {
	mu     sync.RWMutex
	leases map[string]domain.RentalLease // leaseKey -> lease

	cat      catalog.Catalog
	repo     repository.Rentals
	owns     repository.Ownership
	ledger   ledger.Service
	slots    SlotDeactivator
	bus      event.Bus
	locks    *concurrency.LockManager
	statsSvc *stats.Collector

	now func() time.Time
}

// NewService creates a new rental ledger.
func NewService(
	cat catalog.Catalog,
	repo repository.Rentals,
	owns repository.Ownership,
	ledgerSvc ledger.Service,
	bus event.Bus,
	statsSvc *stats.Collector,
) Service {
	return &service{
		leases:   make(map[string]domain.RentalLease),
		cat:      cat,
		repo:     repo,
		owns:     owns,
		ledger:   ledgerSvc,
		bus:      bus,
		locks:    concurrency.NewLockManager(),
		statsSvc: statsSvc,
		now:      time.Now,
	}
}

func leaseKey(playerID, cosmeticID string) string {
	return playerID + "|" + cosmeticID
}

func (s *service) BindSlots(slots SlotDeactivator) {
	s.slots = slots
}

func (s *service) Options(cosmeticID string) ([]domain.RentalOption, error) {
	cosmetic, ok := s.cat.Lookup(cosmeticID)
	if !ok {
		return nil, fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}
	return DeriveOptions(*cosmetic), nil
}

// resolveOption maps an option id to its derived option.
func (s *service) resolveOption(optionID string) (domain.RentalOption, error) {
	cosmeticID, kind, err := ParseOptionID(optionID)
	if err != nil {
		return domain.RentalOption{}, err
	}

	cosmetic, ok := s.cat.Lookup(cosmeticID)
	if !ok {
		return domain.RentalOption{}, fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}

	option, ok := findOption(*cosmetic, kind)
	if !ok {
		return domain.RentalOption{}, fmt.Errorf("%w: option %s", domain.ErrNotFound, optionID)
	}
	return option, nil
}

func (s *service) getLease(playerID, cosmeticID string) (domain.RentalLease, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lease, ok := s.leases[leaseKey(playerID, cosmeticID)]
	return lease, ok
}

func (s *service) Rent(ctx context.Context, playerID, optionID string) (bool, error) {
	log := logger.FromContext(ctx)

	option, err := s.resolveOption(optionID)
	if err != nil {
		return false, err
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	owned, err := s.owns.HasCosmetic(ctx, playerID, option.CosmeticID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	if owned {
		log.Info("rent rejected, cosmetic owned permanently", "player_id", playerID, "cosmetic", option.CosmeticID)
		return false, nil
	}

	if lease, ok := s.getLease(playerID, option.CosmeticID); ok && lease.Active(s.now()) {
		log.Info("rent rejected, lease already active", "player_id", playerID, "cosmetic", option.CosmeticID)
		return false, nil
	}

	paid, err := s.ledger.RemoveBalance(ctx, playerID, option.Price)
	if err != nil {
		return false, err
	}
	if !paid {
		return false, nil
	}

	lease := domain.RentalLease{
		PlayerID:   playerID,
		CosmeticID: option.CosmeticID,
		OptionID:   option.ID,
		ExpiresAt:  s.now().Add(option.Duration),
		Extendable: option.Extendable,
	}

	if err := s.repo.UpsertLease(ctx, lease); err != nil {
		// The debit already landed; give the credits back.
		if _, refundErr := s.ledger.AddBalance(ctx, playerID, option.Price); refundErr != nil {
			log.Error("failed to refund rental", "player_id", playerID, "price", option.Price, "error", refundErr)
		}
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	s.mu.Lock()
	s.leases[leaseKey(playerID, option.CosmeticID)] = lease
	s.mu.Unlock()

	metrics.RentalsStarted.Inc()
	s.statsSvc.Incr(stats.CounterRentalsStarted, 1)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, event.NewRentalEvent(event.RentalStarted, lease))
	}

	log.Info("rental started", "player_id", playerID, "cosmetic", option.CosmeticID, "option", option.ID, "expires_at", lease.ExpiresAt)
	return true, nil
}

func (s *service) Extend(ctx context.Context, playerID, cosmeticID, optionID string) (bool, error) {
	log := logger.FromContext(ctx)

	option, err := s.resolveOption(optionID)
	if err != nil {
		return false, err
	}
	if option.CosmeticID != cosmeticID {
		return false, fmt.Errorf("%w: option %s does not apply to cosmetic %s", domain.ErrInvalidInput, optionID, cosmeticID)
	}
	if !option.Extendable {
		log.Info("extend rejected, option not extendable", "player_id", playerID, "option", optionID)
		return false, nil
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	lease, ok := s.getLease(playerID, cosmeticID)
	if !ok {
		log.Info("extend rejected, no lease", "player_id", playerID, "cosmetic", cosmeticID)
		return false, nil
	}

	paid, err := s.ledger.RemoveBalance(ctx, playerID, option.Price)
	if err != nil {
		return false, err
	}
	if !paid {
		return false, nil
	}

	// Extend from the later of the current expiry and now: the player
	// may pay ahead while the lease is live, but an extension on a
	// lapsed lease never buys less than a fresh rental would.
	base := lease.ExpiresAt
	if now := s.now(); now.After(base) {
		base = now
	}
	lease.ExpiresAt = base.Add(option.Duration)
	lease.OptionID = option.ID

	if err := s.repo.UpsertLease(ctx, lease); err != nil {
		if _, refundErr := s.ledger.AddBalance(ctx, playerID, option.Price); refundErr != nil {
			log.Error("failed to refund extension", "player_id", playerID, "price", option.Price, "error", refundErr)
		}
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	s.mu.Lock()
	s.leases[leaseKey(playerID, cosmeticID)] = lease
	s.mu.Unlock()

	metrics.RentalsExtended.Inc()

	if s.bus != nil {
		_ = s.bus.Publish(ctx, event.NewRentalEvent(event.RentalExtended, lease))
	}

	log.Info("rental extended", "player_id", playerID, "cosmetic", cosmeticID, "expires_at", lease.ExpiresAt)
	return true, nil
}

func (s *service) IsActive(playerID, cosmeticID string) bool {
	lease, ok := s.getLease(playerID, cosmeticID)
	return ok && lease.Active(s.now())
}

func (s *service) ActiveLeases(playerID string) []domain.RentalLease {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.RentalLease
	for _, lease := range s.leases {
		if lease.PlayerID == playerID && lease.Active(now) {
			out = append(out, lease)
		}
	}
	return out
}

func (s *service) GrantFree(ctx context.Context, playerID, cosmeticID string, kind domain.RentalOptionKind) (bool, error) {
	cosmetic, ok := s.cat.Lookup(cosmeticID)
	if !ok {
		return false, fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}

	option, ok := findOption(*cosmetic, kind)
	if !ok {
		return false, fmt.Errorf("%w: cosmetic %s has no %s option", domain.ErrNotFound, cosmeticID, kind)
	}

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	owned, err := s.owns.HasCosmetic(ctx, playerID, cosmeticID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	if owned {
		return false, nil
	}
	if lease, ok := s.getLease(playerID, cosmeticID); ok && lease.Active(s.now()) {
		return false, nil
	}

	lease := domain.RentalLease{
		PlayerID:   playerID,
		CosmeticID: cosmeticID,
		OptionID:   option.ID,
		ExpiresAt:  s.now().Add(option.Duration),
		Extendable: option.Extendable,
	}

	if err := s.repo.UpsertLease(ctx, lease); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	s.mu.Lock()
	s.leases[leaseKey(playerID, cosmeticID)] = lease
	s.mu.Unlock()

	metrics.RentalsStarted.Inc()
	s.statsSvc.Incr(stats.CounterRentalsStarted, 1)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, event.NewRentalEvent(event.RentalStarted, lease))
	}
	return true, nil
}

// Sweep is idempotent: a lease already removed by an earlier pass is
// simply absent from the expired set.
func (s *service) Sweep(ctx context.Context) int {
	log := logger.FromContext(ctx)
	now := s.now()

	s.mu.Lock()
	var expired []domain.RentalLease
	for key, lease := range s.leases {
		if !lease.Active(now) {
			expired = append(expired, lease)
			delete(s.leases, key)
		}
	}
	s.mu.Unlock()

	for _, lease := range expired {
		if err := s.repo.DeleteLease(ctx, lease.PlayerID, lease.CosmeticID); err != nil {
			// The in-memory lease is already gone; the stale row is
			// skipped at the next startup load.
			log.Error("failed to delete expired lease row", "player_id", lease.PlayerID, "cosmetic", lease.CosmeticID, "error", err)
		}

		if s.slots != nil {
			s.slots.DeactivateIfActive(ctx, lease.PlayerID, lease.CosmeticID)
		}

		metrics.RentalsExpired.Inc()
		s.statsSvc.Incr(stats.CounterRentalsExpired, 1)

		if s.bus != nil {
			_ = s.bus.Publish(ctx, event.NewRentalEvent(event.RentalExpired, lease))
		}

		log.Info("rental expired", "player_id", lease.PlayerID, "cosmetic", lease.CosmeticID)
	}

	return len(expired)
}

func (s *service) Load(ctx context.Context) error {
	leases, err := s.repo.ListLeases(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}

	now := s.now()
	loaded := 0

	s.mu.Lock()
	for _, lease := range leases {
		// Rows that expired while the process was down are treated as
		// already swept; their deletion is lazy.
		if !lease.Active(now) {
			continue
		}
		s.leases[leaseKey(lease.PlayerID, lease.CosmeticID)] = lease
		loaded++
	}
	s.mu.Unlock()

	logger.FromContext(ctx).Info("rental leases loaded", "count", loaded, "skipped", len(leases)-loaded)
	return nil
}
