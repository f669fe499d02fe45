package repository

import (
	"context"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// The persistence gateway is the engine's only contract with storage.
// Implementations are backend-agnostic; the engine treats any failure as
// domain.ErrPersistenceUnavailable and fails safe.

// Ledger persists player balances.
type Ledger interface {
	// GetBalance returns the stored balance. found is false when no
	// account row exists yet.
	GetBalance(ctx context.Context, playerID string) (balance int, found bool, err error)
	SetBalance(ctx context.Context, playerID string, balance int) error
}

// Ownership persists permanent cosmetic grants.
type Ownership interface {
	HasCosmetic(ctx context.Context, playerID, cosmeticID string) (bool, error)
	GiveCosmetic(ctx context.Context, playerID, cosmeticID string) error
	RemoveCosmetic(ctx context.Context, playerID, cosmeticID string) error
}

// Crates persists per-player crate counts.
type Crates interface {
	GetCrateCounts(ctx context.Context, playerID string) (map[string]int, error)
	UpsertCrateCount(ctx context.Context, playerID, tier string, count int) error
	DeleteCrateCount(ctx context.Context, playerID, tier string) error
}

// Rentals persists rental leases.
type Rentals interface {
	ListLeases(ctx context.Context) ([]domain.RentalLease, error)
	UpsertLease(ctx context.Context, lease domain.RentalLease) error
	DeleteLease(ctx context.Context, playerID, cosmeticID string) error
}

// Slots persists best-effort snapshots of active cosmetic slots.
// Absence of a snapshot is never an error.
type Slots interface {
	SaveSlots(ctx context.Context, playerID string, slots map[domain.Category]string) error
	LoadSlots(ctx context.Context, playerID string) (map[domain.Category]string, error)
	ClearSlots(ctx context.Context, playerID string) error
}

// Audit is the write-only crate opening log.
type Audit interface {
	AppendAuditRecord(ctx context.Context, record domain.AuditRecord) error
}

// Stats persists periodic counter snapshots.
type Stats interface {
	SaveSnapshot(ctx context.Context, snapshot domain.StatsSnapshot) error
}

// Gateway is the full persistence contract required by the engine.
type Gateway interface {
	Ledger
	Ownership
	Crates
	Rentals
	Slots
	Audit
	Stats

	// Ping verifies the backing store is reachable. A failed ping at
	// engine construction is fatal.
	Ping(ctx context.Context) error
}
