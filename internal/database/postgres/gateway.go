package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// Gateway implements the persistence gateway for PostgreSQL.
type Gateway struct {
	db *pgxpool.Pool
}

// NewGateway creates a new Gateway.
func NewGateway(db *pgxpool.Pool) *Gateway {
	return &Gateway{db: db}
}

// Ping verifies database connectivity.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.Ping(ctx)
}

// GetBalance returns the stored balance for a player. found is false
// when the player has no account row yet.
func (g *Gateway) GetBalance(ctx context.Context, playerID string) (int, bool, error) {
	query := `SELECT credits FROM account WHERE player_id = $1`

	var balance int
	err := g.db.QueryRow(ctx, query, playerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, true, nil
}

// SetBalance upserts the player's balance.
func (g *Gateway) SetBalance(ctx context.Context, playerID string, balance int) error {
	query := `
		INSERT INTO account (player_id, credits)
		VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE
		SET credits = EXCLUDED.credits
	`
	if _, err := g.db.Exec(ctx, query, playerID, balance); err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

// HasCosmetic reports whether the player permanently owns the cosmetic.
func (g *Gateway) HasCosmetic(ctx context.Context, playerID, cosmeticID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ownership WHERE player_id = $1 AND cosmetic_id = $2)`

	var owned bool
	if err := g.db.QueryRow(ctx, query, playerID, cosmeticID).Scan(&owned); err != nil {
		return false, fmt.Errorf("failed to check ownership: %w", err)
	}
	return owned, nil
}

// GiveCosmetic grants permanent ownership of the cosmetic.
func (g *Gateway) GiveCosmetic(ctx context.Context, playerID, cosmeticID string) error {
	query := `
		INSERT INTO ownership (player_id, cosmetic_id)
		VALUES ($1, $2)
		ON CONFLICT (player_id, cosmetic_id) DO NOTHING
	`
	if _, err := g.db.Exec(ctx, query, playerID, cosmeticID); err != nil {
		return fmt.Errorf("failed to give cosmetic: %w", err)
	}
	return nil
}

// RemoveCosmetic revokes permanent ownership of the cosmetic.
func (g *Gateway) RemoveCosmetic(ctx context.Context, playerID, cosmeticID string) error {
	query := `DELETE FROM ownership WHERE player_id = $1 AND cosmetic_id = $2`
	if _, err := g.db.Exec(ctx, query, playerID, cosmeticID); err != nil {
		return fmt.Errorf("failed to remove cosmetic: %w", err)
	}
	return nil
}

// GetCrateCounts returns all crate counts for a player, keyed by tier.
func (g *Gateway) GetCrateCounts(ctx context.Context, playerID string) (map[string]int, error) {
	query := `SELECT tier, count FROM crate_inventory WHERE player_id = $1`

	rows, err := g.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get crate counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tier string
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan crate count: %w", err)
		}
		counts[tier] = count
	}
	return counts, rows.Err()
}

// UpsertCrateCount writes the player's crate count for a tier.
func (g *Gateway) UpsertCrateCount(ctx context.Context, playerID, tier string, count int) error {
	query := `
		INSERT INTO crate_inventory (player_id, tier, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, tier) DO UPDATE
		SET count = EXCLUDED.count
	`
	if _, err := g.db.Exec(ctx, query, playerID, tier, count); err != nil {
		return fmt.Errorf("failed to upsert crate count: %w", err)
	}
	return nil
}

// DeleteCrateCount removes the player's crate row for a tier.
func (g *Gateway) DeleteCrateCount(ctx context.Context, playerID, tier string) error {
	query := `DELETE FROM crate_inventory WHERE player_id = $1 AND tier = $2`
	if _, err := g.db.Exec(ctx, query, playerID, tier); err != nil {
		return fmt.Errorf("failed to delete crate count: %w", err)
	}
	return nil
}

// ListLeases returns every persisted rental lease. The rental ledger
// filters out already-expired rows at load time.
func (g *Gateway) ListLeases(ctx context.Context) ([]domain.RentalLease, error) {
	query := `SELECT player_id, cosmetic_id, option_id, expires_at, extendable FROM rental_lease`

	rows, err := g.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leases: %w", err)
	}
	defer rows.Close()

	var leases []domain.RentalLease
	for rows.Next() {
		var lease domain.RentalLease
		if err := rows.Scan(&lease.PlayerID, &lease.CosmeticID, &lease.OptionID, &lease.ExpiresAt, &lease.Extendable); err != nil {
			return nil, fmt.Errorf("failed to scan lease: %w", err)
		}
		leases = append(leases, lease)
	}
	return leases, rows.Err()
}

// UpsertLease writes a rental lease row.
func (g *Gateway) UpsertLease(ctx context.Context, lease domain.RentalLease) error {
	query := `
		INSERT INTO rental_lease (player_id, cosmetic_id, option_id, expires_at, extendable)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, cosmetic_id) DO UPDATE
		SET option_id = EXCLUDED.option_id,
		    expires_at = EXCLUDED.expires_at,
		    extendable = EXCLUDED.extendable
	`
	if _, err := g.db.Exec(ctx, query, lease.PlayerID, lease.CosmeticID, lease.OptionID, lease.ExpiresAt, lease.Extendable); err != nil {
		return fmt.Errorf("failed to upsert lease: %w", err)
	}
	return nil
}

// DeleteLease removes a rental lease row.
func (g *Gateway) DeleteLease(ctx context.Context, playerID, cosmeticID string) error {
	query := `DELETE FROM rental_lease WHERE player_id = $1 AND cosmetic_id = $2`
	if _, err := g.db.Exec(ctx, query, playerID, cosmeticID); err != nil {
		return fmt.Errorf("failed to delete lease: %w", err)
	}
	return nil
}

// SaveSlots writes a best-effort snapshot of a player's active slots,
// replacing any previous snapshot.
func (g *Gateway) SaveSlots(ctx context.Context, playerID string, slots map[domain.Category]string) error {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM active_slot WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("failed to clear slot snapshot: %w", err)
	}

	for category, cosmeticID := range slots {
		query := `INSERT INTO active_slot (player_id, category, cosmetic_id) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, query, playerID, string(category), cosmeticID); err != nil {
			return fmt.Errorf("failed to insert slot snapshot: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LoadSlots reads a player's slot snapshot. A missing snapshot yields an
// empty map, never an error.
func (g *Gateway) LoadSlots(ctx context.Context, playerID string) (map[domain.Category]string, error) {
	query := `SELECT category, cosmetic_id FROM active_slot WHERE player_id = $1`

	rows, err := g.db.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot snapshot: %w", err)
	}
	defer rows.Close()

	slots := make(map[domain.Category]string)
	for rows.Next() {
		var category, cosmeticID string
		if err := rows.Scan(&category, &cosmeticID); err != nil {
			return nil, fmt.Errorf("failed to scan slot snapshot: %w", err)
		}
		slots[domain.Category(category)] = cosmeticID
	}
	return slots, rows.Err()
}

// ClearSlots drops a player's slot snapshot.
func (g *Gateway) ClearSlots(ctx context.Context, playerID string) error {
	query := `DELETE FROM active_slot WHERE player_id = $1`
	if _, err := g.db.Exec(ctx, query, playerID); err != nil {
		return fmt.Errorf("failed to clear slot snapshot: %w", err)
	}
	return nil
}

// AppendAuditRecord appends one crate opening to the audit log.
func (g *Gateway) AppendAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_log (id, player_id, tier, reward_type, payload_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := g.db.Exec(ctx, query,
		record.ID,
		record.PlayerID,
		record.Tier,
		string(record.RewardType),
		record.PayloadID,
		record.Amount,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// SaveSnapshot writes a stats counter snapshot as a JSONB row.
func (g *Gateway) SaveSnapshot(ctx context.Context, snapshot domain.StatsSnapshot) error {
	counters, err := json.Marshal(snapshot.Counters)
	if err != nil {
		return fmt.Errorf("failed to marshal counters: %w", err)
	}

	query := `INSERT INTO stats_snapshot (taken_at, counters) VALUES ($1, $2)`
	if _, err := g.db.Exec(ctx, query, snapshot.TakenAt, counters); err != nil {
		return fmt.Errorf("failed to save stats snapshot: %w", err)
	}
	return nil
}
