package slots

import (
	"context"
	"fmt"
	"sync"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/concurrency"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
	"github.com/halveric/CosmeticsCore_Go/internal/event"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/metrics"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
	"github.com/halveric/CosmeticsCore_Go/internal/session"
	"github.com/halveric/CosmeticsCore_Go/internal/worker"
)

// Rentals reports whether a player holds an unexpired lease. Implemented
// by the rental ledger.
type Rentals interface {
	IsActive(playerID, cosmeticID string) bool
}

// AccessBridge is the optional elevated-access capability, resolved once
// at startup. Deployments without a permission backend use NoAccessBridge.
type AccessBridge interface {
	HasElevatedAccess(ctx context.Context, playerID string) bool
}

// NoAccessBridge denies elevated access for everyone.
type NoAccessBridge struct{}

func (NoAccessBridge) HasElevatedAccess(context.Context, string) bool { return false }

// Manager enforces the one-active-cosmetic-per-category rule. Its state
// is ephemeral session state rebuilt from player actions; the persisted
// snapshot is a convenience, never a source of truth.
//
// Locking: the per-player lock serializes logical operations for one
// player (check, handler call, install); mu guards the map structure
// itself against concurrent access across players.
type Manager struct {
	mu     sync.RWMutex
	active map[string]map[domain.Category]string // playerID -> category -> cosmeticID

	cat       catalog.Catalog
	owns      repository.Ownership
	rentals   Rentals
	access    AccessBridge
	registry  *Registry
	bus       event.Bus
	sessions  *session.Registry
	snapshots repository.Slots
	pool      *worker.Pool
	locks     *concurrency.LockManager
}

// NewManager creates a new activation slot manager.
func NewManager(
	cat catalog.Catalog,
	owns repository.Ownership,
	rentals Rentals,
	access AccessBridge,
	registry *Registry,
	bus event.Bus,
	sessions *session.Registry,
	snapshots repository.Slots,
	pool *worker.Pool,
) *Manager {
	if access == nil {
		access = NoAccessBridge{}
	}
	return &Manager{
		active:    make(map[string]map[domain.Category]string),
		cat:       cat,
		owns:      owns,
		rentals:   rentals,
		access:    access,
		registry:  registry,
		bus:       bus,
		sessions:  sessions,
		snapshots: snapshots,
		pool:      pool,
		locks:     concurrency.NewLockManager(),
	}
}

// Map accessors. All structural reads/writes of m.active go through
// these so the map stays safe across per-player locks.

func (m *Manager) getActive(playerID string, category domain.Category) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.active[playerID][category]
	return id, ok
}

func (m *Manager) setActive(playerID string, category domain.Category, cosmeticID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[playerID] == nil {
		m.active[playerID] = make(map[domain.Category]string)
	}
	m.active[playerID][category] = cosmeticID
}

func (m *Manager) removeActive(playerID string, category domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active[playerID], category)
	if len(m.active[playerID]) == 0 {
		delete(m.active, playerID)
	}
}

func (m *Manager) activeCopy(playerID string) map[domain.Category]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.Category]string, len(m.active[playerID]))
	for category, cosmeticID := range m.active[playerID] {
		out[category] = cosmeticID
	}
	return out
}

func (m *Manager) dropPlayer(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, playerID)
}

func (m *Manager) playerIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.active))
	for playerID := range m.active {
		ids = append(ids, playerID)
	}
	return ids
}

// mayUse resolves whether the player may activate the cosmetic. Any one
// path suffices: elevated access, a free cosmetic, permanent ownership,
// or an unexpired lease (trial leases on gated cosmetics included).
func (m *Manager) mayUse(ctx context.Context, playerID string, cosmetic *domain.Cosmetic) error {
	if m.access.HasElevatedAccess(ctx, playerID) {
		return nil
	}
	if cosmetic.Free {
		return nil
	}

	owned, err := m.owns.HasCosmetic(ctx, playerID, cosmetic.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	if owned || m.rentals.IsActive(playerID, cosmetic.ID) {
		return nil
	}
	if cosmetic.Gated() {
		return fmt.Errorf("%w: %s requires elevated access", domain.ErrAccessDenied, cosmetic.ID)
	}
	return fmt.Errorf("%w: %s", domain.ErrNotOwned, cosmetic.ID)
}

// Activate makes the cosmetic the player's single active cosmetic in its
// category, evicting whatever was active there before.
func (m *Manager) Activate(ctx context.Context, playerID, cosmeticID string) error {
	log := logger.FromContext(ctx)

	cosmetic, ok := m.cat.Lookup(cosmeticID)
	if !ok {
		return fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}

	if err := m.mayUse(ctx, playerID, cosmetic); err != nil {
		return err
	}

	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	category := cosmetic.Category
	current, has := m.getActive(playerID, category)
	if has && current == cosmeticID {
		return nil
	}

	// Exclusivity by eviction: whatever else is active in this
	// category goes first.
	if has {
		m.deactivateOne(ctx, playerID, category, current, "replaced")
	}

	handler := m.registry.For(category)
	if err := handler.Activate(ctx, playerID, cosmetic); err != nil {
		return fmt.Errorf("handler failed to activate %s: %w", cosmeticID, err)
	}

	m.setActive(playerID, category, cosmeticID)

	metrics.Activations.WithLabelValues(string(category)).Inc()
	if m.bus != nil {
		_ = m.bus.Publish(ctx, event.NewSlotEvent(event.SlotActivated, playerID, category, cosmeticID, ""))
	}
	m.snapshotAsync(ctx, playerID)

	log.Info("cosmetic activated", "player_id", playerID, "category", category, "cosmetic", cosmeticID)
	return nil
}

// deactivateOne removes one active entry. Caller holds the player lock.
func (m *Manager) deactivateOne(ctx context.Context, playerID string, category domain.Category, cosmeticID, reason string) {
	cosmetic, ok := m.cat.Lookup(cosmeticID)
	if ok {
		handler := m.registry.For(category)
		if err := handler.Deactivate(ctx, playerID, cosmetic); err != nil {
			logger.FromContext(ctx).Warn("handler failed to deactivate", "player_id", playerID, "cosmetic", cosmeticID, "error", err)
		}
	}

	m.removeActive(playerID, category)

	metrics.Deactivations.WithLabelValues(string(category)).Inc()
	if m.bus != nil {
		_ = m.bus.Publish(ctx, event.NewSlotEvent(event.SlotDeactivated, playerID, category, cosmeticID, reason))
	}
}

// Deactivate removes the cosmetic if it is the active one in its category.
func (m *Manager) Deactivate(ctx context.Context, playerID, cosmeticID string) error {
	cosmetic, ok := m.cat.Lookup(cosmeticID)
	if !ok {
		return fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}

	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if current, _ := m.getActive(playerID, cosmetic.Category); current != cosmeticID {
		return fmt.Errorf("%w: %s is not active", domain.ErrNotFound, cosmeticID)
	}

	m.deactivateOne(ctx, playerID, cosmetic.Category, cosmeticID, "")
	m.snapshotAsync(ctx, playerID)
	return nil
}

// Toggle activates the cosmetic, or deactivates it if it is already
// active. Returns true when the cosmetic ended up active.
func (m *Manager) Toggle(ctx context.Context, playerID, cosmeticID string) (bool, error) {
	cosmetic, ok := m.cat.Lookup(cosmeticID)
	if !ok {
		return false, fmt.Errorf("%w: cosmetic %s", domain.ErrNotFound, cosmeticID)
	}

	if current, _ := m.getActive(playerID, cosmetic.Category); current == cosmeticID {
		return false, m.Deactivate(ctx, playerID, cosmeticID)
	}
	return true, m.Activate(ctx, playerID, cosmeticID)
}

// DeactivateAllOfCategory clears the player's slot for one category.
// Returns the number of entries removed (0 or 1).
func (m *Manager) DeactivateAllOfCategory(ctx context.Context, playerID string, category domain.Category) int {
	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	cosmeticID, has := m.getActive(playerID, category)
	if !has {
		return 0
	}
	m.deactivateOne(ctx, playerID, category, cosmeticID, "")
	m.snapshotAsync(ctx, playerID)
	return 1
}

// ClearAll deactivates every active cosmetic for the player and returns
// the number removed.
func (m *Manager) ClearAll(ctx context.Context, playerID string) int {
	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	cleared := 0
	for category, cosmeticID := range m.activeCopy(playerID) {
		m.deactivateOne(ctx, playerID, category, cosmeticID, "")
		cleared++
	}
	if cleared > 0 {
		m.snapshotAsync(ctx, playerID)
	}
	return cleared
}

// DeactivateIfActive unequips the cosmetic if it is active. Called by
// the rental expiration sweep.
func (m *Manager) DeactivateIfActive(ctx context.Context, playerID, cosmeticID string) bool {
	cosmetic, ok := m.cat.Lookup(cosmeticID)
	if !ok {
		return false
	}

	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	if current, _ := m.getActive(playerID, cosmetic.Category); current != cosmeticID {
		return false
	}
	m.deactivateOne(ctx, playerID, cosmetic.Category, cosmeticID, "rental expired")
	m.snapshotAsync(ctx, playerID)
	return true
}

// ActiveIn returns the active cosmetic id in a category, or "".
func (m *Manager) ActiveIn(playerID string, category domain.Category) string {
	id, _ := m.getActive(playerID, category)
	return id
}

// ActiveSlots returns a copy of the player's active slot map.
func (m *Manager) ActiveSlots(playerID string) map[domain.Category]string {
	return m.activeCopy(playerID)
}

// RestoreSnapshot re-activates the player's persisted slot snapshot.
// Every entry goes through Activate so ownership is re-checked; a
// missing or unreadable snapshot is not an error.
func (m *Manager) RestoreSnapshot(ctx context.Context, playerID string) {
	snapshot, err := m.snapshots.LoadSlots(ctx, playerID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load slot snapshot", "player_id", playerID, "error", err)
		return
	}

	for _, cosmeticID := range snapshot {
		if err := m.Activate(ctx, playerID, cosmeticID); err != nil {
			logger.FromContext(ctx).Debug("snapshot entry not restored", "player_id", playerID, "cosmetic", cosmeticID, "error", err)
		}
	}
}

// CleanupOffline releases every active cosmetic of players with no live
// session and drops their slot maps. Returns the number of players cleaned.
func (m *Manager) CleanupOffline(ctx context.Context) int {
	cleaned := 0
	for _, playerID := range m.playerIDs() {
		if m.sessions.IsOnline(playerID) {
			continue
		}
		m.releasePlayer(ctx, playerID)
		cleaned++
	}
	if cleaned > 0 {
		logger.FromContext(ctx).Debug("cleaned up offline player slots", "count", cleaned)
	}
	return cleaned
}

// ForceCleanup synchronously snapshots and releases every player's
// active cosmetics. Run once at engine shutdown.
func (m *Manager) ForceCleanup(ctx context.Context) {
	for _, playerID := range m.playerIDs() {
		// Persist the snapshot so an equipped loadout survives restart.
		if m.snapshots != nil {
			if err := m.snapshots.SaveSlots(ctx, playerID, m.activeCopy(playerID)); err != nil {
				logger.FromContext(ctx).Warn("failed to save slot snapshot", "player_id", playerID, "error", err)
			}
		}
		m.releasePlayer(ctx, playerID)
	}
}

// releasePlayer runs release hooks for everything the player has active
// and drops the slot map.
func (m *Manager) releasePlayer(ctx context.Context, playerID string) {
	mu := m.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	for category, cosmeticID := range m.activeCopy(playerID) {
		cosmetic, ok := m.cat.Lookup(cosmeticID)
		if !ok {
			continue
		}
		if err := m.registry.For(category).Release(ctx, playerID, cosmetic); err != nil {
			logger.FromContext(ctx).Warn("release hook failed", "player_id", playerID, "cosmetic", cosmeticID, "error", err)
		}
	}
	m.dropPlayer(playerID)
}

// snapshotAsync persists the player's slot map off the game thread.
// Best effort only.
func (m *Manager) snapshotAsync(ctx context.Context, playerID string) {
	if m.snapshots == nil {
		return
	}
	slots := m.activeCopy(playerID)

	job := worker.Func(func(jobCtx context.Context) error {
		return m.snapshots.SaveSlots(jobCtx, playerID, slots)
	})
	if m.pool == nil || !m.pool.TryEnqueue(job) {
		if err := m.snapshots.SaveSlots(ctx, playerID, slots); err != nil {
			logger.FromContext(ctx).Warn("failed to save slot snapshot", "player_id", playerID, "error", err)
		}
	}
}
