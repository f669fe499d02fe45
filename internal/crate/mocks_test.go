package crate

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// MockOwnership implements repository.Ownership for testing
type MockOwnership struct {
	mock.Mock
}

func (m *MockOwnership) HasCosmetic(ctx context.Context, playerID, cosmeticID string) (bool, error) {
	args := m.Called(ctx, playerID, cosmeticID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnership) GiveCosmetic(ctx context.Context, playerID, cosmeticID string) error {
	args := m.Called(ctx, playerID, cosmeticID)
	return args.Error(0)
}

func (m *MockOwnership) RemoveCosmetic(ctx context.Context, playerID, cosmeticID string) error {
	args := m.Called(ctx, playerID, cosmeticID)
	return args.Error(0)
}

// MockAudit implements repository.Audit for testing
type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) AppendAuditRecord(ctx context.Context, record domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockRentalGranter implements RentalGranter for testing
type MockRentalGranter struct {
	mock.Mock
}

func (m *MockRentalGranter) GrantFree(ctx context.Context, playerID, cosmeticID string, kind domain.RentalOptionKind) (bool, error) {
	args := m.Called(ctx, playerID, cosmeticID, kind)
	return args.Bool(0), args.Error(1)
}

// fakeCrateStore is an in-memory repository.Crates with failure injection
type fakeCrateStore struct {
	mu     sync.Mutex
	counts map[string]map[string]int
	fail   error
}

func newFakeCrateStore() *fakeCrateStore {
	return &fakeCrateStore{counts: make(map[string]map[string]int)}
}

func (f *fakeCrateStore) GetCrateCounts(_ context.Context, playerID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make(map[string]int, len(f.counts[playerID]))
	for tier, count := range f.counts[playerID] {
		out[tier] = count
	}
	return out, nil
}

func (f *fakeCrateStore) UpsertCrateCount(_ context.Context, playerID, tier string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if f.counts[playerID] == nil {
		f.counts[playerID] = make(map[string]int)
	}
	f.counts[playerID][tier] = count
	return nil
}

func (f *fakeCrateStore) DeleteCrateCount(_ context.Context, playerID, tier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.counts[playerID], tier)
	return nil
}

func (f *fakeCrateStore) stored(playerID, tier string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[playerID][tier]
}

// fakeLedger is an in-memory ledger.Service
type fakeLedger struct {
	mu         sync.Mutex
	balances   map[string]int
	failSet    error
	maxBalance int // 0 means unbounded
}

func newFakeLedger(initial map[string]int) *fakeLedger {
	if initial == nil {
		initial = make(map[string]int)
	}
	return &fakeLedger{balances: initial}
}

func (f *fakeLedger) GetBalance(_ context.Context, playerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID], nil
}

func (f *fakeLedger) SetBalance(_ context.Context, playerID string, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] = value
	return nil
}

func (f *fakeLedger) AddBalance(_ context.Context, playerID string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return false, f.failSet
	}
	if f.maxBalance > 0 {
		if f.balances[playerID] >= f.maxBalance {
			return false, nil
		}
		if f.balances[playerID]+amount > f.maxBalance {
			f.balances[playerID] = f.maxBalance
			return true, nil
		}
	}
	f.balances[playerID] += amount
	return true, nil
}

func (f *fakeLedger) RemoveBalance(_ context.Context, playerID string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[playerID] < amount {
		return false, nil
	}
	f.balances[playerID] -= amount
	return true, nil
}

func (f *fakeLedger) EvictOffline(context.Context) int { return 0 }

func (f *fakeLedger) balance(playerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID]
}

// Test fixtures

const testCatalogJSON = `{
	"cosmetics": [
		{"id": "hat_iron", "name": "Iron Hat", "category": "hat", "price": 150},
		{"id": "hat_straw", "name": "Straw Hat", "category": "hat", "price": 40},
		{"id": "pet_rock", "name": "Pet Rock", "category": "pet", "price": 60},
		{"id": "trail_flame", "name": "Flame Trail", "category": "trail", "price": 250},
		{"id": "wings_void", "name": "Void Wings", "category": "wing", "price": 500, "access": 1},
		{"id": "aura_basic", "name": "Basic Aura", "category": "aura", "price": 0, "free": true}
	],
	"tiers": [
		{"key": "common", "display_name": "Common Crate", "price": 50, "purchasable": true, "rank": 0},
		{"key": "rare", "display_name": "Rare Crate", "price": 120, "purchasable": true, "rank": 1},
		{"key": "epic", "display_name": "Epic Crate", "price": 300, "purchasable": false, "rank": 2}
	]
}`

func testCatalog(t interface{ Fatalf(string, ...interface{}) }) catalog.Catalog {
	cat, err := catalog.Parse([]byte(testCatalogJSON))
	if err != nil {
		t.Fatalf("failed to parse test catalog: %v", err)
	}
	return cat
}
