package engine

import (
	"context"
	"fmt"

	"github.com/halveric/CosmeticsCore_Go/internal/catalog"
	"github.com/halveric/CosmeticsCore_Go/internal/config"
	"github.com/halveric/CosmeticsCore_Go/internal/crate"
	"github.com/halveric/CosmeticsCore_Go/internal/event"
	"github.com/halveric/CosmeticsCore_Go/internal/ledger"
	"github.com/halveric/CosmeticsCore_Go/internal/logger"
	"github.com/halveric/CosmeticsCore_Go/internal/rental"
	"github.com/halveric/CosmeticsCore_Go/internal/repository"
	"github.com/halveric/CosmeticsCore_Go/internal/scheduler"
	"github.com/halveric/CosmeticsCore_Go/internal/session"
	"github.com/halveric/CosmeticsCore_Go/internal/slots"
	"github.com/halveric/CosmeticsCore_Go/internal/stats"
	"github.com/halveric/CosmeticsCore_Go/internal/worker"
)

// Deps are the external collaborators the engine is built on. Gateway
// and Catalog are required; everything else has a working default.
type Deps struct {
	Gateway repository.Gateway
	Catalog catalog.Catalog

	// Bus receives engine events. Defaults to an in-process bus.
	Bus event.Bus
	// Access resolves elevated-access checks. Defaults to denying all.
	Access slots.AccessBridge
	// Effects and Morpher back the activation handlers. Default to no-ops.
	Effects slots.Effects
	Morpher slots.Morpher
}

// Engine is the composition root of the cosmetic economy. One instance
// owns all services, the worker pool, and the maintenance schedule.
type Engine struct {
	Ledger   ledger.Service
	Crates   crate.Service
	Rentals  rental.Service
	Slots    *slots.Manager
	Sessions *session.Registry
	Stats    *stats.Collector
	Bus      event.Bus

	cfg   *config.Config
	gw    repository.Gateway
	pool  *worker.Pool
	sched *scheduler.Scheduler
}

// New constructs the engine and loads persistent state into memory.
// A gateway that cannot be reached is a construction failure.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*Engine, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("engine requires a persistence gateway")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("engine requires a catalog")
	}
	if err := deps.Gateway.Ping(ctx); err != nil {
		return nil, fmt.Errorf("persistence gateway unreachable: %w", err)
	}

	bus := deps.Bus
	if bus == nil {
		bus = event.NewMemoryBus()
	}

	sessions := session.NewRegistry()
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	statsSvc := stats.NewCollector(deps.Gateway)

	ledgerSvc := ledger.NewService(deps.Gateway, sessions, statsSvc, ledger.Options{
		MaxBalance:     cfg.MaxBalance,
		WelcomeBalance: cfg.WelcomeBalance,
		CacheSize:      cfg.BalanceCacheSize,
		CacheTTL:       cfg.BalanceCacheTTL,
	})

	rentalSvc := rental.NewService(deps.Catalog, deps.Gateway, deps.Gateway, ledgerSvc, bus, statsSvc)

	registry := slots.NewRegistry(deps.Effects, deps.Morpher)
	slotMgr := slots.NewManager(deps.Catalog, deps.Gateway, rentalSvc, deps.Access, registry, bus, sessions, deps.Gateway, pool)
	rentalSvc.BindSlots(slotMgr)

	inventory := crate.NewInventory(deps.Gateway)
	crateSvc, err := crate.NewService(deps.Catalog, ledgerSvc, deps.Gateway, inventory, deps.Gateway, rentalSvc, bus, pool, statsSvc)
	if err != nil {
		return nil, err
	}

	if err := rentalSvc.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load rental leases: %w", err)
	}

	return &Engine{
		Ledger:   ledgerSvc,
		Crates:   crateSvc,
		Rentals:  rentalSvc,
		Slots:    slotMgr,
		Sessions: sessions,
		Stats:    statsSvc,
		Bus:      bus,
		cfg:      cfg,
		gw:       deps.Gateway,
		pool:     pool,
		sched:    scheduler.New(pool),
	}, nil
}

// Start launches the worker pool and the maintenance jobs.
func (e *Engine) Start() {
	e.pool.Start()

	e.sched.Schedule("balance-cache-eviction", e.cfg.CacheEvictionInterval, worker.Func(func(ctx context.Context) error {
		e.Ledger.EvictOffline(ctx)
		return nil
	}))
	e.sched.Schedule("rental-sweep", e.cfg.RentalSweepInterval, worker.Func(func(ctx context.Context) error {
		e.Rentals.Sweep(ctx)
		return nil
	}))
	e.sched.Schedule("offline-slot-cleanup", e.cfg.OfflineCleanupInterval, worker.Func(func(ctx context.Context) error {
		e.Slots.CleanupOffline(ctx)
		return nil
	}))
	e.sched.Schedule("stats-flush", e.cfg.StatsFlushInterval, worker.Func(func(ctx context.Context) error {
		return e.Stats.Flush(ctx)
	}))

	logger.Info("engine started",
		"workers", e.cfg.WorkerCount,
		"rental_sweep_interval", e.cfg.RentalSweepInterval,
	)
}

// HandleJoin records a live session and restores the player's persisted
// slot loadout.
func (e *Engine) HandleJoin(ctx context.Context, playerID string) {
	e.Sessions.Join(playerID)
	e.Slots.RestoreSnapshot(ctx, playerID)
}

// HandleLeave drops the session. Cached state is reclaimed by the
// periodic cleanup jobs, not here.
func (e *Engine) HandleLeave(playerID string) {
	e.Sessions.Leave(playerID)
}

// Shutdown stops background work, then runs a final synchronous sweep
// so no writes are lost: expired leases are cleared, every slot loadout
// is snapshotted and released, and stats are flushed.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.sched.Stop()
	e.pool.Stop()

	e.Rentals.Sweep(ctx)
	e.Slots.ForceCleanup(ctx)

	if err := e.Stats.Flush(ctx); err != nil {
		logger.FromContext(ctx).Error("failed to flush stats during shutdown", "error", err)
		return err
	}

	logger.Info("engine stopped")
	return nil
}
