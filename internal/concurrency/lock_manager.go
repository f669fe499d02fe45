package concurrency

import (
	"sync"
)

// LockManager hands out one mutex per key. The engine uses it to
// serialize read-modify-write cycles on per-player state (balances,
// crate counts, leases), which is what keeps the balance and
// lease-uniqueness invariants intact under concurrent callers.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns the mutex for the given key, creating it on first use.
// Locks are never released back; the key space is bounded by the player
// population.
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// WithLock runs fn while holding the key's mutex.
func (lm *LockManager) WithLock(key string, fn func()) {
	mu := lm.GetLock(key)
	mu.Lock()
	defer mu.Unlock()
	fn()
}
