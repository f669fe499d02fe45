package session

import (
	"sync"
	"time"
)

// Registry tracks which players currently have a live game session.
// The cache-eviction and offline-cleanup sweeps consult it to decide
// whose state can be dropped.
type Registry struct {
	mu     sync.RWMutex
	online map[string]time.Time
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{online: make(map[string]time.Time)}
}

// Join records a live session for the player.
func (r *Registry) Join(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[playerID] = time.Now()
}

// Leave removes the player's live session.
func (r *Registry) Leave(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.online, playerID)
}

// IsOnline reports whether the player has a live session.
func (r *Registry) IsOnline(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[playerID]
	return ok
}

// Online returns a snapshot of all online player ids.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.online))
	for id := range r.online {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.online)
}
