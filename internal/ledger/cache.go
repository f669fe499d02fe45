package ledger

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// balanceCache is an in-memory read-through cache of player balances,
// LRU-bounded with time-based expiration so a stale entry can never
// outlive the TTL even if the eviction sweep falls behind.
type balanceCache struct {
	lru *expirable.LRU[string, int]
}

// newBalanceCache creates a cache holding up to size balances for ttl.
func newBalanceCache(size int, ttl time.Duration) *balanceCache {
	return &balanceCache{
		lru: expirable.NewLRU[string, int](size, nil, ttl),
	}
}

// Get retrieves a cached balance.
func (c *balanceCache) Get(playerID string) (int, bool) {
	return c.lru.Get(playerID)
}

// Set stores a balance.
func (c *balanceCache) Set(playerID string, balance int) {
	c.lru.Add(playerID, balance)
}

// Remove drops a player's entry.
func (c *balanceCache) Remove(playerID string) {
	c.lru.Remove(playerID)
}

// Keys returns the cached player ids, oldest first.
func (c *balanceCache) Keys() []string {
	return c.lru.Keys()
}

// Purge drops every entry.
func (c *balanceCache) Purge() {
	c.lru.Purge()
}
