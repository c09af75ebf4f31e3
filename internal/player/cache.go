package player

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedPlayerEntry wraps a player with version metadata for cache invalidation
type cachedPlayerEntry struct {
	Version  string         `json:"version"`
	Player   *domain.Player `json:"player"`
	CachedAt time.Time      `json:"cached_at"`
}

// playerCache provides an in-memory LRU cache for identity lookups
// with time-based expiration and version-based invalidation to prevent stale data.
type playerCache struct {
	lru *expirable.LRU[string, *cachedPlayerEntry]
}

// newPlayerCache creates a new player cache with the specified size and TTL.
func newPlayerCache(size int, ttl time.Duration) *playerCache {
	return &playerCache{
		lru: expirable.NewLRU[string, *cachedPlayerEntry](size, nil, ttl),
	}
}

// Get retrieves a player from the cache.
// Returns (player, true) if found and version matches.
func (c *playerCache) Get(discordID string) (*domain.Player, bool) {
	entry, found := c.lru.Get(discordID)
	if !found {
		return nil, false
	}

	// Check version - auto-invalidate if mismatch
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(discordID)
		return nil, false
	}

	return entry.Player, true
}

// Set stores a player in the cache with current schema version.
func (c *playerCache) Set(discordID string, p *domain.Player) {
	entry := &cachedPlayerEntry{
		Version:  CacheSchemaVersion,
		Player:   p,
		CachedAt: time.Now(),
	}
	c.lru.Add(discordID, entry)
}

// Invalidate removes a player from the cache.
func (c *playerCache) Invalidate(discordID string) {
	c.lru.Remove(discordID)
}
