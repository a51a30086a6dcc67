package pricecache

import (
	"sync"
	"time"

	"CryptoMarketBot/internal/models"
)

const DefaultTTL = 30 * time.Second

type cacheKey struct {
	symbolID uint
	source   models.Source
}

type cacheEntry struct {
	ticker   models.TickerPrice
	cachedAt time.Time
}

// Cache holds current ticker prices per (symbol, source) with a TTL.
// Owned by whoever constructs it and passed by reference; entries past
// their TTL read as absent.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *Cache) Get(symbolID uint, source models.Source) (*models.TickerPrice, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey{symbolID, source}]
	c.mu.RUnlock()

	if !ok || time.Since(entry.cachedAt) > c.ttl {
		return nil, false
	}
	ticker := entry.ticker
	return &ticker, true
}

func (c *Cache) Set(symbolID uint, source models.Source, ticker *models.TickerPrice) {
	if ticker == nil {
		return
	}
	c.mu.Lock()
	c.entries[cacheKey{symbolID, source}] = cacheEntry{
		ticker:   *ticker,
		cachedAt: time.Now(),
	}
	c.mu.Unlock()
}

// Purge drops expired entries; called opportunistically by long-running
// jobs so the map does not grow without bound.
func (c *Cache) Purge() {
	c.mu.Lock()
	for k, e := range c.entries {
		if time.Since(e.cachedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}
