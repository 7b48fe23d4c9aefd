package geocode

import (
	"sync"
	"time"

	"github.com/example/ride-booking/internal/models"
)

// Cache memoizes place-name -> coordinate lookups. Keys are the exact
// place-name strings as typed.
type Cache interface {
	Get(placeName string) (models.Coord, bool)
	Set(placeName string, c models.Coord)
}

type memEntry struct {
	c  models.Coord
	ts time.Time
}

// MemoryCache is an in-process cache. A non-positive TTL means entries
// never expire (the booking-session lifetime case).
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]memEntry
	ttl   time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: make(map[string]memEntry), ttl: ttl}
}

func (c *MemoryCache) Get(placeName string) (models.Coord, bool) {
	c.mu.RLock()
	e, ok := c.store[placeName]
	c.mu.RUnlock()
	if !ok {
		return models.Coord{}, false
	}
	if c.ttl > 0 && time.Since(e.ts) > c.ttl {
		c.mu.Lock()
		delete(c.store, placeName)
		c.mu.Unlock()
		return models.Coord{}, false
	}
	return e.c, true
}

func (c *MemoryCache) Set(placeName string, coord models.Coord) {
	c.mu.Lock()
	c.store[placeName] = memEntry{c: coord, ts: time.Now()}
	c.mu.Unlock()
}
