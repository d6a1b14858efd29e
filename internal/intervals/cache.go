package intervals

import (
	"sync"
	"time"
)

type SettingsCache struct {
	mu        sync.RWMutex
	athlete   *Athlete
	fetchedAt time.Time
	ttl       time.Duration
}

func NewSettingsCache(ttl time.Duration) *SettingsCache {
	return &SettingsCache{ttl: ttl}
}

func (c *SettingsCache) Get() *Athlete {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.athlete == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}

	copied := *c.athlete
	return &copied
}

func (c *SettingsCache) Set(athlete *Athlete) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := *athlete
	c.athlete = &copied
	c.fetchedAt = time.Now()
}

func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.athlete = nil
}
