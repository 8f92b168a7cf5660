package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 5 * time.Minute

// Memory is a process-local cache with per-entry expiry, used when Redis is
// not configured.
type Memory struct {
	entries *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{entries: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

// Get returns nil, nil on a miss.
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	return value.([]byte), nil
}

// Set stores value under key. A ttl of zero never expires.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.entries.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}
