package cache

import (
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/launcherprefs"
)

type item struct {
	value      []byte
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryCache is an in-process snapshot cache. A background goroutine evicts
// expired entries until Close is called.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]item
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache initializes a MemoryCache and starts its eviction loop.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go c.gc(time.Minute)
	return c
}

// Get returns a copy of the cached bytes for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || it.expired(time.Now()) {
		return nil, launcherprefs.ErrNotFound
	}
	return append([]byte(nil), it.value...), nil
}

// Set stores value under key. A ttl of zero never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}
	c.items[key] = item{value: append([]byte(nil), value...), expiration: expiration}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Close stops the eviction loop and drops every entry.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]item)
	return nil
}

func (c *MemoryCache) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evict(time.Now())
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) evict(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
		}
	}
}
