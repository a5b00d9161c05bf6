package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/CRM-api/internal/application/ports"
)

var _ ports.Cache = (*MemoryCache)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache caché local para una sola instancia o sin Redis configurado.
// Las entradas vencidas se descartan al leerlas y en cada barrido de Set.
type MemoryCache struct {
	mu      sync.RWMutex
	items   map[string]entry
	now     func() time.Time
	maxSize int
}

// NewMemoryCache crea la caché; maxSize <= 0 usa 10000 entradas.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryCache{items: make(map[string]entry), now: time.Now, maxSize: maxSize}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if e.expired(c.now()) {
		// otro Set pudo reemplazar la entrada entre RUnlock y Lock
		c.mu.Lock()
		e, ok = c.items[key]
		if ok && e.expired(c.now()) {
			delete(c.items, key)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			return nil, ports.ErrCacheMiss
		}
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)
	e := entry{value: v}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) >= c.maxSize {
		c.evictLocked()
	}
	c.items[key] = e
	return nil
}

// evictLocked borra vencidas; si no alcanza, vacía la caché completa.
func (c *MemoryCache) evictLocked() {
	now := c.now()
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
		}
	}
	if len(c.items) >= c.maxSize {
		c.items = make(map[string]entry)
	}
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}
