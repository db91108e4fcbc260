package record

import (
	"context"
	"net"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Cache wraps a Source with a mutex-guarded in-process map and a bounded
// concurrency gate on backend lookups (spec §5: "a bounded semaphore caps
// concurrent lookups at concurrency_limit"; "one in-flight database query
// per miss is permitted ... no single-flight required").
type Cache struct {
	backend Source
	sem     *semaphore.Weighted

	mu      sync.RWMutex
	entries map[string]*Definition
}

// NewCache wraps backend with an in-process cache. concurrencyLimit bounds
// the number of simultaneous backend lookups; if enabled is false, Cache
// simply forwards every call to backend without caching.
func NewCache(backend Source, enabled bool, concurrencyLimit int) *Cache {
	if concurrencyLimit <= 0 {
		concurrencyLimit = 1
	}
	c := &Cache{
		backend: backend,
		sem:     semaphore.NewWeighted(int64(concurrencyLimit)),
	}
	if enabled {
		c.entries = make(map[string]*Definition)
	}
	return c
}

// LookupMAC serves from the cache on hit; on miss it acquires a semaphore
// slot, queries the backend, and populates the cache. Concurrent misses for
// different MACs may run in parallel up to concurrencyLimit; concurrent
// misses for the same MAC may both query the backend (duplicate work is
// accepted, per spec §5).
func (c *Cache) LookupMAC(mac net.HardwareAddr) (*Definition, error) {
	key := mac.String()

	if c.entries != nil {
		c.mu.RLock()
		def, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return def, nil
		}
	}

	ctx := context.Background()
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	def, err := c.backend.LookupMAC(mac)
	if err != nil {
		return nil, err
	}

	if c.entries != nil && def != nil {
		c.mu.Lock()
		c.entries[key] = def
		c.mu.Unlock()
	}
	return def, nil
}

// UnknownMACHook forwards to the backend's hook, if it implements one.
func (c *Cache) UnknownMACHook(mac net.HardwareAddr) (*Definition, error) {
	hook, ok := c.backend.(UnknownMACHook)
	if !ok {
		return nil, nil
	}
	return hook.UnknownMACHook(mac)
}

// Reinitialise flushes the in-process cache and forwards to the backend.
func (c *Cache) Reinitialise() error {
	c.mu.Lock()
	if c.entries != nil {
		c.entries = make(map[string]*Definition)
	}
	c.mu.Unlock()
	return c.backend.Reinitialise()
}
