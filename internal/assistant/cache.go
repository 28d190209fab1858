package assistant

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// OutcomeCache stores outcomes keyed by the exact query text.
type OutcomeCache interface {
	Get(key string) (Outcome, bool)
	Put(key string, outcome Outcome)
}

// MemoryCache is a process-local OutcomeCache. With maxEntries <= 0 it
// never evicts; otherwise the least recently used entry goes first.
// Stored and returned outcomes are copies.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Outcome
	bounded *lru.Cache[string, Outcome]
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries > 0 {
		if bounded, err := lru.New[string, Outcome](maxEntries); err == nil {
			return &MemoryCache{bounded: bounded}
		}
	}
	return &MemoryCache{entries: make(map[string]Outcome)}
}

func (c *MemoryCache) Get(key string) (Outcome, bool) {
	if c.bounded != nil {
		outcome, ok := c.bounded.Get(key)
		if !ok {
			return Outcome{}, false
		}
		return outcome.clone(), true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	outcome, ok := c.entries[key]
	if !ok {
		return Outcome{}, false
	}
	return outcome.clone(), true
}

func (c *MemoryCache) Put(key string, outcome Outcome) {
	outcome = outcome.clone()
	if c.bounded != nil {
		c.bounded.Add(key, outcome)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = outcome
}

func (c *MemoryCache) Len() int {
	if c.bounded != nil {
		return c.bounded.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
