package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// Fingerprint derives a deterministic cache key from a parameter set.
func Fingerprint(p domain.SimulationParameters) string {
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:16])
}

type cacheEntry struct {
	output   *domain.EngineOutput
	storedAt time.Time
}

// ResultCache is a TTL cache of engine outputs keyed by request fingerprint.
// It is owned by the serving layer; the engine itself stays stateless
// between calls.
type ResultCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]cacheEntry
}

// NewResultCache creates a cache with the given TTL and size bound.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    map[string]cacheEntry{},
	}
}

// Get returns a cached output if present and not expired.
func (c *ResultCache) Get(key string) (*domain.EngineOutput, bool) {
	if key == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.output, true
}

// Put stores an output, evicting the oldest entry when full.
func (c *ResultCache) Put(key string, output *domain.EngineOutput) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = cacheEntry{output: output, storedAt: time.Now()}
}

// Len reports the number of live entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
