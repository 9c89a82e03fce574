package batch

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// fingerprint keys the result cache by connection identifier and mode, so a
// quick and a full analysis of the same database never shadow each other.
func fingerprint(conn string, mode Mode) string {
	sum := sha256.Sum256([]byte(conn + "|" + string(mode)))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	report    TargetReport
	expiresAt time.Time
}

// resultCache is a TTL map shared by all workers of an orchestrator. Expired
// entries are treated as misses and overwritten on the next store.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *resultCache) get(key string, now time.Time) (TargetReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || now.After(entry.expiresAt) {
		return TargetReport{}, false
	}
	return entry.report, true
}

func (c *resultCache) set(key string, report TargetReport, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{report: report, expiresAt: now.Add(c.ttl)}
}

func (c *resultCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
