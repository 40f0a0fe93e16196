// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package fetch

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// CRLCacheEntry represents a cached CRL with metadata
type CRLCacheEntry struct {
	Data       []byte    // DER encoded CRL
	FetchedAt  time.Time // When this CRL was fetched
	NextUpdate time.Time // From CRL.NextUpdate; zero when the CRL has none
	URL        string    // Distribution point it came from
}

// CRLCacheConfig holds configuration for the CRL cache
type CRLCacheConfig struct {
	MaxSize         int           // Maximum number of CRLs to cache (0 = unlimited)
	MaxAge          time.Duration // Refetch after this long even if nextUpdate is later (default: 24 hours)
	CleanupInterval time.Duration // How often Run removes expired entries (default: 1 hour)
}

// CRLCacheMetrics tracks cache performance and usage
type CRLCacheMetrics struct {
	Size        int64 // Current number of cached CRLs
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of LRU evictions
	Cleanups    int64 // Number of expired CRL cleanups
	TotalMemory int64 // Approximate memory usage in bytes
}

// DefaultCRLCacheConfig is used for zero fields of a [CRLCacheConfig].
var DefaultCRLCacheConfig = CRLCacheConfig{
	MaxSize:         100,
	MaxAge:          24 * time.Hour,
	CleanupInterval: time.Hour,
}

// CRLCache is an LRU cache of downloaded CRLs keyed by URL. An entry is
// served until its nextUpdate passes or it reaches MaxAge.
//
// Thread Safety: Safe for concurrent use.
type CRLCache struct {
	mu      sync.Mutex
	config  CRLCacheConfig
	entries map[string]*CRLCacheEntry
	order   []string // least recently used first
	metrics CRLCacheMetrics
	now     func() time.Time
}

// NewCRLCache returns an empty cache. A nil config uses
// [DefaultCRLCacheConfig]; a negative MaxSize is treated as unlimited.
func NewCRLCache(config *CRLCacheConfig) *CRLCache {
	cfg := DefaultCRLCacheConfig
	if config != nil {
		cfg.MaxSize = max(config.MaxSize, 0)
		if config.MaxAge > 0 {
			cfg.MaxAge = config.MaxAge
		}
		if config.CleanupInterval > 0 {
			cfg.CleanupInterval = config.CleanupInterval
		}
	}
	return &CRLCache{
		config:  cfg,
		entries: make(map[string]*CRLCacheEntry),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for freshness decisions.
func (c *CRLCache) WithClock(now func() time.Time) *CRLCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now != nil {
		c.now = now
	}
	return c
}

// Config returns the effective configuration.
func (c *CRLCache) Config() CRLCacheConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// isFresh checks if the cached CRL may still be served.
func (c *CRLCache) isFresh(entry *CRLCacheEntry, now time.Time) bool {
	if !entry.NextUpdate.IsZero() && !entry.NextUpdate.After(now) {
		return false
	}
	return entry.FetchedAt.After(now.Add(-c.config.MaxAge))
}

// touch moves url to the most recently used position.
func (c *CRLCache) touch(url string) {
	if i := slices.Index(c.order, url); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	c.order = append(c.order, url)
}

func (c *CRLCache) remove(url string) {
	delete(c.entries, url)
	if i := slices.Index(c.order, url); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Get returns a copy of the fresh CRL cached for url.
func (c *CRLCache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok || !c.isFresh(entry, c.now()) {
		c.metrics.Misses++
		return nil, false
	}

	c.metrics.Hits++
	c.touch(url)
	return slices.Clone(entry.Data), true
}

// Set stores a copy of data for url, evicting least recently used entries
// when the cache is full.
func (c *CRLCache) Set(url string, data []byte, nextUpdate time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; !exists {
		for c.config.MaxSize > 0 && len(c.entries) >= c.config.MaxSize && len(c.order) > 0 {
			c.remove(c.order[0])
			c.metrics.Evictions++
		}
	}

	c.entries[url] = &CRLCacheEntry{
		Data:       slices.Clone(data),
		FetchedAt:  c.now(),
		NextUpdate: nextUpdate,
		URL:        url,
	}
	c.touch(url)
}

// Cleanup removes every entry that can no longer be served and reports how
// many were removed.
func (c *CRLCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expired []string
	for url, entry := range c.entries {
		if !c.isFresh(entry, now) {
			expired = append(expired, url)
		}
	}
	for _, url := range expired {
		c.remove(url)
	}
	c.metrics.Cleanups += int64(len(expired))
	return len(expired)
}

// Run calls Cleanup every CleanupInterval until ctx is done.
func (c *CRLCache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Config().CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}

// Clear drops every entry and resets the metrics.
func (c *CRLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CRLCacheEntry)
	c.order = nil
	c.metrics = CRLCacheMetrics{}
}

// Metrics returns current cache metrics
func (c *CRLCache) Metrics() CRLCacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalMemory int64
	for _, entry := range c.entries {
		totalMemory += int64(len(entry.Data)) + int64(len(entry.URL)) + 24 // Approximate overhead
	}

	m := c.metrics
	m.Size = int64(len(c.entries))
	m.TotalMemory = totalMemory
	return m
}

// Stats returns a formatted string with cache statistics
func (c *CRLCache) Stats() string {
	m := c.Metrics()
	cfg := c.Config()

	hitRate := float64(0)
	if total := m.Hits + m.Misses; total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}

	return fmt.Sprintf("CRL Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Cleanups: %d\n"+
		"  Cleanup Interval: %v",
		m.Size, cfg.MaxSize,
		float64(m.TotalMemory)/1024,
		hitRate, m.Hits, m.Misses,
		m.Evictions,
		m.Cleanups,
		cfg.CleanupInterval)
}
