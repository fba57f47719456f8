// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/scentwise/scentwise/internal/logging"
	"github.com/scentwise/scentwise/internal/metrics"
)

// singleflight key for the one catalog snapshot.
const refreshKey = "catalog"

// Cache holds a TTL-bounded catalog snapshot. A read inside the TTL returns
// the snapshot; a read outside it triggers exactly one upstream fetch, with
// every concurrent caller awaiting that fetch's result. A failed refresh
// keeps the stale snapshot in place and reports the error to all waiters.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  []Candidate
	fetchedAt time.Time
}

// NewCache wraps a fetcher with TTL caching and refresh coalescing.
func NewCache(fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the current snapshot, refreshing it when stale. The returned
// slice is shared; callers must not mutate it.
func (c *Cache) Get(ctx context.Context) ([]Candidate, error) {
	c.mu.RLock()
	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		snapshot := c.snapshot
		c.mu.RUnlock()
		metrics.CatalogCacheHits.Inc()
		return snapshot, nil
	}
	c.mu.RUnlock()

	metrics.CatalogCacheMisses.Inc()
	result, err, shared := c.group.Do(refreshKey, func() (any, error) {
		return c.refresh(ctx)
	})
	if shared {
		metrics.CatalogCoalescedWaits.Inc()
	}
	if err != nil {
		return nil, err
	}
	return result.([]Candidate), nil
}

// Stale returns the last known snapshot regardless of freshness, or nil if
// nothing was ever fetched.
func (c *Cache) Stale() []Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Invalidate forces the next Get to refetch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Cache) refresh(ctx context.Context) ([]Candidate, error) {
	// A waiter queued behind a successful refresh sees a fresh snapshot
	// here and skips the upstream call.
	c.mu.RLock()
	if c.snapshot != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		snapshot := c.snapshot
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	snapshot, err := c.fetcher.Fetch(ctx)
	if err != nil {
		// Stale data stays; the error surfaces to every waiter.
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.fetchedAt = c.now()
	c.mu.Unlock()

	metrics.CatalogSnapshotSize.Set(float64(len(snapshot)))
	logging.Debug().Int("candidates", len(snapshot)).Msg("Catalog snapshot refreshed")
	return snapshot, nil
}

// Warmer refreshes the cache on a fixed interval so interactive requests
// rarely pay the fetch latency. It satisfies suture's Service interface.
type Warmer struct {
	cache    *Cache
	interval time.Duration
}

// NewWarmer builds a background warmer for cache.
func NewWarmer(cache *Cache, interval time.Duration) *Warmer {
	return &Warmer{cache: cache, interval: interval}
}

// Serve warms the cache immediately, then on every tick, until the context
// is cancelled. Fetch failures are logged and retried on the next tick.
func (w *Warmer) Serve(ctx context.Context) error {
	if _, err := w.cache.Get(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial catalog warm failed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.cache.Invalidate()
			if _, err := w.cache.Get(ctx); err != nil {
				logging.Warn().Err(err).Msg("Catalog warm failed, serving stale snapshot")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (w *Warmer) String() string {
	return "catalog-warmer"
}
