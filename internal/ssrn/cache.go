// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ssrn

import (
	"encoding/json"
	"sync"
	"time"
)

// datasetCache holds the unfiltered SSRN paper list for ttl. Times are
// passed in by the caller so the clock stays injectable.
type datasetCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	items     []json.RawMessage
	complete  bool
	fetchedAt time.Time
}

// get returns up to n cached papers. It misses when the cache is empty,
// expired, or smaller than n without having reached the end of the dataset.
func (c *datasetCache) get(now time.Time, n int) ([]json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 || c.ttl <= 0 || now.Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	if len(c.items) >= n {
		return c.items[:n:n], true
	}
	if c.complete {
		return c.items[:len(c.items):len(c.items)], true
	}
	return nil, false
}

// put replaces the cached dataset.
func (c *datasetCache) put(now time.Time, items []json.RawMessage, complete bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = items
	c.complete = complete
	c.fetchedAt = now
}

// clear drops the cached dataset.
func (c *datasetCache) clear() {
	c.put(time.Time{}, nil, false)
}
