package cache

import (
	"context"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Validate that MemoryCache implements the WriteableCache interface
var _ WriteableCache = (*MemoryCache)(nil)

// MemoryCache is a bounded in-memory WriteableCache. It is used by tests
// and by single-process deployments that do not need persistence; least
// recently used entries are dropped once the region exceeds its size bound.
type MemoryCache struct {
	name    string
	entries *lru.Cache[string, CacheData]
	metrics Metrics
}

// NewMemoryCache creates an in-memory cache region bounded to
// options.MemorySize entries. A nil metrics sink is replaced with a no-op
// one.
func NewMemoryCache(name string, options Options, metrics Metrics) *MemoryCache {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	options = options.withDefaults()

	// lru.New only fails on a non-positive size, which withDefaults rules out.
	entries, _ := lru.New[string, CacheData](options.MemorySize)
	return &MemoryCache{
		name:    name,
		entries: entries,
		metrics: metrics,
	}
}

// Merge upserts a single entry.
func (c *MemoryCache) Merge(ctx context.Context, item CacheData) error {
	return c.MergeAll(ctx, []CacheData{item})
}

// MergeAll upserts a batch of entries.
func (c *MemoryCache) MergeAll(ctx context.Context, items []CacheData) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if existing, ok := c.entries.Peek(item.ID); ok {
			item = mergeCacheData(existing, item)
		}
		c.entries.Add(item.ID, item)
	}

	c.metrics.Merge(c.name, len(items))
	return nil
}

// Get retrieves an entry by id.
func (c *MemoryCache) Get(ctx context.Context, id string) (CacheData, bool, error) {
	if err := ctx.Err(); err != nil {
		return CacheData{}, false, err
	}

	item, found := c.entries.Get(id)
	c.metrics.Get(c.name, found)
	return item, found, nil
}

// GetAll retrieves every entry in the region.
func (c *MemoryCache) GetAll(ctx context.Context) ([]CacheData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := c.entries.Keys()
	items := make([]CacheData, 0, len(keys))
	for _, key := range keys {
		if item, ok := c.entries.Peek(key); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// Exists reports whether an entry with the given id exists.
func (c *MemoryCache) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return c.entries.Contains(id), nil
}

// Evict removes an entry by id.
func (c *MemoryCache) Evict(ctx context.Context, id string) error {
	return c.EvictAll(ctx, []string{id})
}

// EvictAll removes a batch of entries by id.
func (c *MemoryCache) EvictAll(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		c.entries.Remove(id)
	}
	c.metrics.Evict(c.name, len(ids))
	return nil
}

// Identifiers lists the ids of every entry in the region.
func (c *MemoryCache) Identifiers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.entries.Keys(), nil
}
