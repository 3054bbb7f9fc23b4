package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMetrics counts sink calls for assertions.
type recordingMetrics struct {
	mu      sync.Mutex
	merged  int
	evicted int
	hits    int
	misses  int
}

func (m *recordingMetrics) Merge(_ string, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merged += items
}

func (m *recordingMetrics) Evict(_ string, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evicted += items
}

func (m *recordingMetrics) Get(_ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func TestMemoryCacheCRUD(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("manifests", Options{}, nil)

	item := CacheData{
		ID:         "billing/billing-api",
		Attributes: map[string]interface{}{"application": "billing"},
	}
	require.NoError(t, c.Merge(ctx, item))

	got, found, err := c.Get(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "billing", got.Attributes["application"])

	exists, err := c.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Evict(ctx, item.ID))
	exists, err = c.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheMergeOverlaysExisting(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("manifests", Options{}, nil)

	require.NoError(t, c.Merge(ctx, CacheData{
		ID:         "a",
		Attributes: map[string]interface{}{"application": "billing", "kind": "Deployment"},
	}))
	require.NoError(t, c.Merge(ctx, CacheData{
		ID:         "a",
		Attributes: map[string]interface{}{"application": "billing-v2"},
	}))

	got, found, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "billing-v2", got.Attributes["application"])
	assert.Equal(t, "Deployment", got.Attributes["kind"])
}

func TestMemoryCacheAssignsGeneratedID(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("manifests", Options{}, nil)

	require.NoError(t, c.Merge(ctx, CacheData{}))

	ids, err := c.Identifiers(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}

func TestMemoryCacheBound(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("manifests", Options{MemorySize: 2}, nil)

	require.NoError(t, c.MergeAll(ctx, []CacheData{{ID: "a"}, {ID: "b"}, {ID: "c"}}))

	ids, err := c.Identifiers(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	// The least recently used entry is the one dropped.
	exists, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCacheFactorySharesRegionsByName(t *testing.T) {
	ctx := context.Background()
	factory := NewMemoryCacheFactory(Options{}, nil)

	require.NoError(t, factory.GetCache("manifests").Merge(ctx, CacheData{ID: "a"}))

	exists, err := factory.GetCache("manifests").Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists, "same-name regions must share entries")

	exists, err = factory.GetCache("applications").Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists, "different-name regions must be isolated")
}

func TestMemoryCacheMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &recordingMetrics{}
	c := NewMemoryCache("manifests", Options{}, metrics)

	require.NoError(t, c.MergeAll(ctx, []CacheData{{ID: "a"}, {ID: "b"}}))

	_, _, err := c.Get(ctx, "a")
	require.NoError(t, err)
	_, _, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	require.NoError(t, c.EvictAll(ctx, []string{"a", "b"}))

	assert.Equal(t, 2, metrics.merged)
	assert.Equal(t, 2, metrics.evicted)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestMemoryCacheContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewMemoryCache("manifests", Options{}, nil)
	assert.Error(t, c.Merge(ctx, CacheData{ID: "a"}))

	_, _, err := c.Get(ctx, "a")
	assert.Error(t, err)
}
