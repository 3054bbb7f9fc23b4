// Package cache provides the named key-value cache layer used by Rivet to
// index deployed resources. Each named cache region holds CacheData entries
// keyed by id; backends share merge semantics so callers can switch between
// the persistent BadgerDB cache and the in-memory LRU cache freely.
package cache

import (
	"context"
)

// CacheData is a single cache entry: an identifier plus free-form
// attributes and relationship edges to other entries.
type CacheData struct {
	ID            string                 `json:"id"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	Relationships map[string][]string    `json:"relationships,omitempty"`
}

// WriteableCache is a named cache region supporting reads and writes.
type WriteableCache interface {
	// Merge upserts a single entry, merging its attributes and
	// relationships over any existing entry with the same id. An entry
	// with an empty id is assigned a generated one.
	Merge(ctx context.Context, item CacheData) error

	// MergeAll upserts a batch of entries.
	MergeAll(ctx context.Context, items []CacheData) error

	// Get retrieves an entry by id. The second return is false when no
	// entry exists.
	Get(ctx context.Context, id string) (CacheData, bool, error)

	// GetAll retrieves every entry in the region.
	GetAll(ctx context.Context) ([]CacheData, error)

	// Exists reports whether an entry with the given id exists.
	Exists(ctx context.Context, id string) (bool, error)

	// Evict removes an entry by id. Evicting an absent id is not an error.
	Evict(ctx context.Context, id string) error

	// EvictAll removes a batch of entries by id.
	EvictAll(ctx context.Context, ids []string) error

	// Identifiers lists the ids of every entry in the region.
	Identifiers(ctx context.Context) ([]string, error)
}

// NamedCacheFactory hands out a WriteableCache per named region. GetCache
// is pure construction; the backing resources are shared across regions.
type NamedCacheFactory interface {
	GetCache(name string) WriteableCache
}

// mergeCacheData overlays update onto existing: updated attributes and
// relationship lists replace same-named ones, everything else carries over.
func mergeCacheData(existing, update CacheData) CacheData {
	merged := CacheData{
		ID:            existing.ID,
		Attributes:    map[string]interface{}{},
		Relationships: map[string][]string{},
	}
	for key, value := range existing.Attributes {
		merged.Attributes[key] = value
	}
	for key, value := range update.Attributes {
		merged.Attributes[key] = value
	}
	for key, value := range existing.Relationships {
		merged.Relationships[key] = value
	}
	for key, value := range update.Relationships {
		merged.Relationships[key] = value
	}
	return merged
}
