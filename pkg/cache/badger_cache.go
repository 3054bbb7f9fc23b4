package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/rivetship/rivet/pkg/log"
)

// Validate that BadgerCache implements the WriteableCache interface
var _ WriteableCache = (*BadgerCache)(nil)

// BadgerCache is a persistent WriteableCache backed by a shared BadgerDB
// handle. Regions share the database; entries are keyed "<name>/<id>".
type BadgerCache struct {
	name    string
	db      *badger.DB
	options Options
	metrics Metrics
	logger  log.Logger
}

// NewBadgerCache creates a cache region over an already-open BadgerDB
// handle. A nil metrics sink is replaced with a no-op one.
func NewBadgerCache(name string, db *badger.DB, options Options, metrics Metrics, logger log.Logger) *BadgerCache {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if logger == nil {
		logger = log.GetDefaultLogger().WithComponent("cache")
	} else {
		logger = logger.WithComponent("cache")
	}

	return &BadgerCache{
		name:    name,
		db:      db,
		options: options.withDefaults(),
		metrics: metrics,
		logger:  logger,
	}
}

// Merge upserts a single entry.
func (c *BadgerCache) Merge(ctx context.Context, item CacheData) error {
	return c.MergeAll(ctx, []CacheData{item})
}

// MergeAll upserts a batch of entries, committing every MergeBatchSize
// entries so a large batch never holds one oversized transaction.
func (c *BadgerCache) MergeAll(ctx context.Context, items []CacheData) error {
	for batch := range slices.Chunk(items, c.options.MergeBatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.db.Update(func(txn *badger.Txn) error {
			for _, item := range batch {
				if item.ID == "" {
					item.ID = uuid.NewString()
				}

				merged, err := c.mergeExisting(txn, item)
				if err != nil {
					return err
				}

				raw, err := json.Marshal(merged)
				if err != nil {
					return fmt.Errorf("failed to marshal cache entry %q: %w", merged.ID, err)
				}
				if err := txn.Set(c.key(merged.ID), raw); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to merge into cache %q: %w", c.name, err)
		}
	}

	c.metrics.Merge(c.name, len(items))
	c.logger.Debug("Merged cache entries", log.Str("cache", c.name), log.Int("items", len(items)))
	return nil
}

// Get retrieves an entry by id.
func (c *BadgerCache) Get(ctx context.Context, id string) (CacheData, bool, error) {
	if err := ctx.Err(); err != nil {
		return CacheData{}, false, err
	}

	var item CacheData
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(c.key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return entry.Value(func(raw []byte) error {
			return json.Unmarshal(raw, &item)
		})
	})
	if err != nil {
		return CacheData{}, false, fmt.Errorf("failed to read cache %q: %w", c.name, err)
	}

	c.metrics.Get(c.name, found)
	return item, found, nil
}

// GetAll retrieves every entry in the region.
func (c *BadgerCache) GetAll(ctx context.Context) ([]CacheData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []CacheData
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = c.options.ScanBatchSize
		opts.Prefix = c.prefix()

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var item CacheData
			err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &item)
			})
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache %q: %w", c.name, err)
	}
	return items, nil
}

// Exists reports whether an entry with the given id exists.
func (c *BadgerCache) Exists(ctx context.Context, id string) (bool, error) {
	_, found, err := c.Get(ctx, id)
	return found, err
}

// Evict removes an entry by id.
func (c *BadgerCache) Evict(ctx context.Context, id string) error {
	return c.EvictAll(ctx, []string{id})
}

// EvictAll removes a batch of entries by id.
func (c *BadgerCache) EvictAll(ctx context.Context, ids []string) error {
	for batch := range slices.Chunk(ids, c.options.MergeBatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.db.Update(func(txn *badger.Txn) error {
			for _, id := range batch {
				if err := txn.Delete(c.key(id)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to evict from cache %q: %w", c.name, err)
		}
	}

	c.metrics.Evict(c.name, len(ids))
	return nil
}

// Identifiers lists the ids of every entry in the region.
func (c *BadgerCache) Identifiers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = c.prefix()

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(c.prefix()):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache %q: %w", c.name, err)
	}
	return ids, nil
}

func (c *BadgerCache) mergeExisting(txn *badger.Txn, item CacheData) (CacheData, error) {
	entry, err := txn.Get(c.key(item.ID))
	if err == badger.ErrKeyNotFound {
		return item, nil
	}
	if err != nil {
		return CacheData{}, err
	}

	var existing CacheData
	err = entry.Value(func(raw []byte) error {
		return json.Unmarshal(raw, &existing)
	})
	if err != nil {
		return CacheData{}, err
	}
	return mergeCacheData(existing, item), nil
}

func (c *BadgerCache) key(id string) []byte {
	return []byte(c.name + "/" + id)
}

func (c *BadgerCache) prefix() []byte {
	return []byte(c.name + "/")
}
