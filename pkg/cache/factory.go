package cache

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/rivetship/rivet/pkg/log"
)

var (
	_ NamedCacheFactory = (*BadgerCacheFactory)(nil)
	_ NamedCacheFactory = (*MemoryCacheFactory)(nil)
)

// BadgerCacheFactory wires a shared BadgerDB handle, options and a metrics
// sink into per-name persistent cache regions.
type BadgerCacheFactory struct {
	db      *badger.DB
	options Options
	metrics Metrics
	logger  log.Logger
}

// NewBadgerCacheFactory creates a factory over an already-open BadgerDB
// handle.
func NewBadgerCacheFactory(db *badger.DB, options Options, metrics Metrics, logger log.Logger) *BadgerCacheFactory {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &BadgerCacheFactory{
		db:      db,
		options: options.withDefaults(),
		metrics: metrics,
		logger:  logger,
	}
}

// OpenBadgerCacheFactory opens a BadgerDB database at path and returns a
// factory over it. Close releases the database.
func OpenBadgerCacheFactory(path string, options Options, metrics Metrics, logger log.Logger) (*BadgerCacheFactory, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	return NewBadgerCacheFactory(db, options, metrics, logger), nil
}

// GetCache returns the persistent cache region with the given name.
func (f *BadgerCacheFactory) GetCache(name string) WriteableCache {
	return NewBadgerCache(name, f.db, f.options, f.metrics, f.logger)
}

// Close closes the underlying database.
func (f *BadgerCacheFactory) Close() error {
	return f.db.Close()
}

// MemoryCacheFactory hands out bounded in-memory cache regions. Regions are
// created on first use and shared by name afterwards.
type MemoryCacheFactory struct {
	options Options
	metrics Metrics
	mu      sync.Mutex
	regions map[string]*MemoryCache
}

// NewMemoryCacheFactory creates an in-memory cache factory.
func NewMemoryCacheFactory(options Options, metrics Metrics) *MemoryCacheFactory {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &MemoryCacheFactory{
		options: options.withDefaults(),
		metrics: metrics,
		regions: map[string]*MemoryCache{},
	}
}

// GetCache returns the in-memory cache region with the given name.
func (f *MemoryCacheFactory) GetCache(name string) WriteableCache {
	f.mu.Lock()
	defer f.mu.Unlock()

	if region, ok := f.regions[name]; ok {
		return region
	}
	region := NewMemoryCache(name, f.options, f.metrics)
	f.regions[name] = region
	return region
}
