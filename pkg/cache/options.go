package cache

// Options tunes cache behavior shared by every backend.
type Options struct {
	// MergeBatchSize caps how many entries a single MergeAll transaction
	// writes before committing.
	MergeBatchSize int

	// ScanBatchSize is the prefetch size used when scanning a region.
	ScanBatchSize int

	// MemorySize bounds the in-memory cache's entry count per region.
	MemorySize int
}

// DefaultOptions returns the options used when the caller passes a zero
// Options value.
func DefaultOptions() Options {
	return Options{
		MergeBatchSize: 100,
		ScanBatchSize:  256,
		MemorySize:     4096,
	}
}

// withDefaults fills any unset option from DefaultOptions.
func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.MergeBatchSize <= 0 {
		o.MergeBatchSize = defaults.MergeBatchSize
	}
	if o.ScanBatchSize <= 0 {
		o.ScanBatchSize = defaults.ScanBatchSize
	}
	if o.MemorySize <= 0 {
		o.MemorySize = defaults.MemorySize
	}
	return o
}
