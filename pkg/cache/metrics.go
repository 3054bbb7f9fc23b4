package cache

// Metrics receives counters from cache operations. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// Merge records how many entries a merge call wrote to the named region.
	Merge(cacheName string, items int)

	// Evict records how many entries an evict call removed.
	Evict(cacheName string, items int)

	// Get records a single lookup and whether it hit.
	Get(cacheName string, hit bool)
}

type noopMetrics struct{}

func (noopMetrics) Merge(string, int) {}
func (noopMetrics) Evict(string, int) {}
func (noopMetrics) Get(string, bool)  {}

// NoopMetrics returns a Metrics sink that discards everything.
func NoopMetrics() Metrics {
	return noopMetrics{}
}
