package history

import "sync/atomic"

// cacheStats tracks cumulative hit/miss counters for a version cache.
// Both sources expose the counters so the diagnostics endpoint can report
// cache effectiveness as gauges.
type cacheStats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheHits returns the cumulative number of cache hits.
func (s *cacheStats) CacheHits() int64 { return s.hits.Load() }

// CacheMisses returns the cumulative number of cache misses.
func (s *cacheStats) CacheMisses() int64 { return s.misses.Load() }
