package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "bugtrail.cache.hits"
	metricCacheMisses = "bugtrail.cache.misses"

	attrCache = "cache"
)

// CacheStatsProvider exposes cumulative hit/miss counters for a cache.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges that report hit/miss
// counters for the named caches. Nil providers are skipped.
func RegisterCacheMetrics(mt metric.Meter, caches map[string]CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Cache hits by type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Cache misses by type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		for name, cache := range caches {
			if cache == nil {
				continue
			}

			attrs := metric.WithAttributes(attribute.String(attrCache, name))
			obs.ObserveInt64(hits, cache.CacheHits(), attrs)
			obs.ObserveInt64(misses, cache.CacheMisses(), attrs)
		}

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}
