package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricTracesTotal     = "bugtrail.traces.total"
	metricVersionsScanned = "bugtrail.trace.versions.scanned.total"
	metricTraceDuration   = "bugtrail.trace.duration.seconds"
	metricMatchesTotal    = "bugtrail.trace.matches.total"
	metricTraceConfidence = "bugtrail.trace.confidence"

	attrFound = "found"
)

// confidenceBucketBoundaries covers the [0,1] confidence range in 0.1 steps.
var confidenceBucketBoundaries = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// TraceMetrics holds OTel instruments for bug lineage tracing metrics.
type TraceMetrics struct {
	tracesTotal     metric.Int64Counter
	versionsScanned metric.Int64Counter
	traceDuration   metric.Float64Histogram
	matchesTotal    metric.Int64Counter
	confidence      metric.Float64Histogram
}

// TraceStats holds the statistics for a single completed trace,
// decoupled from the lineage types.
type TraceStats struct {
	VersionsScanned int
	Matches         int
	Found           bool
	Confidence      float64
	Duration        time.Duration
}

// NewTraceMetrics creates trace metric instruments from the given meter.
func NewTraceMetrics(mt metric.Meter) (*TraceMetrics, error) {
	traces, err := mt.Int64Counter(metricTracesTotal,
		metric.WithDescription("Total bug lineage traces completed"),
		metric.WithUnit("{trace}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTracesTotal, err)
	}

	versions, err := mt.Int64Counter(metricVersionsScanned,
		metric.WithDescription("Total file versions scanned during traces"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricVersionsScanned, err)
	}

	traceDur, err := mt.Float64Histogram(metricTraceDuration,
		metric.WithDescription("Per-trace duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTraceDuration, err)
	}

	matches, err := mt.Int64Counter(metricMatchesTotal,
		metric.WithDescription("Total signature matches found during traces"),
		metric.WithUnit("{match}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchesTotal, err)
	}

	conf, err := mt.Float64Histogram(metricTraceConfidence,
		metric.WithDescription("Confidence score of completed traces"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(confidenceBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricTraceConfidence, err)
	}

	return &TraceMetrics{
		tracesTotal:     traces,
		versionsScanned: versions,
		traceDuration:   traceDur,
		matchesTotal:    matches,
		confidence:      conf,
	}, nil
}

// RecordTrace records the statistics for a completed trace.
// Safe to call on a nil receiver (no-op).
func (tm *TraceMetrics) RecordTrace(ctx context.Context, stats TraceStats) {
	if tm == nil {
		return
	}

	foundAttrs := metric.WithAttributes(attribute.Bool(attrFound, stats.Found))

	tm.tracesTotal.Add(ctx, 1, foundAttrs)
	tm.versionsScanned.Add(ctx, int64(stats.VersionsScanned))
	tm.traceDuration.Record(ctx, stats.Duration.Seconds())
	tm.matchesTotal.Add(ctx, int64(stats.Matches))
	tm.confidence.Record(ctx, stats.Confidence, foundAttrs)
}
