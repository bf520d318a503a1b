package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/bugtrail/pkg/observability"
)

func setupTraceMetrics(t *testing.T) (*observability.TraceMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	tm, err := observability.NewTraceMetrics(meter)
	require.NoError(t, err)

	return tm, reader
}

func TestTraceMetrics_RecordTrace(t *testing.T) {
	t.Parallel()
	tm, reader := setupTraceMetrics(t)
	ctx := context.Background()

	tm.RecordTrace(ctx, observability.TraceStats{
		VersionsScanned: 12,
		Matches:         4,
		Found:           true,
		Confidence:      0.85,
		Duration:        3 * time.Second,
	})

	rm := collectMetrics(t, reader)

	for _, name := range []string{
		"bugtrail.traces.total",
		"bugtrail.trace.versions.scanned.total",
		"bugtrail.trace.duration.seconds",
		"bugtrail.trace.matches.total",
		"bugtrail.trace.confidence",
	} {
		require.NotNil(t, findMetric(rm, name), "%s metric not found", name)
	}
}

func TestTraceMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var tm *observability.TraceMetrics

	// Nil receiver should be a safe no-op.
	tm.RecordTrace(context.Background(), observability.TraceStats{VersionsScanned: 1})
}
