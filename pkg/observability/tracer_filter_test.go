package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/bugtrail/pkg/observability"
)

func newTestProvider() (*tracetest.InMemoryExporter, trace.TracerProvider) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return exporter, tp
}

func TestFilteringProvider_SuppressedTracer(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	fp := observability.NewFilteringTracerProvider(base)

	// bugtrail.history is suppressed — spans should not be recorded.
	tracer := fp.Tracer("bugtrail.history")
	_, span := tracer.Start(context.Background(), "history.load_version")
	span.End()

	assert.Empty(t, exporter.GetSpans(), "suppressed tracer should produce no exported spans")
}

func TestFilteringProvider_SuppressedSpan(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	fp := observability.NewFilteringTracerProvider(base)

	tracer := fp.Tracer("bugtrail")

	// Structural span should pass through.
	_, structSpan := tracer.Start(context.Background(), "bugtrail.scan")
	structSpan.End()

	// Hot-path span should be suppressed.
	_, hotSpan := tracer.Start(context.Background(), "bugtrail.scan.version")
	hotSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1, "only structural span should be exported")
	assert.Equal(t, "bugtrail.scan", spans[0].Name)
}

func TestFilteringProvider_PassThrough(t *testing.T) {
	t.Parallel()

	exporter, base := newTestProvider()
	fp := observability.NewFilteringTracerProvider(base)

	tracer := fp.Tracer("bugtrail")
	_, span := tracer.Start(context.Background(), "bugtrail.trace")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "bugtrail.trace", spans[0].Name)
}

func TestFilteringProvider_NoopSpanIsValid(t *testing.T) {
	t.Parallel()

	fp := observability.NewFilteringTracerProvider(nooptrace.NewTracerProvider())

	tracer := fp.Tracer("bugtrail.history")
	ctx, span := tracer.Start(context.Background(), "history.load_version")

	// Noop span should still be usable without panicking.
	span.SetName("renamed")
	span.End()

	assert.NotNil(t, ctx)
}
