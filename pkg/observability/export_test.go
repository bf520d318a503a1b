package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// ProbeBuildResource exposes buildResource for white-box tests.
var ProbeBuildResource = buildResource

// ProbeSamplerSpan reports whether the sampler selected for cfg would
// sample a root span.
func ProbeSamplerSpan(cfg Config) bool {
	sampler := selectSampler(cfg)

	tid, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	if err != nil {
		return false
	}

	result := sampler.ShouldSample(sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       tid,
		Name:          "probe",
		Kind:          trace.SpanKindInternal,
	})

	return result.Decision == sdktrace.RecordAndSample
}
