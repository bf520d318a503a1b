package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommandsTotal    = "bugtrail.commands.total"
	metricCommandDuration  = "bugtrail.command.duration.seconds"
	metricErrorsTotal      = "bugtrail.errors.total"
	metricInflightCommands = "bugtrail.inflight.commands"

	attrOp     = "op"
	attrStatus = "status"

	statusError = "error"
)

// durationBucketBoundaries covers 10ms to 600s for workloads that range
// from sub-second diffs to multi-minute repository-wide traces.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// CommandMetrics holds the OTel instruments for per-command Rate, Error,
// Duration metrics.
type CommandMetrics struct {
	commandsTotal    metric.Int64Counter
	commandDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightCommands metric.Int64UpDownCounter
}

// NewCommandMetrics creates command metric instruments from the given meter.
func NewCommandMetrics(mt metric.Meter) (*CommandMetrics, error) {
	cmdTotal, err := mt.Int64Counter(metricCommandsTotal,
		metric.WithDescription("Total number of command executions"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandsTotal, err)
	}

	cmdDuration, err := mt.Float64Histogram(metricCommandDuration,
		metric.WithDescription("Command duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommandDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of command errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightCommands,
		metric.WithDescription("Number of in-flight commands"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightCommands, err)
	}

	return &CommandMetrics{
		commandsTotal:    cmdTotal,
		commandDuration:  cmdDuration,
		errorsTotal:      errTotal,
		inflightCommands: inflight,
	}, nil
}

// RecordCommand records a completed command with its operation, status, and duration.
// Safe to call on a nil receiver (no-op).
func (cm *CommandMetrics) RecordCommand(ctx context.Context, op, status string, duration time.Duration) {
	if cm == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	cm.commandsTotal.Add(ctx, 1, attrs)
	cm.commandDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		cm.errorsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (cm *CommandMetrics) TrackInflight(ctx context.Context, op string) func() {
	if cm == nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	cm.inflightCommands.Add(ctx, 1, attrs)

	return func() {
		cm.inflightCommands.Add(ctx, -1, attrs)
	}
}
