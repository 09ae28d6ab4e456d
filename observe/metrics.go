package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CallMetrics records RPC call telemetry.
type CallMetrics struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

// NewCallMetrics creates the standard call instruments on the given meter.
func NewCallMetrics(meter metric.Meter) (*CallMetrics, error) {
	calls, err := meter.Int64Counter(
		"rpc.call.total",
		metric.WithDescription("Total number of RPC calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call counter: %w", err)
	}

	errCounter, err := meter.Int64Counter(
		"rpc.call.errors",
		metric.WithDescription("Total number of failed RPC calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"rpc.call.duration_ms",
		metric.WithDescription("RPC call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &CallMetrics{
		calls:    calls,
		errors:   errCounter,
		duration: duration,
	}, nil
}

// RecordCall records one completed call with its outcome and elapsed time.
func (m *CallMetrics) RecordCall(ctx context.Context, meta CallMeta, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("rpc.network", meta.Network),
		attribute.String("rpc.method", meta.Method),
	)

	m.calls.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}
