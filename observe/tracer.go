package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CallMeta identifies an outbound RPC call for telemetry. Only identity
// fields live here; payload contents never do.
type CallMeta struct {
	Network string
	Method  string
}

// StartCallSpan starts a span for an RPC call. The span name follows the
// pattern "rpc.call.<network>.<method>".
func StartCallSpan(ctx context.Context, tracer trace.Tracer, meta CallMeta) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("rpc.call.%s.%s", meta.Network, meta.Method)
	return tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.network", meta.Network),
			attribute.String("rpc.method", meta.Method),
		),
	)
}

// EndCallSpan finalizes a call span with the outcome. Error text is assumed
// already sanitized by the caller.
func EndCallSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("rpc.error", true))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
