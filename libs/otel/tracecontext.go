package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TraceContext is the W3C trace context serialised next to data that outlives
// the request, such as outbox rows.
type TraceContext struct {
	Traceparent string
	Tracestate  string
}

// CaptureTraceContext serialises the span context carried by ctx, if any.
func CaptureTraceContext(ctx context.Context) TraceContext {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return TraceContext{
		Traceparent: carrier["traceparent"],
		Tracestate:  carrier["tracestate"],
	}
}

// Restore returns ctx with tc attached as the remote parent span.
func (tc TraceContext) Restore(ctx context.Context) context.Context {
	if tc.Traceparent == "" && tc.Tracestate == "" {
		return ctx
	}
	carrier := propagation.MapCarrier{
		"traceparent": tc.Traceparent,
		"tracestate":  tc.Tracestate,
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
