package kafkax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Empty(t, SplitBrokers(""))
}

func TestEventMessageHeaders(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	msg := EventMessage(ctx, "evt-1", "compliance.shop.redact", "shop.myshopify.com", []byte(`{}`))
	assert.Equal(t, "compliance.shop.redact", msg.Topic)
	assert.Equal(t, "shop.myshopify.com", string(msg.Key))
	assert.Equal(t, "evt-1", HeaderValue(msg.Headers, HeaderEventID))
	assert.Equal(t, "compliance.shop.redact", HeaderValue(msg.Headers, HeaderEventType))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", HeaderValue(msg.Headers, "traceparent"))
}

func TestReadyCheckWithoutBrokers(t *testing.T) {
	assert.Error(t, ReadyCheck(nil)(context.Background()))
}
