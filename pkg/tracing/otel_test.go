package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestInvokeSpan_ToolSpanIsChild(t *testing.T) {
	rec := withRecorder(t)

	ctx, invoke := StartInvokeSpan(context.Background(), "s-1")
	_, tool := StartToolSpan(ctx, "lookup_order")
	SetToolStatus(tool, "business_fail")
	tool.End()
	EndInvoke(invoke, "answered", 2)
	invoke.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "tool.invoke", ended[0].Name())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, "business_fail", attrs(ended[0])["tool.status"].AsString())
	assert.Equal(t, "s-1", attrs(ended[1])["session.id"].AsString())
	assert.Equal(t, int64(2), attrs(ended[1])["agent.iterations"].AsInt64())
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestEndInvoke_NonAnsweredIsError(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartInvokeSpan(context.Background(), "s-2")
	EndInvoke(span, "budget_exceeded", 6)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "budget_exceeded", ended[0].Status().Description)
}
