package observability

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	prev := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestTraceRecordsStatus(t *testing.T) {
	sr := recordSpans(t)

	require.NoError(t, Trace(context.Background(), "config.load", func(context.Context) error { return nil },
		attribute.String("source", "hablo.yaml")))
	err := Trace(context.Background(), "flow.plan", func(context.Context) error { return fmt.Errorf("no nodes") })
	require.EqualError(t, err, "no nodes")

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "config.load", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("source", "hablo.yaml"))

	assert.Equal(t, "flow.plan", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "no nodes", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestTraceNestsSpans(t *testing.T) {
	sr := recordSpans(t)

	_ = Trace(context.Background(), "outer", func(ctx context.Context) error {
		_, span := StartSpan(ctx, "inner")
		span.End()
		return nil
	})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "inner", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestInitExportsToWriter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	cfg := DefaultTracingConfig("test")
	cfg.Output = &out
	shutdown, err := Init(cfg)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "channel.start")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, out.String(), `"Name":"channel.start"`)
	assert.Contains(t, out.String(), "hablo")
}
