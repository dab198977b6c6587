package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestWithRequestAndSessionID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, l := WithSessionID(ctx, FromContext(ctx), "sess-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))

	l.Info("hello")
	entry := recorded.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "sess-1", fields["session_id"])
}

func TestL_AddsTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	ctx = WithContext(ctx, zap.New(core))

	L(ctx).Info("traced")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestL_WithoutSpan(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	L(ctx).With(zap.String("k", "v")).Warn("plain")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.Equal(t, "v", fields["k"])
	assert.Nil(t, TraceFields(context.Background()))
}
