// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mailsfinder/admin-console/internal/config"
)

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(0.5, "development").Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0.5, "production").Description(), "TraceIDRatioBased{0.5}")
	assert.Contains(t, samplerFor(7, "production").Description(), "TraceIDRatioBased{0.1}")
}

func TestDisabledTelemetryIsNoop(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.OtelConfig{}, config.AppConfig{})
	require.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))

	var missing *Telemetry
	assert.NoError(t, missing.Shutdown(context.Background()))

	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestSetSpanErrorMarksSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	ctx, span := tp.Tracer("test").Start(context.Background(), "load")
	SetSpanError(ctx, errors.New("upstream down"))
	AddSpanEvent(ctx, "fallback")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "upstream down", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 2)
	assert.Equal(t, "fallback", ended[0].Events()[1].Name)
}
