package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)
	submissionID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "submission", "apply_signal",
		SpanAttrSubmissionID, submissionID, SpanAttrSignal, "payment_succeeded", "attempt", 2)
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("conflict"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "submission.apply_signal", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, submissionID.String(), attrs[SpanAttrSubmissionID].AsString())
	assert.Equal(t, int64(2), attrs["attempt"].AsInt64())
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestMarkSlowQuery(t *testing.T) {
	recorder := withRecorder(t)
	ctx, span := otel.Tracer("test").Start(context.Background(), "db")
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))

	tx := &gorm.DB{Statement: &gorm.Statement{Context: ctx, Table: "submissions"}}
	markSlowQuery(tx, 100*time.Millisecond)
	span.End()

	attrs := attrMap(recorder.Ended()[0].Attributes())
	assert.Equal(t, "submissions", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
}

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "lexflow-test"}

	tp, err := NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = NewIntakeMetrics(mp.Meter(MeterName))
	assert.NoError(t, err)
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
