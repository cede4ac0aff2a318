package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// setupTestTracer installs an in-memory span recorder as the global
// tracer provider and returns it with a cleanup function.
func setupTestTracer(t *testing.T) (*tracetest.SpanRecorder, func()) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sr),
	)

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		_ = tp.Shutdown(context.Background())
	}

	return sr, cleanup
}

func TestStartSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "invoice.issue")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.issue", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	scanID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "bill_scan.process",
		telemetry.WithAttribute(telemetry.SpanAttrScanID, scanID.String()),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindClient, spans[0].SpanKind())

	var found bool
	for _, attr := range spans[0].Attributes() {
		if string(attr.Key) == telemetry.SpanAttrScanID && attr.Value.AsString() == scanID.String() {
			found = true
			break
		}
	}
	assert.True(t, found, "expected scan_id attribute not found")
}

func TestStartServiceSpan(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartServiceSpan(context.Background(), "sales_quotation", "accept")
	require.NotNil(t, span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sales_quotation.accept", spans[0].Name())
}

func TestSetAttributes(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "journal_entry.post")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriodCode, "2026-08",
		telemetry.SpanAttrQuantity, 3,
		"balanced", true,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got := map[string]interface{}{}
	for _, attr := range spans[0].Attributes() {
		got[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "2026-08", got[telemetry.SpanAttrPeriodCode])
	assert.Equal(t, int64(3), got[telemetry.SpanAttrQuantity])
	assert.Equal(t, true, got["balanced"])
}

func TestSetAttributes_SkipsNonStringKeys(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttributes(span, 42, "value", "ok_key", "ok_value")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	for _, attr := range spans[0].Attributes() {
		assert.NotEqual(t, "42", string(attr.Key))
	}
}

func TestRecordError(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "invoice.record_payment")
	telemetry.RecordError(span, errors.New("payment exceeds balance"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "payment exceeds balance", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestRecordError_NilSafe(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	// Neither a nil span nor a nil error should panic.
	telemetry.RecordError(nil, errors.New("boom"))

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.RecordError(span, nil)
	span.End()
}

func TestAddEvent(t *testing.T) {
	sr, cleanup := setupTestTracer(t)
	defer cleanup()

	_, span := telemetry.StartSpan(context.Background(), "bill_scan.process")
	telemetry.AddEvent(span, "extraction_complete",
		"engine", "OCR",
		"confidence", 0.6,
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "extraction_complete", spans[0].Events()[0].Name)
}

func TestGetTraceID(t *testing.T) {
	_, cleanup := setupTestTracer(t)
	defer cleanup()

	// No span in context yields an empty trace ID.
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "test.operation")
	defer span.End()

	assert.Len(t, telemetry.GetTraceID(ctx), 32)
	assert.Len(t, telemetry.GetSpanID(ctx), 16)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled: false,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())

	// Shutdown on a disabled provider is a no-op.
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.NoError(t, tp.ForceFlush(context.Background()))
}

func TestTracerProvider_SpanProfilesRequireTracing(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled: false,
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled())
}
