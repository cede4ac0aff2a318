package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

// setupTestMeter creates a meter backed by a manual reader so recorded
// metrics can be collected and asserted on.
func setupTestMeter(t *testing.T) (*sdkmetric.ManualReader, *telemetry.BusinessMetrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return reader, bm
}

// collect reads all exported metrics into a name-indexed map.
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewBusinessMetrics_RequiresMeter(t *testing.T) {
	_, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestRecordInvoiceIssued(t *testing.T) {
	reader, bm := setupTestMeter(t)
	tenantID := uuid.New()

	bm.RecordInvoiceIssued(context.Background(), tenantID, decimal.NewFromFloat(125.50))
	bm.RecordInvoiceIssued(context.Background(), tenantID, decimal.NewFromFloat(74.50))

	metrics := collect(t, reader)

	count, ok := metrics["printcloud_invoice_issued_total"]
	require.True(t, ok)
	sum, ok := count.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	amount, ok := metrics["printcloud_invoice_amount_total"]
	require.True(t, ok)
	amountSum, ok := amount.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, amountSum.DataPoints, 1)
	// 125.50 + 74.50 = 200.00 -> 20000 cents
	assert.Equal(t, int64(20000), amountSum.DataPoints[0].Value)
}

func TestRecordScanProcessed(t *testing.T) {
	reader, bm := setupTestMeter(t)
	tenantID := uuid.New()

	bm.RecordScanProcessed(context.Background(), tenantID, "OCR", "EXTRACTED", 12*time.Second)

	metrics := collect(t, reader)

	count, ok := metrics["printcloud_scan_processed_total"]
	require.True(t, ok)
	sum, ok := count.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	duration, ok := metrics["printcloud_scan_extraction_duration_seconds"]
	require.True(t, ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 12.0, hist.DataPoints[0].Sum, 0.001)
}

func TestRecordCommunication(t *testing.T) {
	reader, bm := setupTestMeter(t)
	tenantID := uuid.New()

	bm.RecordCommunication(context.Background(), tenantID, "EMAIL", "SENT")
	bm.RecordCommunication(context.Background(), tenantID, "EMAIL", "FAILED")

	metrics := collect(t, reader)

	m, ok := metrics["printcloud_communication_sent_total"]
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	// Distinct delivery_status values produce distinct data points.
	assert.Len(t, sum.DataPoints, 2)
}

type stubReceivablesProvider struct {
	count   int64
	amount  decimal.Decimal
	pending int64
}

func (s *stubReceivablesProvider) GetOutstandingReceivables(_ context.Context, _ uuid.UUID) (int64, decimal.Decimal, error) {
	return s.count, s.amount, nil
}

func (s *stubReceivablesProvider) GetPendingScanCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.pending, nil
}

type stubTenantProvider struct {
	ids []uuid.UUID
}

func (s *stubTenantProvider) ListTenantIDs(_ context.Context) ([]uuid.UUID, error) {
	return s.ids, nil
}

func TestPeriodicCollection_RecordsGauges(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
		ReceivablesProvider: &stubReceivablesProvider{
			count:   4,
			amount:  decimal.NewFromFloat(980.25),
			pending: 2,
		},
	})
	require.NoError(t, err)
	defer bm.Stop()

	tenants := &stubTenantProvider{ids: []uuid.UUID{uuid.New()}}

	// The collection loop runs once immediately on start.
	bm.StartPeriodicCollection(context.Background(), tenants, time.Hour)

	require.Eventually(t, func() bool {
		metrics := collect(t, reader)
		_, ok := metrics["printcloud_receivable_invoice_count"]
		return ok
	}, 2*time.Second, 50*time.Millisecond)

	metrics := collect(t, reader)

	count, ok := metrics["printcloud_receivable_invoice_count"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, count.DataPoints, 1)
	assert.Equal(t, int64(4), count.DataPoints[0].Value)

	backlog, ok := metrics["printcloud_scan_backlog"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, backlog.DataPoints, 1)
	assert.Equal(t, int64(2), backlog.DataPoints[0].Value)
}
