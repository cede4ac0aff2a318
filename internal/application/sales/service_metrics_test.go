package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// newMeteredBusinessMetrics builds a metrics collector backed by a manual
// reader so service-level counter increments can be asserted on.
func newMeteredBusinessMetrics(t *testing.T) (*sdkmetric.ManualReader, *telemetry.BusinessMetrics) {
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

// counterValue sums all data points of a counter, returning 0 when the
// counter has not been recorded yet.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestQuotationService_Create_CountsQuotation(t *testing.T) {
	tenantID := uuid.New()
	quotationRepo := new(MockQuotationRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewQuotationService(quotationRepo, orderRepo)

	reader, bm := newMeteredBusinessMetrics(t)
	service.SetBusinessMetrics(bm)

	quotationRepo.On("GenerateNumber", mock.Anything, tenantID).Return("QT-2026-00044", nil)
	quotationRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesQuotation"), mock.Anything).Return(nil)

	_, err := service.Create(context.Background(), tenantID, CreateQuotationRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Acme Press",
		Items: []QuotationItemInput{
			{Description: "Flyer print run", Quantity: decimal.NewFromInt(500), UnitPrice: decimal.NewFromFloat(0.12)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), counterValue(t, reader, "printcloud_quotation_created_total"))
}

func TestQuotationService_Create_NoMetricOnFailure(t *testing.T) {
	tenantID := uuid.New()
	quotationRepo := new(MockQuotationRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewQuotationService(quotationRepo, orderRepo)

	reader, bm := newMeteredBusinessMetrics(t)
	service.SetBusinessMetrics(bm)

	quotationRepo.On("GenerateNumber", mock.Anything, tenantID).Return("QT-2026-00045", nil)

	_, err := service.Create(context.Background(), tenantID, CreateQuotationRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Acme Press",
		Items: []QuotationItemInput{
			{Description: "", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(1.00)},
		},
	})

	assert.Error(t, err)
	assert.Equal(t, int64(0), counterValue(t, reader, "printcloud_quotation_created_total"))
}

func TestInvoiceService_IssueFromOrder_CountsIssuedInvoice(t *testing.T) {
	tenantID := uuid.New()
	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewInvoiceService(invoiceRepo, orderRepo)

	reader, bm := newMeteredBusinessMetrics(t)
	service.SetBusinessMetrics(bm)

	order := newReadyOrder(t, tenantID)
	orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
	invoiceRepo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-00077", nil)
	invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesInvoice"), mock.Anything).Return(nil)
	orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

	dueDate := time.Now().AddDate(0, 1, 0)
	resp, err := service.IssueFromOrder(context.Background(), tenantID, IssueFromOrderRequest{
		OrderID: order.ID,
		DueDate: &dueDate,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), counterValue(t, reader, "printcloud_invoice_issued_total"))
	// Amount counter carries the grand total in cents.
	cents := resp.GrandTotal.Mul(decimal.NewFromInt(100)).IntPart()
	assert.Equal(t, cents, counterValue(t, reader, "printcloud_invoice_amount_total"))
}

func TestInvoiceService_RecordPayment_CountsPayment(t *testing.T) {
	tenantID := uuid.New()
	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewInvoiceService(invoiceRepo, orderRepo)

	reader, bm := newMeteredBusinessMetrics(t)
	service.SetBusinessMetrics(bm)

	invoice := newTestInvoice(t, tenantID)
	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

	_, err := service.RecordPayment(context.Background(), tenantID, invoice.ID, RecordPaymentRequest{
		Amount: decimal.NewFromFloat(50.00),
		Method: "CASH",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), counterValue(t, reader, "printcloud_payment_recorded_total"))
}
