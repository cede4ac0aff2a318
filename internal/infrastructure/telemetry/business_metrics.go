package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks document flow through the billing pipeline:
// quotations, invoices, payments, scan extraction and rendering.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	quotationCreatedTotal  *Counter
	quotationAcceptedTotal *Counter
	invoiceIssuedTotal     *Counter
	invoiceAmountTotal     *Counter
	paymentRecordedTotal   *Counter
	scanProcessedTotal     *Counter
	documentRenderedTotal  *Counter
	communicationTotal     *Counter

	extractionDuration *Histogram
	renderDuration     *Histogram

	receivableCount  *Gauge
	receivableAmount *FloatGauge
	scanBacklog      *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	receivablesProvider ReceivablesMetricsProvider
}

// ReceivablesMetricsProvider supplies receivables and scan-backlog data
// for periodic gauge collection, without the telemetry layer depending on
// the domain packages directly.
type ReceivablesMetricsProvider interface {
	// GetOutstandingReceivables returns the count and total amount of
	// unpaid invoices for a tenant.
	GetOutstandingReceivables(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error)

	// GetPendingScanCount returns the number of bill scans awaiting
	// extraction for a tenant.
	GetPendingScanCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// TenantProvider enumerates tenants for periodic metrics collection.
type TenantProvider interface {
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	CollectInterval     time.Duration // Default: 5 minutes
	ReceivablesProvider ReceivablesMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:               cfg.Meter,
		logger:              logger,
		stopChan:            make(chan struct{}),
		receivablesProvider: cfg.ReceivablesProvider,
	}

	var err error

	bm.quotationCreatedTotal, err = NewCounter(cfg.Meter,
		"printcloud_quotation_created_total",
		"Total number of quotations created",
		"{quotations}",
	)
	if err != nil {
		return nil, err
	}

	bm.quotationAcceptedTotal, err = NewCounter(cfg.Meter,
		"printcloud_quotation_accepted_total",
		"Total number of quotations accepted into sales orders",
		"{quotations}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceIssuedTotal, err = NewCounter(cfg.Meter,
		"printcloud_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(cfg.Meter,
		"printcloud_invoice_amount_total",
		"Total issued invoice amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentRecordedTotal, err = NewCounter(cfg.Meter,
		"printcloud_payment_recorded_total",
		"Total number of payments recorded against invoices and bills",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.scanProcessedTotal, err = NewCounter(cfg.Meter,
		"printcloud_scan_processed_total",
		"Total number of bill scans run through extraction",
		"{scans}",
	)
	if err != nil {
		return nil, err
	}

	bm.documentRenderedTotal, err = NewCounter(cfg.Meter,
		"printcloud_document_rendered_total",
		"Total number of documents rendered to PDF",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	bm.communicationTotal, err = NewCounter(cfg.Meter,
		"printcloud_communication_sent_total",
		"Total number of outbound customer communications",
		"{messages}",
	)
	if err != nil {
		return nil, err
	}

	bm.extractionDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "printcloud_scan_extraction_duration_seconds",
		Description: "Duration of bill-scan extraction runs",
		Unit:        "s",
		Boundaries:  ExtractionDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.renderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "printcloud_document_render_duration_seconds",
		Description: "Duration of document PDF renders",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.receivableCount, err = NewGauge(cfg.Meter,
		"printcloud_receivable_invoice_count",
		"Number of invoices with an outstanding balance",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.receivableAmount, err = NewFloatGauge(cfg.Meter,
		"printcloud_receivable_amount",
		"Total outstanding invoice balance",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}

	bm.scanBacklog, err = NewGauge(cfg.Meter,
		"printcloud_scan_backlog",
		"Number of bill scans awaiting extraction",
		"{scans}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordQuotationCreated records a quotation creation event.
func (bm *BusinessMetrics) RecordQuotationCreated(ctx context.Context, tenantID uuid.UUID) {
	bm.quotationCreatedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordQuotationAccepted records a quotation acceptance.
func (bm *BusinessMetrics) RecordQuotationAccepted(ctx context.Context, tenantID uuid.UUID) {
	bm.quotationAcceptedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordInvoiceIssued records an invoice issue event together with its
// grand total. The amount counter is kept in cents so it stays integral.
func (bm *BusinessMetrics) RecordInvoiceIssued(ctx context.Context, tenantID uuid.UUID, grandTotal decimal.Decimal) {
	bm.invoiceIssuedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
	cents := grandTotal.Mul(decimal.NewFromInt(100)).IntPart()
	bm.invoiceAmountTotal.Add(ctx, cents, AttrTenantID.String(tenantID.String()))
}

// RecordPayment records a payment against an invoice or supplier bill.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, method string) {
	bm.paymentRecordedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	)
}

// RecordScanProcessed records a completed extraction run with its engine,
// resulting status and duration.
func (bm *BusinessMetrics) RecordScanProcessed(ctx context.Context, tenantID uuid.UUID, engine, status string, elapsed time.Duration) {
	bm.scanProcessedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrScanEngine.String(engine),
		AttrScanStatus.String(status),
	)
	bm.extractionDuration.RecordDuration(ctx, elapsed,
		AttrTenantID.String(tenantID.String()),
		AttrScanEngine.String(engine),
	)
}

// RecordDocumentRendered records a PDF render with its type, paper size
// and duration.
func (bm *BusinessMetrics) RecordDocumentRendered(ctx context.Context, tenantID uuid.UUID, documentType, paperSize string, elapsed time.Duration) {
	bm.documentRenderedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(documentType),
		AttrPaperSize.String(paperSize),
	)
	bm.renderDuration.RecordDuration(ctx, elapsed,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(documentType),
	)
}

// RecordCommunication records an outbound message delivery attempt.
func (bm *BusinessMetrics) RecordCommunication(ctx context.Context, tenantID uuid.UUID, channel, status string) {
	bm.communicationTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrChannel.String(channel),
		AttrDeliveryStatus.String(status),
	)
}

// StartPeriodicCollection starts periodic collection of receivables and
// scan-backlog gauges. Non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectGauges(ctx, tenants)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectGauges(ctx, tenants)
		}
	}
}

func (bm *BusinessMetrics) collectGauges(ctx context.Context, tenants TenantProvider) {
	if bm.receivablesProvider == nil {
		return
	}

	tenantIDs, err := tenants.ListTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to list tenants for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		count, amount, err := bm.receivablesProvider.GetOutstandingReceivables(ctx, tenantID)
		if err != nil {
			bm.logger.Warn("Failed to get outstanding receivables",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			bm.receivableCount.Record(ctx, count, AttrTenantID.String(tenantID.String()))
			bm.receivableAmount.Record(ctx, amount.InexactFloat64(), AttrTenantID.String(tenantID.String()))
		}

		pending, err := bm.receivablesProvider.GetPendingScanCount(ctx, tenantID)
		if err != nil {
			bm.logger.Warn("Failed to get pending scan count",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		} else {
			bm.scanBacklog.Record(ctx, pending, AttrTenantID.String(tenantID.String()))
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when the meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
