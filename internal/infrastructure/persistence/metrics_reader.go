package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/infrastructure/persistence/models"
)

// MetricsReader serves aggregate figures for periodic business metrics
// collection. Read-only.
type MetricsReader struct {
	db *gorm.DB
}

// NewMetricsReader creates a new MetricsReader
func NewMetricsReader(db *gorm.DB) *MetricsReader {
	return &MetricsReader{db: db}
}

// GetOutstandingReceivables returns the count and total open balance of
// unpaid invoices for a tenant.
func (r *MetricsReader) GetOutstandingReceivables(ctx context.Context, tenantID uuid.UUID) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}

	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(grand_total - amount_paid), 0) AS total").
		Where("tenant_id = ? AND status IN ?", tenantID, []sales.InvoiceStatus{
			sales.InvoiceStatusIssued,
			sales.InvoiceStatusPartiallyPaid,
		}).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}

	return row.Count, row.Total, nil
}

// GetPendingScanCount returns the number of bill scans awaiting
// extraction for a tenant.
func (r *MetricsReader) GetPendingScanCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&purchasing.BillScan{}).
		Where("tenant_id = ? AND status = ?", tenantID, purchasing.BillScanStatusUploaded).
		Count(&count).Error
	return count, err
}
