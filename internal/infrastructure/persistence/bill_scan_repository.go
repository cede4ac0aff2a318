package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBillScanRepository implements purchasing.BillScanRepository using GORM
type GormBillScanRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormBillScanRepository creates a new GormBillScanRepository
func NewGormBillScanRepository(db *gorm.DB) *GormBillScanRepository {
	return &GormBillScanRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormBillScanRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a bill scan by its ID
func (r *GormBillScanRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.BillScan, error) {
	var scan purchasing.BillScan
	if err := r.db.WithContext(ctx).First(&scan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &scan, nil
}

// FindByIDForTenant finds a bill scan by ID within a tenant
func (r *GormBillScanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.BillScan, error) {
	var scan purchasing.BillScan
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &scan, nil
}

// FindAll finds all bill scans with filtering
func (r *GormBillScanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.BillScan, error) {
	var scans []purchasing.BillScan
	query := r.applyFilter(r.db.WithContext(ctx).Model(&purchasing.BillScan{}), filter)
	if err := query.Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

// FindAllForTenant finds all bill scans for a tenant with filtering
func (r *GormBillScanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.BillScan, error) {
	var scans []purchasing.BillScan
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&purchasing.BillScan{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

// FindByStatus finds scans by status for a tenant
func (r *GormBillScanRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.BillScanStatus, filter shared.Filter) ([]purchasing.BillScan, error) {
	var scans []purchasing.BillScan
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&purchasing.BillScan{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

// FindPending finds uploaded scans awaiting extraction, oldest first, across
// tenants. The extraction worker drains this queue.
func (r *GormBillScanRepository) FindPending(ctx context.Context, limit int) ([]purchasing.BillScan, error) {
	var scans []purchasing.BillScan
	if err := r.db.WithContext(ctx).
		Where("status = ?", purchasing.BillScanStatusUploaded).
		Order("created_at ASC").
		Limit(limit).
		Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}

// Save saves a bill scan
func (r *GormBillScanRepository) Save(ctx context.Context, scan *purchasing.BillScan) error {
	return r.db.WithContext(ctx).Save(scan).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormBillScanRepository) SaveWithLockAndEvents(ctx context.Context, scan *purchasing.BillScan, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&purchasing.BillScan{}).
			Where("id = ?", scan.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the scan
			if err := tx.Create(scan).Error; err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != scan.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The scan has been modified by another user")
		}

		currentVersion := scan.Version
		scan.Version++
		scan.UpdatedAt = time.Now()

		result := tx.Model(&purchasing.BillScan{}).
			Where("id = ? AND version = ?", scan.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":           scan.Status,
				"extraction":       scan.Extraction,
				"failure_reason":   scan.FailureReason,
				"attempts":         scan.Attempts,
				"supplier_id":      scan.SupplierID,
				"supplier_bill_id": scan.SupplierBillID,
				"reviewed_by":      scan.ReviewedBy,
				"reviewed_at":      scan.ReviewedAt,
				"discarded_at":     scan.DiscardedAt,
				"discard_reason":   scan.DiscardReason,
				"version":          scan.Version,
				"updated_at":       scan.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The scan has been modified by another user")
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormBillScanRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// Delete deletes a bill scan by ID
func (r *GormBillScanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&purchasing.BillScan{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts bill scans matching the filter
func (r *GormBillScanRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&purchasing.BillScan{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormBillScanRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BillScanSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillScanRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("file_name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormBillScanRepository implements BillScanRepository
var _ purchasing.BillScanRepository = (*GormBillScanRepository)(nil)
