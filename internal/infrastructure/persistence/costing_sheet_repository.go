package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/costing"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSheetRepository implements costing.SheetRepository using GORM
type GormSheetRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormSheetRepository creates a new GormSheetRepository
func NewGormSheetRepository(db *gorm.DB) *GormSheetRepository {
	return &GormSheetRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormSheetRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a costing sheet by its ID
func (r *GormSheetRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostingSheet, error) {
	var sheet costing.CostingSheet
	if err := r.db.WithContext(ctx).First(&sheet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// FindByIDForTenant finds a costing sheet by ID within a tenant
func (r *GormSheetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostingSheet, error) {
	var sheet costing.CostingSheet
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&sheet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// FindAll finds all costing sheets with filtering
func (r *GormSheetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]costing.CostingSheet, error) {
	var sheets []costing.CostingSheet
	query := r.applyFilter(r.db.WithContext(ctx).Model(&costing.CostingSheet{}), filter)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// FindAllForTenant finds all costing sheets for a tenant with filtering
func (r *GormSheetRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]costing.CostingSheet, error) {
	var sheets []costing.CostingSheet
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&costing.CostingSheet{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// FindByCustomer finds sheets quoted for a customer
func (r *GormSheetRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]costing.CostingSheet, error) {
	var sheets []costing.CostingSheet
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&costing.CostingSheet{}).
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID),
		filter,
	)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// FindByStatus finds sheets by status for a tenant
func (r *GormSheetRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status costing.SheetStatus, filter shared.Filter) ([]costing.CostingSheet, error) {
	var sheets []costing.CostingSheet
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&costing.CostingSheet{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&sheets).Error; err != nil {
		return nil, err
	}
	return sheets, nil
}

// Save saves a costing sheet
func (r *GormSheetRepository) Save(ctx context.Context, sheet *costing.CostingSheet) error {
	return r.db.WithContext(ctx).Save(sheet).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormSheetRepository) SaveWithLockAndEvents(ctx context.Context, sheet *costing.CostingSheet, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&costing.CostingSheet{}).
			Where("id = ?", sheet.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the sheet
			if err := tx.Create(sheet).Error; err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != sheet.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The sheet has been modified by another user")
		}

		currentVersion := sheet.Version
		sheet.Version++
		sheet.UpdatedAt = time.Now()

		result := tx.Model(&costing.CostingSheet{}).
			Where("id = ? AND version = ?", sheet.ID, currentVersion).
			Updates(map[string]interface{}{
				"job_name":       sheet.JobName,
				"customer_id":    sheet.CustomerID,
				"customer_name":  sheet.CustomerName,
				"quantity":       sheet.Quantity,
				"components":     sheet.Components,
				"profit_percent": sheet.ProfitPercent,
				"tax_percent":    sheet.TaxPercent,
				"subtotal":       sheet.Subtotal,
				"profit_amount":  sheet.ProfitAmount,
				"tax_amount":     sheet.TaxAmount,
				"grand_total":    sheet.GrandTotal,
				"unit_price":     sheet.UnitPrice,
				"status":         sheet.Status,
				"finalized_at":   sheet.FinalizedAt,
				"version":        sheet.Version,
				"updated_at":     sheet.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The sheet has been modified by another user")
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormSheetRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// Delete deletes a costing sheet by ID
func (r *GormSheetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&costing.CostingSheet{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts costing sheets matching the filter
func (r *GormSheetRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&costing.CostingSheet{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSheetRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, CostingSheetSortFields, "")
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
func (r *GormSheetRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("job_name ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}

// Ensure GormSheetRepository implements SheetRepository
var _ costing.SheetRepository = (*GormSheetRepository)(nil)
