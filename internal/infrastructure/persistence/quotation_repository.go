package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormQuotationRepository implements sales.QuotationRepository using GORM
type GormQuotationRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormQuotationRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a quotation by its ID
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesQuotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a quotation by ID within a tenant
func (r *GormQuotationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesQuotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a quotation by its document number for a tenant
func (r *GormQuotationRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesQuotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND quotation_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all quotations with filtering
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesQuotation, error) {
	var ms []models.QuotationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.QuotationModel{}), filter)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindAllForTenant finds all quotations for a tenant with filtering
func (r *GormQuotationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesQuotation, error) {
	var ms []models.QuotationModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuotationModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByCustomer finds quotations for a customer
func (r *GormQuotationRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesQuotation, error) {
	var ms []models.QuotationModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuotationModel{}).
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds quotations by status for a tenant
func (r *GormQuotationRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.QuotationStatus, filter shared.Filter) ([]sales.SalesQuotation, error) {
	var ms []models.QuotationModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuotationModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindExpirable finds sent quotations whose validity date has lapsed
func (r *GormQuotationRepository) FindExpirable(ctx context.Context, tenantID uuid.UUID, limit int) ([]sales.SalesQuotation, error) {
	var ms []models.QuotationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND valid_until IS NOT NULL AND valid_until < ?",
			tenantID, sales.QuotationStatusSent, time.Now()).
		Order("valid_until ASC").
		Limit(limit).
		Preload("Items").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// Save saves a quotation together with its items
func (r *GormQuotationRepository) Save(ctx context.Context, quotation *sales.SalesQuotation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.QuotationModelFromDomain(quotation)

		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		return r.saveItems(tx, quotation)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormQuotationRepository) SaveWithLockAndEvents(ctx context.Context, quotation *sales.SalesQuotation, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&models.QuotationModel{}).
			Where("id = ?", quotation.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the quotation and its items
			model := models.QuotationModelFromDomain(quotation)
			if err := tx.Omit("Items").Create(model).Error; err != nil {
				return err
			}
			if err := r.saveItems(tx, quotation); err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != quotation.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The quotation has been modified by another user")
		}

		currentVersion := quotation.Version
		quotation.Version++
		quotation.UpdatedAt = time.Now()

		result := tx.Model(&models.QuotationModel{}).
			Where("id = ? AND version = ?", quotation.ID, currentVersion).
			Updates(map[string]interface{}{
				"customer_id":        quotation.CustomerID,
				"customer_name":      quotation.CustomerName,
				"subtotal":           quotation.Subtotal,
				"discount_amount":    quotation.DiscountAmount,
				"tax_rate":           quotation.TaxRate,
				"tax_amount":         quotation.TaxAmount,
				"grand_total":        quotation.GrandTotal,
				"valid_until":        quotation.ValidUntil,
				"status":             quotation.Status,
				"remark":             quotation.Remark,
				"sent_at":            quotation.SentAt,
				"decided_at":         quotation.DecidedAt,
				"converted_order_id": quotation.ConvertedOrderID,
				"version":            quotation.Version,
				"updated_at":         quotation.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The quotation has been modified by another user")
		}

		if err := r.saveItems(tx, quotation); err != nil {
			return err
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormQuotationRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// saveItems reconciles the quotation's item rows: removed items are deleted,
// the rest are upserted.
func (r *GormQuotationRepository) saveItems(tx *gorm.DB, quotation *sales.SalesQuotation) error {
	currentItemIDs := make([]uuid.UUID, len(quotation.Items))
	for i, item := range quotation.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("quotation_id = ? AND id NOT IN ?", quotation.ID, currentItemIDs).
			Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("quotation_id = ?", quotation.ID).
			Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range quotation.Items {
		quotation.Items[i].QuotationID = quotation.ID
		itemModel := models.QuotationItemModelFromDomain(&quotation.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a quotation and its items
func (r *GormQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quotation_id = ?", id).Delete(&models.QuotationItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.QuotationModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts quotations matching the filter
func (r *GormQuotationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.QuotationModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a quotation number exists for a tenant
func (r *GormQuotationRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("tenant_id = ? AND quotation_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique quotation number for a tenant.
// Format: QT-YYYY-NNNNN (e.g., QT-2026-00001)
func (r *GormQuotationRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("QT-%d-", year)

	var last models.QuotationModel
	err := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("tenant_id = ? AND quotation_number LIKE ?", tenantID, prefix+"%").
		Order("quotation_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.QuotationNumber != "" {
		parts := strings.Split(last.QuotationNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByNumber(ctx, tenantID, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByNumber(ctx, tenantID, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

func (r *GormQuotationRepository) toDomainSlice(ms []models.QuotationModel) []sales.SalesQuotation {
	quotations := make([]sales.SalesQuotation, len(ms))
	for i := range ms {
		quotations[i] = *ms[i].ToDomain()
	}
	return quotations
}

// applyFilter applies filter options to the query
func (r *GormQuotationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, QuotationSortFields, "")
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
func (r *GormQuotationRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("quotation_number ILIKE ? OR customer_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
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

// Ensure GormQuotationRepository implements QuotationRepository
var _ sales.QuotationRepository = (*GormQuotationRepository)(nil)
