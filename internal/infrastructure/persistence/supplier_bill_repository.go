package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSupplierBillRepository implements purchasing.SupplierBillRepository using GORM
type GormSupplierBillRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormSupplierBillRepository creates a new GormSupplierBillRepository
func NewGormSupplierBillRepository(db *gorm.DB) *GormSupplierBillRepository {
	return &GormSupplierBillRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormSupplierBillRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a supplier bill by its ID
func (r *GormSupplierBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.SupplierBill, error) {
	var model models.SupplierBillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a supplier bill by ID within a tenant
func (r *GormSupplierBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.SupplierBill, error) {
	var model models.SupplierBillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a bill by its internal number for a tenant
func (r *GormSupplierBillRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*purchasing.SupplierBill, error) {
	var model models.SupplierBillModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("tenant_id = ? AND bill_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all supplier bills with filtering
func (r *GormSupplierBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	var ms []models.SupplierBillModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierBillModel{}), filter)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindAllForTenant finds all supplier bills for a tenant with filtering
func (r *GormSupplierBillRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	var ms []models.SupplierBillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SupplierBillModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindBySupplier finds bills for a supplier
func (r *GormSupplierBillRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	var ms []models.SupplierBillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SupplierBillModel{}).
			Where("tenant_id = ? AND supplier_id = ?", tenantID, supplierID),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds bills by status for a tenant
func (r *GormSupplierBillRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.SupplierBillStatus, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	var ms []models.SupplierBillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SupplierBillModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindOverdue finds approved bills past their due date
func (r *GormSupplierBillRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	var ms []models.SupplierBillModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SupplierBillModel{}).
			Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, time.Now(),
				[]purchasing.SupplierBillStatus{purchasing.SupplierBillStatusApproved, purchasing.SupplierBillStatusPartiallyPaid}),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// Save saves a supplier bill together with its items and payments
func (r *GormSupplierBillRepository) Save(ctx context.Context, bill *purchasing.SupplierBill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SupplierBillModelFromDomain(bill)

		if err := tx.Omit("Items", "Payments").Save(model).Error; err != nil {
			return err
		}

		return r.saveChildren(tx, bill)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormSupplierBillRepository) SaveWithLockAndEvents(ctx context.Context, bill *purchasing.SupplierBill, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&models.SupplierBillModel{}).
			Where("id = ?", bill.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the bill with its lines and payments
			model := models.SupplierBillModelFromDomain(bill)
			if err := tx.Omit("Items", "Payments").Create(model).Error; err != nil {
				return err
			}
			if err := r.saveChildren(tx, bill); err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != bill.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The bill has been modified by another user")
		}

		currentVersion := bill.Version
		bill.Version++
		bill.UpdatedAt = time.Now()

		result := tx.Model(&models.SupplierBillModel{}).
			Where("id = ? AND version = ?", bill.ID, currentVersion).
			Updates(map[string]interface{}{
				"supplier_bill_ref": bill.SupplierBillRef,
				"supplier_id":       bill.SupplierID,
				"supplier_name":     bill.SupplierName,
				"purchase_order_id": bill.PurchaseOrderID,
				"bill_scan_id":      bill.BillScanID,
				"subtotal":          bill.Subtotal,
				"tax_rate":          bill.TaxRate,
				"tax_amount":        bill.TaxAmount,
				"grand_total":       bill.GrandTotal,
				"amount_paid":       bill.AmountPaid,
				"bill_date":         bill.BillDate,
				"due_date":          bill.DueDate,
				"status":            bill.Status,
				"remark":            bill.Remark,
				"approved_at":       bill.ApprovedAt,
				"disputed_at":       bill.DisputedAt,
				"dispute_reason":    bill.DisputeReason,
				"version":           bill.Version,
				"updated_at":        bill.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The bill has been modified by another user")
		}

		if err := r.saveChildren(tx, bill); err != nil {
			return err
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormSupplierBillRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// saveChildren reconciles item rows and appends payment rows.
// Payments are append-only: recorded payments are never removed.
func (r *GormSupplierBillRepository) saveChildren(tx *gorm.DB, bill *purchasing.SupplierBill) error {
	currentItemIDs := make([]uuid.UUID, len(bill.Items))
	for i, item := range bill.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("supplier_bill_id = ? AND id NOT IN ?", bill.ID, currentItemIDs).
			Delete(&models.SupplierBillItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("supplier_bill_id = ?", bill.ID).
			Delete(&models.SupplierBillItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range bill.Items {
		bill.Items[i].SupplierBillID = bill.ID
		itemModel := models.SupplierBillItemModelFromDomain(&bill.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}

	for i := range bill.Payments {
		bill.Payments[i].SupplierBillID = bill.ID
		paymentModel := models.SupplierBillPaymentModelFromDomain(&bill.Payments[i])
		if err := tx.Save(paymentModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a supplier bill with its items and payments
func (r *GormSupplierBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_bill_id = ?", id).Delete(&models.SupplierBillItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_bill_id = ?", id).Delete(&models.SupplierBillPaymentModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.SupplierBillModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts supplier bills matching the filter
func (r *GormSupplierBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SupplierBillModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a bill number exists for a tenant
func (r *GormSupplierBillRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierBillModel{}).
		Where("tenant_id = ? AND bill_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique bill number for a tenant.
// Format: BILL-YYYY-NNNNN (e.g., BILL-2026-00001)
func (r *GormSupplierBillRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("BILL-%d-", year)

	var last models.SupplierBillModel
	err := r.db.WithContext(ctx).
		Model(&models.SupplierBillModel{}).
		Where("tenant_id = ? AND bill_number LIKE ?", tenantID, prefix+"%").
		Order("bill_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.BillNumber != "" {
		parts := strings.Split(last.BillNumber, "-")
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

func (r *GormSupplierBillRepository) toDomainSlice(ms []models.SupplierBillModel) []purchasing.SupplierBill {
	bills := make([]purchasing.SupplierBill, len(ms))
	for i := range ms {
		bills[i] = *ms[i].ToDomain()
	}
	return bills
}

// applyFilter applies filter options to the query
func (r *GormSupplierBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, SupplierBillSortFields, "")
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
func (r *GormSupplierBillRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("bill_number ILIKE ? OR supplier_bill_ref ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date < ?", t)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("bill_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("bill_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormSupplierBillRepository implements SupplierBillRepository
var _ purchasing.SupplierBillRepository = (*GormSupplierBillRepository)(nil)
