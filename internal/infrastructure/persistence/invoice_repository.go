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

// GormInvoiceRepository implements sales.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormInvoiceRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesInvoice, error) {
	var model models.InvoiceModel
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

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesInvoice, error) {
	var model models.InvoiceModel
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

// FindByNumber finds an invoice by its document number for a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesInvoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByShareToken finds an invoice by its public share token.
// Lookup is cross-tenant since the public view carries no tenant context.
func (r *GormInvoiceRepository) FindByShareToken(ctx context.Context, token string) (*sales.SalesInvoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("share_token = ?", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesInvoice, error) {
	var ms []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindAllForTenant finds all invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	var ms []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByCustomer finds invoices for a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	var ms []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds invoices by status for a tenant
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.InvoiceStatus, filter shared.Filter) ([]sales.SalesInvoice, error) {
	var ms []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindOverdue finds unpaid invoices past their due date
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	var ms []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, time.Now(),
				[]sales.InvoiceStatus{sales.InvoiceStatusIssued, sales.InvoiceStatusPartiallyPaid}),
		filter,
	)
	if err := query.Preload("Items").Preload("Payments").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// Save saves an invoice together with its items and payments
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *sales.SalesInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InvoiceModelFromDomain(invoice)

		if err := tx.Omit("Items", "Payments").Save(model).Error; err != nil {
			return err
		}

		return r.saveChildren(tx, invoice)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormInvoiceRepository) SaveWithLockAndEvents(ctx context.Context, invoice *sales.SalesInvoice, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&models.InvoiceModel{}).
			Where("id = ?", invoice.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the invoice with its items and payments
			model := models.InvoiceModelFromDomain(invoice)
			if err := tx.Omit("Items", "Payments").Create(model).Error; err != nil {
				return err
			}
			if err := r.saveChildren(tx, invoice); err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != invoice.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		currentVersion := invoice.Version
		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"order_id":         invoice.OrderID,
				"customer_id":      invoice.CustomerID,
				"customer_name":    invoice.CustomerName,
				"subtotal":         invoice.Subtotal,
				"discount_amount":  invoice.DiscountAmount,
				"tax_rate":         invoice.TaxRate,
				"tax_amount":       invoice.TaxAmount,
				"grand_total":      invoice.GrandTotal,
				"amount_paid":      invoice.AmountPaid,
				"issue_date":       invoice.IssueDate,
				"due_date":         invoice.DueDate,
				"status":           invoice.Status,
				"remark":           invoice.Remark,
				"share_token":      invoice.ShareToken,
				"share_expires_at": invoice.ShareExpiresAt,
				"voided_at":        invoice.VoidedAt,
				"void_reason":      invoice.VoidReason,
				"version":          invoice.Version,
				"updated_at":       invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		if err := r.saveChildren(tx, invoice); err != nil {
			return err
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormInvoiceRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// saveChildren reconciles item rows and appends new payment rows.
// Payments are append-only; existing rows are never deleted.
func (r *GormInvoiceRepository) saveChildren(tx *gorm.DB, invoice *sales.SalesInvoice) error {
	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		itemModel := models.InvoiceItemModelFromDomain(&invoice.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Payments {
		invoice.Payments[i].InvoiceID = invoice.ID
		paymentModel := models.InvoicePaymentModelFromDomain(&invoice.Payments[i])
		if err := tx.Save(paymentModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes an invoice with its items and payments
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoicePaymentModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if an invoice number exists for a tenant
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique invoice number for a tenant.
// Format: INV-YYYY-NNNNN (e.g., INV-2026-00001)
func (r *GormInvoiceRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("INV-%d-", year)

	var last models.InvoiceModel
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, prefix+"%").
		Order("invoice_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.InvoiceNumber != "" {
		parts := strings.Split(last.InvoiceNumber, "-")
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

func (r *GormInvoiceRepository) toDomainSlice(ms []models.InvoiceModel) []sales.SalesInvoice {
	invoices := make([]sales.SalesInvoice, len(ms))
	for i := range ms {
		invoices[i] = *ms[i].ToDomain()
	}
	return invoices
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, InvoiceSortFields, "")
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
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?",
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
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date <= ?", t)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("issue_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ sales.InvoiceRepository = (*GormInvoiceRepository)(nil)
