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

// GormSalesOrderRepository implements sales.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormSalesOrderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	var model models.SalesOrderModel
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

// FindByIDForTenant finds a sales order by ID within a tenant
func (r *GormSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesOrder, error) {
	var model models.SalesOrderModel
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

// FindByNumber finds an order by its document number for a tenant
func (r *GormSalesOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all sales orders with filtering
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	var ms []models.SalesOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), filter)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindAllForTenant finds all sales orders for a tenant with filtering
func (r *GormSalesOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	var ms []models.SalesOrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByCustomer finds orders for a customer
func (r *GormSalesOrderRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	var ms []models.SalesOrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
			Where("tenant_id = ? AND customer_id = ?", tenantID, customerID),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds orders by status for a tenant
func (r *GormSalesOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.SalesOrderStatus, filter shared.Filter) ([]sales.SalesOrder, error) {
	var ms []models.SalesOrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindOpen finds orders that are not delivered or cancelled
func (r *GormSalesOrderRepository) FindOpen(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	var ms []models.SalesOrderModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.SalesOrderModel{}).
			Where("tenant_id = ? AND status NOT IN ?", tenantID, []sales.SalesOrderStatus{
				sales.SalesOrderStatusDelivered,
				sales.SalesOrderStatusCancelled,
			}),
		filter,
	)
	if err := query.Preload("Items").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// CountByStatus counts orders per status for a tenant
func (r *GormSalesOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[sales.SalesOrderStatus]int64, error) {
	var rows []struct {
		Status sales.SalesOrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Select("status, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[sales.SalesOrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountOpenByCustomer counts non-terminal orders for a customer
func (r *GormSalesOrderRepository) CountOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("tenant_id = ? AND customer_id = ? AND status NOT IN ?", tenantID, customerID,
			[]sales.SalesOrderStatus{sales.SalesOrderStatusDelivered, sales.SalesOrderStatusCancelled}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save saves a sales order together with its items
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SalesOrderModelFromDomain(order)

		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}

		return r.saveItems(tx, order)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormSalesOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *sales.SalesOrder, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&models.SalesOrderModel{}).
			Where("id = ?", order.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the order and its items
			model := models.SalesOrderModelFromDomain(order)
			if err := tx.Omit("Items").Create(model).Error; err != nil {
				return err
			}
			if err := r.saveItems(tx, order); err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != order.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		currentVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&models.SalesOrderModel{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"quotation_id":    order.QuotationID,
				"customer_id":     order.CustomerID,
				"customer_name":   order.CustomerName,
				"subtotal":        order.Subtotal,
				"discount_amount": order.DiscountAmount,
				"tax_rate":        order.TaxRate,
				"tax_amount":      order.TaxAmount,
				"grand_total":     order.GrandTotal,
				"advance_paid":    order.AdvancePaid,
				"delivery_date":   order.DeliveryDate,
				"status":          order.Status,
				"remark":          order.Remark,
				"confirmed_at":    order.ConfirmedAt,
				"delivered_at":    order.DeliveredAt,
				"cancelled_at":    order.CancelledAt,
				"cancel_reason":   order.CancelReason,
				"invoice_id":      order.InvoiceID,
				"version":         order.Version,
				"updated_at":      order.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		if err := r.saveItems(tx, order); err != nil {
			return err
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormSalesOrderRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

func (r *GormSalesOrderRepository) saveItems(tx *gorm.DB, order *sales.SalesOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&models.SalesOrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&models.SalesOrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		itemModel := models.SalesOrderItemModelFromDomain(&order.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a sales order and its items
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.SalesOrderItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.SalesOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts sales orders matching the filter
func (r *GormSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if an order number exists for a tenant
func (r *GormSalesOrderRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("tenant_id = ? AND order_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique order number for a tenant.
// Format: SO-YYYY-NNNNN (e.g., SO-2026-00001)
func (r *GormSalesOrderRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SO-%d-", year)

	var last models.SalesOrderModel
	err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, prefix+"%").
		Order("order_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.OrderNumber != "" {
		parts := strings.Split(last.OrderNumber, "-")
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

func (r *GormSalesOrderRepository) toDomainSlice(ms []models.SalesOrderModel) []sales.SalesOrder {
	orders := make([]sales.SalesOrder, len(ms))
	for i := range ms {
		orders[i] = *ms[i].ToDomain()
	}
	return orders
}

// applyFilter applies filter options to the query
func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, SalesOrderSortFields, "")
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
func (r *GormSalesOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR customer_name ILIKE ?",
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
		case "delivery_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("delivery_date <= ?", t)
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

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ sales.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
