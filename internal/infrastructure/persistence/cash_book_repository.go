package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCashBookRepository implements accounting.CashBookRepository using GORM
type GormCashBookRepository struct {
	db *gorm.DB
}

// NewGormCashBookRepository creates a new GormCashBookRepository
func NewGormCashBookRepository(db *gorm.DB) *GormCashBookRepository {
	return &GormCashBookRepository{db: db}
}

// FindByID finds a cash book entry by its ID
func (r *GormCashBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.CashBookEntry, error) {
	var entry accounting.CashBookEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByIDForTenant finds a cash book entry by ID within a tenant
func (r *GormCashBookRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.CashBookEntry, error) {
	var entry accounting.CashBookEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds all cash book entries with filtering
func (r *GormCashBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.CashBookEntry, error) {
	var entries []accounting.CashBookEntry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.CashBookEntry{}), filter)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAllForTenant finds all cash book entries for a tenant with filtering
func (r *GormCashBookRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.CashBookEntry, error) {
	var entries []accounting.CashBookEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&accounting.CashBookEntry{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDateRange lists entries dated inside a range, oldest first
func (r *GormCashBookRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]accounting.CashBookEntry, error) {
	var entries []accounting.CashBookEntry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, from, to).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// BalanceBefore sums signed amounts of all entries dated before the given
// date. Receipts add, payments subtract.
func (r *GormCashBookRepository) BalanceBefore(ctx context.Context, tenantID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	var balance sql.NullString
	err := r.db.WithContext(ctx).
		Model(&accounting.CashBookEntry{}).
		Select("SUM(CASE WHEN type = ? THEN amount ELSE -amount END)", accounting.CashBookEntryTypeReceipt).
		Where("tenant_id = ? AND entry_date < ?", tenantID, date).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(balance.String)
}

// Save saves a cash book entry
func (r *GormCashBookRepository) Save(ctx context.Context, entry *accounting.CashBookEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// Delete deletes a cash book entry by ID
func (r *GormCashBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&accounting.CashBookEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts cash book entries matching the filter
func (r *GormCashBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&accounting.CashBookEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCashBookRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, CashBookSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("entry_date DESC")
		}
	} else {
		query = query.Order("entry_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormCashBookRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("counterparty ILIKE ? OR reference ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "reference":
			query = query.Where("reference = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("entry_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("entry_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormCashBookRepository implements CashBookRepository
var _ accounting.CashBookRepository = (*GormCashBookRepository)(nil)
