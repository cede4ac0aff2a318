package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormFiscalPeriodRepository implements accounting.FiscalPeriodRepository using GORM
type GormFiscalPeriodRepository struct {
	db *gorm.DB
}

// NewGormFiscalPeriodRepository creates a new GormFiscalPeriodRepository
func NewGormFiscalPeriodRepository(db *gorm.DB) *GormFiscalPeriodRepository {
	return &GormFiscalPeriodRepository{db: db}
}

// FindByID finds a fiscal period by its ID
func (r *GormFiscalPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.FiscalPeriod, error) {
	var period accounting.FiscalPeriod
	if err := r.db.WithContext(ctx).First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByIDForTenant finds a fiscal period by ID within a tenant
func (r *GormFiscalPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.FiscalPeriod, error) {
	var period accounting.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindByDate finds the period containing the given date
func (r *GormFiscalPeriodRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*accounting.FiscalPeriod, error) {
	var period accounting.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND start_date <= ? AND end_date >= ?", tenantID, date, date).
		First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindOverlapping finds periods intersecting the given range
func (r *GormFiscalPeriodRepository) FindOverlapping(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]accounting.FiscalPeriod, error) {
	var periods []accounting.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND start_date <= ? AND end_date >= ?", tenantID, endDate, startDate).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindOpen lists open periods for a tenant
func (r *GormFiscalPeriodRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) ([]accounting.FiscalPeriod, error) {
	var periods []accounting.FiscalPeriod
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, accounting.FiscalPeriodStatusOpen).
		Order("start_date ASC").
		Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindAll finds all fiscal periods with filtering
func (r *GormFiscalPeriodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.FiscalPeriod, error) {
	var periods []accounting.FiscalPeriod
	query := r.applyFilter(r.db.WithContext(ctx).Model(&accounting.FiscalPeriod{}), filter)
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindAllForTenant finds all fiscal periods for a tenant with filtering
func (r *GormFiscalPeriodRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.FiscalPeriod, error) {
	var periods []accounting.FiscalPeriod
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&accounting.FiscalPeriod{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// Save saves a fiscal period
func (r *GormFiscalPeriodRepository) Save(ctx context.Context, period *accounting.FiscalPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

// Delete deletes a fiscal period by ID
func (r *GormFiscalPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&accounting.FiscalPeriod{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts fiscal periods matching the filter
func (r *GormFiscalPeriodRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&accounting.FiscalPeriod{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormFiscalPeriodRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, FiscalPeriodSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("start_date DESC")
		}
	} else {
		query = query.Order("start_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormFiscalPeriodRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("end_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("start_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormFiscalPeriodRepository implements FiscalPeriodRepository
var _ accounting.FiscalPeriodRepository = (*GormFiscalPeriodRepository)(nil)
