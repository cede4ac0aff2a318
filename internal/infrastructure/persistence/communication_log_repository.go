package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCommunicationLogRepository implements document.CommunicationLogRepository using GORM
type GormCommunicationLogRepository struct {
	db *gorm.DB
}

// NewGormCommunicationLogRepository creates a new GormCommunicationLogRepository
func NewGormCommunicationLogRepository(db *gorm.DB) *GormCommunicationLogRepository {
	return &GormCommunicationLogRepository{db: db}
}

// FindByID finds a dispatch log by its ID
func (r *GormCommunicationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.CommunicationLog, error) {
	var log document.CommunicationLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindByIDForTenant finds a dispatch log by ID within a tenant
func (r *GormCommunicationLogRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.CommunicationLog, error) {
	var log document.CommunicationLog
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindByDocument lists dispatches for a business document, newest first
func (r *GormCommunicationLogRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID, filter shared.Filter) ([]document.CommunicationLog, error) {
	var logs []document.CommunicationLog
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindQueued lists dispatches awaiting delivery, oldest first
func (r *GormCommunicationLogRepository) FindQueued(ctx context.Context, tenantID uuid.UUID, limit int) ([]document.CommunicationLog, error) {
	var logs []document.CommunicationLog
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, document.DispatchStatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindAll finds all dispatch logs with filtering
func (r *GormCommunicationLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.CommunicationLog, error) {
	var logs []document.CommunicationLog
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.CommunicationLog{}), filter)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindAllForTenant finds all dispatch logs for a tenant with filtering
func (r *GormCommunicationLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.CommunicationLog, error) {
	var logs []document.CommunicationLog
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.CommunicationLog{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Save saves a dispatch log
func (r *GormCommunicationLogRepository) Save(ctx context.Context, log *document.CommunicationLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// Delete deletes a dispatch log by ID
func (r *GormCommunicationLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.CommunicationLog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts dispatch logs matching the filter
func (r *GormCommunicationLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&document.CommunicationLog{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCommunicationLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, CommunicationLogSortFields, "")
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
func (r *GormCommunicationLogRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ? OR recipient ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
		case "channel":
			query = query.Where("channel = ?", value)
		case "status":
			query = query.Where("status = ?", value)
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

// Ensure GormCommunicationLogRepository implements CommunicationLogRepository
var _ document.CommunicationLogRepository = (*GormCommunicationLogRepository)(nil)
