package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormConflictRepository implements document.ConflictRepository using GORM
type GormConflictRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormConflictRepository creates a new GormConflictRepository
func NewGormConflictRepository(db *gorm.DB) *GormConflictRepository {
	return &GormConflictRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormConflictRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a conflict by its ID
func (r *GormConflictRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.ReminderConflict, error) {
	var conflict document.ReminderConflict
	if err := r.db.WithContext(ctx).First(&conflict, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conflict, nil
}

// FindByIDForTenant finds a conflict by ID within a tenant
func (r *GormConflictRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.ReminderConflict, error) {
	var conflict document.ReminderConflict
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&conflict).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conflict, nil
}

// FindUnresolved lists open conflicts for a tenant
func (r *GormConflictRepository) FindUnresolved(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.ReminderConflict, error) {
	var conflicts []document.ReminderConflict
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.ReminderConflict{}).
			Where("tenant_id = ? AND status = ?", tenantID, document.ConflictStatusDetected),
		filter,
	)
	if err := query.Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// FindByIncomingReminder finds the conflict holding a reminder
func (r *GormConflictRepository) FindByIncomingReminder(ctx context.Context, tenantID, reminderID uuid.UUID) (*document.ReminderConflict, error) {
	var conflict document.ReminderConflict
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND incoming_reminder_id = ?", tenantID, reminderID).
		First(&conflict).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &conflict, nil
}

// FindAll finds all conflicts with filtering
func (r *GormConflictRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.ReminderConflict, error) {
	var conflicts []document.ReminderConflict
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.ReminderConflict{}), filter)
	if err := query.Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// FindAllForTenant finds all conflicts for a tenant with filtering
func (r *GormConflictRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.ReminderConflict, error) {
	var conflicts []document.ReminderConflict
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.ReminderConflict{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// Save saves a conflict
func (r *GormConflictRepository) Save(ctx context.Context, conflict *document.ReminderConflict) error {
	return r.db.WithContext(ctx).Save(conflict).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormConflictRepository) SaveWithLockAndEvents(ctx context.Context, conflict *document.ReminderConflict, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&document.ReminderConflict{}).
			Where("id = ?", conflict.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the conflict
			if err := tx.Create(conflict).Error; err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != conflict.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The conflict has been modified by another user")
		}

		currentVersion := conflict.Version
		conflict.Version++
		conflict.UpdatedAt = time.Now()

		result := tx.Model(&document.ReminderConflict{}).
			Where("id = ? AND version = ?", conflict.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":      conflict.Status,
				"strategy":    conflict.Strategy,
				"resolved_by": conflict.ResolvedBy,
				"resolved_at": conflict.ResolvedAt,
				"version":     conflict.Version,
				"updated_at":  conflict.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The conflict has been modified by another user")
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormConflictRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// Delete deletes a conflict by ID
func (r *GormConflictRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.ReminderConflict{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts conflicts matching the filter
func (r *GormConflictRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&document.ReminderConflict{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormConflictRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ConflictSortFields, "")
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
func (r *GormConflictRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "assignee_id":
			query = query.Where("assignee_id = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
		}
	}

	return query
}

// Ensure GormConflictRepository implements ConflictRepository
var _ document.ConflictRepository = (*GormConflictRepository)(nil)
