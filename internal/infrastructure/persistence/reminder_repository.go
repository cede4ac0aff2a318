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

// GormReminderRepository implements document.ReminderRepository using GORM
type GormReminderRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormReminderRepository creates a new GormReminderRepository
func NewGormReminderRepository(db *gorm.DB) *GormReminderRepository {
	return &GormReminderRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormReminderRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a reminder by its ID
func (r *GormReminderRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Reminder, error) {
	var reminder document.Reminder
	if err := r.db.WithContext(ctx).First(&reminder, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

// FindByIDForTenant finds a reminder by ID within a tenant
func (r *GormReminderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.Reminder, error) {
	var reminder document.Reminder
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

// FindActiveByDocumentAndAssignee lists pending and conflicted reminders for
// a document/assignee pair
func (r *GormReminderRepository) FindActiveByDocumentAndAssignee(ctx context.Context, tenantID, documentID, assigneeID uuid.UUID) ([]*document.Reminder, error) {
	var reminders []*document.Reminder
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ? AND assignee_id = ? AND status IN ?",
			tenantID, documentID, assigneeID,
			[]document.ReminderStatus{document.ReminderStatusPending, document.ReminderStatusConflicted}).
		Order("due_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindByAssignee lists reminders assigned to a user
func (r *GormReminderRepository) FindByAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID, filter shared.Filter) ([]document.Reminder, error) {
	var reminders []document.Reminder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Reminder{}).
			Where("tenant_id = ? AND assignee_id = ?", tenantID, assigneeID),
		filter,
	)
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindOverdue lists pending reminders due before the given time that have not
// yet been notified, across tenants. The scheduler drains this.
func (r *GormReminderRepository) FindOverdue(ctx context.Context, before time.Time, limit int) ([]document.Reminder, error) {
	var reminders []document.Reminder
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_at < ? AND overdue_notified = ?", document.ReminderStatusPending, before, false).
		Order("due_at ASC").
		Limit(limit).
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindAll finds all reminders with filtering
func (r *GormReminderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Reminder, error) {
	var reminders []document.Reminder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.Reminder{}), filter)
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// FindAllForTenant finds all reminders for a tenant with filtering
func (r *GormReminderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.Reminder, error) {
	var reminders []document.Reminder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.Reminder{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// Save saves a reminder
func (r *GormReminderRepository) Save(ctx context.Context, reminder *document.Reminder) error {
	return r.db.WithContext(ctx).Save(reminder).Error
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormReminderRepository) SaveWithLockAndEvents(ctx context.Context, reminder *document.Reminder, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&document.Reminder{}).
			Where("id = ?", reminder.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the reminder
			if err := tx.Create(reminder).Error; err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != reminder.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The reminder has been modified by another user")
		}

		currentVersion := reminder.Version
		reminder.Version++
		reminder.UpdatedAt = time.Now()

		result := tx.Model(&document.Reminder{}).
			Where("id = ? AND version = ?", reminder.ID, currentVersion).
			Updates(map[string]interface{}{
				"due_at":           reminder.DueAt,
				"note":             reminder.Note,
				"status":           reminder.Status,
				"overdue_notified": reminder.OverdueNotified,
				"completed_at":     reminder.CompletedAt,
				"cancelled_at":     reminder.CancelledAt,
				"version":          reminder.Version,
				"updated_at":       reminder.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The reminder has been modified by another user")
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormReminderRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

// Delete deletes a reminder by ID
func (r *GormReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Reminder{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts reminders matching the filter
func (r *GormReminderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&document.Reminder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormReminderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ReminderSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("due_at ASC")
		}
	} else {
		query = query.Order("due_at ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormReminderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ? OR note ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
		case "assignee_id":
			query = query.Where("assignee_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_at < ?", t)
			}
		case "due_after":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_at >= ?", t)
			}
		}
	}

	return query
}

// Ensure GormReminderRepository implements ReminderRepository
var _ document.ReminderRepository = (*GormReminderRepository)(nil)
