package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJournalEntryRepository implements accounting.JournalEntryRepository using GORM
type GormJournalEntryRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormJournalEntryRepository creates a new GormJournalEntryRepository
func NewGormJournalEntryRepository(db *gorm.DB) *GormJournalEntryRepository {
	return &GormJournalEntryRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormJournalEntryRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a journal entry by its ID
func (r *GormJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a journal entry by ID within a tenant
func (r *GormJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an entry by its document number for a tenant
func (r *GormJournalEntryRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*accounting.JournalEntry, error) {
	var model models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND entry_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all journal entries with filtering
func (r *GormJournalEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.JournalEntry, error) {
	var ms []models.JournalEntryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.JournalEntryModel{}), filter)
	if err := query.Preload("Lines").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindAllForTenant finds all journal entries for a tenant with filtering
func (r *GormJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.JournalEntry, error) {
	var ms []models.JournalEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Preload("Lines").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByStatus finds entries by status for a tenant
func (r *GormJournalEntryRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status accounting.JournalEntryStatus, filter shared.Filter) ([]accounting.JournalEntry, error) {
	var ms []models.JournalEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Preload("Lines").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByDateRange finds entries dated inside a range
func (r *GormJournalEntryRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]accounting.JournalEntry, error) {
	var ms []models.JournalEntryModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.JournalEntryModel{}).
			Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, from, to),
		filter,
	)
	if err := query.Preload("Lines").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// FindByReference finds entries drafted from a source document
func (r *GormJournalEntryRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]accounting.JournalEntry, error) {
	var ms []models.JournalEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND reference = ?", tenantID, reference).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainSlice(ms), nil
}

// Save saves a journal entry together with its lines
func (r *GormJournalEntryRepository) Save(ctx context.Context, entry *accounting.JournalEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.JournalEntryModelFromDomain(entry)

		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}

		return r.saveLines(tx, entry)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically.
// Events are written to the outbox table in the same transaction as the aggregate,
// ensuring guaranteed event delivery.
func (r *GormJournalEntryRepository) SaveWithLockAndEvents(ctx context.Context, entry *accounting.JournalEntry, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		err := tx.Model(&models.JournalEntryModel{}).
			Where("id = ?", entry.ID).
			Select("version").
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First save inserts the entry and its lines
			model := models.JournalEntryModelFromDomain(entry)
			if err := tx.Omit("Lines").Create(model).Error; err != nil {
				return err
			}
			if err := r.saveLines(tx, entry); err != nil {
				return err
			}
			return r.appendEvents(ctx, tx, events)
		}
		if err != nil {
			return err
		}

		if row.Version != entry.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The entry has been modified by another user")
		}

		currentVersion := entry.Version
		entry.Version++
		entry.UpdatedAt = time.Now()

		result := tx.Model(&models.JournalEntryModel{}).
			Where("id = ? AND version = ?", entry.ID, currentVersion).
			Updates(map[string]interface{}{
				"entry_date":  entry.EntryDate,
				"memo":        entry.Memo,
				"reference":   entry.Reference,
				"status":      entry.Status,
				"posted_at":   entry.PostedAt,
				"reversed_at": entry.ReversedAt,
				"reversal_of": entry.ReversalOf,
				"reversed_by": entry.ReversedBy,
				"version":     entry.Version,
				"updated_at":  entry.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The entry has been modified by another user")
		}

		if err := r.saveLines(tx, entry); err != nil {
			return err
		}

		return r.appendEvents(ctx, tx, events)
	})
}

func (r *GormJournalEntryRepository) appendEvents(ctx context.Context, tx *gorm.DB, events []shared.DomainEvent) error {
	if r.outboxSaver != nil && len(events) > 0 {
		if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
			return fmt.Errorf("failed to save events to outbox: %w", err)
		}
	}
	return nil
}

func (r *GormJournalEntryRepository) saveLines(tx *gorm.DB, entry *accounting.JournalEntry) error {
	currentLineIDs := make([]uuid.UUID, len(entry.Lines))
	for i, line := range entry.Lines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("journal_entry_id = ? AND id NOT IN ?", entry.ID, currentLineIDs).
			Delete(&models.JournalLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("journal_entry_id = ?", entry.ID).
			Delete(&models.JournalLineModel{}).Error; err != nil {
			return err
		}
	}

	for i := range entry.Lines {
		entry.Lines[i].JournalEntryID = entry.ID
		lineModel := models.JournalLineModelFromDomain(&entry.Lines[i])
		if err := tx.Save(lineModel).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a journal entry and its lines
func (r *GormJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("journal_entry_id = ?", id).Delete(&models.JournalLineModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.JournalEntryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts journal entries matching the filter
func (r *GormJournalEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.JournalEntryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if an entry number exists for a tenant
func (r *GormJournalEntryRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("tenant_id = ? AND entry_number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateNumber generates a unique entry number for a tenant.
// Format: JE-YYYY-NNNNN (e.g., JE-2026-00001)
func (r *GormJournalEntryRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("JE-%d-", year)

	var last models.JournalEntryModel
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("tenant_id = ? AND entry_number LIKE ?", tenantID, prefix+"%").
		Order("entry_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.EntryNumber != "" {
		parts := strings.Split(last.EntryNumber, "-")
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

func (r *GormJournalEntryRepository) toDomainSlice(ms []models.JournalEntryModel) []accounting.JournalEntry {
	entries := make([]accounting.JournalEntry, len(ms))
	for i := range ms {
		entries[i] = *ms[i].ToDomain()
	}
	return entries
}

// applyFilter applies filter options to the query
func (r *GormJournalEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, JournalEntrySortFields, "")
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
func (r *GormJournalEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("entry_number ILIKE ? OR memo ILIKE ? OR reference ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
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

// Ensure GormJournalEntryRepository implements JournalEntryRepository
var _ accounting.JournalEntryRepository = (*GormJournalEntryRepository)(nil)
