package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormTemplateRepository implements document.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByID finds a template by its ID
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.DocTemplate, error) {
	var tpl document.DocTemplate
	if err := r.db.WithContext(ctx).First(&tpl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// FindByIDForTenant finds a template by ID within a tenant
func (r *GormTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.DocTemplate, error) {
	var tpl document.DocTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// FindByType lists templates for a document type
func (r *GormTemplateRepository) FindByType(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) ([]document.DocTemplate, error) {
	var tpls []document.DocTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ?", tenantID, docType).
		Order("name ASC").
		Find(&tpls).Error; err != nil {
		return nil, err
	}
	return tpls, nil
}

// FindDefault finds the default active template for a document type
func (r *GormTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) (*document.DocTemplate, error) {
	var tpl document.DocTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_type = ? AND is_default = ? AND active = ?", tenantID, docType, true, true).
		First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// ClearDefault drops the default flag from all templates of a type
func (r *GormTemplateRepository) ClearDefault(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) error {
	return r.db.WithContext(ctx).
		Model(&document.DocTemplate{}).
		Where("tenant_id = ? AND document_type = ? AND is_default = ?", tenantID, docType, true).
		Update("is_default", false).Error
}

// FindAll finds all templates with filtering
func (r *GormTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.DocTemplate, error) {
	var tpls []document.DocTemplate
	query := r.applyFilter(r.db.WithContext(ctx).Model(&document.DocTemplate{}), filter)
	if err := query.Find(&tpls).Error; err != nil {
		return nil, err
	}
	return tpls, nil
}

// FindAllForTenant finds all templates for a tenant with filtering
func (r *GormTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.DocTemplate, error) {
	var tpls []document.DocTemplate
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&document.DocTemplate{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&tpls).Error; err != nil {
		return nil, err
	}
	return tpls, nil
}

// Save saves a template
func (r *GormTemplateRepository) Save(ctx context.Context, tpl *document.DocTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

// Delete deletes a template by ID
func (r *GormTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.DocTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts templates matching the filter
func (r *GormTemplateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&document.DocTemplate{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, TemplateSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("name ASC")
		}
	} else {
		query = query.Order("name ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTemplateRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "document_type":
			query = query.Where("document_type = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		}
	}

	return query
}

// Ensure GormTemplateRepository implements TemplateRepository
var _ document.TemplateRepository = (*GormTemplateRepository)(nil)
