package render

import (
	"context"
	"embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate describes a built-in template shipped with the server
type DefaultTemplate struct {
	DocumentType document.DocumentType
	Name         string
	PaperSize    document.PaperSize
	Orientation  document.Orientation
	Margins      document.Margins
	FilePath     string // path within the embedded filesystem
	IsDefault    bool
}

// GetDefaultTemplates returns the built-in template configurations
func GetDefaultTemplates() []DefaultTemplate {
	standard := document.Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
	receipt := document.Margins{Top: 3, Right: 3, Bottom: 3, Left: 3}

	return []DefaultTemplate{
		{
			DocumentType: document.DocumentTypeInvoice,
			Name:         "Invoice A4",
			PaperSize:    document.PaperSizeA4,
			Orientation:  document.OrientationPortrait,
			Margins:      standard,
			FilePath:     "templates/invoice_a4.html",
			IsDefault:    true,
		},
		{
			DocumentType: document.DocumentTypeQuotation,
			Name:         "Quotation A4",
			PaperSize:    document.PaperSizeA4,
			Orientation:  document.OrientationPortrait,
			Margins:      standard,
			FilePath:     "templates/quotation_a4.html",
			IsDefault:    true,
		},
		{
			DocumentType: document.DocumentTypeReceipt,
			Name:         "Receipt 80mm",
			PaperSize:    document.PaperSizeReceipt80,
			Orientation:  document.OrientationPortrait,
			Margins:      receipt,
			FilePath:     "templates/receipt_80mm.html",
			IsDefault:    true,
		},
		{
			DocumentType: document.DocumentTypeReceipt,
			Name:         "Receipt 58mm",
			PaperSize:    document.PaperSizeReceipt58,
			Orientation:  document.OrientationPortrait,
			Margins:      receipt,
			FilePath:     "templates/receipt_58mm.html",
			IsDefault:    false,
		},
		{
			DocumentType: document.DocumentTypePurchaseOrder,
			Name:         "Purchase Order A4",
			PaperSize:    document.PaperSizeA4,
			Orientation:  document.OrientationPortrait,
			Margins:      standard,
			FilePath:     "templates/purchase_order_a4.html",
			IsDefault:    true,
		},
		{
			DocumentType: document.DocumentTypeStatement,
			Name:         "Statement A4",
			PaperSize:    document.PaperSizeA4,
			Orientation:  document.OrientationPortrait,
			Margins:      standard,
			FilePath:     "templates/statement_a4.html",
			IsDefault:    true,
		},
	}
}

// LoadTemplateContent reads a built-in template body from the embedded FS
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to load built-in template %s: %w", filePath, err)
	}
	return string(content), nil
}

// TemplateSeeder installs the built-in templates on demand. The template
// service falls back to it when a tenant has no default template yet.
type TemplateSeeder struct {
	repo   document.TemplateRepository
	logger *zap.Logger
}

// NewTemplateSeeder creates a new TemplateSeeder
func NewTemplateSeeder(repo document.TemplateRepository, logger *zap.Logger) *TemplateSeeder {
	return &TemplateSeeder{repo: repo, logger: logger}
}

// Seed installs the built-in templates for the tenant
func (s *TemplateSeeder) Seed(ctx context.Context, tenantID uuid.UUID) error {
	return SeedDefaultTemplates(ctx, s.repo, tenantID, s.logger)
}

// SeedDefaultTemplates installs the built-in templates for a tenant that has
// none yet. Existing templates are left untouched.
func SeedDefaultTemplates(ctx context.Context, repo document.TemplateRepository, tenantID uuid.UUID, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, def := range GetDefaultTemplates() {
		existing, err := repo.FindByType(ctx, tenantID, def.DocumentType)
		if err != nil {
			return fmt.Errorf("failed to check existing templates: %w", err)
		}
		if len(existing) > 0 {
			continue
		}

		content, err := LoadTemplateContent(def.FilePath)
		if err != nil {
			return err
		}

		tmpl, err := document.NewDocTemplate(tenantID, def.Name, def.DocumentType, def.PaperSize, content)
		if err != nil {
			return fmt.Errorf("failed to build template %s: %w", def.Name, err)
		}
		if err := tmpl.SetLayout(def.PaperSize, def.Orientation, def.Margins); err != nil {
			return err
		}
		if def.IsDefault {
			tmpl.MarkDefault()
		}

		if err := repo.Save(ctx, tmpl); err != nil {
			return fmt.Errorf("failed to save template %s: %w", def.Name, err)
		}

		logger.Info("Installed built-in template",
			zap.String("name", def.Name),
			zap.String("document_type", string(def.DocumentType)),
			zap.String("tenant_id", tenantID.String()))
	}

	return nil
}
