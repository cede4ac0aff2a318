package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// RenderedDocumentStore archives rendered PDFs and hands out short-lived
// download URLs. The S3 object store in infrastructure implements it.
type RenderedDocumentStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// renderedURLTTL bounds how long an archived render stays downloadable
const renderedURLTTL = 15 * time.Minute

// TemplateService handles print template management and rendering
type TemplateService struct {
	templateRepo    document.TemplateRepository
	renderer        DocumentRenderer
	documentStore   RenderedDocumentStore
	seeder          TemplateSeeder
	businessMetrics *telemetry.BusinessMetrics
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo document.TemplateRepository, renderer DocumentRenderer) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		renderer:     renderer,
	}
}

// SetDocumentStore enables archiving of rendered PDFs to object storage
func (s *TemplateService) SetDocumentStore(store RenderedDocumentStore) {
	s.documentStore = store
}

// SetTemplateSeeder enables lazy installation of the built-in templates
// for tenants that have not created any yet
func (s *TemplateService) SetTemplateSeeder(seeder TemplateSeeder) {
	s.seeder = seeder
}

// SetBusinessMetrics sets the business metrics collector
func (s *TemplateService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a new print template
func (s *TemplateService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	tmpl, err := document.NewDocTemplate(tenantID, req.Name, document.DocumentType(req.DocumentType), document.PaperSize(req.PaperSize), req.HTML)
	if err != nil {
		return nil, err
	}

	if req.Orientation != nil || req.Margins != nil {
		orientation := tmpl.Orientation
		if req.Orientation != nil {
			orientation = document.Orientation(*req.Orientation)
		}
		margins := tmpl.Margins
		if req.Margins != nil {
			margins = document.Margins{
				Top:    req.Margins.Top,
				Right:  req.Margins.Right,
				Bottom: req.Margins.Bottom,
				Left:   req.Margins.Left,
			}
		}
		if err := tmpl.SetLayout(tmpl.PaperSize, orientation, margins); err != nil {
			return nil, err
		}
	}

	if req.MakeDefault {
		if err := s.templateRepo.ClearDefault(ctx, tenantID, tmpl.DocumentType); err != nil {
			return nil, err
		}
		tmpl.MarkDefault()
	}

	if err := s.templateRepo.Save(ctx, tmpl); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(tmpl, true)
	return &response, nil
}

// GetByID retrieves a template by ID, including its HTML body
func (s *TemplateService) GetByID(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	response := ToTemplateResponse(tmpl, true)
	return &response, nil
}

// List retrieves templates, optionally filtered by document type
func (s *TemplateService) List(ctx context.Context, tenantID uuid.UUID, docType *string) ([]TemplateResponse, error) {
	if docType != nil {
		templates, err := s.templateRepo.FindByType(ctx, tenantID, document.DocumentType(*docType))
		if err != nil {
			return nil, err
		}
		return ToTemplateResponses(templates), nil
	}

	templates, err := s.templateRepo.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToTemplateResponses(templates), nil
}

// Update updates a template's body and layout
func (s *TemplateService) Update(ctx context.Context, tenantID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if req.HTML != nil {
		if err := tmpl.UpdateHTML(*req.HTML); err != nil {
			return nil, err
		}
	}
	if req.PaperSize != nil || req.Orientation != nil || req.Margins != nil {
		paperSize := tmpl.PaperSize
		if req.PaperSize != nil {
			paperSize = document.PaperSize(*req.PaperSize)
		}
		orientation := tmpl.Orientation
		if req.Orientation != nil {
			orientation = document.Orientation(*req.Orientation)
		}
		margins := tmpl.Margins
		if req.Margins != nil {
			margins = document.Margins{
				Top:    req.Margins.Top,
				Right:  req.Margins.Right,
				Bottom: req.Margins.Bottom,
				Left:   req.Margins.Left,
			}
		}
		if err := tmpl.SetLayout(paperSize, orientation, margins); err != nil {
			return nil, err
		}
	}

	if err := s.templateRepo.Save(ctx, tmpl); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(tmpl, true)
	return &response, nil
}

// SetDefault promotes a template to be the default for its document type
func (s *TemplateService) SetDefault(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.ClearDefault(ctx, tenantID, tmpl.DocumentType); err != nil {
		return nil, err
	}
	tmpl.MarkDefault()

	if err := s.templateRepo.Save(ctx, tmpl); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(tmpl, false)
	return &response, nil
}

// Activate re-enables a template
func (s *TemplateService) Activate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	tmpl.Activate()
	return s.templateRepo.Save(ctx, tmpl)
}

// Deactivate disables a template. The default template cannot be disabled.
func (s *TemplateService) Deactivate(ctx context.Context, tenantID, templateID uuid.UUID) error {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if err := tmpl.Deactivate(); err != nil {
		return err
	}
	return s.templateRepo.Save(ctx, tmpl)
}

// Delete removes a template. The default template for a type cannot be
// deleted so rendering always has a template to fall back on.
func (s *TemplateService) Delete(ctx context.Context, tenantID, templateID uuid.UUID) error {
	tmpl, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return err
	}
	if tmpl.IsDefault {
		return shared.NewDomainError("TEMPLATE_IS_DEFAULT", "Cannot delete the default template")
	}
	return s.templateRepo.Delete(ctx, templateID)
}

// Render renders a template with the supplied data as HTML or PDF
func (s *TemplateService) Render(ctx context.Context, tenantID uuid.UUID, req RenderRequest) (*RenderResult, error) {
	tmpl, err := s.resolveTemplate(ctx, tenantID, req.TemplateID, document.DocumentType(req.DocumentType))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	html, err := s.renderer.RenderHTML(ctx, tmpl, req.Data)
	if err != nil {
		return nil, err
	}

	if req.Format == "PDF" {
		pdf, err := s.renderer.RenderPDF(ctx, tmpl, html)
		if err != nil {
			return nil, err
		}
		s.recordRender(ctx, tenantID, tmpl, started)
		return &RenderResult{ContentType: "application/pdf", Body: pdf}, nil
	}

	s.recordRender(ctx, tenantID, tmpl, started)
	return &RenderResult{ContentType: "text/html; charset=utf-8", Body: []byte(html)}, nil
}

// RenderAndStore renders a template to PDF, archives it to object storage
// and returns a short-lived download URL alongside the bytes.
func (s *TemplateService) RenderAndStore(ctx context.Context, tenantID uuid.UUID, req RenderRequest) (*StoredRenderResult, error) {
	if s.documentStore == nil {
		return nil, shared.NewDomainError("STORE_UNAVAILABLE", "Document storage is not configured")
	}

	tmpl, err := s.resolveTemplate(ctx, tenantID, req.TemplateID, document.DocumentType(req.DocumentType))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	html, err := s.renderer.RenderHTML(ctx, tmpl, req.Data)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, tmpl, html)
	if err != nil {
		return nil, err
	}
	s.recordRender(ctx, tenantID, tmpl, started)

	key := fmt.Sprintf("rendered/%s/%s/%s.pdf", tenantID, time.Now().Format("2006/01"), uuid.New())
	if err := s.documentStore.Put(ctx, key, "application/pdf", bytes.NewReader(pdf), int64(len(pdf))); err != nil {
		return nil, fmt.Errorf("failed to store rendered document: %w", err)
	}
	url, expiresAt, err := s.documentStore.GenerateDownloadURL(ctx, key, renderedURLTTL)
	if err != nil {
		return nil, err
	}

	return &StoredRenderResult{
		StorageKey:  key,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		Body:        pdf,
	}, nil
}

func (s *TemplateService) recordRender(ctx context.Context, tenantID uuid.UUID, tmpl *document.DocTemplate, started time.Time) {
	if s.businessMetrics == nil {
		return
	}
	s.businessMetrics.RecordDocumentRendered(ctx, tenantID,
		string(tmpl.DocumentType), string(tmpl.PaperSize), time.Since(started))
}

func (s *TemplateService) resolveTemplate(ctx context.Context, tenantID uuid.UUID, templateID *uuid.UUID, docType document.DocumentType) (*document.DocTemplate, error) {
	if templateID != nil {
		return s.templateRepo.FindByIDForTenant(ctx, tenantID, *templateID)
	}
	tmpl, err := s.templateRepo.FindDefault(ctx, tenantID, docType)
	if errors.Is(err, shared.ErrNotFound) && s.seeder != nil {
		// A freshly provisioned tenant has no templates yet; install the
		// built-ins and retry.
		if seedErr := s.seeder.Seed(ctx, tenantID); seedErr != nil {
			return nil, seedErr
		}
		tmpl, err = s.templateRepo.FindDefault(ctx, tenantID, docType)
	}
	if err != nil {
		return nil, err
	}
	if !tmpl.Active {
		return nil, shared.NewDomainError("TEMPLATE_INACTIVE", "Default template is inactive")
	}
	return tmpl, nil
}
