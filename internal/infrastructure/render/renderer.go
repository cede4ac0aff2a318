package render

import (
	"context"

	appdocument "github.com/printcloud/backend/internal/application/document"
	"github.com/printcloud/backend/internal/domain/document"
	infraconfig "github.com/printcloud/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure DocumentRendererImpl implements the application port
var _ appdocument.DocumentRenderer = (*DocumentRendererImpl)(nil)

// DocumentRendererImpl combines the template engine and the PDF backend
// into the renderer the application layer depends on.
type DocumentRendererImpl struct {
	engine *TemplateEngine
	pdf    *ChromedpRenderer
}

// NewDocumentRenderer creates the full HTML + PDF rendering pipeline
func NewDocumentRenderer(cfg *infraconfig.RenderConfig, logger *zap.Logger) (*DocumentRendererImpl, error) {
	chromedpCfg := &ChromedpConfig{Logger: logger}
	if cfg != nil {
		chromedpCfg.ChromePath = cfg.ChromePath
		chromedpCfg.DefaultTimeout = cfg.RenderTimeout
	}

	pdf, err := NewChromedpRenderer(chromedpCfg)
	if err != nil {
		return nil, err
	}

	return &DocumentRendererImpl{
		engine: NewTemplateEngine(),
		pdf:    pdf,
	}, nil
}

// RenderHTML fills the template body with the given data
func (r *DocumentRendererImpl) RenderHTML(ctx context.Context, tmpl *document.DocTemplate, data map[string]interface{}) (string, error) {
	return r.engine.Render(ctx, tmpl, data, nil)
}

// RenderPDF converts rendered HTML to a PDF honoring the template layout
func (r *DocumentRendererImpl) RenderPDF(ctx context.Context, tmpl *document.DocTemplate, html string) ([]byte, error) {
	return r.pdf.RenderPDF(ctx, tmpl, html)
}

// Close releases the underlying browser resources
func (r *DocumentRendererImpl) Close() error {
	return r.pdf.Close()
}
