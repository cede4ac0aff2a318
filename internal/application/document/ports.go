package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
)

// TemplateSeeder installs the built-in templates for a tenant that has
// none yet. Rendering falls back to it when a tenant is missing the
// default template for a document type.
type TemplateSeeder interface {
	Seed(ctx context.Context, tenantID uuid.UUID) error
}

// DocumentRenderer renders templates to HTML and PDF. Implemented by the
// html/template + headless-Chrome engine in infrastructure.
type DocumentRenderer interface {
	// RenderHTML fills the template body with the given data
	RenderHTML(ctx context.Context, tmpl *document.DocTemplate, data map[string]interface{}) (string, error)
	// RenderPDF converts rendered HTML to a PDF honoring the template layout
	RenderPDF(ctx context.Context, tmpl *document.DocTemplate, html string) ([]byte, error)
}

// EmailSender delivers a rendered document by email. The default
// implementation only logs; a real provider plugs in behind this.
type EmailSender interface {
	// SendEmail returns the provider message ID on success
	SendEmail(ctx context.Context, to, subject, body string, attachment []byte, attachmentName string) (string, error)
}

// WhatsAppSender delivers a document link or message over WhatsApp
type WhatsAppSender interface {
	// SendMessage returns the provider message ID on success
	SendMessage(ctx context.Context, to, message string) (string, error)
}
