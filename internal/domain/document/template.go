package document

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// DocumentType identifies what business document a template renders
type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "INVOICE"
	DocumentTypeReceipt       DocumentType = "RECEIPT"
	DocumentTypeQuotation     DocumentType = "QUOTATION"
	DocumentTypePurchaseOrder DocumentType = "PURCHASE_ORDER"
	DocumentTypeStatement     DocumentType = "STATEMENT"
)

// IsValid checks if the type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypeQuotation,
		DocumentTypePurchaseOrder, DocumentTypeStatement:
		return true
	}
	return false
}

// PaperSize identifies the target paper for a print template
type PaperSize string

const (
	PaperSizeA4        PaperSize = "A4"
	PaperSizeA5        PaperSize = "A5"
	PaperSizeReceipt80 PaperSize = "RECEIPT_80"
	PaperSizeReceipt58 PaperSize = "RECEIPT_58"
)

// IsValid checks if the size is a valid PaperSize
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperSizeA4, PaperSizeA5, PaperSizeReceipt80, PaperSizeReceipt58:
		return true
	}
	return false
}

// Orientation of the rendered page
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins in millimetres
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DocTemplate is the aggregate root for an HTML print template
type DocTemplate struct {
	shared.TenantAggregateRoot
	Name         string       `gorm:"type:varchar(100);not null"`
	DocumentType DocumentType `gorm:"type:varchar(20);not null;index"`
	PaperSize    PaperSize    `gorm:"type:varchar(20);not null;default:'A4'"`
	Orientation  Orientation  `gorm:"type:varchar(10);not null;default:'PORTRAIT'"`
	Margins      Margins      `gorm:"embedded;embeddedPrefix:margin_"`
	HTML         string       `gorm:"type:text;not null"`
	IsDefault    bool         `gorm:"not null;default:false"`
	Active       bool         `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DocTemplate) TableName() string {
	return "doc_templates"
}

// NewDocTemplate creates a new active template
func NewDocTemplate(tenantID uuid.UUID, name string, docType DocumentType, paperSize PaperSize, html string) (*DocTemplate, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", fmt.Sprintf("Invalid document type: %s", docType))
	}
	if !paperSize.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAPER_SIZE", fmt.Sprintf("Invalid paper size: %s", paperSize))
	}
	if html == "" {
		return nil, shared.NewDomainError("INVALID_HTML", "Template body cannot be empty")
	}

	return &DocTemplate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		DocumentType:        docType,
		PaperSize:           paperSize,
		Orientation:         OrientationPortrait,
		Margins:             Margins{Top: 10, Right: 10, Bottom: 10, Left: 10},
		HTML:                html,
		Active:              true,
	}, nil
}

// UpdateHTML replaces the template body
func (t *DocTemplate) UpdateHTML(html string) error {
	if html == "" {
		return shared.NewDomainError("INVALID_HTML", "Template body cannot be empty")
	}

	t.HTML = html
	t.Touch()
	t.IncrementVersion()

	return nil
}

// SetLayout changes paper size, orientation and margins
func (t *DocTemplate) SetLayout(paperSize PaperSize, orientation Orientation, margins Margins) error {
	if !paperSize.IsValid() {
		return shared.NewDomainError("INVALID_PAPER_SIZE", fmt.Sprintf("Invalid paper size: %s", paperSize))
	}
	if orientation != OrientationPortrait && orientation != OrientationLandscape {
		return shared.NewDomainError("INVALID_ORIENTATION", "Orientation must be portrait or landscape")
	}

	t.PaperSize = paperSize
	t.Orientation = orientation
	t.Margins = margins
	t.Touch()
	t.IncrementVersion()

	return nil
}

// MarkDefault flags this template as the default for its document type.
// The service clears the flag on the previous default.
func (t *DocTemplate) MarkDefault() {
	t.IsDefault = true
	t.Touch()
	t.IncrementVersion()
}

// ClearDefault removes the default flag
func (t *DocTemplate) ClearDefault() {
	t.IsDefault = false
	t.Touch()
	t.IncrementVersion()
}

// Deactivate retires the template. Default templates must be demoted first.
func (t *DocTemplate) Deactivate() error {
	if t.IsDefault {
		return shared.NewDomainError("TEMPLATE_IS_DEFAULT", "Cannot deactivate the default template")
	}

	t.Active = false
	t.Touch()
	t.IncrementVersion()

	return nil
}

// Activate re-enables the template
func (t *DocTemplate) Activate() {
	t.Active = true
	t.Touch()
	t.IncrementVersion()
}
