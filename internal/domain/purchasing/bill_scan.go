package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillScanStatus represents the status of an uploaded bill scan
type BillScanStatus string

const (
	BillScanStatusUploaded   BillScanStatus = "UPLOADED"
	BillScanStatusProcessing BillScanStatus = "PROCESSING"
	BillScanStatusExtracted  BillScanStatus = "EXTRACTED"
	BillScanStatusFailed     BillScanStatus = "FAILED"
	BillScanStatusReviewed   BillScanStatus = "REVIEWED"
	BillScanStatusConverted  BillScanStatus = "CONVERTED"
	BillScanStatusDiscarded  BillScanStatus = "DISCARDED"
)

// IsValid checks if the status is a valid BillScanStatus
func (s BillScanStatus) IsValid() bool {
	switch s {
	case BillScanStatusUploaded, BillScanStatusProcessing, BillScanStatusExtracted,
		BillScanStatusFailed, BillScanStatusReviewed, BillScanStatusConverted, BillScanStatusDiscarded:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s BillScanStatus) CanTransitionTo(target BillScanStatus) bool {
	switch s {
	case BillScanStatusUploaded:
		return target == BillScanStatusProcessing || target == BillScanStatusDiscarded
	case BillScanStatusProcessing:
		return target == BillScanStatusExtracted || target == BillScanStatusFailed
	case BillScanStatusExtracted:
		return target == BillScanStatusReviewed || target == BillScanStatusDiscarded
	case BillScanStatusFailed:
		return target == BillScanStatusProcessing || target == BillScanStatusDiscarded
	case BillScanStatusReviewed:
		return target == BillScanStatusConverted || target == BillScanStatusDiscarded
	case BillScanStatusConverted, BillScanStatusDiscarded:
		return false // Terminal states
	}
	return false
}

// ExtractionEngine identifies what produced the extraction result
type ExtractionEngine string

const (
	ExtractionEngineAI  ExtractionEngine = "AI"
	ExtractionEngineOCR ExtractionEngine = "OCR"
)

// ExtractedLine is one line hint recognised on the scanned bill
type ExtractedLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExtractionResult holds what the extraction pipeline recognised on the
// scan. All fields are guesses held for human review, never trusted as-is.
type ExtractionResult struct {
	SupplierName string           `json:"supplier_name"`
	BillNumber   string           `json:"bill_number"`
	BillDate     *time.Time       `json:"bill_date,omitempty"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	TaxAmount    decimal.Decimal  `json:"tax_amount"`
	GrandTotal   decimal.Decimal  `json:"grand_total"`
	Lines        []ExtractedLine  `json:"lines,omitempty"`
	Confidence   float64          `json:"confidence"`
	Engine       ExtractionEngine `json:"engine"`
	RawText      string           `json:"raw_text,omitempty"`
}

// BillScan is the aggregate root for an uploaded supplier bill image or
// PDF moving through the extraction-and-review pipeline.
type BillScan struct {
	shared.TenantAggregateRoot
	FileName       string            `gorm:"type:varchar(255);not null"`
	ContentType    string            `gorm:"type:varchar(50);not null"`
	SizeBytes      int64             `gorm:"not null"`
	StorageKey     string            `gorm:"type:varchar(500);not null"` // Object key in the document store
	Status         BillScanStatus    `gorm:"type:varchar(20);not null;default:'UPLOADED';index"`
	Extraction     *ExtractionResult `gorm:"serializer:json;type:jsonb"`
	FailureReason  string            `gorm:"type:text"`
	Attempts       int               `gorm:"not null;default:0"`
	SupplierID     *uuid.UUID        `gorm:"type:uuid;index"` // Confirmed at review time
	SupplierBillID *uuid.UUID        `gorm:"type:uuid"`       // Set once converted
	ReviewedBy     *uuid.UUID        `gorm:"type:uuid"`
	ReviewedAt     *time.Time
	DiscardedAt    *time.Time
	DiscardReason  string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillScan) TableName() string {
	return "bill_scans"
}

var allowedScanContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"application/pdf": true,
}

// NewBillScan registers an uploaded scan
func NewBillScan(tenantID uuid.UUID, fileName, contentType, storageKey string, sizeBytes int64) (*BillScan, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !allowedScanContentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", fmt.Sprintf("Unsupported content type: %s", contentType))
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if sizeBytes <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "File size must be positive")
	}

	scan := &BillScan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FileName:            fileName,
		ContentType:         contentType,
		SizeBytes:           sizeBytes,
		StorageKey:          storageKey,
		Status:              BillScanStatusUploaded,
	}

	scan.AddDomainEvent(NewBillScanUploadedEvent(scan))

	return scan, nil
}

// StartProcessing claims the scan for extraction
func (s *BillScan) StartProcessing() error {
	if !s.Status.CanTransitionTo(BillScanStatusProcessing) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot process scan in %s status", s.Status))
	}

	s.Status = BillScanStatusProcessing
	s.Attempts++
	s.Touch()

	return nil
}

// CompleteExtraction records a successful extraction result
func (s *BillScan) CompleteExtraction(result ExtractionResult) error {
	if !s.Status.CanTransitionTo(BillScanStatusExtracted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record extraction on a scan in %s status", s.Status))
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return shared.NewDomainError("INVALID_CONFIDENCE", "Confidence must be between 0 and 1")
	}

	s.Status = BillScanStatusExtracted
	s.Extraction = &result
	s.FailureReason = ""
	s.Touch()

	s.AddDomainEvent(NewBillScanExtractedEvent(s))

	return nil
}

// FailExtraction records an extraction failure. Failed scans can be retried.
func (s *BillScan) FailExtraction(reason string) error {
	if !s.Status.CanTransitionTo(BillScanStatusFailed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail a scan in %s status", s.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Failure reason cannot be empty")
	}

	s.Status = BillScanStatusFailed
	s.FailureReason = reason
	s.Touch()

	return nil
}

// MarkReviewed confirms the extraction after human review, fixing the
// supplier the bill belongs to
func (s *BillScan) MarkReviewed(reviewerID, supplierID uuid.UUID) error {
	if !s.Status.CanTransitionTo(BillScanStatusReviewed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot review a scan in %s status", s.Status))
	}
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}

	now := time.Now()
	s.Status = BillScanStatusReviewed
	s.ReviewedBy = &reviewerID
	s.ReviewedAt = &now
	s.SupplierID = &supplierID
	s.Touch()

	return nil
}

// MarkConverted records the supplier bill created from this scan
func (s *BillScan) MarkConverted(billID uuid.UUID) error {
	if !s.Status.CanTransitionTo(BillScanStatusConverted) {
		return shared.NewDomainError("INVALID_STATE", "Only reviewed scans can be converted")
	}
	if billID == uuid.Nil {
		return shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}

	s.Status = BillScanStatusConverted
	s.SupplierBillID = &billID
	s.Touch()

	s.AddDomainEvent(NewBillScanConvertedEvent(s, billID))

	return nil
}

// Discard abandons the scan
func (s *BillScan) Discard(reason string) error {
	if !s.Status.CanTransitionTo(BillScanStatusDiscarded) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot discard a scan in %s status", s.Status))
	}

	now := time.Now()
	s.Status = BillScanStatusDiscarded
	s.DiscardedAt = &now
	s.DiscardReason = reason
	s.Touch()

	return nil
}

// CanRetry reports whether another extraction attempt is allowed
func (s *BillScan) CanRetry(maxAttempts int) bool {
	return s.Status == BillScanStatusFailed && s.Attempts < maxAttempts
}
