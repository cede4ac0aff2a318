package purchasing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ScanStorage stores uploaded scan files. Implemented by the S3 object
// store in infrastructure; a local stub serves development.
type ScanStorage interface {
	// Put stores an object under the given key
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	// Get retrieves a stored object
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored object
	Delete(ctx context.Context, key string) error
	// GenerateDownloadURL returns a presigned download URL
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ScanExtractor runs the extraction pipeline over a stored scan.
// The infrastructure wires the external AI service with a local OCR
// fallback behind this port.
type ScanExtractor interface {
	Extract(ctx context.Context, scan *purchasing.BillScan, body io.Reader) (purchasing.ExtractionResult, error)
}

// DefaultMaxExtractionAttempts bounds retries of failed extractions
const DefaultMaxExtractionAttempts = 3

// BillScanService drives the scan upload-extract-review-convert pipeline
type BillScanService struct {
	scanRepo        purchasing.BillScanRepository
	billRepo        purchasing.SupplierBillRepository
	storage         ScanStorage
	extractor       ScanExtractor
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	maxAttempts     int
}

// NewBillScanService creates a new BillScanService
func NewBillScanService(scanRepo purchasing.BillScanRepository, billRepo purchasing.SupplierBillRepository, storage ScanStorage, extractor ScanExtractor, logger *zap.Logger) *BillScanService {
	return &BillScanService{
		scanRepo:    scanRepo,
		billRepo:    billRepo,
		storage:     storage,
		extractor:   extractor,
		logger:      logger,
		maxAttempts: DefaultMaxExtractionAttempts,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BillScanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *BillScanService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Upload stores the scan file and registers the scan for extraction
func (s *BillScanService) Upload(ctx context.Context, tenantID uuid.UUID, fileName, contentType string, body io.Reader, size int64) (*BillScanResponse, error) {
	key := fmt.Sprintf("scans/%s/%s/%s", tenantID, time.Now().Format("2006/01"), uuid.New())

	scan, err := purchasing.NewBillScan(tenantID, fileName, contentType, key, size)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Put(ctx, key, contentType, body, size); err != nil {
		return nil, fmt.Errorf("failed to store scan file: %w", err)
	}

	if err := s.save(ctx, scan); err != nil {
		// Best effort removal of the orphaned object.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned scan object",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	response := ToBillScanResponse(scan)
	return &response, nil
}

// GetByID retrieves a scan by ID
func (s *BillScanService) GetByID(ctx context.Context, tenantID, scanID uuid.UUID) (*BillScanResponse, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	response := ToBillScanResponse(scan)
	return &response, nil
}

// List retrieves scans with filtering and pagination
func (s *BillScanService) List(ctx context.Context, tenantID uuid.UUID, filter ScanListFilter) ([]BillScanResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, "")
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	scans, err := s.scanRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.scanRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBillScanResponses(scans), total, nil
}

// DownloadURL returns a short-lived URL for viewing the original scan
func (s *BillScanService) DownloadURL(ctx context.Context, tenantID, scanID uuid.UUID) (string, time.Time, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.storage.GenerateDownloadURL(ctx, scan.StorageKey, 15*time.Minute)
}

// Process runs extraction on one scan. Invoked by the extraction worker
// for uploaded scans and by the retry endpoint for failed ones.
func (s *BillScanService) Process(ctx context.Context, tenantID, scanID uuid.UUID) (*BillScanResponse, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status == purchasing.BillScanStatusFailed && !scan.CanRetry(s.maxAttempts) {
		return nil, shared.NewDomainError("RETRIES_EXHAUSTED", "Scan extraction retries are exhausted")
	}

	if err := scan.StartProcessing(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}

	body, err := s.storage.Get(ctx, scan.StorageKey)
	if err != nil {
		return s.failExtraction(ctx, scan, fmt.Sprintf("cannot read stored scan: %v", err))
	}
	defer body.Close()

	started := time.Now()
	result, err := s.extractor.Extract(ctx, scan, body)
	if err != nil {
		s.logger.Warn("scan extraction failed",
			zap.String("scan_id", scan.ID.String()),
			zap.Int("attempt", scan.Attempts),
			zap.Error(err),
		)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordScanProcessed(ctx, tenantID,
				string(result.Engine), string(purchasing.BillScanStatusFailed), time.Since(started))
		}
		return s.failExtraction(ctx, scan, err.Error())
	}

	if err := scan.CompleteExtraction(result); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordScanProcessed(ctx, tenantID,
			string(result.Engine), string(scan.Status), time.Since(started))
	}

	response := ToBillScanResponse(scan)
	return &response, nil
}

// ProcessPending drains uploaded scans through extraction. Returns the
// number of scans processed. The scheduler calls this periodically.
func (s *BillScanService) ProcessPending(ctx context.Context, limit int) (int, error) {
	scans, err := s.scanRepo.FindPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	processed := 0
	for i := range scans {
		scan := &scans[i]
		if _, err := s.Process(ctx, scan.TenantID, scan.ID); err != nil {
			s.logger.Error("pending scan processing failed",
				zap.String("scan_id", scan.ID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

// Review confirms the extraction result and fixes the supplier
func (s *BillScanService) Review(ctx context.Context, tenantID, scanID, reviewerID uuid.UUID, req ReviewScanRequest) (*BillScanResponse, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	if err := scan.MarkReviewed(reviewerID, req.SupplierID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}
	response := ToBillScanResponse(scan)
	return &response, nil
}

// Convert turns a reviewed scan into a draft supplier bill. Request
// fields override the extraction result; when no items are given the
// extracted line hints seed the bill.
func (s *BillScanService) Convert(ctx context.Context, tenantID, scanID uuid.UUID, req ConvertScanRequest) (*SupplierBillResponse, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	if scan.Status != purchasing.BillScanStatusReviewed {
		return nil, shared.NewDomainError("INVALID_STATE", "Only reviewed scans can be converted")
	}
	if scan.SupplierID == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Scan has no confirmed supplier")
	}

	number, err := s.billRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	billDate := time.Now()
	if req.BillDate != nil {
		billDate = *req.BillDate
	} else if scan.Extraction != nil && scan.Extraction.BillDate != nil {
		billDate = *scan.Extraction.BillDate
	}

	bill, err := purchasing.NewSupplierBill(tenantID, number, *scan.SupplierID, req.SupplierName, billDate)
	if err != nil {
		return nil, err
	}
	bill.BillScanID = &scan.ID

	ref := req.SupplierBillRef
	if ref == "" && scan.Extraction != nil {
		ref = scan.Extraction.BillNumber
	}
	if ref != "" {
		if err := bill.SetSupplierBillRef(ref); err != nil {
			return nil, err
		}
	}

	items := req.Items
	if len(items) == 0 && scan.Extraction != nil {
		for _, line := range scan.Extraction.Lines {
			items = append(items, SupplierBillItemInput{
				Description: line.Description,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}
	}
	for _, line := range items {
		if _, err := bill.AddItem(line.Description, line.InventoryItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := bill.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if err := bill.SetDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	if err := s.billRepo.SaveWithLockAndEvents(ctx, bill, bill.GetDomainEvents()); err != nil {
		return nil, err
	}
	bill.ClearDomainEvents()

	if err := scan.MarkConverted(bill.ID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}

	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// Discard abandons the scan
func (s *BillScanService) Discard(ctx context.Context, tenantID, scanID uuid.UUID, req DiscardScanRequest) (*BillScanResponse, error) {
	scan, err := s.scanRepo.FindByIDForTenant(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	if err := scan.Discard(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}
	response := ToBillScanResponse(scan)
	return &response, nil
}

func (s *BillScanService) failExtraction(ctx context.Context, scan *purchasing.BillScan, reason string) (*BillScanResponse, error) {
	if err := scan.FailExtraction(reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, scan); err != nil {
		return nil, err
	}
	response := ToBillScanResponse(scan)
	return &response, nil
}

func (s *BillScanService) save(ctx context.Context, scan *purchasing.BillScan) error {
	events := scan.GetDomainEvents()
	if err := s.scanRepo.SaveWithLockAndEvents(ctx, scan, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	scan.ClearDomainEvents()
	return nil
}

func (s *BillScanService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
