package purchasing

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// =============================================================================
// Mocks
// =============================================================================

// MockBillScanRepository is a mock implementation of purchasing.BillScanRepository
type MockBillScanRepository struct {
	mock.Mock
}

func (m *MockBillScanRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.BillScan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.BillScan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.BillScan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.BillScan, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.BillScanStatus, filter shared.Filter) ([]purchasing.BillScan, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) FindPending(ctx context.Context, limit int) ([]purchasing.BillScan, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]purchasing.BillScan), args.Error(1)
}

func (m *MockBillScanRepository) Save(ctx context.Context, scan *purchasing.BillScan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockBillScanRepository) SaveWithLockAndEvents(ctx context.Context, scan *purchasing.BillScan, events []shared.DomainEvent) error {
	args := m.Called(ctx, scan, events)
	return args.Error(0)
}

func (m *MockBillScanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillScanRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockScanStorage is a mock implementation of ScanStorage
type MockScanStorage struct {
	mock.Mock
}

func (m *MockScanStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockScanStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockScanStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockScanStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockScanExtractor is a mock implementation of ScanExtractor
type MockScanExtractor struct {
	mock.Mock
}

func (m *MockScanExtractor) Extract(ctx context.Context, scan *purchasing.BillScan, body io.Reader) (purchasing.ExtractionResult, error) {
	args := m.Called(ctx, scan, body)
	return args.Get(0).(purchasing.ExtractionResult), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newScanService(scanRepo *MockBillScanRepository, billRepo *MockSupplierBillRepository, storage *MockScanStorage, extractor *MockScanExtractor) *BillScanService {
	return NewBillScanService(scanRepo, billRepo, storage, extractor, zap.NewNop())
}

func newUploadedScan(t *testing.T, tenantID uuid.UUID) *purchasing.BillScan {
	t.Helper()
	scan, err := purchasing.NewBillScan(tenantID, "bill.pdf", "application/pdf", "scans/key", 2048)
	assert.NoError(t, err)
	scan.ClearDomainEvents()
	return scan
}

func newExtractedScan(t *testing.T, tenantID uuid.UUID) *purchasing.BillScan {
	t.Helper()
	scan := newUploadedScan(t, tenantID)
	assert.NoError(t, scan.StartProcessing())
	assert.NoError(t, scan.CompleteExtraction(purchasing.ExtractionResult{
		SupplierName: "Mill Street Paper",
		BillNumber:   "MSP-4471",
		GrandTotal:   decimal.NewFromFloat(210.00),
		Lines: []purchasing.ExtractedLine{
			{Description: "80gsm A4 reams", Quantity: decimal.NewFromInt(50), UnitPrice: decimal.NewFromFloat(4.20), Amount: decimal.NewFromFloat(210.00)},
		},
		Confidence: 0.91,
		Engine:     purchasing.ExtractionEngineAI,
	}))
	scan.ClearDomainEvents()
	return scan
}

func newReviewedScan(t *testing.T, tenantID uuid.UUID, supplierID uuid.UUID) *purchasing.BillScan {
	t.Helper()
	scan := newExtractedScan(t, tenantID)
	assert.NoError(t, scan.MarkReviewed(uuid.New(), supplierID))
	scan.ClearDomainEvents()
	return scan
}

// =============================================================================
// BillScanService Tests
// =============================================================================

func TestBillScanService_Upload(t *testing.T) {
	tenantID := uuid.New()

	t.Run("stores file and registers scan", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		storage.On("Put", mock.Anything, mock.AnythingOfType("string"), "application/pdf", mock.Anything, int64(2048)).Return(nil)
		scanRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*purchasing.BillScan"), mock.Anything).Return(nil)

		resp, err := service.Upload(context.Background(), tenantID, "bill.pdf", "application/pdf", strings.NewReader("%PDF"), 2048)

		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.BillScanStatusUploaded), resp.Status)
		assert.Equal(t, "bill.pdf", resp.FileName)
		storage.AssertExpectations(t)
	})

	t.Run("removes stored object when registration fails", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		storage.On("Put", mock.Anything, mock.AnythingOfType("string"), "image/png", mock.Anything, int64(100)).Return(nil)
		scanRepo.On("SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
		storage.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

		_, err := service.Upload(context.Background(), tenantID, "bill.png", "image/png", strings.NewReader("png"), 100)

		assert.Error(t, err)
		storage.AssertCalled(t, "Delete", mock.Anything, mock.AnythingOfType("string"))
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		_, err := service.Upload(context.Background(), tenantID, "bill.docx", "application/msword", strings.NewReader("doc"), 100)

		assert.Error(t, err)
		storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBillScanService_Process(t *testing.T) {
	tenantID := uuid.New()

	t.Run("successful extraction moves scan to extracted", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		scan := newUploadedScan(t, tenantID)
		scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
		scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)
		storage.On("Get", mock.Anything, scan.StorageKey).Return(io.NopCloser(bytes.NewReader([]byte("%PDF"))), nil)
		extractor.On("Extract", mock.Anything, scan, mock.Anything).Return(purchasing.ExtractionResult{
			SupplierName: "Mill Street Paper",
			Confidence:   0.85,
			Engine:       purchasing.ExtractionEngineOCR,
		}, nil)

		resp, err := service.Process(context.Background(), tenantID, scan.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.BillScanStatusExtracted), resp.Status)
		assert.Equal(t, 1, resp.Attempts)
		assert.NotNil(t, resp.Extraction)
		assert.Equal(t, "Mill Street Paper", resp.Extraction.SupplierName)
	})

	t.Run("extraction failure marks scan failed with reason", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		scan := newUploadedScan(t, tenantID)
		scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
		scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)
		storage.On("Get", mock.Anything, scan.StorageKey).Return(io.NopCloser(bytes.NewReader(nil)), nil)
		extractor.On("Extract", mock.Anything, scan, mock.Anything).Return(purchasing.ExtractionResult{}, assert.AnError)

		resp, err := service.Process(context.Background(), tenantID, scan.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.BillScanStatusFailed), resp.Status)
		assert.NotEmpty(t, resp.FailureReason)
	})

	t.Run("refuses when retries are exhausted", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		scan := newUploadedScan(t, tenantID)
		for i := 0; i < DefaultMaxExtractionAttempts; i++ {
			assert.NoError(t, scan.StartProcessing())
			assert.NoError(t, scan.FailExtraction("unreadable"))
		}
		scan.ClearDomainEvents()

		scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)

		_, err := service.Process(context.Background(), tenantID, scan.ID)

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "RETRIES_EXHAUSTED", domainErr.Code)
	})
}

func TestBillScanService_ProcessPending(t *testing.T) {
	tenantID := uuid.New()

	scanRepo := new(MockBillScanRepository)
	billRepo := new(MockSupplierBillRepository)
	storage := new(MockScanStorage)
	extractor := new(MockScanExtractor)
	service := newScanService(scanRepo, billRepo, storage, extractor)

	scan := newUploadedScan(t, tenantID)
	scanRepo.On("FindPending", mock.Anything, 10).Return([]purchasing.BillScan{*scan}, nil)
	scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
	scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)
	storage.On("Get", mock.Anything, scan.StorageKey).Return(io.NopCloser(bytes.NewReader(nil)), nil)
	extractor.On("Extract", mock.Anything, scan, mock.Anything).Return(purchasing.ExtractionResult{Confidence: 0.5, Engine: purchasing.ExtractionEngineOCR}, nil)

	processed, err := service.ProcessPending(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestBillScanService_Review(t *testing.T) {
	tenantID := uuid.New()
	supplierID := uuid.New()

	scanRepo := new(MockBillScanRepository)
	billRepo := new(MockSupplierBillRepository)
	storage := new(MockScanStorage)
	extractor := new(MockScanExtractor)
	service := newScanService(scanRepo, billRepo, storage, extractor)

	scan := newExtractedScan(t, tenantID)
	scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
	scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)

	resp, err := service.Review(context.Background(), tenantID, scan.ID, uuid.New(), ReviewScanRequest{SupplierID: supplierID})

	assert.NoError(t, err)
	assert.Equal(t, string(purchasing.BillScanStatusReviewed), resp.Status)
	assert.Equal(t, supplierID, *resp.SupplierID)
}

func TestBillScanService_Convert(t *testing.T) {
	tenantID := uuid.New()
	supplierID := uuid.New()

	t.Run("seeds bill from extraction hints", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		scan := newReviewedScan(t, tenantID, supplierID)
		scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
		billRepo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-00040", nil)
		billRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*purchasing.SupplierBill"), mock.Anything).Return(nil)
		scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)

		resp, err := service.Convert(context.Background(), tenantID, scan.ID, ConvertScanRequest{
			SupplierName: "Mill Street Paper",
		})

		assert.NoError(t, err)
		assert.Equal(t, "BILL-2026-00040", resp.BillNumber)
		assert.Equal(t, supplierID, resp.SupplierID)
		assert.Equal(t, "MSP-4471", resp.SupplierBillRef)
		assert.Len(t, resp.Items, 1)
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(210.00)))
		assert.Equal(t, string(purchasing.BillScanStatusConverted), string(scan.Status))
	})

	t.Run("rejects converting an unreviewed scan", func(t *testing.T) {
		scanRepo := new(MockBillScanRepository)
		billRepo := new(MockSupplierBillRepository)
		storage := new(MockScanStorage)
		extractor := new(MockScanExtractor)
		service := newScanService(scanRepo, billRepo, storage, extractor)

		scan := newExtractedScan(t, tenantID)
		scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)

		_, err := service.Convert(context.Background(), tenantID, scan.ID, ConvertScanRequest{
			SupplierName: "Mill Street Paper",
		})

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestBillScanService_Discard(t *testing.T) {
	tenantID := uuid.New()

	scanRepo := new(MockBillScanRepository)
	billRepo := new(MockSupplierBillRepository)
	storage := new(MockScanStorage)
	extractor := new(MockScanExtractor)
	service := newScanService(scanRepo, billRepo, storage, extractor)

	scan := newExtractedScan(t, tenantID)
	scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
	scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)

	resp, err := service.Discard(context.Background(), tenantID, scan.ID, DiscardScanRequest{Reason: "duplicate upload"})

	assert.NoError(t, err)
	assert.Equal(t, string(purchasing.BillScanStatusDiscarded), resp.Status)
}

func TestBillScanService_Process_CountsExtraction(t *testing.T) {
	tenantID := uuid.New()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	scanRepo := new(MockBillScanRepository)
	billRepo := new(MockSupplierBillRepository)
	storage := new(MockScanStorage)
	extractor := new(MockScanExtractor)
	service := newScanService(scanRepo, billRepo, storage, extractor)
	service.SetBusinessMetrics(bm)

	scan := newUploadedScan(t, tenantID)
	scanRepo.On("FindByIDForTenant", mock.Anything, tenantID, scan.ID).Return(scan, nil)
	scanRepo.On("SaveWithLockAndEvents", mock.Anything, scan, mock.Anything).Return(nil)
	storage.On("Get", mock.Anything, scan.StorageKey).Return(io.NopCloser(bytes.NewReader([]byte("%PDF"))), nil)
	extractor.On("Extract", mock.Anything, scan, mock.Anything).Return(purchasing.ExtractionResult{
		SupplierName: "Mill Street Paper",
		Confidence:   0.85,
		Engine:       purchasing.ExtractionEngineOCR,
	}, nil)

	_, err = service.Process(context.Background(), tenantID, scan.ID)
	assert.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var processed int64
	var durations uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "printcloud_scan_processed_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					processed += dp.Value
				}
			case "printcloud_scan_extraction_duration_seconds":
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				for _, dp := range hist.DataPoints {
					durations += dp.Count
				}
			}
		}
	}
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, uint64(1), durations)
}
