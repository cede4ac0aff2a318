package document

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// MockTemplateRepository is a mock implementation of document.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.DocTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.DocTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.DocTemplate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.DocTemplate, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindByType(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) ([]document.DocTemplate, error) {
	args := m.Called(ctx, tenantID, docType)
	return args.Get(0).([]document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindDefault(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) (*document.DocTemplate, error) {
	args := m.Called(ctx, tenantID, docType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.DocTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ClearDefault(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType) error {
	args := m.Called(ctx, tenantID, docType)
	return args.Error(0)
}

func (m *MockTemplateRepository) Save(ctx context.Context, tmpl *document.DocTemplate) error {
	args := m.Called(ctx, tmpl)
	return args.Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTemplateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRenderer is a mock implementation of DocumentRenderer
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderHTML(ctx context.Context, tmpl *document.DocTemplate, data map[string]interface{}) (string, error) {
	args := m.Called(ctx, tmpl, data)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRenderer) RenderPDF(ctx context.Context, tmpl *document.DocTemplate, html string) ([]byte, error) {
	args := m.Called(ctx, tmpl, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDocumentStore is a mock implementation of RenderedDocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Error(0)
}

func (m *MockDocumentStore) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func newInvoiceTemplate(t *testing.T, tenantID uuid.UUID) *document.DocTemplate {
	t.Helper()
	tmpl, err := document.NewDocTemplate(tenantID, "Invoice A4", document.DocumentTypeInvoice, document.PaperSizeA4, "<html>{{.invoice_number}}</html>")
	assert.NoError(t, err)
	return tmpl
}

func newMeteredTemplateService(t *testing.T, repo *MockTemplateRepository, renderer *MockDocumentRenderer) (*TemplateService, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	service := NewTemplateService(repo, renderer)
	service.SetBusinessMetrics(bm)
	return service, reader
}

func renderedCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "printcloud_document_rendered_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestTemplateService_Render(t *testing.T) {
	tenantID := uuid.New()

	t.Run("renders default template as HTML and counts the render", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		renderer := new(MockDocumentRenderer)
		service, reader := newMeteredTemplateService(t, repo, renderer)

		tmpl := newInvoiceTemplate(t, tenantID)
		repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).Return(tmpl, nil)
		renderer.On("RenderHTML", mock.Anything, tmpl, mock.Anything).Return("<html>INV-1</html>", nil)

		result, err := service.Render(context.Background(), tenantID, RenderRequest{
			DocumentType: "INVOICE",
			Format:       "HTML",
			Data:         map[string]interface{}{"invoice_number": "INV-1"},
		})

		assert.NoError(t, err)
		assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
		assert.Equal(t, []byte("<html>INV-1</html>"), result.Body)
		assert.Equal(t, int64(1), renderedCount(t, reader))
	})

	t.Run("renders PDF through the PDF engine", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		renderer := new(MockDocumentRenderer)
		service, reader := newMeteredTemplateService(t, repo, renderer)

		tmpl := newInvoiceTemplate(t, tenantID)
		repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).Return(tmpl, nil)
		renderer.On("RenderHTML", mock.Anything, tmpl, mock.Anything).Return("<html/>", nil)
		renderer.On("RenderPDF", mock.Anything, tmpl, "<html/>").Return([]byte("%PDF-1.7"), nil)

		result, err := service.Render(context.Background(), tenantID, RenderRequest{
			DocumentType: "INVOICE",
			Format:       "PDF",
			Data:         map[string]interface{}{},
		})

		assert.NoError(t, err)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.Equal(t, int64(1), renderedCount(t, reader))
	})
}

// MockTemplateSeeder is a mock implementation of TemplateSeeder
type MockTemplateSeeder struct {
	mock.Mock
}

func (m *MockTemplateSeeder) Seed(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func TestTemplateService_Render_SeedsNewTenant(t *testing.T) {
	tenantID := uuid.New()
	repo := new(MockTemplateRepository)
	renderer := new(MockDocumentRenderer)
	service, _ := newMeteredTemplateService(t, repo, renderer)

	seeder := new(MockTemplateSeeder)
	service.SetTemplateSeeder(seeder)

	tmpl := newInvoiceTemplate(t, tenantID)
	repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).
		Return(nil, shared.ErrNotFound).Once()
	seeder.On("Seed", mock.Anything, tenantID).Return(nil)
	repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).
		Return(tmpl, nil).Once()
	renderer.On("RenderHTML", mock.Anything, tmpl, mock.Anything).Return("<html/>", nil)

	result, err := service.Render(context.Background(), tenantID, RenderRequest{
		DocumentType: "INVOICE",
		Format:       "HTML",
		Data:         map[string]interface{}{},
	})

	assert.NoError(t, err)
	assert.Equal(t, []byte("<html/>"), result.Body)
	seeder.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestTemplateService_RenderAndStore(t *testing.T) {
	tenantID := uuid.New()

	t.Run("archives the PDF and returns a download link", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		renderer := new(MockDocumentRenderer)
		service, reader := newMeteredTemplateService(t, repo, renderer)

		store := new(MockDocumentStore)
		service.SetDocumentStore(store)

		tmpl := newInvoiceTemplate(t, tenantID)
		pdf := []byte("%PDF-1.7 archived")
		expiresAt := time.Now().Add(15 * time.Minute)

		repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).Return(tmpl, nil)
		renderer.On("RenderHTML", mock.Anything, tmpl, mock.Anything).Return("<html/>", nil)
		renderer.On("RenderPDF", mock.Anything, tmpl, "<html/>").Return(pdf, nil)
		store.On("Put", mock.Anything, mock.AnythingOfType("string"), "application/pdf", mock.Anything, int64(len(pdf))).Return(nil)
		store.On("GenerateDownloadURL", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).
			Return("https://storage.example/doc.pdf?sig=abc", expiresAt, nil)

		result, err := service.RenderAndStore(context.Background(), tenantID, RenderRequest{
			DocumentType: "INVOICE",
			Format:       "PDF",
			Data:         map[string]interface{}{},
		})

		assert.NoError(t, err)
		assert.Contains(t, result.StorageKey, "rendered/"+tenantID.String())
		assert.Equal(t, "https://storage.example/doc.pdf?sig=abc", result.DownloadURL)
		assert.Equal(t, expiresAt, result.ExpiresAt)
		assert.Equal(t, pdf, result.Body)
		assert.Equal(t, int64(1), renderedCount(t, reader))
		store.AssertExpectations(t)
	})

	t.Run("fails when no document store is configured", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		renderer := new(MockDocumentRenderer)
		service := NewTemplateService(repo, renderer)

		_, err := service.RenderAndStore(context.Background(), tenantID, RenderRequest{
			DocumentType: "INVOICE",
			Format:       "PDF",
			Data:         map[string]interface{}{},
		})

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STORE_UNAVAILABLE", domainErr.Code)
	})

	t.Run("does not store when the PDF render fails", func(t *testing.T) {
		repo := new(MockTemplateRepository)
		renderer := new(MockDocumentRenderer)
		service, _ := newMeteredTemplateService(t, repo, renderer)

		store := new(MockDocumentStore)
		service.SetDocumentStore(store)

		tmpl := newInvoiceTemplate(t, tenantID)
		repo.On("FindDefault", mock.Anything, tenantID, document.DocumentTypeInvoice).Return(tmpl, nil)
		renderer.On("RenderHTML", mock.Anything, tmpl, mock.Anything).Return("<html/>", nil)
		renderer.On("RenderPDF", mock.Anything, tmpl, "<html/>").Return(nil, assert.AnError)

		_, err := service.RenderAndStore(context.Background(), tenantID, RenderRequest{
			DocumentType: "INVOICE",
			Format:       "PDF",
			Data:         map[string]interface{}{},
		})

		assert.Error(t, err)
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
