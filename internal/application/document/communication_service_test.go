package document

import (
	"context"
	"testing"

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

// MockCommunicationLogRepository is a mock implementation of
// document.CommunicationLogRepository
type MockCommunicationLogRepository struct {
	mock.Mock
}

func (m *MockCommunicationLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.CommunicationLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.CommunicationLog, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.CommunicationLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.CommunicationLog, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID, filter shared.Filter) ([]document.CommunicationLog, error) {
	args := m.Called(ctx, tenantID, documentID, filter)
	return args.Get(0).([]document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) FindQueued(ctx context.Context, tenantID uuid.UUID, limit int) ([]document.CommunicationLog, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]document.CommunicationLog), args.Error(1)
}

func (m *MockCommunicationLogRepository) Save(ctx context.Context, log *document.CommunicationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockCommunicationLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommunicationLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailSender is a mock implementation of EmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string, attachment []byte, attachmentName string) (string, error) {
	args := m.Called(ctx, to, subject, body, attachment, attachmentName)
	return args.String(0), args.Error(1)
}

// MockWhatsAppSender is a mock implementation of WhatsAppSender
type MockWhatsAppSender struct {
	mock.Mock
}

func (m *MockWhatsAppSender) SendMessage(ctx context.Context, to, message string) (string, error) {
	args := m.Called(ctx, to, message)
	return args.String(0), args.Error(1)
}

func dispatchCounts(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "printcloud_communication_sent_total" {
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

func TestCommunicationService_Dispatch(t *testing.T) {
	tenantID := uuid.New()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	t.Run("email delivery marks the log sent and counts the dispatch", func(t *testing.T) {
		logRepo := new(MockCommunicationLogRepository)
		email := new(MockEmailSender)
		whatsapp := new(MockWhatsAppSender)
		service := NewCommunicationService(logRepo, email, whatsapp, zap.NewNop())
		service.SetBusinessMetrics(bm)

		logRepo.On("Save", mock.Anything, mock.AnythingOfType("*document.CommunicationLog")).Return(nil)
		email.On("SendEmail", mock.Anything, "ops@riverside.example", "Invoice INV-9", mock.Anything, mock.Anything, mock.Anything).
			Return("msg-123", nil)

		resp, err := service.Dispatch(context.Background(), tenantID, nil, DispatchRequest{
			DocumentType:   "INVOICE",
			DocumentID:     uuid.New(),
			DocumentNumber: "INV-9",
			Channel:        "EMAIL",
			Recipient:      "ops@riverside.example",
			Subject:        "Invoice INV-9",
			Message:        "Please find your invoice attached.",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(document.DispatchStatusSent), resp.Status)
		assert.Equal(t, int64(1), dispatchCounts(t, reader))
	})

	t.Run("failed delivery marks the log failed and still counts", func(t *testing.T) {
		logRepo := new(MockCommunicationLogRepository)
		email := new(MockEmailSender)
		whatsapp := new(MockWhatsAppSender)
		service := NewCommunicationService(logRepo, email, whatsapp, zap.NewNop())
		service.SetBusinessMetrics(bm)

		logRepo.On("Save", mock.Anything, mock.AnythingOfType("*document.CommunicationLog")).Return(nil)
		email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", assert.AnError)

		resp, err := service.Dispatch(context.Background(), tenantID, nil, DispatchRequest{
			DocumentType:   "INVOICE",
			DocumentID:     uuid.New(),
			DocumentNumber: "INV-10",
			Channel:        "EMAIL",
			Recipient:      "ops@riverside.example",
			Subject:        "Invoice INV-10",
			Message:        "Please find your invoice attached.",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(document.DispatchStatusFailed), resp.Status)
		assert.Equal(t, int64(2), dispatchCounts(t, reader))
	})
}
