package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
)

// MockInvoiceRepository is a mock implementation of sales.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesInvoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	return args.Get(0).([]sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.InvoiceStatus, filter shared.Filter) ([]sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByShareToken(ctx context.Context, token string) (*sales.SalesInvoice, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesInvoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *sales.SalesInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLockAndEvents(ctx context.Context, invoice *sales.SalesInvoice, events []shared.DomainEvent) error {
	args := m.Called(ctx, invoice, events)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func newTestInvoice(t *testing.T, tenantID uuid.UUID) *sales.SalesInvoice {
	t.Helper()
	invoice, err := sales.NewSalesInvoice(tenantID, "INV-2026-00001", uuid.New(), "Acme Press", time.Now().AddDate(0, 0, 14))
	assert.NoError(t, err)
	assert.NoError(t, invoice.AddItem("Catalogue print run", decimal.NewFromInt(1), decimal.NewFromFloat(200.00)))
	invoice.ClearDomainEvents()
	return invoice
}

func newReadyOrder(t *testing.T, tenantID uuid.UUID) *sales.SalesOrder {
	t.Helper()
	order := newConfirmedOrder(t, tenantID)
	assert.NoError(t, order.StartProduction())
	assert.NoError(t, order.MarkReady())
	order.ClearDomainEvents()
	return order
}

func TestInvoiceService_IssueFromOrder(t *testing.T) {
	tenantID := uuid.New()

	t.Run("issues invoice and marks order invoiced", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		order := newReadyOrder(t, tenantID)

		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		invoiceRepo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-00033", nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesInvoice"), mock.Anything).Return(nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		dueDate := time.Now().AddDate(0, 1, 0)
		resp, err := service.IssueFromOrder(context.Background(), tenantID, IssueFromOrderRequest{
			OrderID: order.ID,
			DueDate: &dueDate,
		})

		assert.NoError(t, err)
		assert.Equal(t, "INV-2026-00033", resp.InvoiceNumber)
		assert.Equal(t, order.ID, *resp.OrderID)
		assert.True(t, order.IsInvoiced())
		invoiceRepo.AssertExpectations(t)
		orderRepo.AssertExpectations(t)
	})

	t.Run("carries order advance as an opening payment", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		order := newReadyOrder(t, tenantID) // grand total 70.00
		assert.NoError(t, order.RecordAdvance(valueobject.NewMoneyUSDFromFloat(20.00)))
		order.ClearDomainEvents()

		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		invoiceRepo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-00034", nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesInvoice"), mock.Anything).Return(nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		dueDate := time.Now().AddDate(0, 0, 30)
		resp, err := service.IssueFromOrder(context.Background(), tenantID, IssueFromOrderRequest{
			OrderID: order.ID,
			DueDate: &dueDate,
		})

		assert.NoError(t, err)
		assert.True(t, resp.AmountPaid.Equal(decimal.NewFromFloat(20.00)))
		assert.True(t, resp.AmountDue.Equal(decimal.NewFromFloat(50.00)))
		assert.Equal(t, string(sales.InvoiceStatusPartiallyPaid), resp.Status)
		assert.Len(t, resp.Payments, 1)
	})

	t.Run("defaults due date when none given", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		order := newReadyOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		invoiceRepo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-00035", nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesInvoice"), mock.Anything).Return(nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		resp, err := service.IssueFromOrder(context.Background(), tenantID, IssueFromOrderRequest{OrderID: order.ID})

		assert.NoError(t, err)
		expected := time.Now().AddDate(0, 0, 14)
		assert.WithinDuration(t, expected, resp.DueDate, time.Minute)
	})

	t.Run("rejects orders not yet ready", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		order := newConfirmedOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		invoiceRepo.On("GenerateNumber", mock.Anything, tenantID).Return("INV-2026-00036", nil)

		dueDate := time.Now().AddDate(0, 0, 14)
		_, err := service.IssueFromOrder(context.Background(), tenantID, IssueFromOrderRequest{
			OrderID: order.ID,
			DueDate: &dueDate,
		})

		assert.Error(t, err)
	})
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	tenantID := uuid.New()

	t.Run("partial payment moves invoice to partially paid", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID) // grand total 200.00
		invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

		resp, err := service.RecordPayment(context.Background(), tenantID, invoice.ID, RecordPaymentRequest{
			Amount: decimal.NewFromFloat(50.00),
			Method: "BANK_TRANSFER",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(sales.InvoiceStatusPartiallyPaid), resp.Status)
		assert.True(t, resp.AmountDue.Equal(decimal.NewFromFloat(150.00)))
	})

	t.Run("full payment settles the invoice", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

		resp, err := service.RecordPayment(context.Background(), tenantID, invoice.ID, RecordPaymentRequest{
			Amount: decimal.NewFromFloat(200.00),
			Method: "CASH",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(sales.InvoiceStatusPaid), resp.Status)
		assert.True(t, resp.AmountDue.IsZero())
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)

		_, err := service.RecordPayment(context.Background(), tenantID, invoice.ID, RecordPaymentRequest{
			Amount: decimal.NewFromFloat(999.00),
			Method: "CASH",
		})

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OVERPAYMENT", domainErr.Code)
	})
}

func TestInvoiceService_Void(t *testing.T) {
	tenantID := uuid.New()

	invoiceRepo := new(MockInvoiceRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewInvoiceService(invoiceRepo, orderRepo)

	invoice := newTestInvoice(t, tenantID)
	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

	resp, err := service.Void(context.Background(), tenantID, invoice.ID, VoidInvoiceRequest{Reason: "duplicate entry"})

	assert.NoError(t, err)
	assert.Equal(t, string(sales.InvoiceStatusVoid), resp.Status)
}

func TestInvoiceService_Sharing(t *testing.T) {
	tenantID := uuid.New()

	t.Run("enabling issues a token and regenerating rotates it", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

		first, err := service.EnableSharing(context.Background(), tenantID, invoice.ID, ShareInvoiceRequest{})
		assert.NoError(t, err)
		assert.NotEmpty(t, first.Token)
		assert.NotNil(t, first.ExpiresAt)

		second, err := service.EnableSharing(context.Background(), tenantID, invoice.ID, ShareInvoiceRequest{TTLHours: 24})
		assert.NoError(t, err)
		assert.NotEqual(t, first.Token, second.Token)
		assert.False(t, invoice.IsShareTokenValid(first.Token))
		assert.True(t, invoice.IsShareTokenValid(second.Token))
	})

	t.Run("shared view resolves a valid token", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		token, err := invoice.EnableSharing(24 * time.Hour)
		assert.NoError(t, err)

		invoiceRepo.On("FindByShareToken", mock.Anything, token).Return(invoice, nil)

		resp, err := service.GetShared(context.Background(), token)

		assert.NoError(t, err)
		assert.Equal(t, invoice.InvoiceNumber, resp.InvoiceNumber)
	})

	t.Run("expired token is indistinguishable from unknown", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		token, err := invoice.EnableSharing(24 * time.Hour)
		assert.NoError(t, err)
		expired := time.Now().Add(-time.Minute)
		invoice.ShareExpiresAt = &expired

		invoiceRepo.On("FindByShareToken", mock.Anything, token).Return(invoice, nil)
		invoiceRepo.On("FindByShareToken", mock.Anything, "no-such-token").Return(nil, assert.AnError)

		_, expiredErr := service.GetShared(context.Background(), token)
		_, unknownErr := service.GetShared(context.Background(), "no-such-token")

		assert.Error(t, expiredErr)
		assert.Error(t, unknownErr)
		assert.Equal(t, expiredErr.Error(), unknownErr.Error())
	})

	t.Run("disabling revokes the token", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewInvoiceService(invoiceRepo, orderRepo)

		invoice := newTestInvoice(t, tenantID)
		token, err := invoice.EnableSharing(24 * time.Hour)
		assert.NoError(t, err)

		invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		invoiceRepo.On("SaveWithLockAndEvents", mock.Anything, invoice, mock.Anything).Return(nil)

		assert.NoError(t, service.DisableSharing(context.Background(), tenantID, invoice.ID))
		assert.False(t, invoice.IsShareTokenValid(token))
	})
}
