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
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockQuotationRepository is a mock implementation of sales.QuotationRepository
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesQuotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesQuotation, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	return args.Get(0).([]sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.QuotationStatus, filter shared.Filter) ([]sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) FindExpirable(ctx context.Context, tenantID uuid.UUID, limit int) ([]sales.SalesQuotation, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]sales.SalesQuotation), args.Error(1)
}

func (m *MockQuotationRepository) Save(ctx context.Context, quotation *sales.SalesQuotation) error {
	args := m.Called(ctx, quotation)
	return args.Error(0)
}

func (m *MockQuotationRepository) SaveWithLockAndEvents(ctx context.Context, quotation *sales.SalesQuotation, events []shared.DomainEvent) error {
	args := m.Called(ctx, quotation, events)
	return args.Error(0)
}

func (m *MockQuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuotationRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuotationRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockSalesOrderRepository is a mock implementation of sales.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, customerID, filter)
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status sales.SalesOrderStatus, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindOpen(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.SalesOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[sales.SalesOrderStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[sales.SalesOrderStatus]int64), args.Error(1)
}

func (m *MockSalesOrderRepository) CountOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *sales.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *sales.SalesOrder, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalesOrderRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newTestQuotation(t *testing.T, tenantID uuid.UUID) *sales.SalesQuotation {
	t.Helper()
	quotation, err := sales.NewSalesQuotation(tenantID, "QT-2026-00001", uuid.New(), "Acme Press")
	assert.NoError(t, err)
	quotation.ClearDomainEvents()
	return quotation
}

func newSentQuotation(t *testing.T, tenantID uuid.UUID) *sales.SalesQuotation {
	t.Helper()
	quotation := newTestQuotation(t, tenantID)
	_, err := quotation.AddItem("500 business cards", decimal.NewFromInt(1), decimal.NewFromFloat(45.00))
	assert.NoError(t, err)
	assert.NoError(t, quotation.Send())
	quotation.ClearDomainEvents()
	return quotation
}

// =============================================================================
// QuotationService Tests
// =============================================================================

func TestQuotationService_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates quotation with items and discount", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotationRepo.On("GenerateNumber", mock.Anything, tenantID).Return("QT-2026-00042", nil)
		quotationRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesQuotation"), mock.Anything).Return(nil)

		discount := decimal.NewFromFloat(10.00)
		resp, err := service.Create(context.Background(), tenantID, CreateQuotationRequest{
			CustomerID:   uuid.New(),
			CustomerName: "Acme Press",
			Items: []QuotationItemInput{
				{Description: "A5 flyers x1000", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(120.00)},
			},
			Discount: &discount,
		})

		assert.NoError(t, err)
		assert.Equal(t, "QT-2026-00042", resp.QuotationNumber)
		assert.Len(t, resp.Items, 1)
		assert.True(t, resp.DiscountAmount.Equal(discount))
		quotationRepo.AssertExpectations(t)
	})

	t.Run("fails when number generation fails", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotationRepo.On("GenerateNumber", mock.Anything, tenantID).Return("", assert.AnError)

		resp, err := service.Create(context.Background(), tenantID, CreateQuotationRequest{
			CustomerID:   uuid.New(),
			CustomerName: "Acme Press",
		})

		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestQuotationService_Send(t *testing.T) {
	tenantID := uuid.New()

	t.Run("sends draft quotation with items", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newTestQuotation(t, tenantID)
		_, err := quotation.AddItem("Poster A2", decimal.NewFromInt(20), decimal.NewFromFloat(3.50))
		assert.NoError(t, err)

		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)
		quotationRepo.On("SaveWithLockAndEvents", mock.Anything, quotation, mock.Anything).Return(nil)

		resp, err := service.Send(context.Background(), tenantID, quotation.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(sales.QuotationStatusSent), resp.Status)
	})

	t.Run("rejects sending an empty quotation", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newTestQuotation(t, tenantID)
		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)

		_, err := service.Send(context.Background(), tenantID, quotation.ID)

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
	})
}

func TestQuotationService_ConvertToOrder(t *testing.T) {
	tenantID := uuid.New()

	t.Run("converts accepted quotation into order", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newSentQuotation(t, tenantID)
		assert.NoError(t, quotation.Accept())
		quotation.ClearDomainEvents()

		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)
		orderRepo.On("GenerateNumber", mock.Anything, tenantID).Return("SO-2026-00007", nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesOrder"), mock.Anything).Return(nil)
		quotationRepo.On("SaveWithLockAndEvents", mock.Anything, quotation, mock.Anything).Return(nil)

		resp, err := service.ConvertToOrder(context.Background(), tenantID, quotation.ID)

		assert.NoError(t, err)
		assert.Equal(t, "SO-2026-00007", resp.OrderNumber)
		assert.Len(t, resp.Items, 1)
		assert.True(t, quotation.IsConverted())
		assert.Equal(t, quotation.ID, *resp.QuotationID)
		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects converting a draft quotation", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newTestQuotation(t, tenantID)
		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)
		orderRepo.On("GenerateNumber", mock.Anything, tenantID).Return("SO-2026-00008", nil)

		_, err := service.ConvertToOrder(context.Background(), tenantID, quotation.ID)

		assert.Error(t, err)
	})
}

func TestQuotationService_ExpireDue(t *testing.T) {
	tenantID := uuid.New()

	t.Run("expires lapsed quotations and reports count", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		past := time.Now().Add(-time.Hour)
		first := newSentQuotation(t, tenantID)
		first.ValidUntil = &past
		second := newSentQuotation(t, tenantID)
		second.ValidUntil = &past

		quotationRepo.On("FindExpirable", mock.Anything, tenantID, 50).Return([]sales.SalesQuotation{*first, *second}, nil)
		quotationRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesQuotation"), mock.Anything).Return(nil)

		expired, err := service.ExpireDue(context.Background(), tenantID, 50)

		assert.NoError(t, err)
		assert.Equal(t, 2, expired)
	})

	t.Run("skips quotations whose validity has not lapsed", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		stillValid := newSentQuotation(t, tenantID)

		quotationRepo.On("FindExpirable", mock.Anything, tenantID, 10).Return([]sales.SalesQuotation{*stillValid}, nil)

		expired, err := service.ExpireDue(context.Background(), tenantID, 10)

		assert.NoError(t, err)
		assert.Equal(t, 0, expired)
	})
}

func TestQuotationService_Delete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("deletes draft quotation", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newTestQuotation(t, tenantID)
		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)
		quotationRepo.On("Delete", mock.Anything, quotation.ID).Return(nil)

		err := service.Delete(context.Background(), tenantID, quotation.ID)

		assert.NoError(t, err)
		quotationRepo.AssertExpectations(t)
	})

	t.Run("rejects deleting a sent quotation", func(t *testing.T) {
		quotationRepo := new(MockQuotationRepository)
		orderRepo := new(MockSalesOrderRepository)
		service := NewQuotationService(quotationRepo, orderRepo)

		quotation := newSentQuotation(t, tenantID)
		quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)

		err := service.Delete(context.Background(), tenantID, quotation.ID)

		assert.Error(t, err)
		quotationRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestQuotationService_List(t *testing.T) {
	tenantID := uuid.New()

	quotationRepo := new(MockQuotationRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewQuotationService(quotationRepo, orderRepo)

	quotation := newTestQuotation(t, tenantID)
	quotationRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10
	})).Return([]sales.SalesQuotation{*quotation}, nil)
	quotationRepo.On("Count", mock.Anything, mock.Anything).Return(int64(11), nil)

	items, total, err := service.List(context.Background(), tenantID, QuotationListFilter{Page: 2, PageSize: 10})

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(11), total)
}

func TestQuotationService_SetValidUntil(t *testing.T) {
	tenantID := uuid.New()

	quotationRepo := new(MockQuotationRepository)
	orderRepo := new(MockSalesOrderRepository)
	service := NewQuotationService(quotationRepo, orderRepo)

	quotation := newTestQuotation(t, tenantID)
	quotationRepo.On("FindByIDForTenant", mock.Anything, tenantID, quotation.ID).Return(quotation, nil)
	quotationRepo.On("SaveWithLockAndEvents", mock.Anything, quotation, mock.Anything).Return(nil)

	validUntil := time.Now().Add(14 * 24 * time.Hour)
	resp, err := service.Update(context.Background(), tenantID, quotation.ID, UpdateQuotationRequest{ValidUntil: &validUntil})

	assert.NoError(t, err)
	assert.NotNil(t, resp.ValidUntil)
}
