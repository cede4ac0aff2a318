package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockSupplierBillRepository is a mock implementation of purchasing.SupplierBillRepository
type MockSupplierBillRepository struct {
	mock.Mock
}

func (m *MockSupplierBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.SupplierBill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, supplierID, filter)
	return args.Get(0).([]purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.SupplierBillStatus, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.SupplierBill, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchasing.SupplierBill), args.Error(1)
}

func (m *MockSupplierBillRepository) Save(ctx context.Context, bill *purchasing.SupplierBill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockSupplierBillRepository) SaveWithLockAndEvents(ctx context.Context, bill *purchasing.SupplierBill, events []shared.DomainEvent) error {
	args := m.Called(ctx, bill, events)
	return args.Error(0)
}

func (m *MockSupplierBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierBillRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockPurchaseOrderRepository is a mock implementation of purchasing.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, supplierID, filter)
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.PurchaseOrderStatus, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]purchasing.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountOpenBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *purchasing.PurchaseOrder, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newDraftBill(t *testing.T, tenantID uuid.UUID) *purchasing.SupplierBill {
	t.Helper()
	bill, err := purchasing.NewSupplierBill(tenantID, "BILL-2026-00001", uuid.New(), "Mill Street Paper", time.Now())
	assert.NoError(t, err)
	_, err = bill.AddItem("80gsm A4 reams", nil, decimal.NewFromInt(50), decimal.NewFromFloat(4.20))
	assert.NoError(t, err)
	bill.ClearDomainEvents()
	return bill
}

func newApprovedBill(t *testing.T, tenantID uuid.UUID) *purchasing.SupplierBill {
	t.Helper()
	bill := newDraftBill(t, tenantID)
	assert.NoError(t, bill.Approve())
	bill.ClearDomainEvents()
	return bill
}

// =============================================================================
// SupplierBillService Tests
// =============================================================================

func TestSupplierBillService_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates bill with items and supplier reference", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		billRepo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-00009", nil)
		billRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*purchasing.SupplierBill"), mock.Anything).Return(nil)

		resp, err := service.Create(context.Background(), tenantID, CreateSupplierBillRequest{
			SupplierID:      uuid.New(),
			SupplierName:    "Mill Street Paper",
			SupplierBillRef: "MSP-4471",
			BillDate:        time.Now(),
			Items: []SupplierBillItemInput{
				{Description: "Gloss laminate rolls", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromFloat(60.00)},
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, "BILL-2026-00009", resp.BillNumber)
		assert.Equal(t, "MSP-4471", resp.SupplierBillRef)
		assert.Equal(t, string(purchasing.SupplierBillStatusDraft), resp.Status)
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(240.00)))
	})

	t.Run("rejects linking a purchase order from another tenant", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		orderID := uuid.New()
		billRepo.On("GenerateNumber", mock.Anything, tenantID).Return("BILL-2026-00010", nil)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, orderID).Return(nil, assert.AnError)

		_, err := service.Create(context.Background(), tenantID, CreateSupplierBillRequest{
			SupplierID:      uuid.New(),
			SupplierName:    "Mill Street Paper",
			BillDate:        time.Now(),
			PurchaseOrderID: &orderID,
		})

		assert.Error(t, err)
		billRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSupplierBillService_Approve(t *testing.T) {
	tenantID := uuid.New()

	t.Run("approves draft bill", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		bill := newDraftBill(t, tenantID)
		billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)
		billRepo.On("SaveWithLockAndEvents", mock.Anything, bill, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == purchasing.EventTypeSupplierBillApproved
		})).Return(nil)

		resp, err := service.Approve(context.Background(), tenantID, bill.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.SupplierBillStatusApproved), resp.Status)
		billRepo.AssertExpectations(t)
	})

	t.Run("rejects approving a bill without items", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		bill, err := purchasing.NewSupplierBill(tenantID, "BILL-2026-00002", uuid.New(), "Mill Street Paper", time.Now())
		assert.NoError(t, err)
		billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)

		_, err = service.Approve(context.Background(), tenantID, bill.ID)

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})
}

func TestSupplierBillService_RecordPayment(t *testing.T) {
	tenantID := uuid.New()

	t.Run("partial then final payment settles the bill", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		bill := newApprovedBill(t, tenantID) // grand total 210.00
		billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)
		billRepo.On("SaveWithLockAndEvents", mock.Anything, bill, mock.Anything).Return(nil)

		resp, err := service.RecordPayment(context.Background(), tenantID, bill.ID, RecordBillPaymentRequest{
			Amount:    decimal.NewFromFloat(100.00),
			Reference: "chq 2210",
		})
		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.SupplierBillStatusPartiallyPaid), resp.Status)

		resp, err = service.RecordPayment(context.Background(), tenantID, bill.ID, RecordBillPaymentRequest{
			Amount: decimal.NewFromFloat(110.00),
		})
		assert.NoError(t, err)
		assert.Equal(t, string(purchasing.SupplierBillStatusPaid), resp.Status)
		assert.True(t, resp.AmountDue.IsZero())
	})

	t.Run("rejects payment on a draft bill", func(t *testing.T) {
		billRepo := new(MockSupplierBillRepository)
		orderRepo := new(MockPurchaseOrderRepository)
		service := NewSupplierBillService(billRepo, orderRepo)

		bill := newDraftBill(t, tenantID)
		billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)

		_, err := service.RecordPayment(context.Background(), tenantID, bill.ID, RecordBillPaymentRequest{
			Amount: decimal.NewFromFloat(10.00),
		})

		assert.Error(t, err)
	})
}

func TestSupplierBillService_Dispute(t *testing.T) {
	tenantID := uuid.New()

	billRepo := new(MockSupplierBillRepository)
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewSupplierBillService(billRepo, orderRepo)

	bill := newApprovedBill(t, tenantID)
	billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)
	billRepo.On("SaveWithLockAndEvents", mock.Anything, bill, mock.Anything).Return(nil)

	resp, err := service.Dispute(context.Background(), tenantID, bill.ID, DisputeBillRequest{
		Reason: "short delivery on reams",
	})

	assert.NoError(t, err)
	assert.Equal(t, string(purchasing.SupplierBillStatusDisputed), resp.Status)
}

func TestSupplierBillService_Delete(t *testing.T) {
	tenantID := uuid.New()

	billRepo := new(MockSupplierBillRepository)
	orderRepo := new(MockPurchaseOrderRepository)
	service := NewSupplierBillService(billRepo, orderRepo)

	bill := newApprovedBill(t, tenantID)
	billRepo.On("FindByIDForTenant", mock.Anything, tenantID, bill.ID).Return(bill, nil)

	err := service.Delete(context.Background(), tenantID, bill.ID)

	assert.Error(t, err)
	billRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
