package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
)

// MockSupplierRepository is a mock implementation of partner.SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Supplier, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Supplier, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[partner.SupplierStatus]int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(map[partner.SupplierStatus]int64), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func TestCustomerBalanceHandler(t *testing.T) {
	tenantID := uuid.New()

	t.Run("invoice issued raises customer balance", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		handler := NewCustomerBalanceHandler(customerRepo, zap.NewNop())

		customer := newTestCustomer(t, tenantID)
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		customerRepo.On("Save", mock.Anything, customer).Return(nil)

		event := &sales.InvoiceIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoiceIssued, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			CustomerID:      customer.ID,
			GrandTotal:      decimal.NewFromFloat(250.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.True(t, customer.Balance.Equal(decimal.NewFromFloat(250.00)))
	})

	t.Run("payment lowers customer balance", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		handler := NewCustomerBalanceHandler(customerRepo, zap.NewNop())

		customer := newTestCustomer(t, tenantID)
		assert.NoError(t, customer.AddBalance(decimal.NewFromFloat(250.00)))
		customer.ClearDomainEvents()

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		customerRepo.On("Save", mock.Anything, customer).Return(nil)

		event := &sales.InvoicePaymentRecordedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoicePaymentRecorded, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			CustomerID:      customer.ID,
			Amount:          decimal.NewFromFloat(100.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.True(t, customer.Balance.Equal(decimal.NewFromFloat(150.00)))
	})

	t.Run("fails when customer is missing", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		handler := NewCustomerBalanceHandler(customerRepo, zap.NewNop())

		missingID := uuid.New()
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, missingID).Return(nil, assert.AnError)

		event := &sales.InvoiceIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoiceIssued, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			CustomerID:      missingID,
			GrandTotal:      decimal.NewFromFloat(50.00),
		}

		assert.Error(t, handler.Handle(context.Background(), event))
	})
}

func TestSupplierBalanceHandler(t *testing.T) {
	tenantID := uuid.New()

	newSupplier := func(t *testing.T) *partner.Supplier {
		t.Helper()
		supplier, err := partner.NewSupplier(tenantID, "SUP-001", "Mill Street Paper", partner.SupplierCategoryPaper)
		assert.NoError(t, err)
		supplier.ClearDomainEvents()
		return supplier
	}

	t.Run("approved bill raises supplier balance", func(t *testing.T) {
		supplierRepo := new(MockSupplierRepository)
		handler := NewSupplierBalanceHandler(supplierRepo, zap.NewNop())

		supplier := newSupplier(t)
		supplierRepo.On("FindByIDForTenant", mock.Anything, tenantID, supplier.ID).Return(supplier, nil)
		supplierRepo.On("Save", mock.Anything, supplier).Return(nil)

		event := &purchasing.SupplierBillApprovedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(purchasing.EventTypeSupplierBillApproved, purchasing.AggregateTypeSupplierBill, uuid.New(), tenantID),
			SupplierID:      supplier.ID,
			GrandTotal:      decimal.NewFromFloat(480.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.True(t, supplier.Balance.Equal(decimal.NewFromFloat(480.00)))
	})

	t.Run("bill payment lowers supplier balance", func(t *testing.T) {
		supplierRepo := new(MockSupplierRepository)
		handler := NewSupplierBalanceHandler(supplierRepo, zap.NewNop())

		supplier := newSupplier(t)
		assert.NoError(t, supplier.AddBalance(decimal.NewFromFloat(480.00)))
		supplier.ClearDomainEvents()

		supplierRepo.On("FindByIDForTenant", mock.Anything, tenantID, supplier.ID).Return(supplier, nil)
		supplierRepo.On("Save", mock.Anything, supplier).Return(nil)

		event := &purchasing.SupplierBillPaymentRecordedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(purchasing.EventTypeSupplierBillPaymentRecorded, purchasing.AggregateTypeSupplierBill, uuid.New(), tenantID),
			SupplierID:      supplier.ID,
			Amount:          decimal.NewFromFloat(200.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.True(t, supplier.Balance.Equal(decimal.NewFromFloat(280.00)))
	})
}
