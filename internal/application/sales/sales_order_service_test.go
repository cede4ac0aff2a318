package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
)

func newTestOrder(t *testing.T, tenantID uuid.UUID) *sales.SalesOrder {
	t.Helper()
	order, err := sales.NewSalesOrder(tenantID, "SO-2026-00001", uuid.New(), "Acme Press")
	assert.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func newConfirmedOrder(t *testing.T, tenantID uuid.UUID) *sales.SalesOrder {
	t.Helper()
	order := newTestOrder(t, tenantID)
	_, err := order.AddItem("Banner 2x1m", decimal.NewFromInt(2), decimal.NewFromFloat(35.00))
	assert.NoError(t, err)
	assert.NoError(t, order.Confirm())
	order.ClearDomainEvents()
	return order
}

func TestSalesOrderService_Create(t *testing.T) {
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo)

	orderRepo.On("GenerateNumber", mock.Anything, tenantID).Return("SO-2026-00021", nil)
	orderRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*sales.SalesOrder"), mock.Anything).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, CreateSalesOrderRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Acme Press",
		Items: []QuotationItemInput{
			{Description: "Letterheads x500", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(80.00)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "SO-2026-00021", resp.OrderNumber)
	assert.Equal(t, string(sales.SalesOrderStatusDraft), resp.Status)
	assert.True(t, resp.GrandTotal.Equal(decimal.NewFromFloat(80.00)))
	orderRepo.AssertExpectations(t)
}

func TestSalesOrderService_Confirm(t *testing.T) {
	tenantID := uuid.New()

	t.Run("confirms draft order with items", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newTestOrder(t, tenantID)
		_, err := order.AddItem("Stickers x200", decimal.NewFromInt(1), decimal.NewFromFloat(25.00))
		assert.NoError(t, err)

		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		resp, err := service.Confirm(context.Background(), tenantID, order.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(sales.SalesOrderStatusConfirmed), resp.Status)
		assert.NotNil(t, resp.ConfirmedAt)
	})

	t.Run("rejects confirming an empty order", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newTestOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := service.Confirm(context.Background(), tenantID, order.ID)

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})
}

func TestSalesOrderService_ProductionFlow(t *testing.T) {
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo)

	order := newConfirmedOrder(t, tenantID)
	orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
	orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

	resp, err := service.StartProduction(context.Background(), tenantID, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(sales.SalesOrderStatusInProduction), resp.Status)

	resp, err = service.MarkReady(context.Background(), tenantID, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(sales.SalesOrderStatusReady), resp.Status)

	resp, err = service.MarkDelivered(context.Background(), tenantID, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, string(sales.SalesOrderStatusDelivered), resp.Status)
	assert.NotNil(t, resp.DeliveredAt)
}

func TestSalesOrderService_RecordAdvance(t *testing.T) {
	tenantID := uuid.New()

	t.Run("records advance against balance", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newConfirmedOrder(t, tenantID) // grand total 70.00
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		resp, err := service.RecordAdvance(context.Background(), tenantID, order.ID, RecordAdvanceRequest{
			Amount: decimal.NewFromFloat(30.00),
		})

		assert.NoError(t, err)
		assert.True(t, resp.AdvancePaid.Equal(decimal.NewFromFloat(30.00)))
		assert.True(t, resp.BalanceDue.Equal(decimal.NewFromFloat(40.00)))
	})

	t.Run("rejects advance exceeding the order total", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newConfirmedOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := service.RecordAdvance(context.Background(), tenantID, order.ID, RecordAdvanceRequest{
			Amount: decimal.NewFromFloat(500.00),
		})

		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ADVANCE_EXCEEDS_TOTAL", domainErr.Code)
	})
}

func TestSalesOrderService_Cancel(t *testing.T) {
	tenantID := uuid.New()

	t.Run("cancels order with reason", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newConfirmedOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)
		orderRepo.On("SaveWithLockAndEvents", mock.Anything, order, mock.Anything).Return(nil)

		resp, err := service.Cancel(context.Background(), tenantID, order.ID, CancelOrderRequest{
			Reason: "customer changed artwork",
		})

		assert.NoError(t, err)
		assert.Equal(t, string(sales.SalesOrderStatusCancelled), resp.Status)
		assert.Equal(t, "customer changed artwork", resp.CancelReason)
	})

	t.Run("rejects cancelling without a reason", func(t *testing.T) {
		orderRepo := new(MockSalesOrderRepository)
		service := NewSalesOrderService(orderRepo)

		order := newConfirmedOrder(t, tenantID)
		orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)

		_, err := service.Cancel(context.Background(), tenantID, order.ID, CancelOrderRequest{})

		assert.Error(t, err)
	})
}

func TestSalesOrderService_Delete(t *testing.T) {
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo)

	order := newConfirmedOrder(t, tenantID)
	orderRepo.On("FindByIDForTenant", mock.Anything, tenantID, order.ID).Return(order, nil)

	err := service.Delete(context.Background(), tenantID, order.ID)

	assert.Error(t, err)
	orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSalesOrderService_StatusSummary(t *testing.T) {
	tenantID := uuid.New()

	orderRepo := new(MockSalesOrderRepository)
	service := NewSalesOrderService(orderRepo)

	orderRepo.On("CountByStatus", mock.Anything, tenantID).Return(map[sales.SalesOrderStatus]int64{
		sales.SalesOrderStatusDraft:        3,
		sales.SalesOrderStatusConfirmed:    2,
		sales.SalesOrderStatusInProduction: 4,
		sales.SalesOrderStatusDelivered:    10,
	}, nil)

	summary, err := service.StatusSummary(context.Background(), tenantID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), summary.Draft)
	assert.Equal(t, int64(4), summary.InProduction)
	assert.Equal(t, int64(0), summary.Ready)
	assert.Equal(t, int64(19), summary.Total)
}
