package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T) *SalesOrder {
	order, err := NewSalesOrder(uuid.New(), "SO-2026-0001", uuid.New(), "Colombo School of Design")
	require.NoError(t, err)
	return order
}

func addOrderLine(t *testing.T, o *SalesOrder, desc string, qty, price float64) *SalesOrderItem {
	item, err := o.AddItem(desc, decimal.NewFromFloat(qty), decimal.NewFromFloat(price))
	require.NoError(t, err)
	return item
}

func confirmedTestOrder(t *testing.T) *SalesOrder {
	o := createTestOrder(t)
	addOrderLine(t, o, "Prospectus 64pp", 2000, 120)
	require.NoError(t, o.Confirm())
	return o
}

func TestSalesOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     SalesOrderStatus
		to       SalesOrderStatus
		canTrans bool
	}{
		{SalesOrderStatusDraft, SalesOrderStatusConfirmed, true},
		{SalesOrderStatusDraft, SalesOrderStatusCancelled, true},
		{SalesOrderStatusDraft, SalesOrderStatusInProduction, false},
		{SalesOrderStatusConfirmed, SalesOrderStatusInProduction, true},
		{SalesOrderStatusConfirmed, SalesOrderStatusReady, false},
		{SalesOrderStatusInProduction, SalesOrderStatusReady, true},
		{SalesOrderStatusInProduction, SalesOrderStatusCancelled, true},
		{SalesOrderStatusReady, SalesOrderStatusDelivered, true},
		{SalesOrderStatusDelivered, SalesOrderStatusCancelled, false},
		{SalesOrderStatusCancelled, SalesOrderStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewSalesOrderFromQuotation(t *testing.T) {
	q := createTestQuotation(t)
	addQuotationLine(t, q, "Brochures A4 trifold", 5000, 22)
	require.NoError(t, q.ApplyDiscount(valueobject.NewMoneyUSDFromFloat(10000)))
	require.NoError(t, q.SetTaxRate(decimal.NewFromInt(15)))

	t.Run("requires accepted quotation", func(t *testing.T) {
		_, err := NewSalesOrderFromQuotation("SO-2026-0002", q)
		assert.Error(t, err)
	})

	require.NoError(t, q.Send())
	require.NoError(t, q.Accept())

	t.Run("carries over lines and totals", func(t *testing.T) {
		order, err := NewSalesOrderFromQuotation("SO-2026-0002", q)
		require.NoError(t, err)

		assert.Equal(t, q.CustomerID, order.CustomerID)
		assert.Equal(t, q.ID, *order.QuotationID)
		assert.Len(t, order.Items, 1)
		assert.True(t, order.Subtotal.Equal(q.Subtotal))
		assert.True(t, order.GrandTotal.Equal(q.GrandTotal))
		assert.Equal(t, SalesOrderStatusDraft, order.Status)
	})

	t.Run("already converted quotation rejected", func(t *testing.T) {
		require.NoError(t, q.MarkConverted(uuid.New()))
		_, err := NewSalesOrderFromQuotation("SO-2026-0003", q)
		assert.Error(t, err)
	})
}

func TestSalesOrder_Confirm(t *testing.T) {
	t.Run("requires items", func(t *testing.T) {
		o := createTestOrder(t)
		assert.Error(t, o.Confirm())
	})

	t.Run("locks lines", func(t *testing.T) {
		o := confirmedTestOrder(t)
		assert.Equal(t, SalesOrderStatusConfirmed, o.Status)
		assert.NotNil(t, o.ConfirmedAt)

		_, err := o.AddItem("Extra leaflets", decimal.NewFromInt(100), decimal.NewFromInt(5))
		assert.Error(t, err)
		assert.Error(t, o.SetTaxRate(decimal.NewFromInt(8)))
	})
}

func TestSalesOrder_Pipeline(t *testing.T) {
	o := confirmedTestOrder(t)

	require.NoError(t, o.StartProduction())
	assert.Equal(t, SalesOrderStatusInProduction, o.Status)

	require.NoError(t, o.MarkReady())
	assert.Equal(t, SalesOrderStatusReady, o.Status)

	require.NoError(t, o.MarkDelivered())
	assert.Equal(t, SalesOrderStatusDelivered, o.Status)
	assert.NotNil(t, o.DeliveredAt)

	// Terminal
	assert.Error(t, o.Cancel("too late"))

	// Every transition publishes a status event
	statusEvents := 0
	for _, evt := range o.GetDomainEvents() {
		if evt.EventType() == EventTypeSalesOrderStatusChanged {
			statusEvents++
		}
	}
	assert.Equal(t, 4, statusEvents)
}

func TestSalesOrder_SkipStagesRejected(t *testing.T) {
	o := confirmedTestOrder(t)
	assert.Error(t, o.MarkReady())
	assert.Error(t, o.MarkDelivered())
}

func TestSalesOrder_Cancel(t *testing.T) {
	t.Run("requires reason", func(t *testing.T) {
		o := confirmedTestOrder(t)
		assert.Error(t, o.Cancel(""))
	})

	t.Run("cancels with reason", func(t *testing.T) {
		o := confirmedTestOrder(t)
		require.NoError(t, o.Cancel("customer withdrew"))
		assert.Equal(t, SalesOrderStatusCancelled, o.Status)
		assert.Equal(t, "customer withdrew", o.CancelReason)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("invoiced order cannot cancel", func(t *testing.T) {
		o := confirmedTestOrder(t)
		require.NoError(t, o.StartProduction())
		require.NoError(t, o.MarkReady())
		require.NoError(t, o.MarkInvoiced(uuid.New()))
		assert.Error(t, o.Cancel("changed mind"))
	})
}

func TestSalesOrder_Advance(t *testing.T) {
	o := confirmedTestOrder(t) // GrandTotal 240000

	require.NoError(t, o.RecordAdvance(valueobject.NewMoneyUSDFromFloat(100000)))
	assert.True(t, o.AdvancePaid.Equal(decimal.NewFromInt(100000)))
	assert.True(t, o.BalanceDue().Equal(decimal.NewFromInt(140000)))

	t.Run("advance cannot exceed total", func(t *testing.T) {
		err := o.RecordAdvance(valueobject.NewMoneyUSDFromFloat(200000))
		assert.Error(t, err)
	})

	t.Run("advance must be positive", func(t *testing.T) {
		err := o.RecordAdvance(valueobject.ZeroUSD())
		assert.Error(t, err)
	})
}

func TestSalesOrder_MarkInvoiced(t *testing.T) {
	o := confirmedTestOrder(t)

	t.Run("only ready or delivered orders", func(t *testing.T) {
		assert.Error(t, o.MarkInvoiced(uuid.New()))
	})

	require.NoError(t, o.StartProduction())
	require.NoError(t, o.MarkReady())

	invoiceID := uuid.New()
	require.NoError(t, o.MarkInvoiced(invoiceID))
	assert.True(t, o.IsInvoiced())
	assert.Equal(t, invoiceID, *o.InvoiceID)

	t.Run("invoiced once", func(t *testing.T) {
		assert.Error(t, o.MarkInvoiced(uuid.New()))
	})
}

func TestSalesOrder_IsOverdue(t *testing.T) {
	o := confirmedTestOrder(t)
	assert.False(t, o.IsOverdue())

	past := time.Now().Add(-48 * time.Hour)
	o.DeliveryDate = &past
	assert.True(t, o.IsOverdue())

	require.NoError(t, o.StartProduction())
	require.NoError(t, o.MarkReady())
	require.NoError(t, o.MarkDelivered())
	assert.False(t, o.IsOverdue())
}
