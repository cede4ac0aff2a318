package purchasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPO(t *testing.T) *PurchaseOrder {
	po, err := NewPurchaseOrder(uuid.New(), "PO-2026-0001", uuid.New(), "Ceylon Paper Mills")
	require.NoError(t, err)
	return po
}

func sentTestPO(t *testing.T) (*PurchaseOrder, *PurchaseOrderItem) {
	po := createTestPO(t)
	invItem := uuid.New()
	item, err := po.AddItem("Art paper 128gsm reams", &invItem, decimal.NewFromInt(100), decimal.NewFromInt(1200))
	require.NoError(t, err)
	require.NoError(t, po.Send())
	return po, item
}

func TestPurchaseOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PurchaseOrderStatus
		to       PurchaseOrderStatus
		canTrans bool
	}{
		{PurchaseOrderStatusDraft, PurchaseOrderStatusSent, true},
		{PurchaseOrderStatusDraft, PurchaseOrderStatusReceived, false},
		{PurchaseOrderStatusSent, PurchaseOrderStatusPartiallyReceived, true},
		{PurchaseOrderStatusSent, PurchaseOrderStatusReceived, true},
		{PurchaseOrderStatusSent, PurchaseOrderStatusCancelled, true},
		{PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusReceived, true},
		{PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled, false},
		{PurchaseOrderStatusCancelled, PurchaseOrderStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPurchaseOrder_AddItem(t *testing.T) {
	po := createTestPO(t)

	_, err := po.AddItem("CTP plates", nil, decimal.NewFromInt(40), decimal.NewFromInt(850))
	require.NoError(t, err)
	assert.True(t, po.Subtotal.Equal(decimal.NewFromInt(34000)))

	t.Run("validation", func(t *testing.T) {
		_, err := po.AddItem("", nil, decimal.NewFromInt(1), decimal.NewFromInt(1))
		assert.Error(t, err)
		_, err = po.AddItem("Ink CMYK set", nil, decimal.Zero, decimal.NewFromInt(1))
		assert.Error(t, err)
	})

	t.Run("locked after send", func(t *testing.T) {
		require.NoError(t, po.Send())
		_, err := po.AddItem("Extra plates", nil, decimal.NewFromInt(1), decimal.NewFromInt(850))
		assert.Error(t, err)
	})
}

func TestPurchaseOrder_Send(t *testing.T) {
	po := createTestPO(t)
	assert.Error(t, po.Send(), "empty order should not send")

	_, err := po.AddItem("Newsprint rolls", nil, decimal.NewFromInt(10), decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.NoError(t, po.Send())
	assert.Equal(t, PurchaseOrderStatusSent, po.Status)
	assert.NotNil(t, po.SentAt)
}

func TestPurchaseOrder_ReceiveItem(t *testing.T) {
	t.Run("partial then full receipt", func(t *testing.T) {
		po, item := sentTestPO(t)

		require.NoError(t, po.ReceiveItem(item.ID, decimal.NewFromInt(60)))
		assert.Equal(t, PurchaseOrderStatusPartiallyReceived, po.Status)
		assert.True(t, po.GetItem(item.ID).Outstanding().Equal(decimal.NewFromInt(40)))

		require.NoError(t, po.ReceiveItem(item.ID, decimal.NewFromInt(40)))
		assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
		assert.NotNil(t, po.ReceivedAt)
	})

	t.Run("over receipt rejected", func(t *testing.T) {
		po, item := sentTestPO(t)
		err := po.ReceiveItem(item.ID, decimal.NewFromInt(150))
		assert.Error(t, err)
	})

	t.Run("receipt on draft rejected", func(t *testing.T) {
		po := createTestPO(t)
		item, err := po.AddItem("Foil rolls", nil, decimal.NewFromInt(5), decimal.NewFromInt(2000))
		require.NoError(t, err)
		assert.Error(t, po.ReceiveItem(item.ID, decimal.NewFromInt(1)))
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		po, _ := sentTestPO(t)
		assert.Error(t, po.ReceiveItem(uuid.New(), decimal.NewFromInt(1)))
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	po, item := sentTestPO(t)
	require.NoError(t, po.ReceiveItem(item.ID, decimal.NewFromInt(10)))

	require.NoError(t, po.Cancel("supplier out of stock"))
	assert.Equal(t, PurchaseOrderStatusCancelled, po.Status)
	assert.Equal(t, "supplier out of stock", po.CancelReason)

	t.Run("received order cannot cancel", func(t *testing.T) {
		po, item := sentTestPO(t)
		require.NoError(t, po.ReceiveItem(item.ID, decimal.NewFromInt(100)))
		assert.Error(t, po.Cancel("too late"))
	})
}

func TestPurchaseOrder_IsOverdue(t *testing.T) {
	po, _ := sentTestPO(t)
	assert.False(t, po.IsOverdue())

	past := time.Now().Add(-24 * time.Hour)
	po.ExpectedDate = &past
	assert.True(t, po.IsOverdue())
}
