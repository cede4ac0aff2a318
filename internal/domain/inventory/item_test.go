package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestItem(t *testing.T) *InventoryItem {
	item, err := NewInventoryItem(uuid.New(), "ppr-a4-80", "A4 80gsm copy paper", ItemCategoryPaper, "ream")
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	t.Run("normalizes SKU", func(t *testing.T) {
		item := createTestItem(t)
		assert.Equal(t, "PPR-A4-80", item.SKU)
		assert.True(t, item.Active)
		assert.True(t, item.QuantityOnHand.IsZero())
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := NewInventoryItem(uuid.New(), "X-1", "Thing", ItemCategory("FOOD"), "pcs")
		assert.Error(t, err)
	})

	t.Run("empty unit", func(t *testing.T) {
		_, err := NewInventoryItem(uuid.New(), "X-1", "Thing", ItemCategoryOther, "")
		assert.Error(t, err)
	})
}

func TestInventoryItem_Receive(t *testing.T) {
	item := createTestItem(t)

	mv, err := item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(1200), "BILL-2026-0001")
	require.NoError(t, err)
	assert.Equal(t, MovementTypeReceipt, mv.Type)
	assert.True(t, mv.BalanceAfter.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.UnitCost.Equal(decimal.NewFromInt(1200)))

	t.Run("receipt re-averages cost", func(t *testing.T) {
		_, err := item.Receive(decimal.NewFromInt(100), decimal.NewFromInt(1400), "BILL-2026-0002")
		require.NoError(t, err)
		assert.True(t, item.UnitCost.Equal(decimal.NewFromInt(1300)))
		assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(200)))
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := item.Receive(decimal.Zero, decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})
}

func TestInventoryItem_Issue(t *testing.T) {
	item := createTestItem(t)
	_, err := item.Receive(decimal.NewFromInt(50), decimal.NewFromInt(1000), "BILL-2026-0003")
	require.NoError(t, err)

	mv, err := item.Issue(decimal.NewFromInt(20), "SO-2026-0010")
	require.NoError(t, err)
	assert.True(t, mv.Quantity.Equal(decimal.NewFromInt(-20)))
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(30)))

	t.Run("insufficient stock rejected", func(t *testing.T) {
		_, err := item.Issue(decimal.NewFromInt(31), "SO-2026-0011")
		assert.Error(t, err)
		assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(30)))
	})
}

func TestInventoryItem_Adjust(t *testing.T) {
	item := createTestItem(t)
	_, err := item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(500), "")
	require.NoError(t, err)

	t.Run("downward adjustment", func(t *testing.T) {
		mv, err := item.Adjust(decimal.NewFromInt(-2), "damaged in storage")
		require.NoError(t, err)
		assert.Equal(t, MovementTypeAdjustment, mv.Type)
		assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(8)))
	})

	t.Run("requires reason", func(t *testing.T) {
		_, err := item.Adjust(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("cannot go below zero", func(t *testing.T) {
		_, err := item.Adjust(decimal.NewFromInt(-100), "count error")
		assert.Error(t, err)
	})
}

func TestInventoryItem_LowStock(t *testing.T) {
	item := createTestItem(t)
	require.NoError(t, item.SetReorderLevel(decimal.NewFromInt(10)))
	_, err := item.Receive(decimal.NewFromInt(15), decimal.NewFromInt(100), "")
	require.NoError(t, err)
	assert.False(t, item.IsLowStock())

	_, err = item.Issue(decimal.NewFromInt(5), "SO-2026-0020")
	require.NoError(t, err)
	assert.True(t, item.IsLowStock())

	found := false
	for _, evt := range item.GetDomainEvents() {
		if evt.EventType() == EventTypeLowStock {
			found = true
		}
	}
	assert.True(t, found)
}

func TestInventoryItem_Deactivate(t *testing.T) {
	item := createTestItem(t)
	_, err := item.Receive(decimal.NewFromInt(5), decimal.NewFromInt(100), "")
	require.NoError(t, err)

	assert.Error(t, item.Deactivate(), "stock on hand blocks deactivation")

	_, err = item.Issue(decimal.NewFromInt(5), "SO-2026-0030")
	require.NoError(t, err)
	require.NoError(t, item.Deactivate())

	_, err = item.Receive(decimal.NewFromInt(1), decimal.NewFromInt(100), "")
	assert.Error(t, err, "inactive item cannot receive")
}

func TestInventoryItem_StockValue(t *testing.T) {
	item := createTestItem(t)
	_, err := item.Receive(decimal.NewFromInt(20), decimal.NewFromFloat(12.5), "")
	require.NoError(t, err)
	assert.True(t, item.StockValue().Equal(decimal.NewFromInt(250)))
}
