package costing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSheet(t *testing.T) *CostingSheet {
	sheet, err := NewCostingSheet(uuid.New(), "Wedding cards 500pcs", decimal.NewFromInt(500))
	require.NoError(t, err)
	return sheet
}

func TestNewCostingSheet(t *testing.T) {
	sheet := createTestSheet(t)
	assert.Equal(t, SheetStatusDraft, sheet.Status)
	assert.Len(t, sheet.Components, 15)
	assert.True(t, sheet.GrandTotal.IsZero())

	for _, key := range ComponentKeys {
		component := sheet.GetComponent(key)
		require.NotNil(t, component, "missing component %s", key)
		assert.True(t, component.Amount.IsZero())
	}

	t.Run("zero quantity rejected", func(t *testing.T) {
		_, err := NewCostingSheet(uuid.New(), "Job", decimal.Zero)
		assert.Error(t, err)
	})
}

func TestCostingSheet_SetComponentFormula(t *testing.T) {
	sheet := createTestSheet(t)

	require.NoError(t, sheet.SetComponentFormula(ComponentPaper, "500 * 12 / 4"))
	assert.True(t, sheet.GetComponent(ComponentPaper).Amount.Equal(decimal.NewFromInt(1500)))
	assert.True(t, sheet.Subtotal.Equal(decimal.NewFromInt(1500)))

	t.Run("invalid formula rejected", func(t *testing.T) {
		err := sheet.SetComponentFormula(ComponentPrinting, "2++2")
		assert.Error(t, err)
		assert.True(t, sheet.GetComponent(ComponentPrinting).Amount.IsZero())
	})

	t.Run("unknown component rejected", func(t *testing.T) {
		err := sheet.SetComponentFormula(ComponentKey("embossing"), "100")
		assert.Error(t, err)
	})

	t.Run("clearing a formula zeroes the amount", func(t *testing.T) {
		require.NoError(t, sheet.SetComponentFormula(ComponentPaper, ""))
		assert.True(t, sheet.Subtotal.IsZero())
	})
}

func TestCostingSheet_Rollup(t *testing.T) {
	sheet := createTestSheet(t)

	require.NoError(t, sheet.SetComponentFormula(ComponentPaper, "6000"))
	require.NoError(t, sheet.SetComponentFormula(ComponentPlates, "3000"))
	require.NoError(t, sheet.SetComponentFormula(ComponentPrinting, "1000"))
	require.NoError(t, sheet.SetProfitPercent(decimal.NewFromInt(20)))
	require.NoError(t, sheet.SetTaxPercent(decimal.NewFromInt(15)))

	// Subtotal 10000, profit 2000, tax on 12000 = 1800, total 13800
	assert.True(t, sheet.Subtotal.Equal(decimal.NewFromInt(10000)))
	assert.True(t, sheet.ProfitAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, sheet.TaxAmount.Equal(decimal.NewFromInt(1800)))
	assert.True(t, sheet.GrandTotal.Equal(decimal.NewFromInt(13800)))
	// 13800 / 500 = 27.6
	assert.True(t, sheet.UnitPrice.Equal(decimal.NewFromFloat(27.6)))
}

func TestCostingSheet_UnitPricePrecision(t *testing.T) {
	sheet, err := NewCostingSheet(uuid.New(), "Odd lot", decimal.NewFromInt(3))
	require.NoError(t, err)
	require.NoError(t, sheet.SetComponentFormula(ComponentOther, "100"))

	// 100 / 3 = 33.3333 at 4 dp
	assert.True(t, sheet.UnitPrice.Equal(decimal.NewFromFloat(33.3333)))
}

func TestCostingSheet_Finalize(t *testing.T) {
	t.Run("empty sheet cannot finalize", func(t *testing.T) {
		sheet := createTestSheet(t)
		assert.Error(t, sheet.Finalize())
	})

	t.Run("finalized sheet is immutable", func(t *testing.T) {
		sheet := createTestSheet(t)
		require.NoError(t, sheet.SetComponentFormula(ComponentPaper, "5000"))
		require.NoError(t, sheet.Finalize())
		assert.Equal(t, SheetStatusFinalized, sheet.Status)
		assert.NotNil(t, sheet.FinalizedAt)

		assert.Error(t, sheet.SetComponentFormula(ComponentPaper, "6000"))
		assert.Error(t, sheet.SetProfitPercent(decimal.NewFromInt(10)))
		assert.Error(t, sheet.SetQuantity(decimal.NewFromInt(100)))
		assert.Error(t, sheet.Finalize())
	})

	t.Run("finalize publishes event", func(t *testing.T) {
		sheet := createTestSheet(t)
		require.NoError(t, sheet.SetComponentFormula(ComponentDesign, "2500"))
		require.NoError(t, sheet.Finalize())

		require.Len(t, sheet.GetDomainEvents(), 1)
		evt, ok := sheet.GetDomainEvents()[0].(*SheetFinalizedEvent)
		require.True(t, ok)
		assert.True(t, evt.UnitPrice.Equal(sheet.UnitPrice))
	})
}
