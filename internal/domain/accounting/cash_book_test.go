package accounting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCashBookEntry(t *testing.T) {
	tenantID := uuid.New()
	period := openTestPeriod(t, tenantID)
	date := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)

	t.Run("valid receipt", func(t *testing.T) {
		entry, err := NewCashBookEntry(tenantID, period, date, CashBookEntryTypeReceipt, decimal.NewFromInt(25000), "Colombo School of Design", "sales")
		require.NoError(t, err)
		assert.True(t, entry.Signed().Equal(decimal.NewFromInt(25000)))
	})

	t.Run("payment is negative signed", func(t *testing.T) {
		entry, err := NewCashBookEntry(tenantID, period, date, CashBookEntryTypePayment, decimal.NewFromInt(8000), "Ceylon Paper Mills", "materials")
		require.NoError(t, err)
		assert.True(t, entry.Signed().Equal(decimal.NewFromInt(-8000)))
	})

	t.Run("closed period rejected", func(t *testing.T) {
		closed := openTestPeriod(t, tenantID)
		require.NoError(t, closed.Close())
		_, err := NewCashBookEntry(tenantID, closed, date, CashBookEntryTypeReceipt, decimal.NewFromInt(100), "X", "other")
		assert.ErrorIs(t, err, shared.ErrPeriodClosed)
	})

	t.Run("date outside period rejected", func(t *testing.T) {
		outside := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewCashBookEntry(tenantID, period, outside, CashBookEntryTypeReceipt, decimal.NewFromInt(100), "X", "other")
		assert.Error(t, err)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := NewCashBookEntry(tenantID, period, date, CashBookEntryTypePayment, decimal.Zero, "X", "other")
		assert.Error(t, err)
	})
}

func TestComputeRunningBalances(t *testing.T) {
	tenantID := uuid.New()
	period := openTestPeriod(t, tenantID)

	mk := func(day int, entryType CashBookEntryType, amount int64) CashBookEntry {
		date := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
		entry, err := NewCashBookEntry(tenantID, period, date, entryType, decimal.NewFromInt(amount), "counterparty", "other")
		require.NoError(t, err)
		return *entry
	}

	entries := []CashBookEntry{
		mk(1, CashBookEntryTypeReceipt, 50000),
		mk(2, CashBookEntryTypePayment, 12000),
		mk(3, CashBookEntryTypeReceipt, 3000),
	}

	rows := ComputeRunningBalances(decimal.NewFromInt(10000), entries)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Balance.Equal(decimal.NewFromInt(60000)))
	assert.True(t, rows[1].Balance.Equal(decimal.NewFromInt(48000)))
	assert.True(t, rows[2].Balance.Equal(decimal.NewFromInt(51000)))
}
