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

// Test helpers
func createTestQuotation(t *testing.T) *SalesQuotation {
	quotation, err := NewSalesQuotation(uuid.New(), "QT-2026-0001", uuid.New(), "Lanka Printers Ltd")
	require.NoError(t, err)
	return quotation
}

func addQuotationLine(t *testing.T, q *SalesQuotation, desc string, qty, price float64) *QuotationItem {
	item, err := q.AddItem(desc, decimal.NewFromFloat(qty), decimal.NewFromFloat(price))
	require.NoError(t, err)
	return item
}

func TestQuotationStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  QuotationStatus
		isValid bool
	}{
		{QuotationStatusDraft, true},
		{QuotationStatusSent, true},
		{QuotationStatusAccepted, true},
		{QuotationStatusRejected, true},
		{QuotationStatusExpired, true},
		{QuotationStatus("INVALID"), false},
		{QuotationStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestQuotationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     QuotationStatus
		to       QuotationStatus
		canTrans bool
	}{
		{QuotationStatusDraft, QuotationStatusSent, true},
		{QuotationStatusDraft, QuotationStatusAccepted, false},
		{QuotationStatusSent, QuotationStatusAccepted, true},
		{QuotationStatusSent, QuotationStatusRejected, true},
		{QuotationStatusSent, QuotationStatusExpired, true},
		{QuotationStatusSent, QuotationStatusDraft, false},
		{QuotationStatusAccepted, QuotationStatusRejected, false},
		{QuotationStatusRejected, QuotationStatusSent, false},
		{QuotationStatusExpired, QuotationStatusSent, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewSalesQuotation(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("valid quotation", func(t *testing.T) {
		q, err := NewSalesQuotation(tenantID, "QT-2026-0001", customerID, "Lanka Printers Ltd")
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusDraft, q.Status)
		assert.Equal(t, tenantID, q.TenantID)
		assert.True(t, q.GrandTotal.IsZero())
		assert.Len(t, q.GetDomainEvents(), 1)
	})

	t.Run("empty number", func(t *testing.T) {
		_, err := NewSalesQuotation(tenantID, "", customerID, "Lanka Printers Ltd")
		assert.Error(t, err)
	})

	t.Run("nil customer", func(t *testing.T) {
		_, err := NewSalesQuotation(tenantID, "QT-2026-0002", uuid.Nil, "Lanka Printers Ltd")
		assert.Error(t, err)
	})

	t.Run("empty customer name", func(t *testing.T) {
		_, err := NewSalesQuotation(tenantID, "QT-2026-0003", customerID, "")
		assert.Error(t, err)
	})
}

func TestQuotation_AddItem(t *testing.T) {
	t.Run("adds item and recalculates", func(t *testing.T) {
		q := createTestQuotation(t)
		addQuotationLine(t, q, "Business cards 350gsm", 1000, 4.5)
		addQuotationLine(t, q, "Lamination", 1000, 0.5)

		assert.Equal(t, 2, q.ItemCount())
		assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(5000)))
		assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		q := createTestQuotation(t)
		_, err := q.AddItem("Flyers A5", decimal.Zero, decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		q := createTestQuotation(t)
		_, err := q.AddItem("Flyers A5", decimal.NewFromInt(100), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("rejected after send", func(t *testing.T) {
		q := createTestQuotation(t)
		addQuotationLine(t, q, "Flyers A5", 500, 12)
		require.NoError(t, q.Send())

		_, err := q.AddItem("Posters A2", decimal.NewFromInt(50), decimal.NewFromInt(150))
		assert.Error(t, err)
	})
}

func TestQuotation_RemoveItem(t *testing.T) {
	q := createTestQuotation(t)
	item := addQuotationLine(t, q, "Letterheads", 2000, 8)
	addQuotationLine(t, q, "Envelopes DL", 2000, 6)

	require.NoError(t, q.RemoveItem(item.ID))
	assert.Equal(t, 1, q.ItemCount())
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(12000)))

	err := q.RemoveItem(uuid.New())
	assert.Error(t, err)
}

func TestQuotation_Totals(t *testing.T) {
	q := createTestQuotation(t)
	addQuotationLine(t, q, "Magazines 32pp", 500, 180)

	require.NoError(t, q.ApplyDiscount(valueobject.NewMoneyUSDFromFloat(5000)))
	require.NoError(t, q.SetTaxRate(decimal.NewFromInt(15)))

	// Subtotal 90000, taxable 85000, tax 12750, total 97750
	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(90000)))
	assert.True(t, q.TaxAmount.Equal(decimal.NewFromInt(12750)))
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(97750)))
}

func TestQuotation_ApplyDiscount(t *testing.T) {
	q := createTestQuotation(t)
	addQuotationLine(t, q, "Stickers", 100, 25)

	t.Run("discount over subtotal rejected", func(t *testing.T) {
		err := q.ApplyDiscount(valueobject.NewMoneyUSDFromFloat(5000))
		assert.Error(t, err)
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		err := q.ApplyDiscount(valueobject.NewMoneyUSDFromFloat(-10))
		assert.Error(t, err)
	})
}

func TestQuotation_Lifecycle(t *testing.T) {
	t.Run("send requires items", func(t *testing.T) {
		q := createTestQuotation(t)
		assert.Error(t, q.Send())
	})

	t.Run("full accept flow", func(t *testing.T) {
		q := createTestQuotation(t)
		addQuotationLine(t, q, "Banners", 10, 900)

		require.NoError(t, q.Send())
		assert.Equal(t, QuotationStatusSent, q.Status)
		assert.NotNil(t, q.SentAt)

		require.NoError(t, q.Accept())
		assert.Equal(t, QuotationStatusAccepted, q.Status)
		assert.NotNil(t, q.DecidedAt)

		// Terminal, no further transitions
		assert.Error(t, q.Reject("too late"))
	})

	t.Run("reject records reason", func(t *testing.T) {
		q := createTestQuotation(t)
		addQuotationLine(t, q, "Banners", 10, 900)
		require.NoError(t, q.Send())

		require.NoError(t, q.Reject("price too high"))
		assert.Equal(t, QuotationStatusRejected, q.Status)
		assert.Equal(t, "price too high", q.Remark)
	})

	t.Run("cannot accept expired quotation", func(t *testing.T) {
		q := createTestQuotation(t)
		addQuotationLine(t, q, "Banners", 10, 900)
		future := time.Now().Add(time.Hour)
		require.NoError(t, q.SetValidUntil(future))
		require.NoError(t, q.Send())

		past := time.Now().Add(-time.Hour)
		q.ValidUntil = &past
		assert.Error(t, q.Accept())
		assert.NoError(t, q.MarkExpired())
		assert.Equal(t, QuotationStatusExpired, q.Status)
	})
}

func TestQuotation_MarkConverted(t *testing.T) {
	q := createTestQuotation(t)
	addQuotationLine(t, q, "Brochures", 1000, 35)
	require.NoError(t, q.Send())

	t.Run("only accepted can convert", func(t *testing.T) {
		assert.Error(t, q.MarkConverted(uuid.New()))
	})

	require.NoError(t, q.Accept())
	orderID := uuid.New()

	t.Run("converts once", func(t *testing.T) {
		require.NoError(t, q.MarkConverted(orderID))
		assert.True(t, q.IsConverted())
		assert.Equal(t, orderID, *q.ConvertedOrderID)

		assert.Error(t, q.MarkConverted(uuid.New()))
	})
}

func TestQuotation_VersionIncrements(t *testing.T) {
	q := createTestQuotation(t)
	initial := q.GetVersion()
	addQuotationLine(t, q, "Calendars", 300, 50)
	assert.Greater(t, q.GetVersion(), initial)
}
