package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
)

func TestEventSerializer(t *testing.T) {
	t.Run("round-trips a registered event", func(t *testing.T) {
		serializer := NewEventSerializer()
		serializer.Register(sales.EventTypeInvoiceIssued, &sales.InvoiceIssuedEvent{})

		tenantID := uuid.New()
		original := &sales.InvoiceIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoiceIssued, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			InvoiceID:       uuid.New(),
			InvoiceNumber:   "INV-2026-00033",
			CustomerID:      uuid.New(),
			CustomerName:    "Acme Press",
			Subtotal:        decimal.NewFromFloat(100.00),
			TaxAmount:       decimal.NewFromFloat(8.00),
			GrandTotal:      decimal.NewFromFloat(108.00),
			DueDate:         time.Now().AddDate(0, 0, 14).Truncate(time.Second),
		}

		data, err := serializer.Serialize(original)
		assert.NoError(t, err)

		restored, err := serializer.Deserialize(sales.EventTypeInvoiceIssued, data)
		assert.NoError(t, err)

		issued, ok := restored.(*sales.InvoiceIssuedEvent)
		assert.True(t, ok)
		assert.Equal(t, original.EventID(), issued.EventID())
		assert.Equal(t, original.InvoiceNumber, issued.InvoiceNumber)
		assert.Equal(t, tenantID, issued.TenantID())
		assert.True(t, original.GrandTotal.Equal(issued.GrandTotal))
	})

	t.Run("deserializing an unregistered type fails", func(t *testing.T) {
		serializer := NewEventSerializer()

		_, err := serializer.Deserialize("UnknownEvent", []byte(`{}`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown event type")
	})

	t.Run("malformed JSON fails", func(t *testing.T) {
		serializer := NewEventSerializer()
		serializer.Register(sales.EventTypeInvoiceIssued, &sales.InvoiceIssuedEvent{})

		_, err := serializer.Deserialize(sales.EventTypeInvoiceIssued, []byte(`{not json`))

		assert.Error(t, err)
	})

	t.Run("IsRegistered reflects the registry", func(t *testing.T) {
		serializer := NewEventSerializer()
		assert.False(t, serializer.IsRegistered(sales.EventTypeInvoiceIssued))

		serializer.Register(sales.EventTypeInvoiceIssued, &sales.InvoiceIssuedEvent{})

		assert.True(t, serializer.IsRegistered(sales.EventTypeInvoiceIssued))
	})
}

func TestRegisterAllEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	// Spot-check representative types from each bounded context
	for _, eventType := range []string{
		"QuotationCreated",
		"SalesOrderStatusChanged",
		"InvoiceIssued",
		"SupplierBillApproved",
		"BillScanExtracted",
		"InventoryLowStock",
		"JournalEntryPosted",
	} {
		assert.True(t, serializer.IsRegistered(eventType), eventType)
	}
}
