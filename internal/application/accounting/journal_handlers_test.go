package accounting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
)

func TestSalesJournalHandler(t *testing.T) {
	tenantID := uuid.New()

	t.Run("drafts receivable against sales and tax", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		handler := NewSalesJournalHandler(entryRepo, zap.NewNop())

		var drafted *accounting.JournalEntry
		entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00050", nil)
		entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry"), mock.Anything).
			Run(func(args mock.Arguments) {
				drafted = args.Get(1).(*accounting.JournalEntry)
			}).Return(nil)

		event := &sales.InvoiceIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoiceIssued, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			InvoiceNumber:   "INV-2026-00033",
			CustomerName:    "Acme Press",
			Subtotal:        decimal.NewFromFloat(100.00),
			TaxAmount:       decimal.NewFromFloat(8.00),
			GrandTotal:      decimal.NewFromFloat(108.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.NotNil(t, drafted)
		assert.Equal(t, "INV-2026-00033", drafted.Reference)
		assert.Len(t, drafted.Lines, 3)
		assert.True(t, drafted.IsBalanced())
		assert.True(t, drafted.TotalDebits().Equal(decimal.NewFromFloat(108.00)))
		assert.Equal(t, accounting.JournalEntryStatusDraft, drafted.Status)
	})

	t.Run("omits tax leg when no tax charged", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		handler := NewSalesJournalHandler(entryRepo, zap.NewNop())

		var drafted *accounting.JournalEntry
		entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00051", nil)
		entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				drafted = args.Get(1).(*accounting.JournalEntry)
			}).Return(nil)

		event := &sales.InvoiceIssuedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoiceIssued, sales.AggregateTypeInvoice, uuid.New(), tenantID),
			InvoiceNumber:   "INV-2026-00034",
			CustomerName:    "Acme Press",
			Subtotal:        decimal.NewFromFloat(50.00),
			TaxAmount:       decimal.Zero,
			GrandTotal:      decimal.NewFromFloat(50.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.Len(t, drafted.Lines, 2)
		assert.True(t, drafted.IsBalanced())
	})

	t.Run("rejects foreign event types", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		handler := NewSalesJournalHandler(entryRepo, zap.NewNop())

		event := &sales.InvoicePaymentRecordedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(sales.EventTypeInvoicePaymentRecorded, sales.AggregateTypeInvoice, uuid.New(), tenantID),
		}

		assert.Error(t, handler.Handle(context.Background(), event))
	})
}

func TestPurchaseJournalHandler(t *testing.T) {
	tenantID := uuid.New()

	t.Run("splits stocked lines into inventory", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		handler := NewPurchaseJournalHandler(entryRepo, zap.NewNop())

		var drafted *accounting.JournalEntry
		entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00052", nil)
		entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				drafted = args.Get(1).(*accounting.JournalEntry)
			}).Return(nil)

		itemID := uuid.New()
		event := &purchasing.SupplierBillApprovedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(purchasing.EventTypeSupplierBillApproved, purchasing.AggregateTypeSupplierBill, uuid.New(), tenantID),
			BillNumber:      "BILL-2026-00009",
			SupplierName:    "Mill Street Paper",
			Subtotal:        decimal.NewFromFloat(300.00),
			TaxAmount:       decimal.NewFromFloat(24.00),
			GrandTotal:      decimal.NewFromFloat(324.00),
			StockedItems: []purchasing.StockedLine{
				{InventoryItemID: itemID, Quantity: decimal.NewFromInt(50), UnitPrice: decimal.NewFromFloat(4.20)},
			},
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.NotNil(t, drafted)
		assert.True(t, drafted.IsBalanced())
		assert.Equal(t, "BILL-2026-00009", drafted.Reference)

		var inventory, purchases decimal.Decimal
		for _, line := range drafted.Lines {
			switch line.AccountCode {
			case "1200":
				inventory = line.Debit
			case "5100":
				purchases = line.Debit
			}
		}
		assert.True(t, inventory.Equal(decimal.NewFromFloat(210.00)))
		assert.True(t, purchases.Equal(decimal.NewFromFloat(90.00)))
	})

	t.Run("expenses everything when nothing is stocked", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		handler := NewPurchaseJournalHandler(entryRepo, zap.NewNop())

		var drafted *accounting.JournalEntry
		entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00053", nil)
		entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				drafted = args.Get(1).(*accounting.JournalEntry)
			}).Return(nil)

		event := &purchasing.SupplierBillApprovedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(purchasing.EventTypeSupplierBillApproved, purchasing.AggregateTypeSupplierBill, uuid.New(), tenantID),
			BillNumber:      "BILL-2026-00010",
			SupplierName:    "Plate Works",
			Subtotal:        decimal.NewFromFloat(80.00),
			TaxAmount:       decimal.Zero,
			GrandTotal:      decimal.NewFromFloat(80.00),
		}

		err := handler.Handle(context.Background(), event)

		assert.NoError(t, err)
		assert.Len(t, drafted.Lines, 2)
		assert.True(t, drafted.IsBalanced())
	})
}
