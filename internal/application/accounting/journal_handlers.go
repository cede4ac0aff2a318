package accounting

import (
	"context"
	"fmt"

	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Account codes used by the automatic journal drafts. Kept to a small
// fixed chart; a configurable chart of accounts is a later concern.
const (
	accountReceivable = "1100"
	accountInventory  = "1200"
	accountPayable    = "2100"
	accountTaxPayable = "2200"
	accountSales      = "4100"
	accountPurchases  = "5100"
)

// SalesJournalHandler drafts the sales journal entry when an invoice is
// issued: debit receivable, credit sales and tax payable. The draft is
// left for the bookkeeper to post.
type SalesJournalHandler struct {
	entryRepo accounting.JournalEntryRepository
	logger    *zap.Logger
}

// NewSalesJournalHandler creates a new SalesJournalHandler
func NewSalesJournalHandler(entryRepo accounting.JournalEntryRepository, logger *zap.Logger) *SalesJournalHandler {
	return &SalesJournalHandler{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SalesJournalHandler) EventTypes() []string {
	return []string{sales.EventTypeInvoiceIssued}
}

// Handle drafts the journal entry for an issued invoice
func (h *SalesJournalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	issued, ok := event.(*sales.InvoiceIssuedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	number, err := h.entryRepo.GenerateNumber(ctx, event.TenantID())
	if err != nil {
		return err
	}
	entry, err := accounting.NewJournalEntry(event.TenantID(), number, issued.OccurredAt(),
		fmt.Sprintf("Sales invoice %s - %s", issued.InvoiceNumber, issued.CustomerName))
	if err != nil {
		return err
	}
	if err := entry.SetReference(issued.InvoiceNumber); err != nil {
		return err
	}

	net := issued.GrandTotal.Sub(issued.TaxAmount)
	if err := entry.AddDebit(accountReceivable, "Accounts Receivable", issued.GrandTotal); err != nil {
		return err
	}
	if err := entry.AddCredit(accountSales, "Sales Revenue", net); err != nil {
		return err
	}
	if issued.TaxAmount.IsPositive() {
		if err := entry.AddCredit(accountTaxPayable, "Tax Payable", issued.TaxAmount); err != nil {
			return err
		}
	}

	if err := h.entryRepo.SaveWithLockAndEvents(ctx, entry, nil); err != nil {
		return err
	}

	h.logger.Debug("sales journal drafted",
		zap.String("entry_number", entry.EntryNumber),
		zap.String("invoice_number", issued.InvoiceNumber),
	)
	return nil
}

var _ shared.EventHandler = (*SalesJournalHandler)(nil)

// PurchaseJournalHandler drafts the purchase journal entry when a
// supplier bill is approved: debit inventory/purchases, credit payable.
type PurchaseJournalHandler struct {
	entryRepo accounting.JournalEntryRepository
	logger    *zap.Logger
}

// NewPurchaseJournalHandler creates a new PurchaseJournalHandler
func NewPurchaseJournalHandler(entryRepo accounting.JournalEntryRepository, logger *zap.Logger) *PurchaseJournalHandler {
	return &PurchaseJournalHandler{
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PurchaseJournalHandler) EventTypes() []string {
	return []string{purchasing.EventTypeSupplierBillApproved}
}

// Handle drafts the journal entry for an approved supplier bill
func (h *PurchaseJournalHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approved, ok := event.(*purchasing.SupplierBillApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	number, err := h.entryRepo.GenerateNumber(ctx, event.TenantID())
	if err != nil {
		return err
	}
	entry, err := accounting.NewJournalEntry(event.TenantID(), number, approved.OccurredAt(),
		fmt.Sprintf("Supplier bill %s - %s", approved.BillNumber, approved.SupplierName))
	if err != nil {
		return err
	}
	if err := entry.SetReference(approved.BillNumber); err != nil {
		return err
	}

	// Stocked lines go to inventory, the rest to purchases expense.
	stocked := decimal.Zero
	for _, line := range approved.StockedItems {
		stocked = stocked.Add(line.Quantity.Mul(line.UnitPrice))
	}
	expensed := approved.Subtotal.Sub(stocked)

	if stocked.IsPositive() {
		if err := entry.AddDebit(accountInventory, "Inventory", stocked); err != nil {
			return err
		}
	}
	if expensed.IsPositive() {
		if err := entry.AddDebit(accountPurchases, "Purchases", expensed); err != nil {
			return err
		}
	}
	if approved.TaxAmount.IsPositive() {
		if err := entry.AddDebit(accountTaxPayable, "Tax Receivable", approved.TaxAmount); err != nil {
			return err
		}
	}
	if err := entry.AddCredit(accountPayable, "Accounts Payable", approved.GrandTotal); err != nil {
		return err
	}

	if err := h.entryRepo.SaveWithLockAndEvents(ctx, entry, nil); err != nil {
		return err
	}

	h.logger.Debug("purchase journal drafted",
		zap.String("entry_number", entry.EntryNumber),
		zap.String("bill_number", approved.BillNumber),
	)
	return nil
}

var _ shared.EventHandler = (*PurchaseJournalHandler)(nil)
