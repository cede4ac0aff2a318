package event

import (
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/costing"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/inventory"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Sales domain - Quotation events
	serializer.Register(sales.EventTypeQuotationCreated, &sales.QuotationCreatedEvent{})
	serializer.Register(sales.EventTypeQuotationSent, &sales.QuotationSentEvent{})
	serializer.Register(sales.EventTypeQuotationAccepted, &sales.QuotationAcceptedEvent{})
	serializer.Register(sales.EventTypeQuotationRejected, &sales.QuotationRejectedEvent{})
	serializer.Register(sales.EventTypeQuotationConverted, &sales.QuotationConvertedEvent{})

	// Sales domain - Order events
	serializer.Register(sales.EventTypeSalesOrderCreated, &sales.SalesOrderCreatedEvent{})
	serializer.Register(sales.EventTypeSalesOrderStatusChanged, &sales.SalesOrderStatusChangedEvent{})
	serializer.Register(sales.EventTypeSalesOrderCancelled, &sales.SalesOrderCancelledEvent{})
	serializer.Register(sales.EventTypeSalesOrderAdvanceRecorded, &sales.SalesOrderAdvanceRecordedEvent{})

	// Sales domain - Invoice events
	serializer.Register(sales.EventTypeInvoiceIssued, &sales.InvoiceIssuedEvent{})
	serializer.Register(sales.EventTypeInvoicePaymentRecorded, &sales.InvoicePaymentRecordedEvent{})
	serializer.Register(sales.EventTypeInvoicePaid, &sales.InvoicePaidEvent{})
	serializer.Register(sales.EventTypeInvoiceVoided, &sales.InvoiceVoidedEvent{})

	// Purchasing domain - Purchase Order events
	serializer.Register(purchasing.EventTypePurchaseOrderCreated, &purchasing.PurchaseOrderCreatedEvent{})
	serializer.Register(purchasing.EventTypePurchaseOrderSent, &purchasing.PurchaseOrderSentEvent{})
	serializer.Register(purchasing.EventTypePurchaseOrderItemReceived, &purchasing.PurchaseOrderItemReceivedEvent{})
	serializer.Register(purchasing.EventTypePurchaseOrderCancelled, &purchasing.PurchaseOrderCancelledEvent{})

	// Purchasing domain - Supplier Bill events
	serializer.Register(purchasing.EventTypeSupplierBillApproved, &purchasing.SupplierBillApprovedEvent{})
	serializer.Register(purchasing.EventTypeSupplierBillPaymentRecorded, &purchasing.SupplierBillPaymentRecordedEvent{})
	serializer.Register(purchasing.EventTypeSupplierBillDisputed, &purchasing.SupplierBillDisputedEvent{})

	// Purchasing domain - Bill Scan events
	serializer.Register(purchasing.EventTypeBillScanUploaded, &purchasing.BillScanUploadedEvent{})
	serializer.Register(purchasing.EventTypeBillScanExtracted, &purchasing.BillScanExtractedEvent{})
	serializer.Register(purchasing.EventTypeBillScanConverted, &purchasing.BillScanConvertedEvent{})

	// Inventory domain events
	serializer.Register(inventory.EventTypeItemCreated, &inventory.ItemCreatedEvent{})
	serializer.Register(inventory.EventTypeLowStock, &inventory.LowStockEvent{})

	// Accounting domain events
	serializer.Register(accounting.EventTypeJournalEntryPosted, &accounting.JournalEntryPostedEvent{})

	// Costing domain events
	serializer.Register(costing.EventTypeSheetFinalized, &costing.SheetFinalizedEvent{})

	// Document domain - Reminder events
	serializer.Register(document.EventTypeReminderDue, &document.ReminderDueEvent{})
	serializer.Register(document.EventTypeReminderConflictDetected, &document.ReminderConflictDetectedEvent{})
	serializer.Register(document.EventTypeReminderConflictResolved, &document.ReminderConflictResolvedEvent{})

	// Partner domain - Customer events
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerUpdated, &partner.CustomerUpdatedEvent{})
	serializer.Register(partner.EventTypeCustomerStatusChanged, &partner.CustomerStatusChangedEvent{})
	serializer.Register(partner.EventTypeCustomerBalanceChanged, &partner.CustomerBalanceChangedEvent{})

	// Partner domain - Supplier events
	serializer.Register(partner.EventTypeSupplierCreated, &partner.SupplierCreatedEvent{})
	serializer.Register(partner.EventTypeSupplierUpdated, &partner.SupplierUpdatedEvent{})
	serializer.Register(partner.EventTypeSupplierStatusChanged, &partner.SupplierStatusChangedEvent{})
	serializer.Register(partner.EventTypeSupplierBalanceChanged, &partner.SupplierBalanceChangedEvent{})
}
