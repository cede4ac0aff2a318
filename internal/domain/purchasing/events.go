package purchasing

import (
	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeSupplierBill  = "SupplierBill"
	AggregateTypeBillScan      = "BillScan"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated      = "PurchaseOrderCreated"
	EventTypePurchaseOrderSent         = "PurchaseOrderSent"
	EventTypePurchaseOrderItemReceived = "PurchaseOrderItemReceived"
	EventTypePurchaseOrderCancelled    = "PurchaseOrderCancelled"

	EventTypeSupplierBillApproved        = "SupplierBillApproved"
	EventTypeSupplierBillPaymentRecorded = "SupplierBillPaymentRecorded"
	EventTypeSupplierBillDisputed        = "SupplierBillDisputed"

	EventTypeBillScanUploaded  = "BillScanUploaded"
	EventTypeBillScanExtracted = "BillScanExtracted"
	EventTypeBillScanConverted = "BillScanConverted"
)

// PurchaseOrderCreatedEvent is published when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		SupplierID:      o.SupplierID,
		SupplierName:    o.SupplierName,
	}
}

// PurchaseOrderSentEvent is published when an order is sent to the supplier
type PurchaseOrderSentEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// NewPurchaseOrderSentEvent creates a new PurchaseOrderSentEvent
func NewPurchaseOrderSentEvent(o *PurchaseOrder) *PurchaseOrderSentEvent {
	return &PurchaseOrderSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSent, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		SupplierID:      o.SupplierID,
		GrandTotal:      o.GrandTotal,
	}
}

// PurchaseOrderItemReceivedEvent is published when goods arrive against a line
type PurchaseOrderItemReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID           `json:"order_id"`
	OrderNumber     string              `json:"order_number"`
	ItemID          uuid.UUID           `json:"item_id"`
	InventoryItemID *uuid.UUID          `json:"inventory_item_id,omitempty"`
	Quantity        decimal.Decimal     `json:"quantity"`
	OldStatus       PurchaseOrderStatus `json:"old_status"`
	NewStatus       PurchaseOrderStatus `json:"new_status"`
}

// NewPurchaseOrderItemReceivedEvent creates a new PurchaseOrderItemReceivedEvent
func NewPurchaseOrderItemReceivedEvent(o *PurchaseOrder, item *PurchaseOrderItem, quantity decimal.Decimal, oldStatus PurchaseOrderStatus) *PurchaseOrderItemReceivedEvent {
	return &PurchaseOrderItemReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderItemReceived, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		ItemID:          item.ID,
		InventoryItemID: item.InventoryItemID,
		Quantity:        quantity,
		OldStatus:       oldStatus,
		NewStatus:       o.Status,
	}
}

// PurchaseOrderCancelledEvent is published when a purchase order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}

// SupplierBillApprovedEvent is published when a bill enters accounts payable.
// Accounting drafts the purchase journal entry and inventory receives
// stocked lines off this event.
type SupplierBillApprovedEvent struct {
	shared.BaseDomainEvent
	BillID       uuid.UUID       `json:"bill_id"`
	BillNumber   string          `json:"bill_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	StockedItems []StockedLine   `json:"stocked_items,omitempty"`
}

// StockedLine carries inventory-relevant line data on the approved event
type StockedLine struct {
	InventoryItemID uuid.UUID       `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// NewSupplierBillApprovedEvent creates a new SupplierBillApprovedEvent
func NewSupplierBillApprovedEvent(b *SupplierBill) *SupplierBillApprovedEvent {
	stocked := make([]StockedLine, 0)
	for _, item := range b.StockedItems() {
		stocked = append(stocked, StockedLine{
			InventoryItemID: *item.InventoryItemID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
		})
	}
	return &SupplierBillApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierBillApproved, AggregateTypeSupplierBill, b.ID, b.TenantID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		SupplierID:      b.SupplierID,
		SupplierName:    b.SupplierName,
		Subtotal:        b.Subtotal,
		TaxAmount:       b.TaxAmount,
		GrandTotal:      b.GrandTotal,
		StockedItems:    stocked,
	}
}

// SupplierBillPaymentRecordedEvent is published for every payment applied
type SupplierBillPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	BillNumber string          `json:"bill_number"`
	SupplierID uuid.UUID       `json:"supplier_id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	AmountDue  decimal.Decimal `json:"amount_due"`
}

// NewSupplierBillPaymentRecordedEvent creates a new SupplierBillPaymentRecordedEvent
func NewSupplierBillPaymentRecordedEvent(b *SupplierBill, payment *SupplierBillPayment) *SupplierBillPaymentRecordedEvent {
	return &SupplierBillPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierBillPaymentRecorded, AggregateTypeSupplierBill, b.ID, b.TenantID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		SupplierID:      b.SupplierID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountDue:       b.AmountDue(),
	}
}

// SupplierBillDisputedEvent is published when a bill is disputed
type SupplierBillDisputedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID `json:"bill_id"`
	BillNumber string    `json:"bill_number"`
	SupplierID uuid.UUID `json:"supplier_id"`
	Reason     string    `json:"reason"`
}

// NewSupplierBillDisputedEvent creates a new SupplierBillDisputedEvent
func NewSupplierBillDisputedEvent(b *SupplierBill, reason string) *SupplierBillDisputedEvent {
	return &SupplierBillDisputedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierBillDisputed, AggregateTypeSupplierBill, b.ID, b.TenantID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		SupplierID:      b.SupplierID,
		Reason:          reason,
	}
}

// BillScanUploadedEvent is published when a scan lands in the pipeline.
// The extraction worker picks scans up off this event.
type BillScanUploadedEvent struct {
	shared.BaseDomainEvent
	ScanID      uuid.UUID `json:"scan_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
}

// NewBillScanUploadedEvent creates a new BillScanUploadedEvent
func NewBillScanUploadedEvent(s *BillScan) *BillScanUploadedEvent {
	return &BillScanUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillScanUploaded, AggregateTypeBillScan, s.ID, s.TenantID),
		ScanID:          s.ID,
		FileName:        s.FileName,
		ContentType:     s.ContentType,
		StorageKey:      s.StorageKey,
	}
}

// BillScanExtractedEvent is published when extraction succeeds
type BillScanExtractedEvent struct {
	shared.BaseDomainEvent
	ScanID       uuid.UUID        `json:"scan_id"`
	FileName     string           `json:"file_name"`
	Engine       ExtractionEngine `json:"engine"`
	Confidence   float64          `json:"confidence"`
	SupplierName string           `json:"supplier_name"`
}

// NewBillScanExtractedEvent creates a new BillScanExtractedEvent
func NewBillScanExtractedEvent(s *BillScan) *BillScanExtractedEvent {
	evt := &BillScanExtractedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillScanExtracted, AggregateTypeBillScan, s.ID, s.TenantID),
		ScanID:          s.ID,
		FileName:        s.FileName,
	}
	if s.Extraction != nil {
		evt.Engine = s.Extraction.Engine
		evt.Confidence = s.Extraction.Confidence
		evt.SupplierName = s.Extraction.SupplierName
	}
	return evt
}

// BillScanConvertedEvent is published when a scan becomes a supplier bill
type BillScanConvertedEvent struct {
	shared.BaseDomainEvent
	ScanID uuid.UUID `json:"scan_id"`
	BillID uuid.UUID `json:"bill_id"`
}

// NewBillScanConvertedEvent creates a new BillScanConvertedEvent
func NewBillScanConvertedEvent(s *BillScan, billID uuid.UUID) *BillScanConvertedEvent {
	return &BillScanConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillScanConverted, AggregateTypeBillScan, s.ID, s.TenantID),
		ScanID:          s.ID,
		BillID:          billID,
	}
}
