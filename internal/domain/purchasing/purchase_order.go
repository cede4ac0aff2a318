package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusSent              PurchaseOrderStatus = "SENT"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusSent, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusSent || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusSent:
		return target == PurchaseOrderStatusPartiallyReceived || target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartiallyReceived:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PurchaseOrderItem represents an ordered line with receiving progress
type PurchaseOrderItem struct {
	ID               uuid.UUID
	PurchaseOrderID  uuid.UUID
	Description      string
	InventoryItemID  *uuid.UUID // Stocked material, if the line maps to inventory
	Quantity         decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitPrice        decimal.Decimal
	Amount           decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsFullyReceived reports whether the line has no outstanding quantity
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QuantityReceived.GreaterThanOrEqual(i.Quantity)
}

// Outstanding returns the quantity still to be received
func (i *PurchaseOrderItem) Outstanding() decimal.Decimal {
	out := i.Quantity.Sub(i.QuantityReceived)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// PurchaseOrder is the aggregate root for orders placed on suppliers
// for paper, ink, plates and outsourced work.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber    string
	SupplierID     uuid.UUID
	SupplierName   string
	Items          []PurchaseOrderItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	ExpectedDate   *time.Time
	Status         PurchaseOrderStatus
	Remark         string
	SentAt         *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Items:               make([]PurchaseOrderItem, 0),
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TaxRate:             decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		Status:              PurchaseOrderStatusDraft,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a line to the order. Only allowed in DRAFT status.
func (o *PurchaseOrder) AddItem(description string, inventoryItemID *uuid.UUID, quantity, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft purchase order")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	item := PurchaseOrderItem{
		ID:               uuid.New(),
		PurchaseOrderID:  o.ID,
		Description:      description,
		InventoryItemID:  inventoryItemID,
		Quantity:         quantity,
		QuantityReceived: decimal.Zero,
		UnitPrice:        unitPrice,
		Amount:           quantity.Mul(unitPrice),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.Touch()

	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem removes a line from the order. Only allowed in DRAFT status.
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft purchase order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Purchase order item not found")
}

// ApplyDiscount applies a document-level discount. Only allowed in DRAFT status.
func (o *PurchaseOrder) ApplyDiscount(discount valueobject.Money) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-draft purchase order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.Amount().GreaterThan(o.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	o.DiscountAmount = discount.Amount()
	o.recalculateTotals()
	o.Touch()

	return nil
}

// SetTaxRate sets the tax percentage applied after discount. Only allowed in DRAFT status.
func (o *PurchaseOrder) SetTaxRate(rate decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax on a non-draft purchase order")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	o.TaxRate = rate
	o.recalculateTotals()
	o.Touch()

	return nil
}

// SetExpectedDate sets the expected delivery date from the supplier
func (o *PurchaseOrder) SetExpectedDate(expected time.Time) error {
	if o.Status == PurchaseOrderStatusReceived || o.Status == PurchaseOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot change expected date of a closed purchase order")
	}

	o.ExpectedDate = &expected
	o.Touch()

	return nil
}

// SetRemark sets the order remark
func (o *PurchaseOrder) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
}

// Send marks the order as sent to the supplier
func (o *PurchaseOrder) Send() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send purchase order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send a purchase order without items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusSent
	o.SentAt = &now
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderSentEvent(o))

	return nil
}

// ReceiveItem records goods received against one line.
// The order moves to PARTIALLY_RECEIVED or RECEIVED as line progress dictates.
func (o *PurchaseOrder) ReceiveItem(itemID uuid.UUID, quantity decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusSent && o.Status != PurchaseOrderStatusPartiallyReceived {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive against a purchase order in %s status", o.Status))
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	var line *PurchaseOrderItem
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			line = &o.Items[idx]
			break
		}
	}
	if line == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Purchase order item not found")
	}
	if quantity.GreaterThan(line.Outstanding()) {
		return shared.NewDomainError("OVER_RECEIPT", "Received quantity exceeds the outstanding amount")
	}

	line.QuantityReceived = line.QuantityReceived.Add(quantity)
	line.UpdatedAt = time.Now()

	previous := o.Status
	if o.isFullyReceived() {
		now := time.Now()
		o.Status = PurchaseOrderStatusReceived
		o.ReceivedAt = &now
	} else {
		o.Status = PurchaseOrderStatusPartiallyReceived
	}
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderItemReceivedEvent(o, line, quantity, previous))

	return nil
}

// Cancel cancels the order with a reason. Allowed until fully received.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel purchase order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot be empty")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))

	return nil
}

// IsOverdue reports whether expected delivery has passed while the order is open
func (o *PurchaseOrder) IsOverdue() bool {
	if o.Status == PurchaseOrderStatusReceived || o.Status == PurchaseOrderStatusCancelled {
		return false
	}
	return o.ExpectedDate != nil && o.ExpectedDate.Before(time.Now())
}

// GetItem returns a line by its ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

func (o *PurchaseOrder) isFullyReceived() bool {
	for idx := range o.Items {
		if !o.Items[idx].IsFullyReceived() {
			return false
		}
	}
	return len(o.Items) > 0
}

func (o *PurchaseOrder) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	o.Subtotal = subtotal

	if o.DiscountAmount.GreaterThan(o.Subtotal) {
		o.DiscountAmount = o.Subtotal
	}
	taxable := o.Subtotal.Sub(o.DiscountAmount)
	o.TaxAmount = taxable.Mul(o.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	o.GrandTotal = taxable.Add(o.TaxAmount)
}
