package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusDraft        SalesOrderStatus = "DRAFT"
	SalesOrderStatusConfirmed    SalesOrderStatus = "CONFIRMED"
	SalesOrderStatusInProduction SalesOrderStatus = "IN_PRODUCTION"
	SalesOrderStatusReady        SalesOrderStatus = "READY"
	SalesOrderStatusDelivered    SalesOrderStatus = "DELIVERED"
	SalesOrderStatusCancelled    SalesOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SalesOrderStatus
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusDraft, SalesOrderStatusConfirmed, SalesOrderStatusInProduction,
		SalesOrderStatusReady, SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s SalesOrderStatus) CanTransitionTo(target SalesOrderStatus) bool {
	switch s {
	case SalesOrderStatusDraft:
		return target == SalesOrderStatusConfirmed || target == SalesOrderStatusCancelled
	case SalesOrderStatusConfirmed:
		return target == SalesOrderStatusInProduction || target == SalesOrderStatusCancelled
	case SalesOrderStatusInProduction:
		return target == SalesOrderStatusReady || target == SalesOrderStatusCancelled
	case SalesOrderStatusReady:
		return target == SalesOrderStatusDelivered || target == SalesOrderStatusCancelled
	case SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal reports whether the status is final
func (s SalesOrderStatus) IsTerminal() bool {
	return s == SalesOrderStatusDelivered || s == SalesOrderStatusCancelled
}

// SalesOrderItem represents a confirmed print job line on an order
type SalesOrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Amount         decimal.Decimal
	CostingSheetID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSalesOrderItem creates a new order line item
func NewSalesOrderItem(orderID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
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
	return &SalesOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SalesOrder is the aggregate root for confirmed customer print jobs.
// Orders move through the production pipeline and end delivered or cancelled.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber      string
	QuotationID      *uuid.UUID // Source quotation, if converted
	CustomerID       uuid.UUID
	CustomerName     string
	Items            []SalesOrderItem
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal
	GrandTotal       decimal.Decimal
	AdvancePaid      decimal.Decimal
	DeliveryDate     *time.Time
	Status           SalesOrderStatus
	Remark           string
	ConfirmedAt      *time.Time
	DeliveredAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
	InvoiceID        *uuid.UUID // Set once the order is invoiced
}

// NewSalesOrder creates a new sales order in draft status
func NewSalesOrder(tenantID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	order := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]SalesOrderItem, 0),
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TaxRate:             decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		AdvancePaid:         decimal.Zero,
		Status:              SalesOrderStatusDraft,
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))

	return order, nil
}

// NewSalesOrderFromQuotation creates an order carrying over the quotation's
// lines, discount and tax. The order starts in draft like any other.
func NewSalesOrderFromQuotation(orderNumber string, quotation *SalesQuotation) (*SalesOrder, error) {
	if quotation.Status != QuotationStatusAccepted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only accepted quotations can be converted to orders")
	}
	if quotation.IsConverted() {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Quotation has already been converted to an order")
	}

	order, err := NewSalesOrder(quotation.TenantID, orderNumber, quotation.CustomerID, quotation.CustomerName)
	if err != nil {
		return nil, err
	}

	order.QuotationID = &quotation.ID
	for _, src := range quotation.Items {
		item, err := NewSalesOrderItem(order.ID, src.Description, src.Quantity, src.UnitPrice)
		if err != nil {
			return nil, err
		}
		item.CostingSheetID = src.CostingSheetID
		order.Items = append(order.Items, *item)
	}
	order.DiscountAmount = quotation.DiscountAmount
	order.TaxRate = quotation.TaxRate
	order.recalculateTotals()

	return order, nil
}

// AddItem adds a line to the order. Only allowed in DRAFT status.
func (o *SalesOrder) AddItem(description string, quantity, unitPrice decimal.Decimal) (*SalesOrderItem, error) {
	if o.Status != SalesOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewSalesOrderItem(o.ID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.Touch()

	return item, nil
}

// RemoveItem removes a line from the order. Only allowed in DRAFT status.
func (o *SalesOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != SalesOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// ApplyDiscount applies a document-level discount. Only allowed in DRAFT status.
func (o *SalesOrder) ApplyDiscount(discount valueobject.Money) error {
	if o.Status != SalesOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-draft order")
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
func (o *SalesOrder) SetTaxRate(rate decimal.Decimal) error {
	if o.Status != SalesOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax on a non-draft order")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	o.TaxRate = rate
	o.recalculateTotals()
	o.Touch()

	return nil
}

// SetDeliveryDate sets the promised delivery date
func (o *SalesOrder) SetDeliveryDate(deliveryDate time.Time) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change delivery date of a closed order")
	}

	o.DeliveryDate = &deliveryDate
	o.Touch()

	return nil
}

// SetRemark sets the order remark
func (o *SalesOrder) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
}

// RecordAdvance records an advance payment taken at confirmation time
func (o *SalesOrder) RecordAdvance(amount valueobject.Money) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot record advance on a closed order")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Advance amount must be positive")
	}
	if o.AdvancePaid.Add(amount.Amount()).GreaterThan(o.GrandTotal) {
		return shared.NewDomainError("ADVANCE_EXCEEDS_TOTAL", "Advance cannot exceed the order total")
	}

	o.AdvancePaid = o.AdvancePaid.Add(amount.Amount())
	o.Touch()

	o.AddDomainEvent(NewSalesOrderAdvanceRecordedEvent(o, amount.Amount()))

	return nil
}

// Confirm locks the order lines and moves the order into the production queue
func (o *SalesOrder) Confirm() error {
	if !o.Status.CanTransitionTo(SalesOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm an order without items")
	}

	now := time.Now()
	previous := o.Status
	o.Status = SalesOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.Touch()

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, previous))

	return nil
}

// StartProduction moves the order onto the shop floor
func (o *SalesOrder) StartProduction() error {
	return o.advance(SalesOrderStatusInProduction)
}

// MarkReady marks the job as finished and awaiting collection or delivery
func (o *SalesOrder) MarkReady() error {
	return o.advance(SalesOrderStatusReady)
}

// MarkDelivered closes the order as delivered
func (o *SalesOrder) MarkDelivered() error {
	if err := o.advance(SalesOrderStatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	return nil
}

// Cancel cancels the order with a reason. Allowed from any non-terminal status.
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(SalesOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason cannot be empty")
	}
	if o.InvoiceID != nil {
		return shared.NewDomainError("ORDER_INVOICED", "Cannot cancel an invoiced order")
	}

	now := time.Now()
	previous := o.Status
	o.Status = SalesOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()

	o.AddDomainEvent(NewSalesOrderCancelledEvent(o, previous, reason))

	return nil
}

// MarkInvoiced records the invoice generated from this order.
// Orders can be invoiced once they are READY or DELIVERED.
func (o *SalesOrder) MarkInvoiced(invoiceID uuid.UUID) error {
	if o.Status != SalesOrderStatusReady && o.Status != SalesOrderStatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Only ready or delivered orders can be invoiced")
	}
	if o.InvoiceID != nil {
		return shared.NewDomainError("ALREADY_INVOICED", "Order has already been invoiced")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	o.InvoiceID = &invoiceID
	o.Touch()

	return nil
}

// IsInvoiced reports whether the order already produced an invoice
func (o *SalesOrder) IsInvoiced() bool {
	return o.InvoiceID != nil
}

// IsOverdue reports whether the promised delivery date has passed
// while the order is still open
func (o *SalesOrder) IsOverdue() bool {
	return o.DeliveryDate != nil && o.DeliveryDate.Before(time.Now()) && !o.Status.IsTerminal()
}

// BalanceDue returns the remaining amount after advances
func (o *SalesOrder) BalanceDue() decimal.Decimal {
	return o.GrandTotal.Sub(o.AdvancePaid)
}

func (o *SalesOrder) advance(target SalesOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}

	previous := o.Status
	o.Status = target
	o.Touch()

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, previous))

	return nil
}

func (o *SalesOrder) recalculateTotals() {
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

// GetItem returns a line by its ID
func (o *SalesOrder) GetItem(itemID uuid.UUID) *SalesOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}
