package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents the status of a sales quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "DRAFT"
	QuotationStatusSent     QuotationStatus = "SENT"
	QuotationStatusAccepted QuotationStatus = "ACCEPTED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
	QuotationStatusExpired  QuotationStatus = "EXPIRED"
)

// IsValid checks if the status is a valid QuotationStatus
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted,
		QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	switch s {
	case QuotationStatusDraft:
		return target == QuotationStatusSent
	case QuotationStatusSent:
		return target == QuotationStatusAccepted || target == QuotationStatusRejected || target == QuotationStatusExpired
	case QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired:
		return false // Terminal states
	}
	return false
}

// QuotationItem represents a quoted line (a print job or part of one)
type QuotationItem struct {
	ID             uuid.UUID
	QuotationID    uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Amount         decimal.Decimal // Quantity * UnitPrice
	CostingSheetID *uuid.UUID      // Costing sheet this price was derived from, if any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewQuotationItem creates a new quotation line item
func NewQuotationItem(quotationID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*QuotationItem, error) {
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
	return &QuotationItem{
		ID:          uuid.New(),
		QuotationID: quotationID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// LinkCostingSheet records the costing sheet this line price came from
func (i *QuotationItem) LinkCostingSheet(sheetID uuid.UUID) {
	i.CostingSheetID = &sheetID
	i.UpdatedAt = time.Now()
}

// SalesQuotation is the aggregate root for customer quotations.
// It is the first document in the quotation -> order -> invoice chain.
type SalesQuotation struct {
	shared.TenantAggregateRoot
	QuotationNumber  string
	CustomerID       uuid.UUID
	CustomerName     string
	Items            []QuotationItem
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxRate          decimal.Decimal // Percentage, e.g. 15 for 15%
	TaxAmount        decimal.Decimal
	GrandTotal       decimal.Decimal // Subtotal - Discount + Tax
	ValidUntil       *time.Time
	Status           QuotationStatus
	Remark           string
	SentAt           *time.Time
	DecidedAt        *time.Time // Accepted/rejected/expired timestamp
	ConvertedOrderID *uuid.UUID // Set once the quotation becomes an order
}

// NewSalesQuotation creates a new quotation in draft status
func NewSalesQuotation(tenantID uuid.UUID, quotationNumber string, customerID uuid.UUID, customerName string) (*SalesQuotation, error) {
	if quotationNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Quotation number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	quotation := &SalesQuotation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		QuotationNumber:     quotationNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]QuotationItem, 0),
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TaxRate:             decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		Status:              QuotationStatusDraft,
	}

	quotation.AddDomainEvent(NewQuotationCreatedEvent(quotation))

	return quotation, nil
}

// AddItem adds a line to the quotation. Only allowed in DRAFT status.
func (q *SalesQuotation) AddItem(description string, quantity, unitPrice decimal.Decimal) (*QuotationItem, error) {
	if q.Status != QuotationStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft quotation")
	}

	item, err := NewQuotationItem(q.ID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	q.Items = append(q.Items, *item)
	q.recalculateTotals()
	q.Touch()

	return item, nil
}

// RemoveItem removes a line from the quotation. Only allowed in DRAFT status.
func (q *SalesQuotation) RemoveItem(itemID uuid.UUID) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft quotation")
	}

	for idx, item := range q.Items {
		if item.ID == itemID {
			q.Items = append(q.Items[:idx], q.Items[idx+1:]...)
			q.recalculateTotals()
			q.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Quotation item not found")
}

// ApplyDiscount applies a document-level discount. Only allowed in DRAFT status.
func (q *SalesQuotation) ApplyDiscount(discount valueobject.Money) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply discount to a non-draft quotation")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.Amount().GreaterThan(q.Subtotal) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed subtotal")
	}

	q.DiscountAmount = discount.Amount()
	q.recalculateTotals()
	q.Touch()

	return nil
}

// SetTaxRate sets the tax percentage applied after discount. Only allowed in DRAFT status.
func (q *SalesQuotation) SetTaxRate(rate decimal.Decimal) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax on a non-draft quotation")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	q.TaxRate = rate
	q.recalculateTotals()
	q.Touch()

	return nil
}

// SetValidUntil sets the quotation expiry date
func (q *SalesQuotation) SetValidUntil(validUntil time.Time) error {
	if q.Status != QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change validity of a non-draft quotation")
	}
	if validUntil.Before(time.Now()) {
		return shared.NewDomainError("INVALID_VALIDITY", "Validity date must be in the future")
	}

	q.ValidUntil = &validUntil
	q.Touch()

	return nil
}

// SetRemark sets the quotation remark
func (q *SalesQuotation) SetRemark(remark string) {
	q.Remark = remark
	q.Touch()
}

// Send marks the quotation as sent to the customer
func (q *SalesQuotation) Send() error {
	if !q.Status.CanTransitionTo(QuotationStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quotation in %s status", q.Status))
	}
	if len(q.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send a quotation without items")
	}

	now := time.Now()
	q.Status = QuotationStatusSent
	q.SentAt = &now
	q.Touch()

	q.AddDomainEvent(NewQuotationSentEvent(q))

	return nil
}

// Accept marks the quotation as accepted by the customer
func (q *SalesQuotation) Accept() error {
	if !q.Status.CanTransitionTo(QuotationStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quotation in %s status", q.Status))
	}
	if q.IsExpired() {
		return shared.NewDomainError("QUOTATION_EXPIRED", "Quotation validity has lapsed")
	}

	now := time.Now()
	q.Status = QuotationStatusAccepted
	q.DecidedAt = &now
	q.Touch()

	q.AddDomainEvent(NewQuotationAcceptedEvent(q))

	return nil
}

// Reject marks the quotation as rejected by the customer
func (q *SalesQuotation) Reject(reason string) error {
	if !q.Status.CanTransitionTo(QuotationStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject quotation in %s status", q.Status))
	}

	now := time.Now()
	q.Status = QuotationStatusRejected
	q.DecidedAt = &now
	q.Remark = reason
	q.Touch()

	q.AddDomainEvent(NewQuotationRejectedEvent(q, reason))

	return nil
}

// MarkExpired marks a sent quotation whose validity has lapsed
func (q *SalesQuotation) MarkExpired() error {
	if !q.Status.CanTransitionTo(QuotationStatusExpired) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire quotation in %s status", q.Status))
	}
	if !q.IsExpired() {
		return shared.NewDomainError("NOT_EXPIRED", "Quotation validity has not lapsed")
	}

	now := time.Now()
	q.Status = QuotationStatusExpired
	q.DecidedAt = &now
	q.Touch()

	return nil
}

// MarkConverted records the order this quotation was converted into.
// Only accepted, not-yet-converted quotations can convert.
func (q *SalesQuotation) MarkConverted(orderID uuid.UUID) error {
	if q.Status != QuotationStatusAccepted {
		return shared.NewDomainError("INVALID_STATE", "Only accepted quotations can be converted to orders")
	}
	if q.ConvertedOrderID != nil {
		return shared.NewDomainError("ALREADY_CONVERTED", "Quotation has already been converted to an order")
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	q.ConvertedOrderID = &orderID
	q.Touch()

	q.AddDomainEvent(NewQuotationConvertedEvent(q, orderID))

	return nil
}

// IsExpired reports whether the validity date has lapsed
func (q *SalesQuotation) IsExpired() bool {
	return q.ValidUntil != nil && q.ValidUntil.Before(time.Now())
}

// IsConverted reports whether the quotation already produced an order
func (q *SalesQuotation) IsConverted() bool {
	return q.ConvertedOrderID != nil
}

// recalculateTotals keeps the rollup consistent:
// GrandTotal = Subtotal - Discount + Tax, Tax = (Subtotal - Discount) * TaxRate%.
func (q *SalesQuotation) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	q.Subtotal = subtotal

	if q.DiscountAmount.GreaterThan(q.Subtotal) {
		q.DiscountAmount = q.Subtotal
	}
	taxable := q.Subtotal.Sub(q.DiscountAmount)
	q.TaxAmount = taxable.Mul(q.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	q.GrandTotal = taxable.Add(q.TaxAmount)
}

// GetItem returns a line by its ID
func (q *SalesQuotation) GetItem(itemID uuid.UUID) *QuotationItem {
	for idx := range q.Items {
		if q.Items[idx].ID == itemID {
			return &q.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of lines on the quotation
func (q *SalesQuotation) ItemCount() int {
	return len(q.Items)
}
