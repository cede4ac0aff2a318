package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SupplierBillStatus represents the status of a supplier bill
type SupplierBillStatus string

const (
	SupplierBillStatusDraft         SupplierBillStatus = "DRAFT"
	SupplierBillStatusApproved      SupplierBillStatus = "APPROVED"
	SupplierBillStatusPartiallyPaid SupplierBillStatus = "PARTIALLY_PAID"
	SupplierBillStatusPaid          SupplierBillStatus = "PAID"
	SupplierBillStatusDisputed      SupplierBillStatus = "DISPUTED"
)

// IsValid checks if the status is a valid SupplierBillStatus
func (s SupplierBillStatus) IsValid() bool {
	switch s {
	case SupplierBillStatusDraft, SupplierBillStatusApproved, SupplierBillStatusPartiallyPaid,
		SupplierBillStatusPaid, SupplierBillStatusDisputed:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s SupplierBillStatus) CanTransitionTo(target SupplierBillStatus) bool {
	switch s {
	case SupplierBillStatusDraft:
		return target == SupplierBillStatusApproved || target == SupplierBillStatusDisputed
	case SupplierBillStatusApproved:
		return target == SupplierBillStatusPartiallyPaid || target == SupplierBillStatusPaid ||
			target == SupplierBillStatusDisputed
	case SupplierBillStatusPartiallyPaid:
		return target == SupplierBillStatusPaid || target == SupplierBillStatusDisputed
	case SupplierBillStatusPaid, SupplierBillStatusDisputed:
		return false // Terminal states
	}
	return false
}

// SupplierBillItem represents a billed line on a supplier bill
type SupplierBillItem struct {
	ID              uuid.UUID
	SupplierBillID  uuid.UUID
	Description     string
	InventoryItemID *uuid.UUID
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Amount          decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SupplierBillPayment records one payment against a supplier bill
type SupplierBillPayment struct {
	ID             uuid.UUID
	SupplierBillID uuid.UUID
	Amount         decimal.Decimal
	Reference      string
	PaidAt         time.Time
	CreatedAt      time.Time
}

// SupplierBill is the aggregate root for accounts payable documents.
// Approving a bill posts the payable to the supplier balance and is
// picked up by accounting and inventory event handlers.
type SupplierBill struct {
	shared.TenantAggregateRoot
	BillNumber      string // Internal sequence
	SupplierBillRef string // Supplier's own bill number
	SupplierID      uuid.UUID
	SupplierName    string
	PurchaseOrderID *uuid.UUID
	BillScanID      *uuid.UUID // Source scan, if converted from one
	Items           []SupplierBillItem
	Payments        []SupplierBillPayment
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	GrandTotal      decimal.Decimal
	AmountPaid      decimal.Decimal
	BillDate        time.Time
	DueDate         *time.Time
	Status          SupplierBillStatus
	Remark          string
	ApprovedAt      *time.Time
	DisputedAt      *time.Time
	DisputeReason   string
}

// NewSupplierBill records a new supplier bill in draft status
func NewSupplierBill(tenantID uuid.UUID, billNumber string, supplierID uuid.UUID, supplierName string, billDate time.Time) (*SupplierBill, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Bill number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if billDate.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_BILL_DATE", "Bill date cannot be in the future")
	}

	bill := &SupplierBill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BillNumber:          billNumber,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Items:               make([]SupplierBillItem, 0),
		Payments:            make([]SupplierBillPayment, 0),
		Subtotal:            decimal.Zero,
		TaxRate:             decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		AmountPaid:          decimal.Zero,
		BillDate:            billDate,
		Status:              SupplierBillStatusDraft,
	}

	return bill, nil
}

// AddItem adds a line to the bill. Only allowed in DRAFT status.
func (b *SupplierBill) AddItem(description string, inventoryItemID *uuid.UUID, quantity, unitPrice decimal.Decimal) (*SupplierBillItem, error) {
	if b.Status != SupplierBillStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft bill")
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
	item := SupplierBillItem{
		ID:              uuid.New(),
		SupplierBillID:  b.ID,
		Description:     description,
		InventoryItemID: inventoryItemID,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		Amount:          quantity.Mul(unitPrice),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Items = append(b.Items, item)
	b.recalculateTotals()
	b.Touch()

	return &b.Items[len(b.Items)-1], nil
}

// SetTaxRate sets the tax percentage. Only allowed in DRAFT status.
func (b *SupplierBill) SetTaxRate(rate decimal.Decimal) error {
	if b.Status != SupplierBillStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax on a non-draft bill")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	b.TaxRate = rate
	b.recalculateTotals()
	b.Touch()

	return nil
}

// SetSupplierBillRef records the supplier's own bill number
func (b *SupplierBill) SetSupplierBillRef(ref string) error {
	if b.Status != SupplierBillStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change reference on a non-draft bill")
	}

	b.SupplierBillRef = ref
	b.Touch()

	return nil
}

// SetDueDate sets the payment due date
func (b *SupplierBill) SetDueDate(dueDate time.Time) error {
	if b.Status == SupplierBillStatusPaid || b.Status == SupplierBillStatusDisputed {
		return shared.NewDomainError("INVALID_STATE", "Cannot change due date on a closed bill")
	}
	if dueDate.Before(b.BillDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede the bill date")
	}

	b.DueDate = &dueDate
	b.Touch()

	return nil
}

// LinkPurchaseOrder ties the bill to the purchase order it settles
func (b *SupplierBill) LinkPurchaseOrder(orderID uuid.UUID) error {
	if b.Status != SupplierBillStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot relink a non-draft bill")
	}
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Purchase order ID cannot be empty")
	}

	b.PurchaseOrderID = &orderID
	b.Touch()

	return nil
}

// Approve accepts the bill into accounts payable.
// Downstream handlers post the supplier balance, draft the purchase
// journal entry, and receive stocked lines into inventory.
func (b *SupplierBill) Approve() error {
	if !b.Status.CanTransitionTo(SupplierBillStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve bill in %s status", b.Status))
	}
	if len(b.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve a bill without items")
	}

	now := time.Now()
	b.Status = SupplierBillStatusApproved
	b.ApprovedAt = &now
	b.Touch()

	b.AddDomainEvent(NewSupplierBillApprovedEvent(b))

	return nil
}

// RecordPayment applies a payment to the bill. Overpayments are rejected.
func (b *SupplierBill) RecordPayment(amount valueobject.Money, reference string) error {
	if b.Status != SupplierBillStatusApproved && b.Status != SupplierBillStatusPartiallyPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on a %s bill", b.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if b.AmountPaid.Add(amount.Amount()).GreaterThan(b.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT", "Payment exceeds the amount due")
	}

	now := time.Now()
	payment := SupplierBillPayment{
		ID:             uuid.New(),
		SupplierBillID: b.ID,
		Amount:         amount.Amount(),
		Reference:      reference,
		PaidAt:         now,
		CreatedAt:      now,
	}
	b.Payments = append(b.Payments, payment)
	b.AmountPaid = b.AmountPaid.Add(amount.Amount())

	if b.AmountPaid.Equal(b.GrandTotal) {
		b.Status = SupplierBillStatusPaid
	} else {
		b.Status = SupplierBillStatusPartiallyPaid
	}
	b.Touch()

	b.AddDomainEvent(NewSupplierBillPaymentRecordedEvent(b, &payment))

	return nil
}

// Dispute flags the bill as contested with the supplier
func (b *SupplierBill) Dispute(reason string) error {
	if !b.Status.CanTransitionTo(SupplierBillStatusDisputed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispute bill in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Dispute reason cannot be empty")
	}

	now := time.Now()
	b.Status = SupplierBillStatusDisputed
	b.DisputedAt = &now
	b.DisputeReason = reason
	b.Touch()

	b.AddDomainEvent(NewSupplierBillDisputedEvent(b, reason))

	return nil
}

// AmountDue returns the outstanding balance
func (b *SupplierBill) AmountDue() decimal.Decimal {
	return b.GrandTotal.Sub(b.AmountPaid)
}

// IsOverdue reports whether the bill is unpaid past its due date
func (b *SupplierBill) IsOverdue() bool {
	if b.Status == SupplierBillStatusPaid || b.Status == SupplierBillStatusDisputed || b.Status == SupplierBillStatusDraft {
		return false
	}
	return b.DueDate != nil && b.DueDate.Before(time.Now())
}

// StockedItems returns the lines tied to inventory items
func (b *SupplierBill) StockedItems() []SupplierBillItem {
	stocked := make([]SupplierBillItem, 0)
	for _, item := range b.Items {
		if item.InventoryItemID != nil {
			stocked = append(stocked, item)
		}
	}
	return stocked
}

func (b *SupplierBill) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range b.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	b.Subtotal = subtotal
	b.TaxAmount = subtotal.Mul(b.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	b.GrandTotal = subtotal.Add(b.TaxAmount)
}
