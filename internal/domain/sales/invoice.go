package sales

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusIssued:
		return target == InvoiceStatusPartiallyPaid || target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPartiallyPaid:
		return target == InvoiceStatusPaid || target == InvoiceStatusVoid
	case InvoiceStatusPaid, InvoiceStatusVoid:
		return false // Terminal states
	}
	return false
}

// PaymentMethod represents how an invoice payment was taken
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCheque   PaymentMethod = "CHEQUE"
	PaymentMethodTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodOnline   PaymentMethod = "ONLINE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// InvoiceItem represents a billed line on an invoice
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvoicePayment records one payment applied to an invoice
type InvoicePayment struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Reference string
	PaidAt    time.Time
	CreatedAt time.Time
}

// SalesInvoice is the aggregate root for customer invoices.
// Invoices are immutable once issued; only payments and voiding change them.
type SalesInvoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string
	OrderID        *uuid.UUID // Source order, if converted
	CustomerID     uuid.UUID
	CustomerName   string
	Items          []InvoiceItem
	Payments       []InvoicePayment
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	AmountPaid     decimal.Decimal
	IssueDate      time.Time
	DueDate        time.Time
	Status         InvoiceStatus
	Remark         string
	ShareToken     string // Opaque token for the public shared-invoice view
	ShareExpiresAt *time.Time
	VoidedAt       *time.Time
	VoidReason     string
}

// NewSalesInvoiceFromOrder issues an invoice carrying over the order's
// lines, discount and tax. Any advance on the order is applied as the
// first payment.
func NewSalesInvoiceFromOrder(invoiceNumber string, order *SalesOrder, dueDate time.Time) (*SalesInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if order.Status != SalesOrderStatusReady && order.Status != SalesOrderStatusDelivered {
		return nil, shared.NewDomainError("INVALID_STATE", "Only ready or delivered orders can be invoiced")
	}
	if order.IsInvoiced() {
		return nil, shared.NewDomainError("ALREADY_INVOICED", "Order has already been invoiced")
	}

	now := time.Now()
	if dueDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be in the past")
	}

	invoice := &SalesInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(order.TenantID),
		InvoiceNumber:       invoiceNumber,
		OrderID:             &order.ID,
		CustomerID:          order.CustomerID,
		CustomerName:        order.CustomerName,
		Items:               make([]InvoiceItem, 0, len(order.Items)),
		Payments:            make([]InvoicePayment, 0),
		DiscountAmount:      order.DiscountAmount,
		TaxRate:             order.TaxRate,
		TaxAmount:           order.TaxAmount,
		Subtotal:            order.Subtotal,
		GrandTotal:          order.GrandTotal,
		AmountPaid:          decimal.Zero,
		IssueDate:           now,
		DueDate:             dueDate,
		Status:              InvoiceStatusIssued,
	}

	for _, src := range order.Items {
		invoice.Items = append(invoice.Items, InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			Description: src.Description,
			Quantity:    src.Quantity,
			UnitPrice:   src.UnitPrice,
			Amount:      src.Amount,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	invoice.AddDomainEvent(NewInvoiceIssuedEvent(invoice))

	if order.AdvancePaid.IsPositive() {
		advance := valueobject.NewMoneyUSD(order.AdvancePaid)
		if err := invoice.RecordPayment(advance, PaymentMethodCash, "advance on "+order.OrderNumber); err != nil {
			return nil, err
		}
	}

	return invoice, nil
}

// NewSalesInvoice issues a standalone invoice not tied to an order,
// used for counter sales billed directly.
func NewSalesInvoice(tenantID uuid.UUID, invoiceNumber string, customerID uuid.UUID, customerName string, dueDate time.Time) (*SalesInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	now := time.Now()
	if dueDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be in the past")
	}

	invoice := &SalesInvoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Items:               make([]InvoiceItem, 0),
		Payments:            make([]InvoicePayment, 0),
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TaxRate:             decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		AmountPaid:          decimal.Zero,
		IssueDate:           now,
		DueDate:             dueDate,
		Status:              InvoiceStatusIssued,
	}

	return invoice, nil
}

// AddItem adds a line to a standalone invoice before any payment is taken
func (inv *SalesInvoice) AddItem(description string, quantity, unitPrice decimal.Decimal) error {
	if inv.Status != InvoiceStatusIssued || len(inv.Payments) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot change lines after payment activity")
	}
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	inv.Items = append(inv.Items, InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	inv.recalculateTotals()
	inv.Touch()

	return nil
}

// SetTaxRate sets the tax percentage on a standalone invoice before payment
func (inv *SalesInvoice) SetTaxRate(rate decimal.Decimal) error {
	if inv.Status != InvoiceStatusIssued || len(inv.Payments) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Cannot change tax after payment activity")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}

	inv.TaxRate = rate
	inv.recalculateTotals()
	inv.Touch()

	return nil
}

// RecordPayment applies a payment to the invoice. Overpayments are rejected;
// the invoice flips to PARTIALLY_PAID or PAID as the balance dictates.
func (inv *SalesInvoice) RecordPayment(amount valueobject.Money, method PaymentMethod, reference string) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusVoid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on a %s invoice", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Invalid payment method: %s", method))
	}
	if inv.AmountPaid.Add(amount.Amount()).GreaterThan(inv.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT", "Payment exceeds the amount due")
	}

	now := time.Now()
	payment := InvoicePayment{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		Amount:    amount.Amount(),
		Method:    method,
		Reference: reference,
		PaidAt:    now,
		CreatedAt: now,
	}
	inv.Payments = append(inv.Payments, payment)
	inv.AmountPaid = inv.AmountPaid.Add(amount.Amount())

	if inv.AmountPaid.Equal(inv.GrandTotal) {
		inv.Status = InvoiceStatusPaid
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
	}
	inv.Touch()

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, &payment))
	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return nil
}

// Void cancels the invoice. Paid invoices cannot be voided.
func (inv *SalesInvoice) Void(reason string) error {
	if !inv.Status.CanTransitionTo(InvoiceStatusVoid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason cannot be empty")
	}

	now := time.Now()
	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.Touch()

	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, reason))

	return nil
}

// EnableSharing generates a fresh opaque token for the public invoice view.
// Regenerating invalidates any previously issued token.
func (inv *SalesInvoice) EnableSharing(ttl time.Duration) (string, error) {
	if inv.Status == InvoiceStatusVoid {
		return "", shared.NewDomainError("INVALID_STATE", "Cannot share a void invoice")
	}
	if ttl <= 0 {
		return "", shared.NewDomainError("INVALID_TTL", "Share validity must be positive")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}

	expires := time.Now().Add(ttl)
	inv.ShareToken = hex.EncodeToString(buf)
	inv.ShareExpiresAt = &expires
	inv.Touch()

	return inv.ShareToken, nil
}

// DisableSharing revokes the public share token
func (inv *SalesInvoice) DisableSharing() {
	inv.ShareToken = ""
	inv.ShareExpiresAt = nil
	inv.Touch()
}

// IsShareTokenValid reports whether the given token grants public access
func (inv *SalesInvoice) IsShareTokenValid(token string) bool {
	if inv.ShareToken == "" || token == "" || inv.ShareToken != token {
		return false
	}
	if inv.ShareExpiresAt != nil && inv.ShareExpiresAt.Before(time.Now()) {
		return false
	}
	return inv.Status != InvoiceStatusVoid
}

// AmountDue returns the outstanding balance. Never negative.
func (inv *SalesInvoice) AmountDue() decimal.Decimal {
	return inv.GrandTotal.Sub(inv.AmountPaid)
}

// IsOverdue reports whether the invoice is unpaid past its due date
func (inv *SalesInvoice) IsOverdue() bool {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusVoid {
		return false
	}
	return inv.DueDate.Before(time.Now())
}

func (inv *SalesInvoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	inv.Subtotal = subtotal

	if inv.DiscountAmount.GreaterThan(inv.Subtotal) {
		inv.DiscountAmount = inv.Subtotal
	}
	taxable := inv.Subtotal.Sub(inv.DiscountAmount)
	inv.TaxAmount = taxable.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	inv.GrandTotal = taxable.Add(inv.TaxAmount)
}
