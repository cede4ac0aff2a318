package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeQuotation = "SalesQuotation"
	AggregateTypeOrder     = "SalesOrder"
	AggregateTypeInvoice   = "SalesInvoice"
)

// Event type constants
const (
	EventTypeQuotationCreated   = "QuotationCreated"
	EventTypeQuotationSent      = "QuotationSent"
	EventTypeQuotationAccepted  = "QuotationAccepted"
	EventTypeQuotationRejected  = "QuotationRejected"
	EventTypeQuotationConverted = "QuotationConverted"

	EventTypeSalesOrderCreated         = "SalesOrderCreated"
	EventTypeSalesOrderStatusChanged   = "SalesOrderStatusChanged"
	EventTypeSalesOrderCancelled       = "SalesOrderCancelled"
	EventTypeSalesOrderAdvanceRecorded = "SalesOrderAdvanceRecorded"

	EventTypeInvoiceIssued          = "InvoiceIssued"
	EventTypeInvoicePaymentRecorded = "InvoicePaymentRecorded"
	EventTypeInvoicePaid            = "InvoicePaid"
	EventTypeInvoiceVoided          = "InvoiceVoided"
)

// QuotationCreatedEvent is published when a new quotation is created
type QuotationCreatedEvent struct {
	shared.BaseDomainEvent
	QuotationID     uuid.UUID `json:"quotation_id"`
	QuotationNumber string    `json:"quotation_number"`
	CustomerID      uuid.UUID `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
}

// NewQuotationCreatedEvent creates a new QuotationCreatedEvent
func NewQuotationCreatedEvent(q *SalesQuotation) *QuotationCreatedEvent {
	return &QuotationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationCreated, AggregateTypeQuotation, q.ID, q.TenantID),
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		CustomerID:      q.CustomerID,
		CustomerName:    q.CustomerName,
	}
}

// QuotationSentEvent is published when a quotation is sent to the customer
type QuotationSentEvent struct {
	shared.BaseDomainEvent
	QuotationID     uuid.UUID       `json:"quotation_id"`
	QuotationNumber string          `json:"quotation_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
}

// NewQuotationSentEvent creates a new QuotationSentEvent
func NewQuotationSentEvent(q *SalesQuotation) *QuotationSentEvent {
	return &QuotationSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationSent, AggregateTypeQuotation, q.ID, q.TenantID),
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		CustomerID:      q.CustomerID,
		GrandTotal:      q.GrandTotal,
		ValidUntil:      q.ValidUntil,
	}
}

// QuotationAcceptedEvent is published when the customer accepts a quotation
type QuotationAcceptedEvent struct {
	shared.BaseDomainEvent
	QuotationID     uuid.UUID       `json:"quotation_id"`
	QuotationNumber string          `json:"quotation_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
}

// NewQuotationAcceptedEvent creates a new QuotationAcceptedEvent
func NewQuotationAcceptedEvent(q *SalesQuotation) *QuotationAcceptedEvent {
	return &QuotationAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationAccepted, AggregateTypeQuotation, q.ID, q.TenantID),
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		CustomerID:      q.CustomerID,
		GrandTotal:      q.GrandTotal,
	}
}

// QuotationRejectedEvent is published when the customer rejects a quotation
type QuotationRejectedEvent struct {
	shared.BaseDomainEvent
	QuotationID     uuid.UUID `json:"quotation_id"`
	QuotationNumber string    `json:"quotation_number"`
	Reason          string    `json:"reason"`
}

// NewQuotationRejectedEvent creates a new QuotationRejectedEvent
func NewQuotationRejectedEvent(q *SalesQuotation, reason string) *QuotationRejectedEvent {
	return &QuotationRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationRejected, AggregateTypeQuotation, q.ID, q.TenantID),
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		Reason:          reason,
	}
}

// QuotationConvertedEvent is published when a quotation becomes an order
type QuotationConvertedEvent struct {
	shared.BaseDomainEvent
	QuotationID     uuid.UUID `json:"quotation_id"`
	QuotationNumber string    `json:"quotation_number"`
	OrderID         uuid.UUID `json:"order_id"`
}

// NewQuotationConvertedEvent creates a new QuotationConvertedEvent
func NewQuotationConvertedEvent(q *SalesQuotation, orderID uuid.UUID) *QuotationConvertedEvent {
	return &QuotationConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationConverted, AggregateTypeQuotation, q.ID, q.TenantID),
		QuotationID:     q.ID,
		QuotationNumber: q.QuotationNumber,
		OrderID:         orderID,
	}
}

// SalesOrderCreatedEvent is published when a new sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
	}
}

// SalesOrderStatusChangedEvent is published on every pipeline transition.
// Live order feeds fan this event out to connected clients.
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID        `json:"order_id"`
	OrderNumber  string           `json:"order_number"`
	CustomerID   uuid.UUID        `json:"customer_id"`
	OldStatus    SalesOrderStatus `json:"old_status"`
	NewStatus    SalesOrderStatus `json:"new_status"`
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
}

// NewSalesOrderStatusChangedEvent creates a new SalesOrderStatusChangedEvent
func NewSalesOrderStatusChangedEvent(o *SalesOrder, oldStatus SalesOrderStatus) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderStatusChanged, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		OldStatus:       oldStatus,
		NewStatus:       o.Status,
		DeliveryDate:    o.DeliveryDate,
	}
}

// SalesOrderCancelledEvent is published when an order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	OldStatus   SalesOrderStatus `json:"old_status"`
	Reason      string           `json:"reason"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(o *SalesOrder, oldStatus SalesOrderStatus, reason string) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		OldStatus:       oldStatus,
		Reason:          reason,
	}
}

// SalesOrderAdvanceRecordedEvent is published when an advance payment is taken
type SalesOrderAdvanceRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	AdvancePaid decimal.Decimal `json:"advance_paid"`
}

// NewSalesOrderAdvanceRecordedEvent creates a new SalesOrderAdvanceRecordedEvent
func NewSalesOrderAdvanceRecordedEvent(o *SalesOrder, amount decimal.Decimal) *SalesOrderAdvanceRecordedEvent {
	return &SalesOrderAdvanceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderAdvanceRecorded, AggregateTypeOrder, o.ID, o.TenantID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		AdvancePaid:     o.AdvancePaid,
	}
}

// InvoiceIssuedEvent is published when an invoice is issued.
// The accounting context listens to draft a sales journal entry.
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	DueDate       time.Time       `json:"due_date"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *SalesInvoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		GrandTotal:      inv.GrandTotal,
		DueDate:         inv.DueDate,
	}
}

// InvoicePaymentRecordedEvent is published for every payment applied
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(inv *SalesInvoice, payment *InvoicePayment) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		AmountDue:       inv.AmountDue(),
	}
}

// InvoicePaidEvent is published when an invoice reaches full settlement
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *SalesInvoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		GrandTotal:      inv.GrandTotal,
	}
}

// InvoiceVoidedEvent is published when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *SalesInvoice, reason string) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          reason,
	}
}
