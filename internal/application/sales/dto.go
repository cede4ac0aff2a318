package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ==================== Quotation DTOs ====================

// CreateQuotationRequest represents a request to create a quotation
type CreateQuotationRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName string               `json:"customer_name" binding:"required,min=1,max=200"`
	Items        []QuotationItemInput `json:"items"`
	Discount     *decimal.Decimal     `json:"discount"`
	TaxRate      *decimal.Decimal     `json:"tax_rate"`
	ValidUntil   *time.Time           `json:"valid_until"`
	Remark       string               `json:"remark"`
}

// QuotationItemInput represents a line in a quotation request
type QuotationItemInput struct {
	Description    string          `json:"description" binding:"required,min=1,max=500"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price" binding:"required"`
	CostingSheetID *uuid.UUID      `json:"costing_sheet_id"`
}

// UpdateQuotationRequest represents a request to update a draft quotation
type UpdateQuotationRequest struct {
	Discount   *decimal.Decimal `json:"discount"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	ValidUntil *time.Time       `json:"valid_until"`
	Remark     *string          `json:"remark"`
}

// RejectQuotationRequest carries the rejection reason
type RejectQuotationRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// QuotationListFilter represents filter options for quotation lists
type QuotationListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuotationItemResponse represents a quotation line in API responses
type QuotationItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	CostingSheetID *uuid.UUID      `json:"costing_sheet_id,omitempty"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID               uuid.UUID               `json:"id"`
	QuotationNumber  string                  `json:"quotation_number"`
	CustomerID       uuid.UUID               `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	Items            []QuotationItemResponse `json:"items"`
	Subtotal         decimal.Decimal         `json:"subtotal"`
	DiscountAmount   decimal.Decimal         `json:"discount_amount"`
	TaxRate          decimal.Decimal         `json:"tax_rate"`
	TaxAmount        decimal.Decimal         `json:"tax_amount"`
	GrandTotal       decimal.Decimal         `json:"grand_total"`
	ValidUntil       *time.Time              `json:"valid_until,omitempty"`
	Status           string                  `json:"status"`
	Remark           string                  `json:"remark"`
	SentAt           *time.Time              `json:"sent_at,omitempty"`
	DecidedAt        *time.Time              `json:"decided_at,omitempty"`
	ConvertedOrderID *uuid.UUID              `json:"converted_order_id,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ToQuotationResponse converts a quotation aggregate to a response DTO
func ToQuotationResponse(q *sales.SalesQuotation) QuotationResponse {
	items := make([]QuotationItemResponse, len(q.Items))
	for i, item := range q.Items {
		items[i] = QuotationItemResponse{
			ID:             item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Amount:         item.Amount,
			CostingSheetID: item.CostingSheetID,
		}
	}
	return QuotationResponse{
		ID:               q.ID,
		QuotationNumber:  q.QuotationNumber,
		CustomerID:       q.CustomerID,
		CustomerName:     q.CustomerName,
		Items:            items,
		Subtotal:         q.Subtotal,
		DiscountAmount:   q.DiscountAmount,
		TaxRate:          q.TaxRate,
		TaxAmount:        q.TaxAmount,
		GrandTotal:       q.GrandTotal,
		ValidUntil:       q.ValidUntil,
		Status:           string(q.Status),
		Remark:           q.Remark,
		SentAt:           q.SentAt,
		DecidedAt:        q.DecidedAt,
		ConvertedOrderID: q.ConvertedOrderID,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

// ToQuotationResponses converts a slice of quotations
func ToQuotationResponses(quotations []sales.SalesQuotation) []QuotationResponse {
	responses := make([]QuotationResponse, len(quotations))
	for i := range quotations {
		responses[i] = ToQuotationResponse(&quotations[i])
	}
	return responses
}

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order directly
type CreateSalesOrderRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName string               `json:"customer_name" binding:"required,min=1,max=200"`
	Items        []QuotationItemInput `json:"items"`
	Discount     *decimal.Decimal     `json:"discount"`
	TaxRate      *decimal.Decimal     `json:"tax_rate"`
	DeliveryDate *time.Time           `json:"delivery_date"`
	Remark       string               `json:"remark"`
}

// RecordAdvanceRequest records an advance payment against an order
type RecordAdvanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SalesOrderListFilter represents filter options for order lists
type SalesOrderListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	OpenOnly   bool       `form:"open_only"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SalesOrderItemResponse represents an order line in API responses
type SalesOrderItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	CostingSheetID *uuid.UUID      `json:"costing_sheet_id,omitempty"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID             uuid.UUID                `json:"id"`
	OrderNumber    string                   `json:"order_number"`
	QuotationID    *uuid.UUID               `json:"quotation_id,omitempty"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	CustomerName   string                   `json:"customer_name"`
	Items          []SalesOrderItemResponse `json:"items"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	TaxRate        decimal.Decimal          `json:"tax_rate"`
	TaxAmount      decimal.Decimal          `json:"tax_amount"`
	GrandTotal     decimal.Decimal          `json:"grand_total"`
	AdvancePaid    decimal.Decimal          `json:"advance_paid"`
	BalanceDue     decimal.Decimal          `json:"balance_due"`
	DeliveryDate   *time.Time               `json:"delivery_date,omitempty"`
	Status         string                   `json:"status"`
	Remark         string                   `json:"remark"`
	ConfirmedAt    *time.Time               `json:"confirmed_at,omitempty"`
	DeliveredAt    *time.Time               `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason   string                   `json:"cancel_reason,omitempty"`
	InvoiceID      *uuid.UUID               `json:"invoice_id,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ToSalesOrderResponse converts an order aggregate to a response DTO
func ToSalesOrderResponse(o *sales.SalesOrder) SalesOrderResponse {
	items := make([]SalesOrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = SalesOrderItemResponse{
			ID:             item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Amount:         item.Amount,
			CostingSheetID: item.CostingSheetID,
		}
	}
	return SalesOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		QuotationID:    o.QuotationID,
		CustomerID:     o.CustomerID,
		CustomerName:   o.CustomerName,
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxRate:        o.TaxRate,
		TaxAmount:      o.TaxAmount,
		GrandTotal:     o.GrandTotal,
		AdvancePaid:    o.AdvancePaid,
		BalanceDue:     o.BalanceDue(),
		DeliveryDate:   o.DeliveryDate,
		Status:         string(o.Status),
		Remark:         o.Remark,
		ConfirmedAt:    o.ConfirmedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		InvoiceID:      o.InvoiceID,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToSalesOrderResponses converts a slice of orders
func ToSalesOrderResponses(orders []sales.SalesOrder) []SalesOrderResponse {
	responses := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToSalesOrderResponse(&orders[i])
	}
	return responses
}

// OrderStatusSummary reports order counts per status
type OrderStatusSummary struct {
	Draft        int64 `json:"draft"`
	Confirmed    int64 `json:"confirmed"`
	InProduction int64 `json:"in_production"`
	Ready        int64 `json:"ready"`
	Delivered    int64 `json:"delivered"`
	Cancelled    int64 `json:"cancelled"`
	Total        int64 `json:"total"`
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest creates a standalone counter-sale invoice
type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName string               `json:"customer_name" binding:"required,min=1,max=200"`
	Items        []InvoiceItemInput   `json:"items" binding:"required,min=1"`
	TaxRate      *decimal.Decimal     `json:"tax_rate"`
	DueDate      time.Time            `json:"due_date" binding:"required"`
	Remark       string               `json:"remark"`
}

// InvoiceItemInput represents a line in an invoice request
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// IssueFromOrderRequest issues an invoice from a ready or delivered order
type IssueFromOrderRequest struct {
	OrderID uuid.UUID  `json:"order_id" binding:"required"`
	DueDate *time.Time `json:"due_date"`
}

// RecordPaymentRequest records a payment against an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=CASH CHEQUE BANK_TRANSFER CARD ONLINE"`
	Reference string          `json:"reference"`
}

// VoidInvoiceRequest carries the void reason
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ShareInvoiceRequest enables public sharing with an optional TTL in hours
type ShareInvoiceRequest struct {
	TTLHours int `json:"ttl_hours" binding:"omitempty,min=1,max=8760"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Search      string     `form:"search"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	Status      *string    `form:"status"`
	OverdueOnly bool       `form:"overdue_only"`
	StartDate   *time.Time `form:"start_date"`
	EndDate     *time.Time `form:"end_date"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoicePaymentResponse represents a recorded payment
type InvoicePaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    time.Time       `json:"paid_at"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID                `json:"id"`
	InvoiceNumber  string                   `json:"invoice_number"`
	OrderID        *uuid.UUID               `json:"order_id,omitempty"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	CustomerName   string                   `json:"customer_name"`
	Items          []InvoiceItemResponse    `json:"items"`
	Payments       []InvoicePaymentResponse `json:"payments"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	TaxRate        decimal.Decimal          `json:"tax_rate"`
	TaxAmount      decimal.Decimal          `json:"tax_amount"`
	GrandTotal     decimal.Decimal          `json:"grand_total"`
	AmountPaid     decimal.Decimal          `json:"amount_paid"`
	AmountDue      decimal.Decimal          `json:"amount_due"`
	IssueDate      time.Time                `json:"issue_date"`
	DueDate        time.Time                `json:"due_date"`
	Status         string                   `json:"status"`
	Remark         string                   `json:"remark"`
	IsOverdue      bool                     `json:"is_overdue"`
	ShareExpiresAt *time.Time               `json:"share_expires_at,omitempty"`
	Shared         bool                     `json:"shared"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice aggregate to a response DTO.
// The share token itself is never included; sharing endpoints return it once.
func ToInvoiceResponse(inv *sales.SalesInvoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	payments := make([]InvoicePaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = InvoicePaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		}
	}
	return InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		OrderID:        inv.OrderID,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		Items:          items,
		Payments:       payments,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxRate:        inv.TaxRate,
		TaxAmount:      inv.TaxAmount,
		GrandTotal:     inv.GrandTotal,
		AmountPaid:     inv.AmountPaid,
		AmountDue:      inv.AmountDue(),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Status:         string(inv.Status),
		Remark:         inv.Remark,
		IsOverdue:      inv.IsOverdue(),
		ShareExpiresAt: inv.ShareExpiresAt,
		Shared:         inv.ShareToken != "",
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []sales.SalesInvoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// SharedInvoiceResponse is the public shared-invoice view. It exposes no
// internal identifiers beyond the invoice document itself.
type SharedInvoiceResponse struct {
	InvoiceNumber string                `json:"invoice_number"`
	CustomerName  string                `json:"customer_name"`
	Items         []InvoiceItemResponse `json:"items"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	GrandTotal    decimal.Decimal       `json:"grand_total"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       time.Time             `json:"due_date"`
	Status        string                `json:"status"`
}

// ToSharedInvoiceResponse converts an invoice to its public view
func ToSharedInvoiceResponse(inv *sales.SalesInvoice) SharedInvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return SharedInvoiceResponse{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		Items:         items,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		GrandTotal:    inv.GrandTotal,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
	}
}

// ShareLinkResponse is returned when sharing is enabled
type ShareLinkResponse struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
