package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                `json:"supplier_id" binding:"required"`
	SupplierName string                   `json:"supplier_name" binding:"required,min=1,max=200"`
	Items        []PurchaseOrderItemInput `json:"items"`
	Discount     *decimal.Decimal         `json:"discount"`
	TaxRate      *decimal.Decimal         `json:"tax_rate"`
	ExpectedDate *time.Time               `json:"expected_date"`
	Remark       string                   `json:"remark"`
}

// PurchaseOrderItemInput represents a line in a purchase order request
type PurchaseOrderItemInput struct {
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	InventoryItemID *uuid.UUID      `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpdatePurchaseOrderRequest represents a request to update a draft order
type UpdatePurchaseOrderRequest struct {
	Discount     *decimal.Decimal `json:"discount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ExpectedDate *time.Time       `json:"expected_date"`
	Remark       *string          `json:"remark"`
}

// ReceiveItemRequest records received quantity against an order line
type ReceiveItemRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CancelPurchaseOrderRequest carries the cancellation reason
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PurchaseOrderListFilter represents filter options for order lists
type PurchaseOrderListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     *string    `form:"status"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderItemResponse represents an order line in API responses
type PurchaseOrderItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	Description      string          `json:"description"`
	InventoryItemID  *uuid.UUID      `json:"inventory_item_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Amount           decimal.Decimal `json:"amount"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID             uuid.UUID                   `json:"id"`
	OrderNumber    string                      `json:"order_number"`
	SupplierID     uuid.UUID                   `json:"supplier_id"`
	SupplierName   string                      `json:"supplier_name"`
	Items          []PurchaseOrderItemResponse `json:"items"`
	Subtotal       decimal.Decimal             `json:"subtotal"`
	DiscountAmount decimal.Decimal             `json:"discount_amount"`
	TaxRate        decimal.Decimal             `json:"tax_rate"`
	TaxAmount      decimal.Decimal             `json:"tax_amount"`
	GrandTotal     decimal.Decimal             `json:"grand_total"`
	ExpectedDate   *time.Time                  `json:"expected_date,omitempty"`
	Status         string                      `json:"status"`
	Remark         string                      `json:"remark"`
	SentAt         *time.Time                  `json:"sent_at,omitempty"`
	ReceivedAt     *time.Time                  `json:"received_at,omitempty"`
	CancelledAt    *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason   string                      `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a purchase order aggregate to a response DTO
func ToPurchaseOrderResponse(o *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:               item.ID,
			Description:      item.Description,
			InventoryItemID:  item.InventoryItemID,
			Quantity:         item.Quantity,
			QuantityReceived: item.QuantityReceived,
			UnitPrice:        item.UnitPrice,
			Amount:           item.Amount,
		}
	}
	return PurchaseOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		SupplierID:     o.SupplierID,
		SupplierName:   o.SupplierName,
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TaxRate:        o.TaxRate,
		TaxAmount:      o.TaxAmount,
		GrandTotal:     o.GrandTotal,
		ExpectedDate:   o.ExpectedDate,
		Status:         string(o.Status),
		Remark:         o.Remark,
		SentAt:         o.SentAt,
		ReceivedAt:     o.ReceivedAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of purchase orders
func ToPurchaseOrderResponses(orders []purchasing.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses
}

// ==================== Supplier Bill DTOs ====================

// CreateSupplierBillRequest represents a request to record a supplier bill
type CreateSupplierBillRequest struct {
	SupplierID      uuid.UUID               `json:"supplier_id" binding:"required"`
	SupplierName    string                  `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierBillRef string                  `json:"supplier_bill_ref"`
	PurchaseOrderID *uuid.UUID              `json:"purchase_order_id"`
	BillDate        time.Time               `json:"bill_date" binding:"required"`
	DueDate         *time.Time              `json:"due_date"`
	Items           []SupplierBillItemInput `json:"items"`
	TaxRate         *decimal.Decimal        `json:"tax_rate"`
	Remark          string                  `json:"remark"`
}

// SupplierBillItemInput represents a line in a supplier bill request
type SupplierBillItemInput struct {
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	InventoryItemID *uuid.UUID      `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
}

// RecordBillPaymentRequest records a payment against a bill
type RecordBillPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference string          `json:"reference"`
}

// DisputeBillRequest carries the dispute reason
type DisputeBillRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// SupplierBillListFilter represents filter options for bill lists
type SupplierBillListFilter struct {
	Search     string     `form:"search"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Status     *string    `form:"status"`
	Overdue    bool       `form:"overdue"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SupplierBillItemResponse represents a bill line in API responses
type SupplierBillItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	InventoryItemID *uuid.UUID      `json:"inventory_item_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Amount          decimal.Decimal `json:"amount"`
}

// SupplierBillPaymentResponse represents a recorded payment
type SupplierBillPaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// SupplierBillResponse represents a supplier bill in API responses
type SupplierBillResponse struct {
	ID              uuid.UUID                     `json:"id"`
	BillNumber      string                        `json:"bill_number"`
	SupplierBillRef string                        `json:"supplier_bill_ref,omitempty"`
	SupplierID      uuid.UUID                     `json:"supplier_id"`
	SupplierName    string                        `json:"supplier_name"`
	PurchaseOrderID *uuid.UUID                    `json:"purchase_order_id,omitempty"`
	BillScanID      *uuid.UUID                    `json:"bill_scan_id,omitempty"`
	Items           []SupplierBillItemResponse    `json:"items"`
	Payments        []SupplierBillPaymentResponse `json:"payments"`
	Subtotal        decimal.Decimal               `json:"subtotal"`
	TaxRate         decimal.Decimal               `json:"tax_rate"`
	TaxAmount       decimal.Decimal               `json:"tax_amount"`
	GrandTotal      decimal.Decimal               `json:"grand_total"`
	AmountPaid      decimal.Decimal               `json:"amount_paid"`
	AmountDue       decimal.Decimal               `json:"amount_due"`
	BillDate        time.Time                     `json:"bill_date"`
	DueDate         *time.Time                    `json:"due_date,omitempty"`
	Status          string                        `json:"status"`
	Remark          string                        `json:"remark"`
	ApprovedAt      *time.Time                    `json:"approved_at,omitempty"`
	DisputedAt      *time.Time                    `json:"disputed_at,omitempty"`
	DisputeReason   string                        `json:"dispute_reason,omitempty"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

// ToSupplierBillResponse converts a supplier bill aggregate to a response DTO
func ToSupplierBillResponse(b *purchasing.SupplierBill) SupplierBillResponse {
	items := make([]SupplierBillItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = SupplierBillItemResponse{
			ID:              item.ID,
			Description:     item.Description,
			InventoryItemID: item.InventoryItemID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			Amount:          item.Amount,
		}
	}
	payments := make([]SupplierBillPaymentResponse, len(b.Payments))
	for i, payment := range b.Payments {
		payments[i] = SupplierBillPaymentResponse{
			ID:        payment.ID,
			Amount:    payment.Amount,
			Reference: payment.Reference,
			PaidAt:    payment.PaidAt,
		}
	}
	return SupplierBillResponse{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		SupplierBillRef: b.SupplierBillRef,
		SupplierID:      b.SupplierID,
		SupplierName:    b.SupplierName,
		PurchaseOrderID: b.PurchaseOrderID,
		BillScanID:      b.BillScanID,
		Items:           items,
		Payments:        payments,
		Subtotal:        b.Subtotal,
		TaxRate:         b.TaxRate,
		TaxAmount:       b.TaxAmount,
		GrandTotal:      b.GrandTotal,
		AmountPaid:      b.AmountPaid,
		AmountDue:       b.AmountDue(),
		BillDate:        b.BillDate,
		DueDate:         b.DueDate,
		Status:          string(b.Status),
		Remark:          b.Remark,
		ApprovedAt:      b.ApprovedAt,
		DisputedAt:      b.DisputedAt,
		DisputeReason:   b.DisputeReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// ToSupplierBillResponses converts a slice of supplier bills
func ToSupplierBillResponses(bills []purchasing.SupplierBill) []SupplierBillResponse {
	responses := make([]SupplierBillResponse, len(bills))
	for i := range bills {
		responses[i] = ToSupplierBillResponse(&bills[i])
	}
	return responses
}

// ==================== Bill Scan DTOs ====================

// UploadScanRequest carries metadata of an uploaded scan file. The file
// bytes travel as multipart form data next to it.
type UploadScanRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// ReviewScanRequest confirms the extraction after human review
type ReviewScanRequest struct {
	SupplierID uuid.UUID `json:"supplier_id" binding:"required"`
}

// ConvertScanRequest converts a reviewed scan into a supplier bill.
// Amounts default to the extraction result and can be overridden.
type ConvertScanRequest struct {
	SupplierName    string                  `json:"supplier_name" binding:"required,min=1,max=200"`
	SupplierBillRef string                  `json:"supplier_bill_ref"`
	BillDate        *time.Time              `json:"bill_date"`
	DueDate         *time.Time              `json:"due_date"`
	Items           []SupplierBillItemInput `json:"items"`
	TaxRate         *decimal.Decimal        `json:"tax_rate"`
}

// DiscardScanRequest carries the discard reason
type DiscardScanRequest struct {
	Reason string `json:"reason"`
}

// ScanListFilter represents filter options for scan lists
type ScanListFilter struct {
	Status   *string `form:"status"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExtractedLineResponse is one recognised line hint
type ExtractedLineResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExtractionResultResponse is the extraction result held for review
type ExtractionResultResponse struct {
	SupplierName string                  `json:"supplier_name"`
	BillNumber   string                  `json:"bill_number"`
	BillDate     *time.Time              `json:"bill_date,omitempty"`
	Subtotal     decimal.Decimal         `json:"subtotal"`
	TaxAmount    decimal.Decimal         `json:"tax_amount"`
	GrandTotal   decimal.Decimal         `json:"grand_total"`
	Lines        []ExtractedLineResponse `json:"lines,omitempty"`
	Confidence   float64                 `json:"confidence"`
	Engine       string                  `json:"engine"`
}

// BillScanResponse represents a bill scan in API responses
type BillScanResponse struct {
	ID             uuid.UUID                 `json:"id"`
	FileName       string                    `json:"file_name"`
	ContentType    string                    `json:"content_type"`
	SizeBytes      int64                     `json:"size_bytes"`
	Status         string                    `json:"status"`
	Extraction     *ExtractionResultResponse `json:"extraction,omitempty"`
	FailureReason  string                    `json:"failure_reason,omitempty"`
	Attempts       int                       `json:"attempts"`
	SupplierID     *uuid.UUID                `json:"supplier_id,omitempty"`
	SupplierBillID *uuid.UUID                `json:"supplier_bill_id,omitempty"`
	ReviewedAt     *time.Time                `json:"reviewed_at,omitempty"`
	DiscardedAt    *time.Time                `json:"discarded_at,omitempty"`
	DiscardReason  string                    `json:"discard_reason,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// ToBillScanResponse converts a bill scan aggregate to a response DTO
func ToBillScanResponse(s *purchasing.BillScan) BillScanResponse {
	response := BillScanResponse{
		ID:             s.ID,
		FileName:       s.FileName,
		ContentType:    s.ContentType,
		SizeBytes:      s.SizeBytes,
		Status:         string(s.Status),
		FailureReason:  s.FailureReason,
		Attempts:       s.Attempts,
		SupplierID:     s.SupplierID,
		SupplierBillID: s.SupplierBillID,
		ReviewedAt:     s.ReviewedAt,
		DiscardedAt:    s.DiscardedAt,
		DiscardReason:  s.DiscardReason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Extraction != nil {
		lines := make([]ExtractedLineResponse, len(s.Extraction.Lines))
		for i, line := range s.Extraction.Lines {
			lines[i] = ExtractedLineResponse{
				Description: line.Description,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Amount:      line.Amount,
			}
		}
		response.Extraction = &ExtractionResultResponse{
			SupplierName: s.Extraction.SupplierName,
			BillNumber:   s.Extraction.BillNumber,
			BillDate:     s.Extraction.BillDate,
			Subtotal:     s.Extraction.Subtotal,
			TaxAmount:    s.Extraction.TaxAmount,
			GrandTotal:   s.Extraction.GrandTotal,
			Lines:        lines,
			Confidence:   s.Extraction.Confidence,
			Engine:       string(s.Extraction.Engine),
		}
	}
	return response
}

// ToBillScanResponses converts a slice of bill scans
func ToBillScanResponses(scans []purchasing.BillScan) []BillScanResponse {
	responses := make([]BillScanResponse, len(scans))
	for i := range scans {
		responses[i] = ToBillScanResponse(&scans[i])
	}
	return responses
}
