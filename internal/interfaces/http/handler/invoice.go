package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/document"
	"github.com/printcloud/backend/internal/application/sales"
	domainsales "github.com/printcloud/backend/internal/domain/sales"
)

// InvoiceHandler handles sales invoice endpoints, including the public
// shared-invoice view reachable without authentication.
type InvoiceHandler struct {
	BaseHandler
	invoiceService  *sales.InvoiceService
	templateService *document.TemplateService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *sales.InvoiceService, templateService *document.TemplateService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:  invoiceService,
		templateService: templateService,
	}
}

// Create creates an invoice from explicit line items
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req sales.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.invoiceService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// IssueFromOrder issues an invoice from a ready or delivered sales order
func (h *InvoiceHandler) IssueFromOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req sales.IssueFromOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.invoiceService.IssueFromOrder(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns an invoice by ID
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByNumber returns an invoice by its document number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.invoiceService.GetByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns invoices matching the filter
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter sales.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// RecordPayment applies a payment to an issued invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req sales.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.invoiceService.RecordPayment(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Void voids an invoice that has no payments
func (h *InvoiceHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req sales.VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.invoiceService.Void(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// EnableSharing generates a public share link for an invoice
func (h *InvoiceHandler) EnableSharing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	// Body is optional; an empty body shares with the default TTL.
	var req sales.ShareInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.invoiceService.EnableSharing(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DisableSharing revokes an invoice's public share link
func (h *InvoiceHandler) DisableSharing(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.DisableSharing(c.Request.Context(), tenantID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetShared returns the public view of a shared invoice by token.
// No authentication required; the token alone scopes access.
func (h *InvoiceHandler) GetShared(c *gin.Context) {
	resp, err := h.invoiceService.GetShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DownloadSharedPDF renders a shared invoice as PDF using the tenant's
// default invoice template.
func (h *InvoiceHandler) DownloadSharedPDF(c *gin.Context) {
	invoice, err := h.invoiceService.GetSharedAggregate(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.templateService.Render(c.Request.Context(), invoice.TenantID, document.RenderRequest{
		DocumentType: "INVOICE",
		Format:       "PDF",
		Data:         invoiceRenderData(invoice),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// invoiceRenderData flattens an invoice into the map a document
// template expects.
func invoiceRenderData(invoice *domainsales.SalesInvoice) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, map[string]interface{}{
			"description": item.Description,
			"quantity":    item.Quantity.String(),
			"unit_price":  item.UnitPrice.StringFixed(2),
			"amount":      item.Amount.StringFixed(2),
		})
	}

	return map[string]interface{}{
		"invoice_number":  invoice.InvoiceNumber,
		"customer_name":   invoice.CustomerName,
		"items":           items,
		"subtotal":        invoice.Subtotal.StringFixed(2),
		"discount_amount": invoice.DiscountAmount.StringFixed(2),
		"tax_rate":        invoice.TaxRate.String(),
		"tax_amount":      invoice.TaxAmount.StringFixed(2),
		"grand_total":     invoice.GrandTotal.StringFixed(2),
		"amount_paid":     invoice.AmountPaid.StringFixed(2),
		"balance_due":     invoice.GrandTotal.Sub(invoice.AmountPaid).StringFixed(2),
		"issue_date":      invoice.IssueDate.Format("2006-01-02"),
		"due_date":        invoice.DueDate.Format("2006-01-02"),
		"status":          string(invoice.Status),
		"remark":          invoice.Remark,
	}
}
