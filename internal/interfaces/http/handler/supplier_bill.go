package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/purchasing"
)

// SupplierBillHandler handles supplier bill endpoints
type SupplierBillHandler struct {
	BaseHandler
	billService *purchasing.SupplierBillService
}

// NewSupplierBillHandler creates a new supplier bill handler
func NewSupplierBillHandler(billService *purchasing.SupplierBillService) *SupplierBillHandler {
	return &SupplierBillHandler{billService: billService}
}

// Create records a supplier bill
func (h *SupplierBillHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req purchasing.CreateSupplierBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.billService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a supplier bill by ID
func (h *SupplierBillHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	resp, err := h.billService.GetByID(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns supplier bills matching the filter
func (h *SupplierBillHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter purchasing.SupplierBillListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	bills, total, err := h.billService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, bills, total, page, pageSize)
}

// Approve approves a bill for payment
func (h *SupplierBillHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	resp, err := h.billService.Approve(c.Request.Context(), tenantID, billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordPayment applies a payment to an approved bill
func (h *SupplierBillHandler) RecordPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req purchasing.RecordBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.billService.RecordPayment(c.Request.Context(), tenantID, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Dispute marks a bill disputed
func (h *SupplierBillHandler) Dispute(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	var req purchasing.DisputeBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.billService.Dispute(c.Request.Context(), tenantID, billID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a draft bill
func (h *SupplierBillHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid bill ID")
		return
	}

	if err := h.billService.Delete(c.Request.Context(), tenantID, billID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
