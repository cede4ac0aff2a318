package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printcloud/backend/internal/application/sales"
)

// QuotationHandler handles sales quotation endpoints
type QuotationHandler struct {
	BaseHandler
	quotationService *sales.QuotationService
}

// NewQuotationHandler creates a new quotation handler
func NewQuotationHandler(quotationService *sales.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// Create creates a new quotation in draft state
func (h *QuotationHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req sales.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.quotationService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a quotation by ID
func (h *QuotationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := h.quotationService.GetByID(c.Request.Context(), tenantID, quotationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByNumber returns a quotation by its document number
func (h *QuotationHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.quotationService.GetByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns quotations matching the filter
func (h *QuotationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter sales.QuotationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	quotations, total, err := h.quotationService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, quotations, total, page, pageSize)
}

// Update updates a draft quotation
func (h *QuotationHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req sales.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.quotationService.Update(c.Request.Context(), tenantID, quotationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddItem appends a line item to a draft quotation
func (h *QuotationHandler) AddItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req sales.QuotationItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.quotationService.AddItem(c.Request.Context(), tenantID, quotationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem removes a line item from a draft quotation
func (h *QuotationHandler) RemoveItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}
	itemID, err := parseIDParam(c, "itemId")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.quotationService.RemoveItem(c.Request.Context(), tenantID, quotationID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Send marks a quotation as sent to the customer
func (h *QuotationHandler) Send(c *gin.Context) {
	h.transition(c, h.quotationService.Send)
}

// Accept marks a sent quotation accepted
func (h *QuotationHandler) Accept(c *gin.Context) {
	h.transition(c, h.quotationService.Accept)
}

// Reject marks a sent quotation rejected
func (h *QuotationHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	var req sales.RejectQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.quotationService.Reject(c.Request.Context(), tenantID, quotationID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Convert converts an accepted quotation into a sales order
func (h *QuotationHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := h.quotationService.ConvertToOrder(c.Request.Context(), tenantID, quotationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ExpireDue expires sent quotations past their validity date
func (h *QuotationHandler) ExpireDue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	expired, err := h.quotationService.ExpireDue(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"expired": expired})
}

// Delete removes a draft quotation
func (h *QuotationHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	if err := h.quotationService.Delete(c.Request.Context(), tenantID, quotationID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *QuotationHandler) transition(c *gin.Context, op func(ctx context.Context, tenantID, quotationID uuid.UUID) (*sales.QuotationResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	quotationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid quotation ID")
		return
	}

	resp, err := op(c.Request.Context(), tenantID, quotationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
