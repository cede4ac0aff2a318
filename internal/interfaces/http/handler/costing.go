package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/costing"
)

// CostingHandler handles costing sheet endpoints
type CostingHandler struct {
	BaseHandler
	sheetService *costing.SheetService
}

// NewCostingHandler creates a new costing handler
func NewCostingHandler(sheetService *costing.SheetService) *CostingHandler {
	return &CostingHandler{sheetService: sheetService}
}

// Create creates a new costing sheet
func (h *CostingHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req costing.CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.sheetService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a costing sheet by ID
func (h *CostingHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	sheetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sheet ID")
		return
	}

	resp, err := h.sheetService.GetByID(c.Request.Context(), tenantID, sheetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns costing sheets matching the filter
func (h *CostingHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter costing.SheetListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	sheets, total, err := h.sheetService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, sheets, total, page, pageSize)
}

// Update updates a draft costing sheet
func (h *CostingHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	sheetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sheet ID")
		return
	}

	var req costing.UpdateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.sheetService.Update(c.Request.Context(), tenantID, sheetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Finalize freezes a costing sheet for quoting
func (h *CostingHandler) Finalize(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	sheetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sheet ID")
		return
	}

	resp, err := h.sheetService.Finalize(c.Request.Context(), tenantID, sheetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a draft costing sheet
func (h *CostingHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	sheetID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sheet ID")
		return
	}

	if err := h.sheetService.Delete(c.Request.Context(), tenantID, sheetID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ValidateFormula checks a costing formula without touching any sheet
func (h *CostingHandler) ValidateFormula(c *gin.Context) {
	var req costing.ValidateFormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	h.Success(c, h.sheetService.ValidateFormula(req))
}
