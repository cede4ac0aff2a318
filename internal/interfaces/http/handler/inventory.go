package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printcloud/backend/internal/application/inventory"
)

// InventoryHandler handles inventory item and stock movement endpoints
type InventoryHandler struct {
	BaseHandler
	itemService *inventory.ItemService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(itemService *inventory.ItemService) *InventoryHandler {
	return &InventoryHandler{itemService: itemService}
}

// Create creates a new inventory item
func (h *InventoryHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req inventory.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.itemService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns an item by ID
func (h *InventoryHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.itemService.GetByID(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetBySKU returns an item by SKU
func (h *InventoryHandler) GetBySKU(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	resp, err := h.itemService.GetBySKU(c.Request.Context(), tenantID, c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns items matching the filter
func (h *InventoryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter inventory.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	items, total, err := h.itemService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Update updates an item's details
func (h *InventoryHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req inventory.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.itemService.Update(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Receive records received stock, raising quantity on hand
func (h *InventoryHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req inventory.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.itemService.Receive(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Issue records issued stock, lowering quantity on hand
func (h *InventoryHandler) Issue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req inventory.IssueStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.itemService.Issue(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Adjust corrects quantity on hand after a physical count
func (h *InventoryHandler) Adjust(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.itemService.Adjust(c.Request.Context(), tenantID, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Movements returns the stock movement history of an item
func (h *InventoryHandler) Movements(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	var filter inventory.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	movements, total, err := h.itemService.Movements(c.Request.Context(), tenantID, itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, movements, total, page, pageSize)
}

// Activate reactivates an item
func (h *InventoryHandler) Activate(c *gin.Context) {
	h.transition(c, h.itemService.Activate)
}

// Deactivate deactivates an item with zero stock
func (h *InventoryHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.itemService.Deactivate)
}

func (h *InventoryHandler) transition(c *gin.Context, op func(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.ItemResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	itemID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := op(c.Request.Context(), tenantID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
