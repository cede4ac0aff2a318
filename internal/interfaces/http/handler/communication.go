package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printcloud/backend/internal/application/document"
)

// CommunicationHandler handles document dispatch endpoints
type CommunicationHandler struct {
	BaseHandler
	communicationService *document.CommunicationService
}

// NewCommunicationHandler creates a new communication handler
func NewCommunicationHandler(communicationService *document.CommunicationService) *CommunicationHandler {
	return &CommunicationHandler{communicationService: communicationService}
}

// Dispatch queues a business document for delivery over a channel
func (h *CommunicationHandler) Dispatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var userID *uuid.UUID
	if id, err := getUserID(c); err == nil {
		userID = &id
	}

	var req document.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.communicationService.Dispatch(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns one communication log entry
func (h *CommunicationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	logID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid communication ID")
		return
	}

	resp, err := h.communicationService.GetByID(c.Request.Context(), tenantID, logID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns the tenant's communication log
func (h *CommunicationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter document.CommunicationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	logs, total, err := h.communicationService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, logs, total, page, pageSize)
}

// ListByDocument returns the dispatch history of one business document
func (h *CommunicationHandler) ListByDocument(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	documentID, err := parseIDParam(c, "documentId")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var filter document.CommunicationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	logs, err := h.communicationService.ListByDocument(c.Request.Context(), tenantID, documentID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// ProcessQueued delivers queued communications for the tenant
func (h *CommunicationHandler) ProcessQueued(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	processed, err := h.communicationService.ProcessQueued(c.Request.Context(), tenantID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"processed": processed})
}
