package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/document"
)

// ReminderHandler handles reminder and reminder-conflict endpoints
type ReminderHandler struct {
	BaseHandler
	reminderService *document.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *document.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// Schedule schedules a reminder. When it lands too close to an existing
// one for the same assignee, a conflict is recorded and returned
// alongside the pending reminder.
func (h *ReminderHandler) Schedule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req document.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.reminderService.Schedule(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a reminder by ID
func (h *ReminderHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	reminderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid reminder ID")
		return
	}

	resp, err := h.reminderService.GetByID(c.Request.Context(), tenantID, reminderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns reminders matching the filter
func (h *ReminderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter document.ReminderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	reminders, total, err := h.reminderService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, reminders, total, page, pageSize)
}

// Reschedule moves a pending reminder to a new time
func (h *ReminderHandler) Reschedule(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	reminderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid reminder ID")
		return
	}

	var req document.RescheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.reminderService.Reschedule(c.Request.Context(), tenantID, reminderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Complete marks a reminder done
func (h *ReminderHandler) Complete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	reminderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid reminder ID")
		return
	}

	resp, err := h.reminderService.Complete(c.Request.Context(), tenantID, reminderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Cancel cancels a pending reminder
func (h *ReminderHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User context required")
		return
	}
	reminderID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid reminder ID")
		return
	}

	resp, err := h.reminderService.Cancel(c.Request.Context(), tenantID, reminderID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListConflicts returns detected reminder conflicts
func (h *ReminderHandler) ListConflicts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePage(page, pageSize)

	conflicts, err := h.reminderService.ListConflicts(c.Request.Context(), tenantID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, conflicts)
}

// GetConflict returns one reminder conflict
func (h *ReminderHandler) GetConflict(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	conflictID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conflict ID")
		return
	}

	resp, err := h.reminderService.GetConflict(c.Request.Context(), tenantID, conflictID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ResolveConflict applies a resolution strategy to a pending conflict
func (h *ReminderHandler) ResolveConflict(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	resolverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User context required")
		return
	}
	conflictID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid conflict ID")
		return
	}

	var req document.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.reminderService.ResolveConflict(c.Request.Context(), tenantID, conflictID, resolverID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// NotifyOverdue flags overdue reminders across tenants
func (h *ReminderHandler) NotifyOverdue(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	notified, err := h.reminderService.NotifyOverdue(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"notified": notified})
}
