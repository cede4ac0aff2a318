package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/document"
)

// TemplateHandler handles document template endpoints
type TemplateHandler struct {
	BaseHandler
	templateService *document.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *document.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create creates a new document template
func (h *TemplateHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req document.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.templateService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a template by ID
func (h *TemplateHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	resp, err := h.templateService.GetByID(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns templates, optionally filtered by document type
func (h *TemplateHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var docType *string
	if raw := c.Query("document_type"); raw != "" {
		docType = &raw
	}

	templates, err := h.templateService.List(c.Request.Context(), tenantID, docType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, templates)
}

// Update updates a template
func (h *TemplateHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req document.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.templateService.Update(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// SetDefault makes a template the default for its document type
func (h *TemplateHandler) SetDefault(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	resp, err := h.templateService.SetDefault(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Activate re-enables a template
func (h *TemplateHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Activate(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Deactivate disables a non-default template
func (h *TemplateHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Deactivate(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Delete removes a non-default template
func (h *TemplateHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Render renders a document as HTML or PDF and streams it back
func (h *TemplateHandler) Render(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req document.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.templateService.Render(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// RenderArchive renders a document as PDF, stores it in object storage and
// returns a short-lived download URL
func (h *TemplateHandler) RenderArchive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req document.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.templateService.RenderAndStore(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
