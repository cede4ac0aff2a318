package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/printcloud/backend/internal/application/purchasing"
)

// maxScanUploadBytes caps a single scan upload at 20 MiB.
const maxScanUploadBytes = 20 << 20

// BillScanHandler handles bill scan upload and review endpoints
type BillScanHandler struct {
	BaseHandler
	scanService *purchasing.BillScanService
}

// NewBillScanHandler creates a new bill scan handler
func NewBillScanHandler(scanService *purchasing.BillScanService) *BillScanHandler {
	return &BillScanHandler{scanService: scanService}
}

// Upload accepts a scanned bill image or PDF as multipart form data
// under the "file" field.
func (h *BillScanHandler) Upload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}
	if fileHeader.Size > maxScanUploadBytes {
		h.BadRequest(c, "Scan file exceeds the 20 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	resp, err := h.scanService.Upload(c.Request.Context(), tenantID, fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a scan by ID
func (h *BillScanHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	resp, err := h.scanService.GetByID(c.Request.Context(), tenantID, scanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns scans matching the filter
func (h *BillScanHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter purchasing.ScanListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	scans, total, err := h.scanService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, scans, total, page, pageSize)
}

// DownloadURL returns a presigned URL for the original scan file
func (h *BillScanHandler) DownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	url, expiresAt, err := h.scanService.DownloadURL(c.Request.Context(), tenantID, scanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"url": url, "expires_at": expiresAt})
}

// Process runs extraction on an uploaded scan
func (h *BillScanHandler) Process(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	resp, err := h.scanService.Process(c.Request.Context(), tenantID, scanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ProcessPending runs extraction on uploaded scans across tenants
func (h *BillScanHandler) ProcessPending(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	processed, err := h.scanService.ProcessPending(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"processed": processed})
}

// Review confirms the extraction result after human review
func (h *BillScanHandler) Review(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	reviewerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	var req purchasing.ReviewScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.scanService.Review(c.Request.Context(), tenantID, scanID, reviewerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Convert turns a reviewed scan into a supplier bill
func (h *BillScanHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	var req purchasing.ConvertScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.scanService.Convert(c.Request.Context(), tenantID, scanID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Discard discards a scan that will not become a bill
func (h *BillScanHandler) Discard(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	scanID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid scan ID")
		return
	}

	// Body is optional; discarding without a reason is allowed.
	var req purchasing.DiscardScanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.scanService.Discard(c.Request.Context(), tenantID, scanID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
