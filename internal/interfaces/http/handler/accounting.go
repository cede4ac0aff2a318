package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/printcloud/backend/internal/application/accounting"
)

// AccountingHandler handles fiscal period, journal and cash book endpoints
type AccountingHandler struct {
	BaseHandler
	periodService   *accounting.FiscalPeriodService
	journalService  *accounting.JournalService
	cashBookService *accounting.CashBookService
}

// NewAccountingHandler creates a new accounting handler
func NewAccountingHandler(
	periodService *accounting.FiscalPeriodService,
	journalService *accounting.JournalService,
	cashBookService *accounting.CashBookService,
) *AccountingHandler {
	return &AccountingHandler{
		periodService:   periodService,
		journalService:  journalService,
		cashBookService: cashBookService,
	}
}

// ==================== Fiscal periods ====================

// CreatePeriod opens a new fiscal period
func (h *AccountingHandler) CreatePeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req accounting.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.periodService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetPeriod returns a fiscal period by ID
func (h *AccountingHandler) GetPeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	periodID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	resp, err := h.periodService.GetByID(c.Request.Context(), tenantID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListPeriods returns all fiscal periods of the tenant
func (h *AccountingHandler) ListPeriods(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	periods, err := h.periodService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, periods)
}

// ClosePeriod closes an open fiscal period
func (h *AccountingHandler) ClosePeriod(c *gin.Context) {
	h.periodTransition(c, h.periodService.Close)
}

// ReopenPeriod reopens a closed, unlocked fiscal period
func (h *AccountingHandler) ReopenPeriod(c *gin.Context) {
	h.periodTransition(c, h.periodService.Reopen)
}

// LockPeriod permanently locks a closed fiscal period
func (h *AccountingHandler) LockPeriod(c *gin.Context) {
	h.periodTransition(c, h.periodService.Lock)
}

func (h *AccountingHandler) periodTransition(c *gin.Context, op func(ctx context.Context, tenantID, periodID uuid.UUID) (*accounting.PeriodResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	periodID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid period ID")
		return
	}

	resp, err := op(c.Request.Context(), tenantID, periodID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ==================== Journal entries ====================

// CreateJournalEntry creates a draft journal entry
func (h *AccountingHandler) CreateJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req accounting.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.journalService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetJournalEntry returns a journal entry by ID
func (h *AccountingHandler) GetJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.journalService.GetByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListJournalEntries returns journal entries matching the filter
func (h *AccountingHandler) ListJournalEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var filter accounting.JournalListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, total, err := h.journalService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, pageSize)
}

// AddJournalLine appends a leg to a draft journal entry
func (h *AccountingHandler) AddJournalLine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	var req accounting.JournalLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.journalService.AddLine(c.Request.Context(), tenantID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// PostJournalEntry posts a balanced entry into an open period
func (h *AccountingHandler) PostJournalEntry(c *gin.Context) {
	h.journalTransition(c, h.journalService.Post)
}

// ReverseJournalEntry creates and posts the reversing entry
func (h *AccountingHandler) ReverseJournalEntry(c *gin.Context) {
	h.journalTransition(c, h.journalService.Reverse)
}

// DeleteJournalEntry removes a draft journal entry
func (h *AccountingHandler) DeleteJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	if err := h.journalService.Delete(c.Request.Context(), tenantID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *AccountingHandler) journalTransition(c *gin.Context, op func(ctx context.Context, tenantID, entryID uuid.UUID) (*accounting.JournalEntryResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := op(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ==================== Cash book ====================

// RecordCashEntry records a cash receipt or payment
func (h *AccountingHandler) RecordCashEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req accounting.CreateCashEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.cashBookService.Record(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetCashEntry returns a cash book entry by ID
func (h *AccountingHandler) GetCashEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}
	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entry ID")
		return
	}

	resp, err := h.cashBookService.GetByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CashBookReport returns the running-balance cash book for a date range
func (h *AccountingHandler) CashBookReport(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant context required")
		return
	}

	var req accounting.CashBookReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.cashBookService.Report(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
