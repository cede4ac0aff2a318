package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// ==================== Fiscal Period DTOs ====================

// CreatePeriodRequest represents a request to open a fiscal period
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required,min=1,max=100"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// PeriodResponse represents a fiscal period in API responses
type PeriodResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	LockedAt  *time.Time `json:"locked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToPeriodResponse converts a fiscal period aggregate to a response DTO
func ToPeriodResponse(p *accounting.FiscalPeriod) PeriodResponse {
	return PeriodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    string(p.Status),
		ClosedAt:  p.ClosedAt,
		LockedAt:  p.LockedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ToPeriodResponses converts a slice of fiscal periods
func ToPeriodResponses(periods []accounting.FiscalPeriod) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}

// ==================== Journal Entry DTOs ====================

// JournalLineInput is one debit-or-credit leg in a request
type JournalLineInput struct {
	AccountCode string          `json:"account_code" binding:"required,min=1,max=20"`
	AccountName string          `json:"account_name" binding:"required,min=1,max=200"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateJournalEntryRequest represents a request to draft a journal entry
type CreateJournalEntryRequest struct {
	EntryDate time.Time          `json:"entry_date" binding:"required"`
	Memo      string             `json:"memo"`
	Reference string             `json:"reference"`
	Lines     []JournalLineInput `json:"lines"`
}

// JournalListFilter represents filter options for journal entry lists
type JournalListFilter struct {
	Status    *string    `form:"status"`
	Reference *string    `form:"reference"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// JournalLineResponse represents one leg in API responses
type JournalLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryResponse represents a journal entry in API responses
type JournalEntryResponse struct {
	ID          uuid.UUID             `json:"id"`
	EntryNumber string                `json:"entry_number"`
	EntryDate   time.Time             `json:"entry_date"`
	Memo        string                `json:"memo"`
	Reference   string                `json:"reference,omitempty"`
	Lines       []JournalLineResponse `json:"lines"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
	Status      string                `json:"status"`
	PostedAt    *time.Time            `json:"posted_at,omitempty"`
	ReversedAt  *time.Time            `json:"reversed_at,omitempty"`
	ReversalOf  *uuid.UUID            `json:"reversal_of,omitempty"`
	ReversedBy  *uuid.UUID            `json:"reversed_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ToJournalEntryResponse converts a journal entry aggregate to a response DTO
func ToJournalEntryResponse(e *accounting.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = JournalLineResponse{
			ID:          line.ID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}
	return JournalEntryResponse{
		ID:          e.ID,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate,
		Memo:        e.Memo,
		Reference:   e.Reference,
		Lines:       lines,
		TotalDebit:  e.TotalDebits(),
		TotalCredit: e.TotalCredits(),
		Status:      string(e.Status),
		PostedAt:    e.PostedAt,
		ReversedAt:  e.ReversedAt,
		ReversalOf:  e.ReversalOf,
		ReversedBy:  e.ReversedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToJournalEntryResponses converts a slice of journal entries
func ToJournalEntryResponses(entries []accounting.JournalEntry) []JournalEntryResponse {
	responses := make([]JournalEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToJournalEntryResponse(&entries[i])
	}
	return responses
}

// ==================== Cash Book DTOs ====================

// CreateCashEntryRequest records a cash receipt or payment
type CreateCashEntryRequest struct {
	EntryDate    time.Time       `json:"entry_date" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=RECEIPT PAYMENT"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Counterparty string          `json:"counterparty" binding:"required,min=1,max=200"`
	Category     string          `json:"category"`
	Reference    string          `json:"reference"`
	Note         string          `json:"note"`
}

// CashBookReportRequest bounds the cash book report
type CashBookReportRequest struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}

// CashEntryResponse represents a cash book entry in API responses
type CashEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	EntryDate    time.Time       `json:"entry_date"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty"`
	Category     string          `json:"category,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToCashEntryResponse converts a cash book entry to a response DTO
func ToCashEntryResponse(e *accounting.CashBookEntry) CashEntryResponse {
	return CashEntryResponse{
		ID:           e.ID,
		EntryDate:    e.EntryDate,
		Type:         string(e.Type),
		Amount:       e.Amount,
		Counterparty: e.Counterparty,
		Category:     e.Category,
		Reference:    e.Reference,
		Note:         e.Note,
		CreatedAt:    e.CreatedAt,
	}
}

// CashBookRowResponse is one report row with its running balance
type CashBookRowResponse struct {
	Entry   CashEntryResponse `json:"entry"`
	Balance decimal.Decimal   `json:"balance"`
}

// CashBookReportResponse is the cash book over a date range
type CashBookReportResponse struct {
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	OpeningBalance decimal.Decimal       `json:"opening_balance"`
	ClosingBalance decimal.Decimal       `json:"closing_balance"`
	Rows           []CashBookRowResponse `json:"rows"`
}
