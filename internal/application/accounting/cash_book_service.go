package accounting

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
)

// CashBookService handles cash book business operations
type CashBookService struct {
	cashRepo   accounting.CashBookRepository
	periodRepo accounting.FiscalPeriodRepository
}

// NewCashBookService creates a new CashBookService
func NewCashBookService(cashRepo accounting.CashBookRepository, periodRepo accounting.FiscalPeriodRepository) *CashBookService {
	return &CashBookService{
		cashRepo:   cashRepo,
		periodRepo: periodRepo,
	}
}

// Record records a cash receipt or payment. The entry date must fall
// inside an open fiscal period.
func (s *CashBookService) Record(ctx context.Context, tenantID uuid.UUID, req CreateCashEntryRequest) (*CashEntryResponse, error) {
	period, err := s.periodRepo.FindByDate(ctx, tenantID, req.EntryDate)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrPeriodClosed
		}
		return nil, err
	}

	entry, err := accounting.NewCashBookEntry(tenantID, period, req.EntryDate,
		accounting.CashBookEntryType(req.Type), req.Amount, req.Counterparty, req.Category)
	if err != nil {
		return nil, err
	}
	entry.Reference = req.Reference
	entry.Note = req.Note

	if err := s.cashRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToCashEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves a cash book entry by ID
func (s *CashBookService) GetByID(ctx context.Context, tenantID, entryID uuid.UUID) (*CashEntryResponse, error) {
	entry, err := s.cashRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	response := ToCashEntryResponse(entry)
	return &response, nil
}

// Report builds the cash book with running balances over a date range
func (s *CashBookService) Report(ctx context.Context, tenantID uuid.UUID, req CashBookReportRequest) (*CashBookReportResponse, error) {
	if req.To.Before(req.From) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Report end date precedes the start date")
	}

	opening, err := s.cashRepo.BalanceBefore(ctx, tenantID, req.From)
	if err != nil {
		return nil, err
	}
	entries, err := s.cashRepo.FindByDateRange(ctx, tenantID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	running := accounting.ComputeRunningBalances(opening, entries)
	rows := make([]CashBookRowResponse, len(running))
	closing := opening
	for i, row := range running {
		rows[i] = CashBookRowResponse{
			Entry:   ToCashEntryResponse(&row.Entry),
			Balance: row.Balance,
		}
		closing = row.Balance
	}

	return &CashBookReportResponse{
		From:           req.From,
		To:             req.To,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Rows:           rows,
	}, nil
}
