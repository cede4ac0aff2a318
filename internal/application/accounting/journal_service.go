package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
)

// JournalService handles journal entry business operations
type JournalService struct {
	entryRepo      accounting.JournalEntryRepository
	periodRepo     accounting.FiscalPeriodRepository
	eventPublisher shared.EventPublisher
}

// NewJournalService creates a new JournalService
func NewJournalService(entryRepo accounting.JournalEntryRepository, periodRepo accounting.FiscalPeriodRepository) *JournalService {
	return &JournalService{
		entryRepo:  entryRepo,
		periodRepo: periodRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *JournalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create drafts a new journal entry
func (s *JournalService) Create(ctx context.Context, tenantID uuid.UUID, req CreateJournalEntryRequest) (*JournalEntryResponse, error) {
	number, err := s.entryRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	entry, err := accounting.NewJournalEntry(tenantID, number, req.EntryDate, req.Memo)
	if err != nil {
		return nil, err
	}
	if req.Reference != "" {
		if err := entry.SetReference(req.Reference); err != nil {
			return nil, err
		}
	}
	for _, line := range req.Lines {
		if line.Debit.IsPositive() {
			err = entry.AddDebit(line.AccountCode, line.AccountName, line.Debit)
		} else {
			err = entry.AddCredit(line.AccountCode, line.AccountName, line.Credit)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToJournalEntryResponse(entry)
	return &response, nil
}

// GetByID retrieves a journal entry by ID
func (s *JournalService) GetByID(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	response := ToJournalEntryResponse(entry)
	return &response, nil
}

// List retrieves journal entries with filtering and pagination
func (s *JournalService) List(ctx context.Context, tenantID uuid.UUID, filter JournalListFilter) ([]JournalEntryResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Reference != nil {
		domainFilter.Filters["reference"] = *filter.Reference
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	entries, err := s.entryRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToJournalEntryResponses(entries), total, nil
}

// AddLine adds a debit-or-credit leg to a draft entry
func (s *JournalService) AddLine(ctx context.Context, tenantID, entryID uuid.UUID, req JournalLineInput) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if req.Debit.IsPositive() {
		err = entry.AddDebit(req.AccountCode, req.AccountName, req.Debit)
	} else {
		err = entry.AddCredit(req.AccountCode, req.AccountName, req.Credit)
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, entry); err != nil {
		return nil, err
	}
	response := ToJournalEntryResponse(entry)
	return &response, nil
}

// Post posts a balanced draft into the open fiscal period containing
// its entry date
func (s *JournalService) Post(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	period, err := s.periodRepo.FindByDate(ctx, tenantID, entry.EntryDate)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.ErrPeriodClosed
		}
		return nil, err
	}
	if err := entry.Post(period); err != nil {
		return nil, err
	}
	if err := s.save(ctx, entry); err != nil {
		return nil, err
	}
	response := ToJournalEntryResponse(entry)
	return &response, nil
}

// Reverse creates the mirrored draft undoing a posted entry, dated
// today, and marks the original reversed
func (s *JournalService) Reverse(ctx context.Context, tenantID, entryID uuid.UUID) (*JournalEntryResponse, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}

	number, err := s.entryRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	reversal, err := entry.Reverse(number, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.SaveWithLockAndEvents(ctx, reversal, reversal.GetDomainEvents()); err != nil {
		return nil, err
	}
	reversal.ClearDomainEvents()

	if err := s.save(ctx, entry); err != nil {
		return nil, err
	}

	response := ToJournalEntryResponse(reversal)
	return &response, nil
}

// Delete removes a draft journal entry
func (s *JournalService) Delete(ctx context.Context, tenantID, entryID uuid.UUID) error {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	if entry.Status != accounting.JournalEntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft entries can be deleted")
	}
	return s.entryRepo.Delete(ctx, entryID)
}

func (s *JournalService) save(ctx context.Context, entry *accounting.JournalEntry) error {
	events := entry.GetDomainEvents()
	if err := s.entryRepo.SaveWithLockAndEvents(ctx, entry, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	entry.ClearDomainEvents()
	return nil
}

func (s *JournalService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func buildFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	return filter
}
