package accounting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockJournalEntryRepository is a mock implementation of accounting.JournalEntryRepository
type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status accounting.JournalEntryStatus, filter shared.Filter) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, from, to, filter)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]accounting.JournalEntry, error) {
	args := m.Called(ctx, tenantID, reference)
	return args.Get(0).([]accounting.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) Save(ctx context.Context, entry *accounting.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) SaveWithLockAndEvents(ctx context.Context, entry *accounting.JournalEntry, events []shared.DomainEvent) error {
	args := m.Called(ctx, entry, events)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJournalEntryRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockFiscalPeriodRepository is a mock implementation of accounting.FiscalPeriodRepository
type MockFiscalPeriodRepository struct {
	mock.Mock
}

func (m *MockFiscalPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.FiscalPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]accounting.FiscalPeriod, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*accounting.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindOverlapping(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]accounting.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, startDate, endDate)
	return args.Get(0).([]accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) ([]accounting.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]accounting.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) Save(ctx context.Context, period *accounting.FiscalPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockFiscalPeriodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFiscalPeriodRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newBalancedEntry(t *testing.T, tenantID uuid.UUID, entryDate time.Time) *accounting.JournalEntry {
	t.Helper()
	entry, err := accounting.NewJournalEntry(tenantID, "JE-2026-00001", entryDate, "cash sale")
	assert.NoError(t, err)
	assert.NoError(t, entry.AddDebit("1000", "Cash", decimal.NewFromFloat(120.00)))
	assert.NoError(t, entry.AddCredit("4000", "Sales Revenue", decimal.NewFromFloat(120.00)))
	entry.ClearDomainEvents()
	return entry
}

func openPeriodFor(t *testing.T, tenantID uuid.UUID, date time.Time) *accounting.FiscalPeriod {
	t.Helper()
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	period, err := accounting.NewFiscalPeriod(tenantID, start.Format("2006-01"), start, start.AddDate(0, 1, -1))
	assert.NoError(t, err)
	period.ClearDomainEvents()
	return period
}

// =============================================================================
// JournalService Tests
// =============================================================================

func TestJournalService_Create(t *testing.T) {
	tenantID := uuid.New()

	entryRepo := new(MockJournalEntryRepository)
	periodRepo := new(MockFiscalPeriodRepository)
	service := NewJournalService(entryRepo, periodRepo)

	entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00015", nil)
	entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry"), mock.Anything).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, CreateJournalEntryRequest{
		EntryDate: time.Now(),
		Memo:      "advance received",
		Reference: "SO-2026-00021",
		Lines: []JournalLineInput{
			{AccountCode: "1000", AccountName: "Cash", Debit: decimal.NewFromFloat(30.00)},
			{AccountCode: "2100", AccountName: "Customer Advances", Credit: decimal.NewFromFloat(30.00)},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "JE-2026-00015", resp.EntryNumber)
	assert.Len(t, resp.Lines, 2)
	assert.True(t, resp.TotalDebit.Equal(resp.TotalCredit))
	assert.Equal(t, string(accounting.JournalEntryStatusDraft), resp.Status)
}

func TestJournalService_Post(t *testing.T) {
	tenantID := uuid.New()
	entryDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	t.Run("posts balanced entry into its open period", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		periodRepo := new(MockFiscalPeriodRepository)
		service := NewJournalService(entryRepo, periodRepo)

		entry := newBalancedEntry(t, tenantID, entryDate)
		period := openPeriodFor(t, tenantID, entryDate)

		entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)
		periodRepo.On("FindByDate", mock.Anything, tenantID, entryDate).Return(period, nil)
		entryRepo.On("SaveWithLockAndEvents", mock.Anything, entry, mock.Anything).Return(nil)

		resp, err := service.Post(context.Background(), tenantID, entry.ID)

		assert.NoError(t, err)
		assert.Equal(t, string(accounting.JournalEntryStatusPosted), resp.Status)
		assert.NotNil(t, resp.PostedAt)
	})

	t.Run("fails when no period covers the entry date", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		periodRepo := new(MockFiscalPeriodRepository)
		service := NewJournalService(entryRepo, periodRepo)

		entry := newBalancedEntry(t, tenantID, entryDate)
		entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)
		periodRepo.On("FindByDate", mock.Anything, tenantID, entryDate).Return(nil, shared.ErrNotFound)

		_, err := service.Post(context.Background(), tenantID, entry.ID)

		assert.ErrorIs(t, err, shared.ErrPeriodClosed)
	})

	t.Run("rejects posting into a closed period", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		periodRepo := new(MockFiscalPeriodRepository)
		service := NewJournalService(entryRepo, periodRepo)

		entry := newBalancedEntry(t, tenantID, entryDate)
		period := openPeriodFor(t, tenantID, entryDate)
		assert.NoError(t, period.Close())
		period.ClearDomainEvents()

		entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)
		periodRepo.On("FindByDate", mock.Anything, tenantID, entryDate).Return(period, nil)

		_, err := service.Post(context.Background(), tenantID, entry.ID)

		assert.ErrorIs(t, err, shared.ErrPeriodClosed)
	})

	t.Run("rejects posting an unbalanced entry", func(t *testing.T) {
		entryRepo := new(MockJournalEntryRepository)
		periodRepo := new(MockFiscalPeriodRepository)
		service := NewJournalService(entryRepo, periodRepo)

		entry, err := accounting.NewJournalEntry(tenantID, "JE-2026-00002", entryDate, "lopsided")
		assert.NoError(t, err)
		assert.NoError(t, entry.AddDebit("1000", "Cash", decimal.NewFromFloat(100.00)))
		assert.NoError(t, entry.AddCredit("4000", "Sales Revenue", decimal.NewFromFloat(90.00)))
		period := openPeriodFor(t, tenantID, entryDate)

		entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)
		periodRepo.On("FindByDate", mock.Anything, tenantID, entryDate).Return(period, nil)

		_, err = service.Post(context.Background(), tenantID, entry.ID)

		assert.ErrorIs(t, err, shared.ErrUnbalancedEntry)
	})
}

func TestJournalService_Reverse(t *testing.T) {
	tenantID := uuid.New()
	entryDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	entryRepo := new(MockJournalEntryRepository)
	periodRepo := new(MockFiscalPeriodRepository)
	service := NewJournalService(entryRepo, periodRepo)

	entry := newBalancedEntry(t, tenantID, entryDate)
	period := openPeriodFor(t, tenantID, entryDate)
	assert.NoError(t, entry.Post(period))
	entry.ClearDomainEvents()

	entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)
	entryRepo.On("GenerateNumber", mock.Anything, tenantID).Return("JE-2026-00099", nil)
	entryRepo.On("SaveWithLockAndEvents", mock.Anything, mock.AnythingOfType("*accounting.JournalEntry"), mock.Anything).Return(nil)

	resp, err := service.Reverse(context.Background(), tenantID, entry.ID)

	assert.NoError(t, err)
	assert.Equal(t, "JE-2026-00099", resp.EntryNumber)
	assert.Equal(t, entry.ID, *resp.ReversalOf)
	assert.True(t, resp.TotalDebit.Equal(resp.TotalCredit))
	assert.Equal(t, string(accounting.JournalEntryStatusReversed), string(entry.Status))

	// The mirrored draft swaps each leg.
	for _, line := range resp.Lines {
		if line.AccountCode == "1000" {
			assert.True(t, line.Credit.Equal(decimal.NewFromFloat(120.00)))
		}
	}
}

func TestJournalService_Delete(t *testing.T) {
	tenantID := uuid.New()
	entryDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	entryRepo := new(MockJournalEntryRepository)
	periodRepo := new(MockFiscalPeriodRepository)
	service := NewJournalService(entryRepo, periodRepo)

	entry := newBalancedEntry(t, tenantID, entryDate)
	period := openPeriodFor(t, tenantID, entryDate)
	assert.NoError(t, entry.Post(period))
	entry.ClearDomainEvents()

	entryRepo.On("FindByIDForTenant", mock.Anything, tenantID, entry.ID).Return(entry, nil)

	err := service.Delete(context.Background(), tenantID, entry.ID)

	assert.Error(t, err)
	entryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
