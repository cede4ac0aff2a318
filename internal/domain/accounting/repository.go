package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FiscalPeriodRepository defines persistence operations for fiscal periods
type FiscalPeriodRepository interface {
	shared.TenantRepository[FiscalPeriod]

	// FindByDate finds the period containing the given date
	FindByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (*FiscalPeriod, error)

	// FindOverlapping finds periods intersecting the given range,
	// used to enforce the no-overlap rule on creation
	FindOverlapping(ctx context.Context, tenantID uuid.UUID, startDate, endDate time.Time) ([]FiscalPeriod, error)

	// FindOpen lists open periods for a tenant
	FindOpen(ctx context.Context, tenantID uuid.UUID) ([]FiscalPeriod, error)
}

// JournalEntryRepository defines persistence operations for journal entries
type JournalEntryRepository interface {
	shared.TenantRepository[JournalEntry]

	// FindByNumber finds an entry by its JE- number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*JournalEntry, error)

	// FindByStatus finds entries by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status JournalEntryStatus, filter shared.Filter) ([]JournalEntry, error)

	// FindByDateRange finds entries dated inside a range
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]JournalEntry, error)

	// FindByReference finds entries drafted from a source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]JournalEntry, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, entry *JournalEntry, events []shared.DomainEvent) error

	// GenerateNumber generates the next JE- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// CashBookRepository defines persistence operations for the cash book
type CashBookRepository interface {
	shared.TenantRepository[CashBookEntry]

	// FindByDateRange lists entries dated inside a range, oldest first
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]CashBookEntry, error)

	// BalanceBefore sums signed amounts of all entries dated before the
	// given date, forming the opening balance for a report
	BalanceBefore(ctx context.Context, tenantID uuid.UUID, date time.Time) (decimal.Decimal, error)
}
