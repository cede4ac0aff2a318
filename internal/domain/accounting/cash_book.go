package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CashBookEntryType classifies cash book entries
type CashBookEntryType string

const (
	CashBookEntryTypeReceipt CashBookEntryType = "RECEIPT"
	CashBookEntryTypePayment CashBookEntryType = "PAYMENT"
)

// IsValid checks if the type is a valid CashBookEntryType
func (t CashBookEntryType) IsValid() bool {
	return t == CashBookEntryTypeReceipt || t == CashBookEntryTypePayment
}

// CashBookEntry is one line in the company cash book. Entries are
// append-only once recorded; corrections go in as counter-entries.
type CashBookEntry struct {
	shared.TenantAggregateRoot
	EntryDate    time.Time         `gorm:"not null;index"`
	Type         CashBookEntryType `gorm:"type:varchar(10);not null"`
	Amount       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Counterparty string            `gorm:"type:varchar(200);not null"`
	Category     string            `gorm:"type:varchar(50)"` // sales, materials, wages, utilities, other
	Reference    string            `gorm:"type:varchar(50);index"` // Source document number, if any
	Note         string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CashBookEntry) TableName() string {
	return "cash_book_entries"
}

// NewCashBookEntry records a cash receipt or payment.
// The entry date must fall inside the given open fiscal period.
func NewCashBookEntry(tenantID uuid.UUID, period *FiscalPeriod, entryDate time.Time, entryType CashBookEntryType, amount decimal.Decimal, counterparty, category string) (*CashBookEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Entry type must be RECEIPT or PAYMENT")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if counterparty == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Counterparty cannot be empty")
	}
	if period == nil || !period.IsOpen() {
		return nil, shared.ErrPeriodClosed
	}
	if !period.Contains(entryDate) {
		return nil, shared.NewDomainError("DATE_OUT_OF_PERIOD", "Entry date falls outside the fiscal period")
	}

	return &CashBookEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryDate:           entryDate,
		Type:                entryType,
		Amount:              amount,
		Counterparty:        counterparty,
		Category:            category,
		Reference:           "",
	}, nil
}

// SetReference ties the entry to a source document
func (e *CashBookEntry) SetReference(reference string) {
	e.Reference = reference
	e.Touch()
	e.IncrementVersion()
}

// SetNote attaches a free-form note
func (e *CashBookEntry) SetNote(note string) {
	e.Note = note
	e.Touch()
	e.IncrementVersion()
}

// Signed returns the amount signed by direction: receipts positive,
// payments negative
func (e *CashBookEntry) Signed() decimal.Decimal {
	if e.Type == CashBookEntryTypePayment {
		return e.Amount.Neg()
	}
	return e.Amount
}

// RunningBalance is one row of the cash book report
type RunningBalance struct {
	Entry   CashBookEntry
	Balance decimal.Decimal
}

// ComputeRunningBalances folds a date-ordered entry list into running
// balances starting from the opening balance
func ComputeRunningBalances(opening decimal.Decimal, entries []CashBookEntry) []RunningBalance {
	rows := make([]RunningBalance, 0, len(entries))
	balance := opening
	for _, entry := range entries {
		balance = balance.Add(entry.Signed())
		rows = append(rows, RunningBalance{Entry: entry, Balance: balance})
	}
	return rows
}
