package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JournalEntryStatus represents the status of a journal entry
type JournalEntryStatus string

const (
	JournalEntryStatusDraft    JournalEntryStatus = "DRAFT"
	JournalEntryStatusPosted   JournalEntryStatus = "POSTED"
	JournalEntryStatusReversed JournalEntryStatus = "REVERSED"
)

// IsValid checks if the status is a valid JournalEntryStatus
func (s JournalEntryStatus) IsValid() bool {
	switch s {
	case JournalEntryStatusDraft, JournalEntryStatusPosted, JournalEntryStatusReversed:
		return true
	}
	return false
}

// JournalLine is one debit-or-credit leg of a journal entry
type JournalLine struct {
	ID             uuid.UUID
	JournalEntryID uuid.UUID
	AccountCode    string
	AccountName    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	CreatedAt      time.Time
}

// JournalEntry is the aggregate root for double-entry postings.
// Entries must balance and may only post into an open fiscal period.
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryNumber string
	EntryDate   time.Time
	Memo        string
	Reference   string // Source document number, if drafted by an event handler
	Lines       []JournalLine
	Status      JournalEntryStatus
	PostedAt    *time.Time
	ReversedAt  *time.Time
	ReversalOf  *uuid.UUID // Points at the entry this one reverses
	ReversedBy  *uuid.UUID // Points at the mirroring entry
}

// NewJournalEntry creates a new journal entry in draft status
func NewJournalEntry(tenantID uuid.UUID, entryNumber string, entryDate time.Time, memo string) (*JournalEntry, error) {
	if entryNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Entry number cannot be empty")
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Entry date cannot be empty")
	}

	return &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntryNumber:         entryNumber,
		EntryDate:           entryDate,
		Memo:                memo,
		Lines:               make([]JournalLine, 0),
		Status:              JournalEntryStatusDraft,
	}, nil
}

// AddDebit adds a debit leg. Only allowed in DRAFT status.
func (e *JournalEntry) AddDebit(accountCode, accountName string, amount decimal.Decimal) error {
	return e.addLine(accountCode, accountName, amount, decimal.Zero)
}

// AddCredit adds a credit leg. Only allowed in DRAFT status.
func (e *JournalEntry) AddCredit(accountCode, accountName string, amount decimal.Decimal) error {
	return e.addLine(accountCode, accountName, decimal.Zero, amount)
}

func (e *JournalEntry) addLine(accountCode, accountName string, debit, credit decimal.Decimal) error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a non-draft entry")
	}
	if accountCode == "" {
		return shared.NewDomainError("INVALID_ACCOUNT", "Account code cannot be empty")
	}
	amount := debit.Add(credit)
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Line amount must be positive")
	}

	e.Lines = append(e.Lines, JournalLine{
		ID:             uuid.New(),
		JournalEntryID: e.ID,
		AccountCode:    accountCode,
		AccountName:    accountName,
		Debit:          debit,
		Credit:         credit,
		CreatedAt:      time.Now(),
	})
	e.Touch()

	return nil
}

// SetReference records the source document this entry was drafted from
func (e *JournalEntry) SetReference(reference string) error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change reference on a non-draft entry")
	}

	e.Reference = reference
	e.Touch()

	return nil
}

// TotalDebits returns the sum of all debit legs
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// TotalCredits returns the sum of all credit legs
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// IsBalanced reports whether debits equal credits
func (e *JournalEntry) IsBalanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}

// Post validates the entry and posts it into the given fiscal period.
// The period must be open and contain the entry date.
func (e *JournalEntry) Post(period *FiscalPeriod) error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post entry in %s status", e.Status))
	}
	if len(e.Lines) < 2 {
		return shared.NewDomainError("TOO_FEW_LINES", "A journal entry needs at least two lines")
	}
	if !e.IsBalanced() {
		return shared.ErrUnbalancedEntry
	}
	if period == nil || !period.IsOpen() {
		return shared.ErrPeriodClosed
	}
	if !period.Contains(e.EntryDate) {
		return shared.NewDomainError("DATE_OUT_OF_PERIOD", "Entry date falls outside the fiscal period")
	}

	now := time.Now()
	e.Status = JournalEntryStatusPosted
	e.PostedAt = &now
	e.Touch()

	e.AddDomainEvent(NewJournalEntryPostedEvent(e))

	return nil
}

// Reverse builds the mirrored entry that undoes this posting and marks
// this entry reversed. The reversal is returned as a draft dated
// reversalDate and must itself be posted into an open period.
func (e *JournalEntry) Reverse(entryNumber string, reversalDate time.Time) (*JournalEntry, error) {
	if e.Status != JournalEntryStatusPosted {
		return nil, shared.NewDomainError("INVALID_STATE", "Only posted entries can be reversed")
	}

	reversal, err := NewJournalEntry(e.TenantID, entryNumber, reversalDate, "Reversal of "+e.EntryNumber)
	if err != nil {
		return nil, err
	}
	reversal.Reference = e.Reference
	reversal.ReversalOf = &e.ID

	for _, line := range e.Lines {
		var lineErr error
		if line.Debit.IsPositive() {
			lineErr = reversal.AddCredit(line.AccountCode, line.AccountName, line.Debit)
		} else {
			lineErr = reversal.AddDebit(line.AccountCode, line.AccountName, line.Credit)
		}
		if lineErr != nil {
			return nil, lineErr
		}
	}

	now := time.Now()
	e.Status = JournalEntryStatusReversed
	e.ReversedAt = &now
	e.ReversedBy = &reversal.ID
	e.Touch()

	return reversal, nil
}
