package accounting

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeJournalEntry = "JournalEntry"

const (
	EventTypeJournalEntryPosted = "JournalEntryPosted"
)

// JournalEntryPostedEvent is published when an entry posts to the ledger
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID     uuid.UUID       `json:"entry_id"`
	EntryNumber string          `json:"entry_number"`
	EntryDate   time.Time       `json:"entry_date"`
	Reference   string          `json:"reference,omitempty"`
	TotalDebits decimal.Decimal `json:"total_debits"`
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(e *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, e.ID, e.TenantID),
		EntryID:         e.ID,
		EntryNumber:     e.EntryNumber,
		EntryDate:       e.EntryDate,
		Reference:       e.Reference,
		TotalDebits:     e.TotalDebits(),
	}
}
