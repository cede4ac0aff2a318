package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeReminder         = "Reminder"
	AggregateTypeReminderConflict = "ReminderConflict"
)

// Event type constants
const (
	EventTypeReminderDue              = "ReminderDue"
	EventTypeReminderConflictDetected = "ReminderConflictDetected"
	EventTypeReminderConflictResolved = "ReminderConflictResolved"
)

// ReminderDueEvent is published by the scheduler when a pending reminder
// passes its due time
type ReminderDueEvent struct {
	shared.BaseDomainEvent
	ReminderID     uuid.UUID `json:"reminder_id"`
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	AssigneeID     uuid.UUID `json:"assignee_id"`
	DueAt          time.Time `json:"due_at"`
	Note           string    `json:"note,omitempty"`
}

// NewReminderDueEvent creates a new ReminderDueEvent
func NewReminderDueEvent(r *Reminder) *ReminderDueEvent {
	return &ReminderDueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReminderDue, AggregateTypeReminder, r.ID, r.TenantID),
		ReminderID:      r.ID,
		DocumentID:      r.DocumentID,
		DocumentNumber:  r.DocumentNumber,
		AssigneeID:      r.AssigneeID,
		DueAt:           r.DueAt,
		Note:            r.Note,
	}
}

// ReminderConflictDetectedEvent is published when scheduling collides
type ReminderConflictDetectedEvent struct {
	shared.BaseDomainEvent
	ConflictID         uuid.UUID `json:"conflict_id"`
	ExistingReminderID uuid.UUID `json:"existing_reminder_id"`
	IncomingReminderID uuid.UUID `json:"incoming_reminder_id"`
	DocumentID         uuid.UUID `json:"document_id"`
	AssigneeID         uuid.UUID `json:"assignee_id"`
}

// NewReminderConflictDetectedEvent creates a new ReminderConflictDetectedEvent
func NewReminderConflictDetectedEvent(c *ReminderConflict) *ReminderConflictDetectedEvent {
	return &ReminderConflictDetectedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeReminderConflictDetected, AggregateTypeReminderConflict, c.ID, c.TenantID),
		ConflictID:         c.ID,
		ExistingReminderID: c.ExistingReminderID,
		IncomingReminderID: c.IncomingReminderID,
		DocumentID:         c.DocumentID,
		AssigneeID:         c.AssigneeID,
	}
}

// ReminderConflictResolvedEvent is published when a conflict closes
type ReminderConflictResolvedEvent struct {
	shared.BaseDomainEvent
	ConflictID uuid.UUID        `json:"conflict_id"`
	Strategy   ConflictStrategy `json:"strategy"`
}

// NewReminderConflictResolvedEvent creates a new ReminderConflictResolvedEvent
func NewReminderConflictResolvedEvent(c *ReminderConflict) *ReminderConflictResolvedEvent {
	return &ReminderConflictResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReminderConflictResolved, AggregateTypeReminderConflict, c.ID, c.TenantID),
		ConflictID:      c.ID,
		Strategy:        c.Strategy,
	}
}
