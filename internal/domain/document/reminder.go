package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// DefaultConflictWindow is how close two reminders for the same document
// and assignee may be scheduled before resolution is required.
const DefaultConflictWindow = 24 * time.Hour

// ReminderStatus represents the status of a reminder
type ReminderStatus string

const (
	// ReminderStatusConflicted holds an incoming reminder that collided
	// with an existing one; it becomes pending only through resolution.
	ReminderStatusConflicted ReminderStatus = "CONFLICTED"
	ReminderStatusPending    ReminderStatus = "PENDING"
	ReminderStatusCompleted  ReminderStatus = "COMPLETED"
	ReminderStatusCancelled  ReminderStatus = "CANCELLED"
	ReminderStatusSuperseded ReminderStatus = "SUPERSEDED"
)

// IsValid checks if the status is a valid ReminderStatus
func (s ReminderStatus) IsValid() bool {
	switch s {
	case ReminderStatusConflicted, ReminderStatusPending, ReminderStatusCompleted,
		ReminderStatusCancelled, ReminderStatusSuperseded:
		return true
	}
	return false
}

// Reminder is the aggregate root for a follow-up attached to a business
// document, typically chasing an unpaid invoice.
type Reminder struct {
	shared.TenantAggregateRoot
	DocumentType    DocumentType   `gorm:"type:varchar(20);not null"`
	DocumentID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	DocumentNumber  string         `gorm:"type:varchar(50);not null"`
	AssigneeID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	DueAt           time.Time      `gorm:"not null;index"`
	Note            string         `gorm:"type:text"`
	Status          ReminderStatus `gorm:"type:varchar(15);not null;default:'PENDING';index"`
	OverdueNotified bool           `gorm:"not null;default:false"`
	CompletedAt     *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (Reminder) TableName() string {
	return "reminders"
}

// NewReminder creates a reminder in pending status
func NewReminder(tenantID uuid.UUID, docType DocumentType, documentID uuid.UUID, documentNumber string, assigneeID uuid.UUID, dueAt time.Time, note string) (*Reminder, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", fmt.Sprintf("Invalid document type: %s", docType))
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if assigneeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Assignee ID cannot be empty")
	}
	if dueAt.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_DUE_TIME", "Due time must be in the future")
	}

	return &Reminder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentType:        docType,
		DocumentID:          documentID,
		DocumentNumber:      documentNumber,
		AssigneeID:          assigneeID,
		DueAt:               dueAt,
		Note:                note,
		Status:              ReminderStatusPending,
	}, nil
}

// IsActive reports whether the reminder still occupies its time slot
func (r *Reminder) IsActive() bool {
	return r.Status == ReminderStatusPending || r.Status == ReminderStatusConflicted
}

// ConflictsWith reports whether another reminder for the same document and
// assignee falls inside the conflict window of this one
func (r *Reminder) ConflictsWith(other *Reminder, window time.Duration) bool {
	if r.ID == other.ID {
		return false
	}
	if r.DocumentID != other.DocumentID || r.AssigneeID != other.AssigneeID {
		return false
	}
	if !r.IsActive() || !other.IsActive() {
		return false
	}
	gap := r.DueAt.Sub(other.DueAt)
	if gap < 0 {
		gap = -gap
	}
	return gap < window
}

// HoldForConflict parks a new reminder until its conflict is resolved
func (r *Reminder) HoldForConflict() error {
	if r.Status != ReminderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending reminders can be held for conflict")
	}

	r.Status = ReminderStatusConflicted
	r.Touch()

	return nil
}

// Release moves a conflicted reminder to pending after resolution
func (r *Reminder) Release() error {
	if r.Status != ReminderStatusConflicted {
		return shared.NewDomainError("INVALID_STATE", "Only conflicted reminders can be released")
	}

	r.Status = ReminderStatusPending
	r.Touch()

	return nil
}

// Reschedule moves the due time of a pending reminder
func (r *Reminder) Reschedule(dueAt time.Time) error {
	if r.Status != ReminderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending reminders can be rescheduled")
	}

	r.DueAt = dueAt
	r.OverdueNotified = false
	r.Touch()

	return nil
}

// AppendNote concatenates another note onto this reminder
func (r *Reminder) AppendNote(note string) {
	if note == "" {
		return
	}
	if r.Note == "" {
		r.Note = note
	} else {
		r.Note = r.Note + "\n" + strings.TrimSpace(note)
	}
	r.Touch()
}

// Complete marks the follow-up done
func (r *Reminder) Complete() error {
	if r.Status != ReminderStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete a reminder in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReminderStatusCompleted
	r.CompletedAt = &now
	r.Touch()

	return nil
}

// Cancel abandons the reminder
func (r *Reminder) Cancel() error {
	if !r.IsActive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a reminder in %s status", r.Status))
	}

	now := time.Now()
	r.Status = ReminderStatusCancelled
	r.CancelledAt = &now
	r.Touch()

	return nil
}

// Supersede retires the reminder in favour of another
func (r *Reminder) Supersede() error {
	if !r.IsActive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot supersede a reminder in %s status", r.Status))
	}

	r.Status = ReminderStatusSuperseded
	r.Touch()

	return nil
}

// IsOverdue reports whether a pending reminder's due time has passed
func (r *Reminder) IsOverdue() bool {
	return r.Status == ReminderStatusPending && r.DueAt.Before(time.Now())
}

// MarkOverdueNotified records that the due event was emitted
func (r *Reminder) MarkOverdueNotified() {
	r.OverdueNotified = true
	r.Touch()
}
