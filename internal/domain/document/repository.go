package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// TemplateRepository defines persistence operations for print templates
type TemplateRepository interface {
	shared.TenantRepository[DocTemplate]

	// FindByType lists templates for a document type
	FindByType(ctx context.Context, tenantID uuid.UUID, docType DocumentType) ([]DocTemplate, error)

	// FindDefault finds the default active template for a document type
	FindDefault(ctx context.Context, tenantID uuid.UUID, docType DocumentType) (*DocTemplate, error)

	// ClearDefault drops the default flag from all templates of a type,
	// run before promoting a new default
	ClearDefault(ctx context.Context, tenantID uuid.UUID, docType DocumentType) error
}

// CommunicationLogRepository defines persistence operations for dispatch logs
type CommunicationLogRepository interface {
	shared.TenantRepository[CommunicationLog]

	// FindByDocument lists dispatches for a business document, newest first
	FindByDocument(ctx context.Context, tenantID, documentID uuid.UUID, filter shared.Filter) ([]CommunicationLog, error)

	// FindQueued lists dispatches awaiting delivery
	FindQueued(ctx context.Context, tenantID uuid.UUID, limit int) ([]CommunicationLog, error)
}

// ReminderRepository defines persistence operations for reminders
type ReminderRepository interface {
	shared.TenantRepository[Reminder]

	// FindActiveByDocumentAndAssignee lists pending and conflicted
	// reminders for a document/assignee pair, used for conflict detection
	FindActiveByDocumentAndAssignee(ctx context.Context, tenantID, documentID, assigneeID uuid.UUID) ([]*Reminder, error)

	// FindByAssignee lists reminders assigned to a user
	FindByAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID, filter shared.Filter) ([]Reminder, error)

	// FindOverdue lists pending reminders due before the given time that
	// have not yet been notified, across tenants; the scheduler drains this
	FindOverdue(ctx context.Context, before time.Time, limit int) ([]Reminder, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, reminder *Reminder, events []shared.DomainEvent) error
}

// ConflictRepository defines persistence operations for reminder conflicts
type ConflictRepository interface {
	shared.TenantRepository[ReminderConflict]

	// FindUnresolved lists open conflicts for a tenant
	FindUnresolved(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ReminderConflict, error)

	// FindByIncomingReminder finds the conflict holding a reminder
	FindByIncomingReminder(ctx context.Context, tenantID, reminderID uuid.UUID) (*ReminderConflict, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, conflict *ReminderConflict, events []shared.DomainEvent) error
}
