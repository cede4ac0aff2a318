package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// ConflictStrategy selects how a reminder conflict is resolved
type ConflictStrategy string

const (
	// StrategyKeepExisting discards the incoming reminder.
	StrategyKeepExisting ConflictStrategy = "KEEP_EXISTING"
	// StrategyReplace supersedes the existing reminder with the incoming one.
	StrategyReplace ConflictStrategy = "REPLACE"
	// StrategyMerge keeps the existing reminder at the earliest of the two
	// due times with the notes concatenated; the incoming one is retired.
	StrategyMerge ConflictStrategy = "MERGE"
)

// IsValid checks if the strategy is a valid ConflictStrategy
func (s ConflictStrategy) IsValid() bool {
	switch s {
	case StrategyKeepExisting, StrategyReplace, StrategyMerge:
		return true
	}
	return false
}

// ConflictStatus represents the status of a reminder conflict
type ConflictStatus string

const (
	ConflictStatusDetected ConflictStatus = "DETECTED"
	ConflictStatusResolved ConflictStatus = "RESOLVED"
)

// ReminderConflict is the aggregate root tracking a scheduling collision
// between an existing pending reminder and an incoming one. The incoming
// reminder stays CONFLICTED until the conflict is resolved.
type ReminderConflict struct {
	shared.TenantAggregateRoot
	ExistingReminderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	IncomingReminderID uuid.UUID        `gorm:"type:uuid;not null;index"`
	DocumentID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	AssigneeID         uuid.UUID        `gorm:"type:uuid;not null"`
	Window             time.Duration    `gorm:"not null"` // Stored as nanoseconds
	Status             ConflictStatus   `gorm:"type:varchar(10);not null;default:'DETECTED';index"`
	Strategy           ConflictStrategy `gorm:"type:varchar(15)"`
	ResolvedBy         *uuid.UUID       `gorm:"type:uuid"`
	ResolvedAt         *time.Time
}

// TableName returns the table name for GORM
func (ReminderConflict) TableName() string {
	return "reminder_conflicts"
}

// DetectConflict checks an incoming reminder against existing active
// reminders. On collision it parks the incoming reminder and returns the
// conflict record; otherwise it returns nil.
func DetectConflict(existing []*Reminder, incoming *Reminder, window time.Duration) (*ReminderConflict, error) {
	if window <= 0 {
		window = DefaultConflictWindow
	}

	for _, candidate := range existing {
		if candidate.Status != ReminderStatusPending {
			continue
		}
		if !candidate.ConflictsWith(incoming, window) {
			continue
		}

		if err := incoming.HoldForConflict(); err != nil {
			return nil, err
		}
		conflict := &ReminderConflict{
			TenantAggregateRoot: shared.NewTenantAggregateRoot(incoming.TenantID),
			ExistingReminderID:  candidate.ID,
			IncomingReminderID:  incoming.ID,
			DocumentID:          incoming.DocumentID,
			AssigneeID:          incoming.AssigneeID,
			Window:              window,
			Status:              ConflictStatusDetected,
		}
		conflict.AddDomainEvent(NewReminderConflictDetectedEvent(conflict))
		return conflict, nil
	}

	return nil, nil
}

// Resolve applies the chosen strategy to both reminders and closes the
// conflict. The existing and incoming reminders must be the ones this
// conflict was detected between.
func (c *ReminderConflict) Resolve(strategy ConflictStrategy, resolverID uuid.UUID, existing, incoming *Reminder) error {
	if c.Status != ConflictStatusDetected {
		return shared.NewDomainError("INVALID_STATE", "Conflict is already resolved")
	}
	if !strategy.IsValid() {
		return shared.NewDomainError("INVALID_STRATEGY", fmt.Sprintf("Invalid resolution strategy: %s", strategy))
	}
	if existing == nil || existing.ID != c.ExistingReminderID {
		return shared.NewDomainError("WRONG_REMINDER", "Existing reminder does not match the conflict")
	}
	if incoming == nil || incoming.ID != c.IncomingReminderID {
		return shared.NewDomainError("WRONG_REMINDER", "Incoming reminder does not match the conflict")
	}
	if incoming.Status != ReminderStatusConflicted {
		return shared.NewDomainError("INVALID_STATE", "Incoming reminder is not awaiting resolution")
	}

	switch strategy {
	case StrategyKeepExisting:
		if err := incoming.Cancel(); err != nil {
			return err
		}

	case StrategyReplace:
		if existing.Status == ReminderStatusPending {
			if err := existing.Supersede(); err != nil {
				return err
			}
		}
		if err := incoming.Release(); err != nil {
			return err
		}

	case StrategyMerge:
		if existing.Status != ReminderStatusPending {
			return shared.NewDomainError("INVALID_STATE", "Existing reminder is no longer pending; merge is not possible")
		}
		if incoming.DueAt.Before(existing.DueAt) {
			if err := existing.Reschedule(incoming.DueAt); err != nil {
				return err
			}
		}
		existing.AppendNote(incoming.Note)
		if err := incoming.Supersede(); err != nil {
			return err
		}
	}

	now := time.Now()
	c.Status = ConflictStatusResolved
	c.Strategy = strategy
	c.ResolvedBy = &resolverID
	c.ResolvedAt = &now
	c.Touch()

	c.AddDomainEvent(NewReminderConflictResolvedEvent(c))

	return nil
}

// IsResolved reports whether the conflict is closed
func (c *ReminderConflict) IsResolved() bool {
	return c.Status == ConflictStatusResolved
}
