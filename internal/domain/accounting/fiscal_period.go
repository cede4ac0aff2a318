package accounting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// FiscalPeriodStatus represents the status of a fiscal period
type FiscalPeriodStatus string

const (
	FiscalPeriodStatusOpen   FiscalPeriodStatus = "OPEN"
	FiscalPeriodStatusClosed FiscalPeriodStatus = "CLOSED"
	FiscalPeriodStatusLocked FiscalPeriodStatus = "LOCKED"
)

// IsValid checks if the status is a valid FiscalPeriodStatus
func (s FiscalPeriodStatus) IsValid() bool {
	switch s {
	case FiscalPeriodStatusOpen, FiscalPeriodStatusClosed, FiscalPeriodStatusLocked:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s FiscalPeriodStatus) CanTransitionTo(target FiscalPeriodStatus) bool {
	switch s {
	case FiscalPeriodStatusOpen:
		return target == FiscalPeriodStatusClosed
	case FiscalPeriodStatusClosed:
		return target == FiscalPeriodStatusOpen || target == FiscalPeriodStatusLocked
	case FiscalPeriodStatusLocked:
		return false // Terminal
	}
	return false
}

// FiscalPeriod is the aggregate root for an accounting period.
// Journal and cash book postings are only accepted into open periods.
type FiscalPeriod struct {
	shared.TenantAggregateRoot
	Name      string             `gorm:"type:varchar(100);not null"`
	StartDate time.Time          `gorm:"not null;index"`
	EndDate   time.Time          `gorm:"not null;index"`
	Status    FiscalPeriodStatus `gorm:"type:varchar(10);not null;default:'OPEN'"`
	ClosedAt  *time.Time
	LockedAt  *time.Time
}

// TableName returns the table name for GORM
func (FiscalPeriod) TableName() string {
	return "fiscal_periods"
}

// NewFiscalPeriod creates a new open fiscal period
func NewFiscalPeriod(tenantID uuid.UUID, name string, startDate, endDate time.Time) (*FiscalPeriod, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Period name cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Period end must be after period start")
	}

	return &FiscalPeriod{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              FiscalPeriodStatusOpen,
	}, nil
}

// Contains reports whether the date falls inside the period (inclusive)
func (p *FiscalPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// Overlaps reports whether the given range intersects this period
func (p *FiscalPeriod) Overlaps(startDate, endDate time.Time) bool {
	return !startDate.After(p.EndDate) && !endDate.Before(p.StartDate)
}

// IsOpen reports whether postings are accepted
func (p *FiscalPeriod) IsOpen() bool {
	return p.Status == FiscalPeriodStatusOpen
}

// Close closes the period to further postings
func (p *FiscalPeriod) Close() error {
	if !p.Status.CanTransitionTo(FiscalPeriodStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close period in %s status", p.Status))
	}

	now := time.Now()
	p.Status = FiscalPeriodStatusClosed
	p.ClosedAt = &now
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Reopen reopens a closed period. Locked periods stay locked.
func (p *FiscalPeriod) Reopen() error {
	if !p.Status.CanTransitionTo(FiscalPeriodStatusOpen) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reopen period in %s status", p.Status))
	}

	p.Status = FiscalPeriodStatusOpen
	p.ClosedAt = nil
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Lock permanently seals a closed period
func (p *FiscalPeriod) Lock() error {
	if !p.Status.CanTransitionTo(FiscalPeriodStatusLocked) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot lock period in %s status", p.Status))
	}

	now := time.Now()
	p.Status = FiscalPeriodStatusLocked
	p.LockedAt = &now
	p.Touch()
	p.IncrementVersion()

	return nil
}
