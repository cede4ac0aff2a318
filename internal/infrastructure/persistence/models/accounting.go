package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/shopspring/decimal"
)

// JournalEntryModel is the persistence model for the JournalEntry aggregate root.
type JournalEntryModel struct {
	TenantAggregateModel
	EntryNumber string                        `gorm:"type:varchar(50);not null;uniqueIndex:idx_journal_entry_tenant_number,priority:2"`
	EntryDate   time.Time                     `gorm:"not null;index"`
	Memo        string                        `gorm:"type:varchar(500)"`
	Reference   string                        `gorm:"type:varchar(50);index"`
	Lines       []JournalLineModel            `gorm:"foreignKey:JournalEntryID;references:ID"`
	Status      accounting.JournalEntryStatus `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	PostedAt    *time.Time
	ReversedAt  *time.Time
	ReversalOf  *uuid.UUID `gorm:"type:uuid"`
	ReversedBy  *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry entity.
func (m *JournalEntryModel) ToDomain() *accounting.JournalEntry {
	e := &accounting.JournalEntry{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		EntryNumber:         m.EntryNumber,
		EntryDate:           m.EntryDate,
		Memo:                m.Memo,
		Reference:           m.Reference,
		Status:              m.Status,
		PostedAt:            m.PostedAt,
		ReversedAt:          m.ReversedAt,
		ReversalOf:          m.ReversalOf,
		ReversedBy:          m.ReversedBy,
		Lines:               make([]accounting.JournalLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		e.Lines[i] = *line.ToDomain()
	}
	return e
}

// FromDomain populates the persistence model from a domain JournalEntry entity.
func (m *JournalEntryModel) FromDomain(e *accounting.JournalEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.EntryNumber = e.EntryNumber
	m.EntryDate = e.EntryDate
	m.Memo = e.Memo
	m.Reference = e.Reference
	m.Status = e.Status
	m.PostedAt = e.PostedAt
	m.ReversedAt = e.ReversedAt
	m.ReversalOf = e.ReversalOf
	m.ReversedBy = e.ReversedBy
	m.Lines = make([]JournalLineModel, len(e.Lines))
	for i, line := range e.Lines {
		m.Lines[i] = *JournalLineModelFromDomain(&line)
	}
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry entity.
func JournalEntryModelFromDomain(e *accounting.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// JournalLineModel is the persistence model for the JournalLine entity.
type JournalLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode    string          `gorm:"type:varchar(20);not null;index"`
	AccountName    string          `gorm:"type:varchar(100);not null"`
	Debit          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalLineModel) TableName() string {
	return "journal_lines"
}

// ToDomain converts the persistence model to a domain JournalLine entity.
func (m *JournalLineModel) ToDomain() *accounting.JournalLine {
	return &accounting.JournalLine{
		ID:             m.ID,
		JournalEntryID: m.JournalEntryID,
		AccountCode:    m.AccountCode,
		AccountName:    m.AccountName,
		Debit:          m.Debit,
		Credit:         m.Credit,
		CreatedAt:      m.CreatedAt,
	}
}

// JournalLineModelFromDomain creates a new persistence model from a domain JournalLine entity.
func JournalLineModelFromDomain(line *accounting.JournalLine) *JournalLineModel {
	return &JournalLineModel{
		ID:             line.ID,
		JournalEntryID: line.JournalEntryID,
		AccountCode:    line.AccountCode,
		AccountName:    line.AccountName,
		Debit:          line.Debit,
		Credit:         line.Credit,
		CreatedAt:      line.CreatedAt,
	}
}
