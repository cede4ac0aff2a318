package document

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// Channel identifies how a document was dispatched
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
	ChannelPrint    Channel = "PRINT"
	ChannelPDF      Channel = "PDF"
)

// IsValid checks if the channel is a valid Channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelWhatsApp, ChannelPrint, ChannelPDF:
		return true
	}
	return false
}

// DispatchStatus tracks one dispatch attempt
type DispatchStatus string

const (
	DispatchStatusQueued DispatchStatus = "QUEUED"
	DispatchStatusSent   DispatchStatus = "SENT"
	DispatchStatusFailed DispatchStatus = "FAILED"
)

// CommunicationLog is an append-only record of one dispatch of a business
// document over a channel. Clients poll the log to track delivery.
type CommunicationLog struct {
	shared.TenantAggregateRoot
	DocumentType      DocumentType   `gorm:"type:varchar(20);not null"`
	DocumentID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	DocumentNumber    string         `gorm:"type:varchar(50);not null"`
	Channel           Channel        `gorm:"type:varchar(10);not null"`
	Recipient         string         `gorm:"type:varchar(200)"` // Email address, phone number, or empty for print/pdf
	Status            DispatchStatus `gorm:"type:varchar(10);not null;default:'QUEUED';index"`
	ProviderMessageID string         `gorm:"type:varchar(100)"`
	ErrorMessage      string         `gorm:"type:text"`
	DispatchedBy      *uuid.UUID     `gorm:"type:uuid"`
	SentAt            *time.Time
}

// TableName returns the table name for GORM
func (CommunicationLog) TableName() string {
	return "communication_logs"
}

// NewCommunicationLog queues a dispatch record
func NewCommunicationLog(tenantID uuid.UUID, docType DocumentType, documentID uuid.UUID, documentNumber string, channel Channel, recipient string) (*CommunicationLog, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", fmt.Sprintf("Invalid document type: %s", docType))
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Document ID cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Invalid channel: %s", channel))
	}
	if (channel == ChannelEmail || channel == ChannelWhatsApp) && recipient == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient is required for email and whatsapp")
	}

	return &CommunicationLog{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DocumentType:        docType,
		DocumentID:          documentID,
		DocumentNumber:      documentNumber,
		Channel:             channel,
		Recipient:           recipient,
		Status:              DispatchStatusQueued,
	}, nil
}

// MarkSent records successful delivery
func (l *CommunicationLog) MarkSent(providerMessageID string) error {
	if l.Status != DispatchStatusQueued {
		return shared.NewDomainError("INVALID_STATE", "Only queued dispatches can be marked sent")
	}

	now := time.Now()
	l.Status = DispatchStatusSent
	l.ProviderMessageID = providerMessageID
	l.SentAt = &now
	l.Touch()
	l.IncrementVersion()

	return nil
}

// MarkFailed records delivery failure
func (l *CommunicationLog) MarkFailed(errorMessage string) error {
	if l.Status != DispatchStatusQueued {
		return shared.NewDomainError("INVALID_STATE", "Only queued dispatches can be marked failed")
	}
	if errorMessage == "" {
		return shared.NewDomainError("INVALID_ERROR", "Failure needs an error message")
	}

	l.Status = DispatchStatusFailed
	l.ErrorMessage = errorMessage
	l.Touch()
	l.IncrementVersion()

	return nil
}
