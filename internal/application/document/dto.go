package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
)

// ==================== Template DTOs ====================

// MarginsInput carries template margins in millimetres
type MarginsInput struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// CreateTemplateRequest represents a request to create a print template
type CreateTemplateRequest struct {
	Name         string        `json:"name" binding:"required,min=1,max=100"`
	DocumentType string        `json:"document_type" binding:"required"`
	PaperSize    string        `json:"paper_size" binding:"required"`
	Orientation  *string       `json:"orientation"`
	Margins      *MarginsInput `json:"margins"`
	HTML         string        `json:"html" binding:"required"`
	MakeDefault  bool          `json:"make_default"`
}

// UpdateTemplateRequest represents a request to update a template
type UpdateTemplateRequest struct {
	HTML        *string       `json:"html"`
	PaperSize   *string       `json:"paper_size"`
	Orientation *string       `json:"orientation"`
	Margins     *MarginsInput `json:"margins"`
}

// TemplateResponse represents a print template in API responses
type TemplateResponse struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	DocumentType string       `json:"document_type"`
	PaperSize    string       `json:"paper_size"`
	Orientation  string       `json:"orientation"`
	Margins      MarginsInput `json:"margins"`
	HTML         string       `json:"html,omitempty"`
	IsDefault    bool         `json:"is_default"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ToTemplateResponse converts a template aggregate to a response DTO
func ToTemplateResponse(t *document.DocTemplate, includeHTML bool) TemplateResponse {
	response := TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		DocumentType: string(t.DocumentType),
		PaperSize:    string(t.PaperSize),
		Orientation:  string(t.Orientation),
		Margins: MarginsInput{
			Top:    t.Margins.Top,
			Right:  t.Margins.Right,
			Bottom: t.Margins.Bottom,
			Left:   t.Margins.Left,
		},
		IsDefault: t.IsDefault,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if includeHTML {
		response.HTML = t.HTML
	}
	return response
}

// ToTemplateResponses converts a slice of templates without their HTML
func ToTemplateResponses(templates []document.DocTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i], false)
	}
	return responses
}

// RenderRequest renders a document template with caller-supplied data.
// When TemplateID is nil the default template for the type is used.
type RenderRequest struct {
	TemplateID   *uuid.UUID             `json:"template_id"`
	DocumentType string                 `json:"document_type" binding:"required"`
	Format       string                 `json:"format" binding:"omitempty,oneof=HTML PDF"`
	Data         map[string]interface{} `json:"data" binding:"required"`
}

// RenderResult carries the rendered document
type RenderResult struct {
	ContentType string
	Body        []byte
}

// StoredRenderResult carries an archived PDF render and its download link
type StoredRenderResult struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Body        []byte    `json:"-"`
}

// ==================== Dispatch DTOs ====================

// DispatchRequest sends a business document over a channel
type DispatchRequest struct {
	DocumentType   string    `json:"document_type" binding:"required"`
	DocumentID     uuid.UUID `json:"document_id" binding:"required"`
	DocumentNumber string    `json:"document_number" binding:"required"`
	Channel        string    `json:"channel" binding:"required,oneof=EMAIL WHATSAPP PRINT PDF"`
	Recipient      string    `json:"recipient"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
}

// CommunicationListFilter represents filter options for dispatch logs
type CommunicationListFilter struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CommunicationResponse represents one dispatch in API responses
type CommunicationResponse struct {
	ID                uuid.UUID  `json:"id"`
	DocumentType      string     `json:"document_type"`
	DocumentID        uuid.UUID  `json:"document_id"`
	DocumentNumber    string     `json:"document_number"`
	Channel           string     `json:"channel"`
	Recipient         string     `json:"recipient,omitempty"`
	Status            string     `json:"status"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToCommunicationResponse converts a dispatch log to a response DTO
func ToCommunicationResponse(l *document.CommunicationLog) CommunicationResponse {
	return CommunicationResponse{
		ID:                l.ID,
		DocumentType:      string(l.DocumentType),
		DocumentID:        l.DocumentID,
		DocumentNumber:    l.DocumentNumber,
		Channel:           string(l.Channel),
		Recipient:         l.Recipient,
		Status:            string(l.Status),
		ProviderMessageID: l.ProviderMessageID,
		ErrorMessage:      l.ErrorMessage,
		SentAt:            l.SentAt,
		CreatedAt:         l.CreatedAt,
	}
}

// ToCommunicationResponses converts a slice of dispatch logs
func ToCommunicationResponses(logs []document.CommunicationLog) []CommunicationResponse {
	responses := make([]CommunicationResponse, len(logs))
	for i := range logs {
		responses[i] = ToCommunicationResponse(&logs[i])
	}
	return responses
}

// ==================== Reminder DTOs ====================

// CreateReminderRequest schedules a follow-up reminder
type CreateReminderRequest struct {
	DocumentType   string    `json:"document_type" binding:"required"`
	DocumentID     uuid.UUID `json:"document_id" binding:"required"`
	DocumentNumber string    `json:"document_number"`
	AssigneeID     uuid.UUID `json:"assignee_id" binding:"required"`
	DueAt          time.Time `json:"due_at" binding:"required"`
	Note           string    `json:"note"`
}

// RescheduleReminderRequest moves a reminder's due time
type RescheduleReminderRequest struct {
	DueAt time.Time `json:"due_at" binding:"required"`
}

// ResolveConflictRequest applies a resolution strategy to a conflict
type ResolveConflictRequest struct {
	Strategy string `json:"strategy" binding:"required,oneof=KEEP_EXISTING REPLACE MERGE"`
}

// ReminderListFilter represents filter options for reminder lists
type ReminderListFilter struct {
	AssigneeID *uuid.UUID `form:"assignee_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReminderResponse represents a reminder in API responses
type ReminderResponse struct {
	ID             uuid.UUID  `json:"id"`
	DocumentType   string     `json:"document_type"`
	DocumentID     uuid.UUID  `json:"document_id"`
	DocumentNumber string     `json:"document_number,omitempty"`
	AssigneeID     uuid.UUID  `json:"assignee_id"`
	DueAt          time.Time  `json:"due_at"`
	Note           string     `json:"note,omitempty"`
	Status         string     `json:"status"`
	Overdue        bool       `json:"overdue"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ToReminderResponse converts a reminder aggregate to a response DTO
func ToReminderResponse(r *document.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:             r.ID,
		DocumentType:   string(r.DocumentType),
		DocumentID:     r.DocumentID,
		DocumentNumber: r.DocumentNumber,
		AssigneeID:     r.AssigneeID,
		DueAt:          r.DueAt,
		Note:           r.Note,
		Status:         string(r.Status),
		Overdue:        r.IsOverdue(),
		CompletedAt:    r.CompletedAt,
		CancelledAt:    r.CancelledAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// ToReminderResponses converts a slice of reminders
func ToReminderResponses(reminders []document.Reminder) []ReminderResponse {
	responses := make([]ReminderResponse, len(reminders))
	for i := range reminders {
		responses[i] = ToReminderResponse(&reminders[i])
	}
	return responses
}

// ConflictResponse represents a reminder conflict in API responses
type ConflictResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ExistingReminderID uuid.UUID  `json:"existing_reminder_id"`
	IncomingReminderID uuid.UUID  `json:"incoming_reminder_id"`
	DocumentID         uuid.UUID  `json:"document_id"`
	AssigneeID         uuid.UUID  `json:"assignee_id"`
	WindowHours        float64    `json:"window_hours"`
	Status             string     `json:"status"`
	Strategy           string     `json:"strategy,omitempty"`
	ResolvedBy         *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ScheduleReminderResult carries the created reminder and, when a
// collision was detected, the conflict awaiting resolution.
type ScheduleReminderResult struct {
	Reminder ReminderResponse  `json:"reminder"`
	Conflict *ConflictResponse `json:"conflict,omitempty"`
}

// ToConflictResponse converts a conflict aggregate to a response DTO
func ToConflictResponse(c *document.ReminderConflict) ConflictResponse {
	return ConflictResponse{
		ID:                 c.ID,
		ExistingReminderID: c.ExistingReminderID,
		IncomingReminderID: c.IncomingReminderID,
		DocumentID:         c.DocumentID,
		AssigneeID:         c.AssigneeID,
		WindowHours:        c.Window.Hours(),
		Status:             string(c.Status),
		Strategy:           string(c.Strategy),
		ResolvedBy:         c.ResolvedBy,
		ResolvedAt:         c.ResolvedAt,
		CreatedAt:          c.CreatedAt,
	}
}

// ToConflictResponses converts a slice of conflicts
func ToConflictResponses(conflicts []document.ReminderConflict) []ConflictResponse {
	responses := make([]ConflictResponse, len(conflicts))
	for i := range conflicts {
		responses[i] = ToConflictResponse(&conflicts[i])
	}
	return responses
}
