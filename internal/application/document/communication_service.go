package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CommunicationService dispatches business documents over delivery
// channels and keeps the append-only dispatch log
type CommunicationService struct {
	logRepo         document.CommunicationLogRepository
	email           EmailSender
	whatsapp        WhatsAppSender
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewCommunicationService creates a new CommunicationService
func NewCommunicationService(logRepo document.CommunicationLogRepository, email EmailSender, whatsapp WhatsAppSender, logger *zap.Logger) *CommunicationService {
	return &CommunicationService{
		logRepo:  logRepo,
		email:    email,
		whatsapp: whatsapp,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *CommunicationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Dispatch records a dispatch and attempts delivery. The log entry ends up
// SENT or FAILED; clients poll the log for the outcome.
func (s *CommunicationService) Dispatch(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, req DispatchRequest) (*CommunicationResponse, error) {
	log, err := document.NewCommunicationLog(tenantID, document.DocumentType(req.DocumentType), req.DocumentID, req.DocumentNumber, document.Channel(req.Channel), req.Recipient)
	if err != nil {
		return nil, err
	}
	log.DispatchedBy = userID

	if err := s.logRepo.Save(ctx, log); err != nil {
		return nil, err
	}

	s.deliver(ctx, log, req.Subject, req.Message)

	if err := s.logRepo.Save(ctx, log); err != nil {
		return nil, err
	}
	s.recordDispatch(ctx, log)

	response := ToCommunicationResponse(log)
	return &response, nil
}

// GetByID retrieves a dispatch log entry
func (s *CommunicationService) GetByID(ctx context.Context, tenantID, logID uuid.UUID) (*CommunicationResponse, error) {
	log, err := s.logRepo.FindByIDForTenant(ctx, tenantID, logID)
	if err != nil {
		return nil, err
	}
	response := ToCommunicationResponse(log)
	return &response, nil
}

// ListByDocument lists dispatches for a business document, newest first
func (s *CommunicationService) ListByDocument(ctx context.Context, tenantID, documentID uuid.UUID, filter CommunicationListFilter) ([]CommunicationResponse, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	logs, err := s.logRepo.FindByDocument(ctx, tenantID, documentID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToCommunicationResponses(logs), nil
}

// List retrieves dispatch logs with pagination
func (s *CommunicationService) List(ctx context.Context, tenantID uuid.UUID, filter CommunicationListFilter) ([]CommunicationResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	logs, err := s.logRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.logRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCommunicationResponses(logs), total, nil
}

// ProcessQueued retries dispatches stuck in QUEUED, typically after a
// crash between save and delivery. Driven by the scheduler.
func (s *CommunicationService) ProcessQueued(ctx context.Context, tenantID uuid.UUID, limit int) (int, error) {
	queued, err := s.logRepo.FindQueued(ctx, tenantID, limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range queued {
		log := &queued[i]
		message := fmt.Sprintf("Please find your document %s attached.", log.DocumentNumber)
		s.deliver(ctx, log, fmt.Sprintf("Document %s", log.DocumentNumber), message)
		if err := s.logRepo.Save(ctx, log); err != nil {
			s.logger.Error("failed to save dispatch outcome",
				zap.String("log_id", log.ID.String()),
				zap.Error(err))
			continue
		}
		s.recordDispatch(ctx, log)
		processed++
	}
	return processed, nil
}

// deliver attempts delivery over the log's channel and transitions the
// entry to SENT or FAILED. PRINT and PDF dispatches have no external
// delivery; recording them is the point.
func (s *CommunicationService) deliver(ctx context.Context, log *document.CommunicationLog, subject, message string) {
	var providerMessageID string
	var err error

	switch log.Channel {
	case document.ChannelEmail:
		providerMessageID, err = s.email.SendEmail(ctx, log.Recipient, subject, message, nil, "")
	case document.ChannelWhatsApp:
		providerMessageID, err = s.whatsapp.SendMessage(ctx, log.Recipient, message)
	case document.ChannelPrint, document.ChannelPDF:
		// Nothing to deliver
	}

	if err != nil {
		s.logger.Warn("document dispatch failed",
			zap.String("log_id", log.ID.String()),
			zap.String("channel", string(log.Channel)),
			zap.Error(err))
		if markErr := log.MarkFailed(err.Error()); markErr != nil {
			s.logger.Error("failed to mark dispatch failed",
				zap.String("log_id", log.ID.String()),
				zap.Error(markErr))
		}
		return
	}

	if markErr := log.MarkSent(providerMessageID); markErr != nil {
		s.logger.Error("failed to mark dispatch sent",
			zap.String("log_id", log.ID.String()),
			zap.Error(markErr))
	}
}

func (s *CommunicationService) recordDispatch(ctx context.Context, log *document.CommunicationLog) {
	if s.businessMetrics == nil {
		return
	}
	s.businessMetrics.RecordCommunication(ctx, log.TenantID, string(log.Channel), string(log.Status))
}

func buildFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	if orderBy != "" {
		filter.OrderBy = orderBy
	}
	if orderDir != "" {
		filter.OrderDir = orderDir
	}
	return filter
}
