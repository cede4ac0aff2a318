package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReminderService handles follow-up reminders and their scheduling
// conflicts
type ReminderService struct {
	reminderRepo   document.ReminderRepository
	conflictRepo   document.ConflictRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	conflictWindow time.Duration
}

// NewReminderService creates a new ReminderService
func NewReminderService(reminderRepo document.ReminderRepository, conflictRepo document.ConflictRepository, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		reminderRepo:   reminderRepo,
		conflictRepo:   conflictRepo,
		logger:         logger,
		conflictWindow: document.DefaultConflictWindow,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReminderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetConflictWindow overrides the scheduling conflict window
func (s *ReminderService) SetConflictWindow(window time.Duration) {
	if window > 0 {
		s.conflictWindow = window
	}
}

// Schedule creates a reminder. If its due time collides with an existing
// pending reminder for the same document and assignee, the new reminder is
// parked as CONFLICTED and the returned result carries the conflict.
func (s *ReminderService) Schedule(ctx context.Context, tenantID uuid.UUID, req CreateReminderRequest) (*ScheduleReminderResult, error) {
	reminder, err := document.NewReminder(tenantID, document.DocumentType(req.DocumentType), req.DocumentID, req.DocumentNumber, req.AssigneeID, req.DueAt, req.Note)
	if err != nil {
		return nil, err
	}

	existing, err := s.reminderRepo.FindActiveByDocumentAndAssignee(ctx, tenantID, req.DocumentID, req.AssigneeID)
	if err != nil {
		return nil, err
	}

	conflict, err := document.DetectConflict(existing, reminder, s.conflictWindow)
	if err != nil {
		return nil, err
	}

	if err := s.saveReminder(ctx, reminder); err != nil {
		return nil, err
	}

	result := &ScheduleReminderResult{Reminder: ToReminderResponse(reminder)}
	if conflict != nil {
		if err := s.saveConflict(ctx, conflict); err != nil {
			return nil, err
		}
		response := ToConflictResponse(conflict)
		result.Conflict = &response
	}
	return result, nil
}

// GetByID retrieves a reminder by ID
func (s *ReminderService) GetByID(ctx context.Context, tenantID, reminderID uuid.UUID) (*ReminderResponse, error) {
	reminder, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, reminderID)
	if err != nil {
		return nil, err
	}
	response := ToReminderResponse(reminder)
	return &response, nil
}

// List retrieves reminders with filtering and pagination
func (s *ReminderService) List(ctx context.Context, tenantID uuid.UUID, filter ReminderListFilter) ([]ReminderResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	if filter.AssigneeID != nil {
		reminders, err := s.reminderRepo.FindByAssignee(ctx, tenantID, *filter.AssigneeID, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		return ToReminderResponses(reminders), int64(len(reminders)), nil
	}

	reminders, err := s.reminderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reminderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToReminderResponses(reminders), total, nil
}

// Reschedule moves a pending reminder's due time. Rescheduling re-runs
// conflict detection against the other active reminders.
func (s *ReminderService) Reschedule(ctx context.Context, tenantID, reminderID uuid.UUID, req RescheduleReminderRequest) (*ScheduleReminderResult, error) {
	reminder, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, reminderID)
	if err != nil {
		return nil, err
	}
	if err := reminder.Reschedule(req.DueAt); err != nil {
		return nil, err
	}

	active, err := s.reminderRepo.FindActiveByDocumentAndAssignee(ctx, tenantID, reminder.DocumentID, reminder.AssigneeID)
	if err != nil {
		return nil, err
	}
	others := make([]*document.Reminder, 0, len(active))
	for _, candidate := range active {
		if candidate.ID != reminder.ID {
			others = append(others, candidate)
		}
	}

	conflict, err := document.DetectConflict(others, reminder, s.conflictWindow)
	if err != nil {
		return nil, err
	}

	if err := s.saveReminder(ctx, reminder); err != nil {
		return nil, err
	}

	result := &ScheduleReminderResult{Reminder: ToReminderResponse(reminder)}
	if conflict != nil {
		if err := s.saveConflict(ctx, conflict); err != nil {
			return nil, err
		}
		response := ToConflictResponse(conflict)
		result.Conflict = &response
	}
	return result, nil
}

// Complete marks a reminder done
func (s *ReminderService) Complete(ctx context.Context, tenantID, reminderID uuid.UUID) (*ReminderResponse, error) {
	return s.transition(ctx, tenantID, reminderID, (*document.Reminder).Complete)
}

// Cancel abandons a reminder. Cancelling a conflicted reminder also
// resolves its conflict by keeping the existing one.
func (s *ReminderService) Cancel(ctx context.Context, tenantID, reminderID uuid.UUID, userID uuid.UUID) (*ReminderResponse, error) {
	reminder, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, reminderID)
	if err != nil {
		return nil, err
	}

	if reminder.Status == document.ReminderStatusConflicted {
		conflict, err := s.conflictRepo.FindByIncomingReminder(ctx, tenantID, reminderID)
		if err != nil {
			return nil, err
		}
		return s.resolve(ctx, tenantID, conflict, document.StrategyKeepExisting, userID)
	}

	if err := reminder.Cancel(); err != nil {
		return nil, err
	}
	if err := s.saveReminder(ctx, reminder); err != nil {
		return nil, err
	}
	response := ToReminderResponse(reminder)
	return &response, nil
}

// ListConflicts lists open scheduling conflicts
func (s *ReminderService) ListConflicts(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]ConflictResponse, error) {
	filter := buildFilter(page, pageSize, "created_at", "desc")
	conflicts, err := s.conflictRepo.FindUnresolved(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return ToConflictResponses(conflicts), nil
}

// GetConflict retrieves a conflict by ID
func (s *ReminderService) GetConflict(ctx context.Context, tenantID, conflictID uuid.UUID) (*ConflictResponse, error) {
	conflict, err := s.conflictRepo.FindByIDForTenant(ctx, tenantID, conflictID)
	if err != nil {
		return nil, err
	}
	response := ToConflictResponse(conflict)
	return &response, nil
}

// ResolveConflict applies a resolution strategy to an open conflict and
// returns the surviving state of the incoming reminder
func (s *ReminderService) ResolveConflict(ctx context.Context, tenantID, conflictID, resolverID uuid.UUID, req ResolveConflictRequest) (*ReminderResponse, error) {
	conflict, err := s.conflictRepo.FindByIDForTenant(ctx, tenantID, conflictID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, tenantID, conflict, document.ConflictStrategy(req.Strategy), resolverID)
}

// NotifyOverdue sweeps pending reminders past their due time, emits due
// events and marks them notified. Driven by the scheduler; cross-tenant.
func (s *ReminderService) NotifyOverdue(ctx context.Context, limit int) (int, error) {
	overdue, err := s.reminderRepo.FindOverdue(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	notified := 0
	for i := range overdue {
		reminder := &overdue[i]
		reminder.MarkOverdueNotified()
		reminder.AddDomainEvent(document.NewReminderDueEvent(reminder))
		if err := s.saveReminder(ctx, reminder); err != nil {
			s.logger.Error("failed to mark reminder overdue",
				zap.String("reminder_id", reminder.ID.String()),
				zap.Error(err))
			continue
		}
		notified++
	}
	return notified, nil
}

func (s *ReminderService) resolve(ctx context.Context, tenantID uuid.UUID, conflict *document.ReminderConflict, strategy document.ConflictStrategy, resolverID uuid.UUID) (*ReminderResponse, error) {
	existing, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, conflict.ExistingReminderID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, conflict.IncomingReminderID)
	if err != nil {
		return nil, err
	}

	if err := conflict.Resolve(strategy, resolverID, existing, incoming); err != nil {
		return nil, err
	}

	if err := s.saveReminder(ctx, existing); err != nil {
		return nil, err
	}
	if err := s.saveReminder(ctx, incoming); err != nil {
		return nil, err
	}
	if err := s.saveConflict(ctx, conflict); err != nil {
		return nil, err
	}

	response := ToReminderResponse(incoming)
	return &response, nil
}

func (s *ReminderService) transition(ctx context.Context, tenantID, reminderID uuid.UUID, op func(*document.Reminder) error) (*ReminderResponse, error) {
	reminder, err := s.reminderRepo.FindByIDForTenant(ctx, tenantID, reminderID)
	if err != nil {
		return nil, err
	}
	if err := op(reminder); err != nil {
		return nil, err
	}
	if err := s.saveReminder(ctx, reminder); err != nil {
		return nil, err
	}
	response := ToReminderResponse(reminder)
	return &response, nil
}

func (s *ReminderService) saveReminder(ctx context.Context, reminder *document.Reminder) error {
	events := reminder.GetDomainEvents()
	if err := s.reminderRepo.SaveWithLockAndEvents(ctx, reminder, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	reminder.ClearDomainEvents()
	return nil
}

func (s *ReminderService) saveConflict(ctx context.Context, conflict *document.ReminderConflict) error {
	events := conflict.GetDomainEvents()
	if err := s.conflictRepo.SaveWithLockAndEvents(ctx, conflict, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	conflict.ClearDomainEvents()
	return nil
}

func (s *ReminderService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
