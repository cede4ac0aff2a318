package document

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/printcloud/backend/internal/domain/document"
	"github.com/printcloud/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockReminderRepository is a mock implementation of document.ReminderRepository
type MockReminderRepository struct {
	mock.Mock
}

func (m *MockReminderRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.Reminder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.Reminder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.Reminder, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindActiveByDocumentAndAssignee(ctx context.Context, tenantID, documentID, assigneeID uuid.UUID) ([]*document.Reminder, error) {
	args := m.Called(ctx, tenantID, documentID, assigneeID)
	return args.Get(0).([]*document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindByAssignee(ctx context.Context, tenantID, assigneeID uuid.UUID, filter shared.Filter) ([]document.Reminder, error) {
	args := m.Called(ctx, tenantID, assigneeID, filter)
	return args.Get(0).([]document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) FindOverdue(ctx context.Context, before time.Time, limit int) ([]document.Reminder, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]document.Reminder), args.Error(1)
}

func (m *MockReminderRepository) SaveWithLockAndEvents(ctx context.Context, reminder *document.Reminder, events []shared.DomainEvent) error {
	args := m.Called(ctx, reminder, events)
	return args.Error(0)
}

func (m *MockReminderRepository) Save(ctx context.Context, reminder *document.Reminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReminderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockConflictRepository is a mock implementation of document.ConflictRepository
type MockConflictRepository struct {
	mock.Mock
}

func (m *MockConflictRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.ReminderConflict, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.ReminderConflict, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) FindAll(ctx context.Context, filter shared.Filter) ([]document.ReminderConflict, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.ReminderConflict, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) FindUnresolved(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.ReminderConflict, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) FindByIncomingReminder(ctx context.Context, tenantID, reminderID uuid.UUID) (*document.ReminderConflict, error) {
	args := m.Called(ctx, tenantID, reminderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ReminderConflict), args.Error(1)
}

func (m *MockConflictRepository) SaveWithLockAndEvents(ctx context.Context, conflict *document.ReminderConflict, events []shared.DomainEvent) error {
	args := m.Called(ctx, conflict, events)
	return args.Error(0)
}

func (m *MockConflictRepository) Save(ctx context.Context, conflict *document.ReminderConflict) error {
	args := m.Called(ctx, conflict)
	return args.Error(0)
}

func (m *MockConflictRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConflictRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newReminderService(reminderRepo *MockReminderRepository, conflictRepo *MockConflictRepository) *ReminderService {
	return NewReminderService(reminderRepo, conflictRepo, zap.NewNop())
}

func newPendingReminder(t *testing.T, tenantID, documentID, assigneeID uuid.UUID, dueAt time.Time) *document.Reminder {
	reminder, err := document.NewReminder(tenantID, document.DocumentTypeInvoice, documentID, "INV-2026-00033", assigneeID, dueAt, "Chase payment")
	assert.NoError(t, err)
	reminder.ClearDomainEvents()
	return reminder
}

// =============================================================================
// Tests
// =============================================================================

func TestReminderService_Schedule(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()
	assigneeID := uuid.New()

	t.Run("schedules a reminder with a free slot", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)

		result, err := service.Schedule(ctx, tenantID, CreateReminderRequest{
			DocumentType:   "INVOICE",
			DocumentID:     documentID,
			DocumentNumber: "INV-2026-00033",
			AssigneeID:     assigneeID,
			DueAt:          time.Now().Add(72 * time.Hour),
			Note:           "Chase payment",
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "PENDING", result.Reminder.Status)
		assert.Nil(t, result.Conflict)
		conflictRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("colliding due time parks the reminder and records a conflict", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		dueAt := time.Now().Add(48 * time.Hour)
		existing := newPendingReminder(t, tenantID, documentID, assigneeID, dueAt)

		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{existing}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.ReminderConflict"), mock.Anything).Return(nil)

		result, err := service.Schedule(ctx, tenantID, CreateReminderRequest{
			DocumentType: "INVOICE",
			DocumentID:   documentID,
			AssigneeID:   assigneeID,
			DueAt:        dueAt.Add(2 * time.Hour), // Inside the 24h window
		})

		assert.NoError(t, err)
		assert.Equal(t, "CONFLICTED", result.Reminder.Status)
		assert.NotNil(t, result.Conflict)
		assert.Equal(t, existing.ID, result.Conflict.ExistingReminderID)
		assert.Equal(t, "DETECTED", result.Conflict.Status)
		conflictRepo.AssertExpectations(t)
	})

	t.Run("a due time outside the window does not conflict", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		dueAt := time.Now().Add(48 * time.Hour)
		existing := newPendingReminder(t, tenantID, documentID, assigneeID, dueAt)

		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{existing}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)

		result, err := service.Schedule(ctx, tenantID, CreateReminderRequest{
			DocumentType: "INVOICE",
			DocumentID:   documentID,
			AssigneeID:   assigneeID,
			DueAt:        dueAt.Add(30 * time.Hour),
		})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", result.Reminder.Status)
		assert.Nil(t, result.Conflict)
	})

	t.Run("a shortened conflict window is honored", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)
		service.SetConflictWindow(1 * time.Hour)

		dueAt := time.Now().Add(48 * time.Hour)
		existing := newPendingReminder(t, tenantID, documentID, assigneeID, dueAt)

		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{existing}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)

		result, err := service.Schedule(ctx, tenantID, CreateReminderRequest{
			DocumentType: "INVOICE",
			DocumentID:   documentID,
			AssigneeID:   assigneeID,
			DueAt:        dueAt.Add(2 * time.Hour),
		})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", result.Reminder.Status)
		assert.Nil(t, result.Conflict)
	})

	t.Run("fails for an unknown document type", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		result, err := service.Schedule(ctx, tenantID, CreateReminderRequest{
			DocumentType: "MEMO",
			DocumentID:   documentID,
			AssigneeID:   assigneeID,
			DueAt:        time.Now().Add(24 * time.Hour),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DOCUMENT_TYPE", domainErr.Code)
	})
}

func TestReminderService_Reschedule(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()
	assigneeID := uuid.New()

	t.Run("moves the due time of a pending reminder", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		reminder := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(48*time.Hour))
		newDue := time.Now().Add(120 * time.Hour)

		reminderRepo.On("FindByIDForTenant", ctx, tenantID, reminder.ID).Return(reminder, nil)
		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{reminder}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, reminder, mock.Anything).Return(nil)

		result, err := service.Reschedule(ctx, tenantID, reminder.ID, RescheduleReminderRequest{DueAt: newDue})

		assert.NoError(t, err)
		assert.True(t, result.Reminder.DueAt.Equal(newDue))
		assert.Equal(t, "PENDING", result.Reminder.Status)
		assert.Nil(t, result.Conflict)
	})

	t.Run("rescheduling onto another reminder raises a conflict", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		other := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(96*time.Hour))
		reminder := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(48*time.Hour))

		reminderRepo.On("FindByIDForTenant", ctx, tenantID, reminder.ID).Return(reminder, nil)
		reminderRepo.On("FindActiveByDocumentAndAssignee", ctx, tenantID, documentID, assigneeID).
			Return([]*document.Reminder{other, reminder}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, reminder, mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.ReminderConflict"), mock.Anything).Return(nil)

		result, err := service.Reschedule(ctx, tenantID, reminder.ID, RescheduleReminderRequest{
			DueAt: other.DueAt.Add(3 * time.Hour),
		})

		assert.NoError(t, err)
		assert.Equal(t, "CONFLICTED", result.Reminder.Status)
		assert.NotNil(t, result.Conflict)
		assert.Equal(t, other.ID, result.Conflict.ExistingReminderID)
	})

	t.Run("fails for a completed reminder", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		reminder := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(48*time.Hour))
		assert.NoError(t, reminder.Complete())
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, reminder.ID).Return(reminder, nil)

		result, err := service.Reschedule(ctx, tenantID, reminder.ID, RescheduleReminderRequest{
			DueAt: time.Now().Add(72 * time.Hour),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		reminderRepo.AssertNotCalled(t, "SaveWithLockAndEvents", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReminderService_Complete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("marks a pending reminder done", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		reminder := newPendingReminder(t, tenantID, uuid.New(), uuid.New(), time.Now().Add(24*time.Hour))
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, reminder.ID).Return(reminder, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, reminder, mock.Anything).Return(nil)

		resp, err := service.Complete(ctx, tenantID, reminder.ID)

		assert.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
		assert.NotNil(t, resp.CompletedAt)
	})
}

func TestReminderService_Cancel(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()
	assigneeID := uuid.New()
	userID := uuid.New()

	t.Run("cancels a pending reminder", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		reminder := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(24*time.Hour))
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, reminder.ID).Return(reminder, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, reminder, mock.Anything).Return(nil)

		resp, err := service.Cancel(ctx, tenantID, reminder.ID, userID)

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		conflictRepo.AssertNotCalled(t, "FindByIncomingReminder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelling a conflicted reminder resolves its conflict", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		existing := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(48*time.Hour))
		incoming := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(50*time.Hour))
		conflict, err := document.DetectConflict([]*document.Reminder{existing}, incoming, document.DefaultConflictWindow)
		assert.NoError(t, err)
		assert.NotNil(t, conflict)
		conflict.ClearDomainEvents()

		reminderRepo.On("FindByIDForTenant", ctx, tenantID, incoming.ID).Return(incoming, nil)
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, existing.ID).Return(existing, nil)
		conflictRepo.On("FindByIncomingReminder", ctx, tenantID, incoming.ID).Return(conflict, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, conflict, mock.Anything).Return(nil)

		resp, err := service.Cancel(ctx, tenantID, incoming.ID, userID)

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.True(t, conflict.IsResolved())
		assert.Equal(t, document.StrategyKeepExisting, conflict.Strategy)
		assert.Equal(t, document.ReminderStatusPending, existing.Status)
	})
}

func TestReminderService_ResolveConflict(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()
	assigneeID := uuid.New()
	resolverID := uuid.New()

	setup := func(t *testing.T) (*MockReminderRepository, *MockConflictRepository, *ReminderService, *document.Reminder, *document.Reminder, *document.ReminderConflict) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		existing := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(72*time.Hour))
		incoming := newPendingReminder(t, tenantID, documentID, assigneeID, time.Now().Add(60*time.Hour))
		conflict, err := document.DetectConflict([]*document.Reminder{existing}, incoming, document.DefaultConflictWindow)
		assert.NoError(t, err)
		assert.NotNil(t, conflict)
		conflict.ClearDomainEvents()

		conflictRepo.On("FindByIDForTenant", ctx, tenantID, conflict.ID).Return(conflict, nil)
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, existing.ID).Return(existing, nil)
		reminderRepo.On("FindByIDForTenant", ctx, tenantID, incoming.ID).Return(incoming, nil)

		return reminderRepo, conflictRepo, service, existing, incoming, conflict
	}

	t.Run("replace supersedes the existing reminder and releases the incoming one", func(t *testing.T) {
		reminderRepo, conflictRepo, service, existing, _, conflict := setup(t)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, conflict, mock.Anything).Return(nil)

		resp, err := service.ResolveConflict(ctx, tenantID, conflict.ID, resolverID, ResolveConflictRequest{Strategy: "REPLACE"})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.Equal(t, document.ReminderStatusSuperseded, existing.Status)
		assert.True(t, conflict.IsResolved())
		assert.Equal(t, &resolverID, conflict.ResolvedBy)
	})

	t.Run("merge pulls the existing reminder to the earlier due time", func(t *testing.T) {
		reminderRepo, conflictRepo, service, existing, incoming, conflict := setup(t)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, conflict, mock.Anything).Return(nil)

		resp, err := service.ResolveConflict(ctx, tenantID, conflict.ID, resolverID, ResolveConflictRequest{Strategy: "MERGE"})

		assert.NoError(t, err)
		assert.Equal(t, "SUPERSEDED", resp.Status)
		assert.True(t, existing.DueAt.Equal(incoming.DueAt))
		assert.Equal(t, document.ReminderStatusPending, existing.Status)
	})

	t.Run("a resolved conflict cannot be resolved twice", func(t *testing.T) {
		reminderRepo, conflictRepo, service, _, _, conflict := setup(t)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.Anything).Return(nil)
		conflictRepo.On("SaveWithLockAndEvents", ctx, conflict, mock.Anything).Return(nil)

		_, err := service.ResolveConflict(ctx, tenantID, conflict.ID, resolverID, ResolveConflictRequest{Strategy: "KEEP_EXISTING"})
		assert.NoError(t, err)

		_, err = service.ResolveConflict(ctx, tenantID, conflict.ID, resolverID, ResolveConflictRequest{Strategy: "REPLACE"})
		assert.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestReminderService_NotifyOverdue(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("sweeps overdue reminders and emits due events", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		first := newPendingReminder(t, tenantID, uuid.New(), uuid.New(), time.Now().Add(time.Hour))
		second := newPendingReminder(t, tenantID, uuid.New(), uuid.New(), time.Now().Add(time.Hour))

		reminderRepo.On("FindOverdue", ctx, mock.AnythingOfType("time.Time"), 50).
			Return([]document.Reminder{*first, *second}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.AnythingOfType("*document.Reminder"), mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == document.EventTypeReminderDue
		})).Return(nil)

		notified, err := service.NotifyOverdue(ctx, 50)

		assert.NoError(t, err)
		assert.Equal(t, 2, notified)
		reminderRepo.AssertNumberOfCalls(t, "SaveWithLockAndEvents", 2)
	})

	t.Run("a failing save is skipped without aborting the sweep", func(t *testing.T) {
		reminderRepo := new(MockReminderRepository)
		conflictRepo := new(MockConflictRepository)
		service := newReminderService(reminderRepo, conflictRepo)

		first := newPendingReminder(t, tenantID, uuid.New(), uuid.New(), time.Now().Add(time.Hour))
		second := newPendingReminder(t, tenantID, uuid.New(), uuid.New(), time.Now().Add(time.Hour))

		reminderRepo.On("FindOverdue", ctx, mock.AnythingOfType("time.Time"), 50).
			Return([]document.Reminder{*first, *second}, nil)
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.MatchedBy(func(r *document.Reminder) bool {
			return r.ID == first.ID
		}), mock.Anything).Return(shared.NewDomainError("VERSION_CONFLICT", "stale"))
		reminderRepo.On("SaveWithLockAndEvents", ctx, mock.MatchedBy(func(r *document.Reminder) bool {
			return r.ID == second.ID
		}), mock.Anything).Return(nil)

		notified, err := service.NotifyOverdue(ctx, 50)

		assert.NoError(t, err)
		assert.Equal(t, 1, notified)
	})
}
