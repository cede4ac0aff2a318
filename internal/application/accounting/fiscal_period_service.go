package accounting

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/accounting"
	"github.com/printcloud/backend/internal/domain/shared"
)

// FiscalPeriodService handles fiscal period business operations
type FiscalPeriodService struct {
	periodRepo accounting.FiscalPeriodRepository
}

// NewFiscalPeriodService creates a new FiscalPeriodService
func NewFiscalPeriodService(periodRepo accounting.FiscalPeriodRepository) *FiscalPeriodService {
	return &FiscalPeriodService{periodRepo: periodRepo}
}

// Create opens a new fiscal period. Periods must not overlap.
func (s *FiscalPeriodService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePeriodRequest) (*PeriodResponse, error) {
	overlapping, err := s.periodRepo.FindOverlapping(ctx, tenantID, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, shared.NewDomainError("PERIOD_OVERLAP", "The date range overlaps an existing fiscal period")
	}

	period, err := accounting.NewFiscalPeriod(tenantID, req.Name, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}

	response := ToPeriodResponse(period)
	return &response, nil
}

// GetByID retrieves a period by ID
func (s *FiscalPeriodService) GetByID(ctx context.Context, tenantID, periodID uuid.UUID) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForTenant(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	response := ToPeriodResponse(period)
	return &response, nil
}

// List retrieves fiscal periods for a tenant
func (s *FiscalPeriodService) List(ctx context.Context, tenantID uuid.UUID) ([]PeriodResponse, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "start_date"
	filter.OrderDir = "desc"
	filter.PageSize = 100

	periods, err := s.periodRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return ToPeriodResponses(periods), nil
}

// Close closes an open period, blocking further postings
func (s *FiscalPeriodService) Close(ctx context.Context, tenantID, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, tenantID, periodID, (*accounting.FiscalPeriod).Close)
}

// Reopen reopens a closed period
func (s *FiscalPeriodService) Reopen(ctx context.Context, tenantID, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, tenantID, periodID, (*accounting.FiscalPeriod).Reopen)
}

// Lock locks a closed period for good
func (s *FiscalPeriodService) Lock(ctx context.Context, tenantID, periodID uuid.UUID) (*PeriodResponse, error) {
	return s.transition(ctx, tenantID, periodID, (*accounting.FiscalPeriod).Lock)
}

func (s *FiscalPeriodService) transition(ctx context.Context, tenantID, periodID uuid.UUID, op func(*accounting.FiscalPeriod) error) (*PeriodResponse, error) {
	period, err := s.periodRepo.FindByIDForTenant(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	if err := op(period); err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}
	response := ToPeriodResponse(period)
	return &response, nil
}
