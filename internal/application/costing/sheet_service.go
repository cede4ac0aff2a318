package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/costing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SheetService handles costing sheet business operations
type SheetService struct {
	sheetRepo      costing.SheetRepository
	eventPublisher shared.EventPublisher
}

// NewSheetService creates a new SheetService
func NewSheetService(sheetRepo costing.SheetRepository) *SheetService {
	return &SheetService{sheetRepo: sheetRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SheetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a new draft costing sheet
func (s *SheetService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSheetRequest) (*SheetResponse, error) {
	sheet, err := costing.NewCostingSheet(tenantID, req.JobName, req.Quantity)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		if err := sheet.SetCustomer(*req.CustomerID, req.CustomerName); err != nil {
			return nil, err
		}
	}
	if err := applyFormulas(sheet, req.Formulas); err != nil {
		return nil, err
	}
	if req.ProfitPct != nil {
		if err := sheet.SetProfitPercent(*req.ProfitPct); err != nil {
			return nil, err
		}
	}
	if req.TaxPct != nil {
		if err := sheet.SetTaxPercent(*req.TaxPct); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, sheet); err != nil {
		return nil, err
	}

	response := ToSheetResponse(sheet)
	return &response, nil
}

// GetByID retrieves a sheet by ID
func (s *SheetService) GetByID(ctx context.Context, tenantID, sheetID uuid.UUID) (*SheetResponse, error) {
	sheet, err := s.sheetRepo.FindByIDForTenant(ctx, tenantID, sheetID)
	if err != nil {
		return nil, err
	}
	response := ToSheetResponse(sheet)
	return &response, nil
}

// List retrieves sheets with filtering and pagination
func (s *SheetService) List(ctx context.Context, tenantID uuid.UUID, filter SheetListFilter) ([]SheetResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	sheets, err := s.sheetRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.sheetRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSheetResponses(sheets), total, nil
}

// Update reworks a draft sheet
func (s *SheetService) Update(ctx context.Context, tenantID, sheetID uuid.UUID, req UpdateSheetRequest) (*SheetResponse, error) {
	sheet, err := s.sheetRepo.FindByIDForTenant(ctx, tenantID, sheetID)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if err := sheet.SetQuantity(*req.Quantity); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil {
		if err := sheet.SetCustomer(*req.CustomerID, req.CustomerName); err != nil {
			return nil, err
		}
	}
	if err := applyFormulas(sheet, req.Formulas); err != nil {
		return nil, err
	}
	if req.ProfitPct != nil {
		if err := sheet.SetProfitPercent(*req.ProfitPct); err != nil {
			return nil, err
		}
	}
	if req.TaxPct != nil {
		if err := sheet.SetTaxPercent(*req.TaxPct); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, sheet); err != nil {
		return nil, err
	}
	response := ToSheetResponse(sheet)
	return &response, nil
}

// Finalize freezes a sheet. Finalized sheets seed quotation line prices.
func (s *SheetService) Finalize(ctx context.Context, tenantID, sheetID uuid.UUID) (*SheetResponse, error) {
	sheet, err := s.sheetRepo.FindByIDForTenant(ctx, tenantID, sheetID)
	if err != nil {
		return nil, err
	}
	if err := sheet.Finalize(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sheet); err != nil {
		return nil, err
	}
	response := ToSheetResponse(sheet)
	return &response, nil
}

// Delete removes a draft sheet
func (s *SheetService) Delete(ctx context.Context, tenantID, sheetID uuid.UUID) error {
	sheet, err := s.sheetRepo.FindByIDForTenant(ctx, tenantID, sheetID)
	if err != nil {
		return err
	}
	if sheet.Status != costing.SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft sheets can be deleted")
	}
	return s.sheetRepo.Delete(ctx, sheetID)
}

// ValidateFormula checks one formula without touching any sheet, for
// as-you-type validation in the costing editor
func (s *SheetService) ValidateFormula(req ValidateFormulaRequest) ValidateFormulaResponse {
	if err := costing.ValidateFormula(req.Formula); err != nil {
		return ValidateFormulaResponse{Valid: false, Error: err.Error(), Amount: decimal.Zero}
	}
	amount, err := costing.EvaluateFormula(req.Formula)
	if err != nil {
		return ValidateFormulaResponse{Valid: false, Error: err.Error(), Amount: decimal.Zero}
	}
	return ValidateFormulaResponse{Valid: true, Amount: amount}
}

func applyFormulas(sheet *costing.CostingSheet, formulas map[string]string) error {
	for key, formula := range formulas {
		if err := sheet.SetComponentFormula(costing.ComponentKey(key), formula); err != nil {
			return err
		}
	}
	return nil
}

func (s *SheetService) save(ctx context.Context, sheet *costing.CostingSheet) error {
	events := sheet.GetDomainEvents()
	if err := s.sheetRepo.SaveWithLockAndEvents(ctx, sheet, events); err != nil {
		return err
	}
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	sheet.ClearDomainEvents()
	return nil
}
