package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// QuotationService handles quotation business operations
type QuotationService struct {
	quotationRepo   sales.QuotationRepository
	orderRepo       sales.SalesOrderRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(quotationRepo sales.QuotationRepository, orderRepo sales.SalesOrderRepository) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		orderRepo:     orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuotationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *QuotationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a new quotation
func (s *QuotationService) Create(ctx context.Context, tenantID uuid.UUID, req CreateQuotationRequest) (*QuotationResponse, error) {
	number, err := s.quotationRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	quotation, err := sales.NewSalesQuotation(tenantID, number, req.CustomerID, req.CustomerName)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		item, err := quotation.AddItem(line.Description, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		if line.CostingSheetID != nil {
			item.LinkCostingSheet(*line.CostingSheetID)
		}
	}
	if req.Discount != nil {
		if err := quotation.ApplyDiscount(valueobject.NewMoneyUSD(*req.Discount)); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := quotation.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.ValidUntil != nil {
		if err := quotation.SetValidUntil(*req.ValidUntil); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		quotation.SetRemark(req.Remark)
	}

	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordQuotationCreated(ctx, tenantID)
	}

	response := ToQuotationResponse(quotation)
	return &response, nil
}

// GetByID retrieves a quotation by ID
func (s *QuotationService) GetByID(ctx context.Context, tenantID, quotationID uuid.UUID) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// GetByNumber retrieves a quotation by document number
func (s *QuotationService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// List retrieves quotations with filtering and pagination
func (s *QuotationService) List(ctx context.Context, tenantID uuid.UUID, filter QuotationListFilter) ([]QuotationResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	quotations, err := s.quotationRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.quotationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToQuotationResponses(quotations), total, nil
}

// Update updates a draft quotation
func (s *QuotationService) Update(ctx context.Context, tenantID, quotationID uuid.UUID, req UpdateQuotationRequest) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}

	if req.Discount != nil {
		if err := quotation.ApplyDiscount(valueobject.NewMoneyUSD(*req.Discount)); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := quotation.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.ValidUntil != nil {
		if err := quotation.SetValidUntil(*req.ValidUntil); err != nil {
			return nil, err
		}
	}
	if req.Remark != nil {
		quotation.SetRemark(*req.Remark)
	}

	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// AddItem adds a line to a draft quotation
func (s *QuotationService) AddItem(ctx context.Context, tenantID, quotationID uuid.UUID, req QuotationItemInput) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}

	item, err := quotation.AddItem(req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if req.CostingSheetID != nil {
		item.LinkCostingSheet(*req.CostingSheetID)
	}

	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// RemoveItem removes a line from a draft quotation
func (s *QuotationService) RemoveItem(ctx context.Context, tenantID, quotationID, itemID uuid.UUID) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}
	if err := quotation.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// Send marks a quotation as sent to the customer
func (s *QuotationService) Send(ctx context.Context, tenantID, quotationID uuid.UUID) (*QuotationResponse, error) {
	return s.transition(ctx, tenantID, quotationID, (*sales.SalesQuotation).Send)
}

// Accept marks a quotation as accepted by the customer
func (s *QuotationService) Accept(ctx context.Context, tenantID, quotationID uuid.UUID) (*QuotationResponse, error) {
	response, err := s.transition(ctx, tenantID, quotationID, (*sales.SalesQuotation).Accept)
	if err != nil {
		return nil, err
	}
	if s.businessMetrics != nil {
		s.businessMetrics.RecordQuotationAccepted(ctx, tenantID)
	}
	return response, nil
}

// Reject marks a quotation as rejected
func (s *QuotationService) Reject(ctx context.Context, tenantID, quotationID uuid.UUID, req RejectQuotationRequest) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}
	if err := quotation.Reject(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// ConvertToOrder converts an accepted quotation into a sales order.
// Both aggregates are saved; the quotation records the order it became.
func (s *QuotationService) ConvertToOrder(ctx context.Context, tenantID, quotationID uuid.UUID) (*SalesOrderResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewSalesOrderFromQuotation(orderNumber, quotation)
	if err != nil {
		return nil, err
	}
	if err := quotation.MarkConverted(order.ID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, order.GetDomainEvents()); err != nil {
		return nil, err
	}
	s.publish(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// ExpireDue sweeps sent quotations whose validity date has lapsed and
// marks them expired. Returns the number of quotations expired.
func (s *QuotationService) ExpireDue(ctx context.Context, tenantID uuid.UUID, limit int) (int, error) {
	quotations, err := s.quotationRepo.FindExpirable(ctx, tenantID, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range quotations {
		quotation := &quotations[i]
		if err := quotation.MarkExpired(); err != nil {
			continue
		}
		if err := s.save(ctx, quotation); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// Delete removes a draft quotation
func (s *QuotationService) Delete(ctx context.Context, tenantID, quotationID uuid.UUID) error {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return err
	}
	if quotation.Status != sales.QuotationStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft quotations can be deleted")
	}
	return s.quotationRepo.Delete(ctx, quotationID)
}

func (s *QuotationService) transition(ctx context.Context, tenantID, quotationID uuid.UUID, op func(*sales.SalesQuotation) error) (*QuotationResponse, error) {
	quotation, err := s.quotationRepo.FindByIDForTenant(ctx, tenantID, quotationID)
	if err != nil {
		return nil, err
	}
	if err := op(quotation); err != nil {
		return nil, err
	}
	if err := s.save(ctx, quotation); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(quotation)
	return &response, nil
}

// save persists the quotation with its pending events and republishes them
// on the in-process bus for live subscribers
func (s *QuotationService) save(ctx context.Context, quotation *sales.SalesQuotation) error {
	events := quotation.GetDomainEvents()
	if err := s.quotationRepo.SaveWithLockAndEvents(ctx, quotation, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	quotation.ClearDomainEvents()
	return nil
}

func (s *QuotationService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

func buildFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
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
	filter.Search = search
	return filter
}
