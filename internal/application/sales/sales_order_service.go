package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
)

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	orderRepo      sales.SalesOrderRepository
	eventPublisher shared.EventPublisher
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(orderRepo sales.SalesOrderRepository) *SalesOrderService {
	return &SalesOrderService{
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a sales order directly, without a quotation
func (s *SalesOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	number, err := s.orderRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewSalesOrder(tenantID, number, req.CustomerID, req.CustomerName)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		item, err := order.AddItem(line.Description, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		if line.CostingSheetID != nil {
			item.CostingSheetID = line.CostingSheetID
		}
	}
	if req.Discount != nil {
		if err := order.ApplyDiscount(valueobject.NewMoneyUSD(*req.Discount)); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := order.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.DeliveryDate != nil {
		if err := order.SetDeliveryDate(*req.DeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a sales order by document number
func (s *SalesOrderService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// List retrieves sales orders with filtering and pagination
func (s *SalesOrderService) List(ctx context.Context, tenantID uuid.UUID, filter SalesOrderListFilter) ([]SalesOrderResponse, int64, error) {
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

	var (
		orders []sales.SalesOrder
		err    error
	)
	if filter.OpenOnly {
		orders, err = s.orderRepo.FindOpen(ctx, tenantID, domainFilter)
	} else {
		orders, err = s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSalesOrderResponses(orders), total, nil
}

// AddItem adds a line to a draft order
func (s *SalesOrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req QuotationItemInput) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	item, err := order.AddItem(req.Description, req.Quantity, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if req.CostingSheetID != nil {
		item.CostingSheetID = req.CostingSheetID
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// RemoveItem removes a line from a draft order
func (s *SalesOrderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Confirm confirms an order for production
func (s *SalesOrderService) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*sales.SalesOrder).Confirm)
}

// StartProduction moves a confirmed order into production
func (s *SalesOrderService) StartProduction(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*sales.SalesOrder).StartProduction)
}

// MarkReady marks an in-production order as ready for pickup or delivery
func (s *SalesOrderService) MarkReady(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*sales.SalesOrder).MarkReady)
}

// MarkDelivered marks a ready order as delivered
func (s *SalesOrderService) MarkDelivered(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, (*sales.SalesOrder).MarkDelivered)
}

// RecordAdvance records an advance payment against the order
func (s *SalesOrderService) RecordAdvance(ctx context.Context, tenantID, orderID uuid.UUID, req RecordAdvanceRequest) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.RecordAdvance(valueobject.NewMoneyUSD(req.Amount)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order that has not been invoiced
func (s *SalesOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Delete removes a draft order
func (s *SalesOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order.Status != sales.SalesOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, orderID)
}

// StatusSummary returns order counts per status
func (s *SalesOrderService) StatusSummary(ctx context.Context, tenantID uuid.UUID) (*OrderStatusSummary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary := &OrderStatusSummary{
		Draft:        counts[sales.SalesOrderStatusDraft],
		Confirmed:    counts[sales.SalesOrderStatusConfirmed],
		InProduction: counts[sales.SalesOrderStatusInProduction],
		Ready:        counts[sales.SalesOrderStatusReady],
		Delivered:    counts[sales.SalesOrderStatusDelivered],
		Cancelled:    counts[sales.SalesOrderStatusCancelled],
	}
	summary.Total = summary.Draft + summary.Confirmed + summary.InProduction +
		summary.Ready + summary.Delivered + summary.Cancelled
	return summary, nil
}

func (s *SalesOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, op func(*sales.SalesOrder) error) (*SalesOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := op(order); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

func (s *SalesOrderService) save(ctx context.Context, order *sales.SalesOrder) error {
	events := order.GetDomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, events); err != nil {
		return err
	}
	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	order.ClearDomainEvents()
	return nil
}
