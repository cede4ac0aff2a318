package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      purchasing.PurchaseOrderRepository
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo purchasing.PurchaseOrderRepository) *PurchaseOrderService {
	return &PurchaseOrderService{orderRepo: orderRepo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	number, err := s.orderRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := purchasing.NewPurchaseOrder(tenantID, number, req.SupplierID, req.SupplierName)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		if _, err := order.AddItem(line.Description, line.InventoryItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
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
	if req.ExpectedDate != nil {
		if err := order.SetExpectedDate(*req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by document number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
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

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderResponses(orders), total, nil
}

// Update updates a draft purchase order
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
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
	if req.ExpectedDate != nil {
		if err := order.SetExpectedDate(*req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Remark != nil {
		order.SetRemark(*req.Remark)
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// AddItem adds a line to a draft purchase order
func (s *PurchaseOrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req PurchaseOrderItemInput) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := order.AddItem(req.Description, req.InventoryItemID, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// RemoveItem removes a line from a draft purchase order
func (s *PurchaseOrderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*PurchaseOrderResponse, error) {
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
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Send marks the order as sent to the supplier
func (s *PurchaseOrderService) Send(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Send(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// ReceiveItem records received quantity against an order line. The order
// moves to PARTIALLY_RECEIVED or RECEIVED depending on outstanding lines.
func (s *PurchaseOrderService) ReceiveItem(ctx context.Context, tenantID, orderID uuid.UUID, req ReceiveItemRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.ReceiveItem(req.ItemID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.save(ctx, order); err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Cancel cancels the purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
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
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes a draft purchase order
func (s *PurchaseOrderService) Delete(ctx context.Context, tenantID, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return err
	}
	if order.Status != purchasing.PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchase orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, orderID)
}

func (s *PurchaseOrderService) save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	events := order.GetDomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	order.ClearDomainEvents()
	return nil
}

func (s *PurchaseOrderService) publish(ctx context.Context, events []shared.DomainEvent) {
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
