package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/inventory"
	"github.com/printcloud/backend/internal/domain/shared"
)

// ItemService handles inventory item business operations
type ItemService struct {
	itemRepo       inventory.ItemRepository
	movementRepo   inventory.MovementRepository
	eventPublisher shared.EventPublisher
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo inventory.ItemRepository, movementRepo inventory.MovementRepository) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new inventory item
func (s *ItemService) Create(ctx context.Context, tenantID uuid.UUID, req CreateItemRequest) (*ItemResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	exists, err := s.itemRepo.ExistsBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("SKU_TAKEN", "An item with this SKU already exists")
	}

	item, err := inventory.NewInventoryItem(tenantID, sku, req.Name, inventory.ItemCategory(req.Category), req.Unit)
	if err != nil {
		return nil, err
	}
	if req.ReorderLevel != nil {
		if err := item.SetReorderLevel(*req.ReorderLevel); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, item, nil); err != nil {
		return nil, err
	}

	response := ToItemResponse(item)
	return &response, nil
}

// GetByID retrieves an item by ID
func (s *ItemService) GetByID(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// GetBySKU retrieves an item by SKU
func (s *ItemService) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves items with filtering and pagination
func (s *ItemService) List(ctx context.Context, tenantID uuid.UUID, filter ItemListFilter) ([]ItemResponse, int64, error) {
	if filter.LowStock {
		items, err := s.itemRepo.FindLowStock(ctx, tenantID)
		if err != nil {
			return nil, 0, err
		}
		return ToItemResponses(items), int64(len(items)), nil
	}

	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}

	items, err := s.itemRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// Update updates item master data
func (s *ItemService) Update(ctx context.Context, tenantID, itemID uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := item.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ReorderLevel != nil {
		if err := item.SetReorderLevel(*req.ReorderLevel); err != nil {
			return nil, err
		}
	}
	if err := s.save(ctx, item, nil); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Receive records a stock receipt and reprices the item at weighted
// average cost
func (s *ItemService) Receive(ctx context.Context, tenantID, itemID uuid.UUID, req ReceiveStockRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	movement, err := item.Receive(req.Quantity, req.UnitCost, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, item, []*inventory.StockMovement{movement}); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Issue records a stock issue to production
func (s *ItemService) Issue(ctx context.Context, tenantID, itemID uuid.UUID, req IssueStockRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	movement, err := item.Issue(req.Quantity, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, item, []*inventory.StockMovement{movement}); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Adjust records a signed stock correction with a reason
func (s *ItemService) Adjust(ctx context.Context, tenantID, itemID uuid.UUID, req AdjustStockRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	movement, err := item.Adjust(req.Delta, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, item, []*inventory.StockMovement{movement}); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Movements lists the movement ledger for an item, newest first
func (s *ItemService) Movements(ctx context.Context, tenantID, itemID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, "")
	movements, err := s.movementRepo.FindByItem(ctx, tenantID, itemID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountByItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(movements), total, nil
}

// Deactivate retires an item. Only allowed at zero stock.
func (s *ItemService) Deactivate(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, item, nil); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// Activate reactivates a retired item
func (s *ItemService) Activate(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByIDForTenant(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	item.Activate()
	if err := s.save(ctx, item, nil); err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

func (s *ItemService) save(ctx context.Context, item *inventory.InventoryItem, movements []*inventory.StockMovement) error {
	events := item.GetDomainEvents()
	if err := s.itemRepo.SaveWithMovements(ctx, item, movements, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	item.ClearDomainEvents()
	return nil
}

func (s *ItemService) publish(ctx context.Context, events []shared.DomainEvent) {
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
