package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// ItemRepository defines persistence operations for inventory items
type ItemRepository interface {
	shared.TenantRepository[InventoryItem]

	// FindBySKU finds an item by SKU for a tenant
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*InventoryItem, error)

	// ExistsBySKU checks if a SKU is already taken for a tenant
	ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)

	// FindByCategory finds items in a category for a tenant
	FindByCategory(ctx context.Context, tenantID uuid.UUID, category ItemCategory, filter shared.Filter) ([]InventoryItem, error)

	// FindLowStock finds active items at or below their reorder level
	FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)

	// SaveWithMovements saves the item together with new stock movements
	// and outbox events in one transaction
	SaveWithMovements(ctx context.Context, item *InventoryItem, movements []*StockMovement, events []shared.DomainEvent) error
}

// MovementRepository defines read operations over the stock movement ledger
type MovementRepository interface {
	// FindByItem lists movements for an item, newest first
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference lists movements created by a source document
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) ([]StockMovement, error)

	// CountByItem counts movements for an item
	CountByItem(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error)
}
