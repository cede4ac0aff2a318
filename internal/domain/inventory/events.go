package inventory

import (
	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeItemCreated = "InventoryItemCreated"
	EventTypeLowStock    = "InventoryLowStock"
)

// ItemCreatedEvent is published when a stocked item is registered
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID    `json:"item_id"`
	SKU      string       `json:"sku"`
	Name     string       `json:"name"`
	Category ItemCategory `json:"category"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *InventoryItem) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeInventoryItem, item.ID, item.TenantID),
		ItemID:          item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		Category:        item.Category,
	}
}

// LowStockEvent is published when stock falls to or below the reorder level
type LowStockEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID       `json:"item_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
}

// NewLowStockEvent creates a new LowStockEvent
func NewLowStockEvent(item *InventoryItem) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, AggregateTypeInventoryItem, item.ID, item.TenantID),
		ItemID:          item.ID,
		SKU:             item.SKU,
		Name:            item.Name,
		QuantityOnHand:  item.QuantityOnHand,
		ReorderLevel:    item.ReorderLevel,
	}
}
