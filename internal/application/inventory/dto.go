package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents a request to create an inventory item
type CreateItemRequest struct {
	SKU          string           `json:"sku" binding:"required,min=1,max=50"`
	Name         string           `json:"name" binding:"required,min=1,max=200"`
	Category     string           `json:"category" binding:"required"`
	Unit         string           `json:"unit" binding:"required,min=1,max=20"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
}

// UpdateItemRequest represents a request to update an item
type UpdateItemRequest struct {
	Name         *string          `json:"name"`
	ReorderLevel *decimal.Decimal `json:"reorder_level"`
}

// ReceiveStockRequest records a stock receipt
type ReceiveStockRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required"`
	Reference string          `json:"reference"`
}

// IssueStockRequest records a stock issue to production
type IssueStockRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Reference string          `json:"reference"`
}

// AdjustStockRequest records a signed stock correction
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"required,min=1,max=500"`
}

// ItemListFilter represents filter options for item lists
type ItemListFilter struct {
	Search   string  `form:"search"`
	Category *string `form:"category"`
	LowStock bool    `form:"low_stock"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MovementListFilter represents filter options for movement lists
type MovementListFilter struct {
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse represents an inventory item in API responses
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Unit           string          `json:"unit"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	StockValue     decimal.Decimal `json:"stock_value"`
	LowStock       bool            `json:"low_stock"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToItemResponse converts an item aggregate to a response DTO
func ToItemResponse(i *inventory.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:             i.ID,
		SKU:            i.SKU,
		Name:           i.Name,
		Category:       string(i.Category),
		Unit:           i.Unit,
		QuantityOnHand: i.QuantityOnHand,
		ReorderLevel:   i.ReorderLevel,
		UnitCost:       i.UnitCost,
		StockValue:     i.StockValue(),
		LowStock:       i.IsLowStock(),
		Active:         i.Active,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []inventory.InventoryItem) []ItemResponse {
	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ItemID       uuid.UUID       `json:"item_id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reference    string          `json:"reference,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToMovementResponse converts a stock movement to a response DTO
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ItemID:       m.InventoryItemID,
		Type:         string(m.Type),
		Quantity:     m.Quantity,
		BalanceAfter: m.BalanceAfter,
		Reference:    m.Reference,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}
