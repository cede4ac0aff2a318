package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemCategory classifies stocked print materials
type ItemCategory string

const (
	ItemCategoryPaper      ItemCategory = "PAPER"
	ItemCategoryInk        ItemCategory = "INK"
	ItemCategoryPlates     ItemCategory = "PLATES"
	ItemCategoryFinishing  ItemCategory = "FINISHING"
	ItemCategoryConsumable ItemCategory = "CONSUMABLE"
	ItemCategoryOther      ItemCategory = "OTHER"
)

// IsValid checks if the category is a valid ItemCategory
func (c ItemCategory) IsValid() bool {
	switch c {
	case ItemCategoryPaper, ItemCategoryInk, ItemCategoryPlates,
		ItemCategoryFinishing, ItemCategoryConsumable, ItemCategoryOther:
		return true
	}
	return false
}

// MovementType classifies stock movements
type MovementType string

const (
	MovementTypeReceipt    MovementType = "RECEIPT"
	MovementTypeIssue      MovementType = "ISSUE"
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// IsValid checks if the type is a valid MovementType
func (m MovementType) IsValid() bool {
	switch m {
	case MovementTypeReceipt, MovementTypeIssue, MovementTypeAdjustment:
		return true
	}
	return false
}

// StockMovement records one signed change to an item's quantity on hand.
// Receipts are positive, issues negative, adjustments either.
type StockMovement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type            MovementType    `gorm:"type:varchar(15);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference       string          `gorm:"type:varchar(50);index"` // Source document, e.g. bill or order number
	Reason          string          `gorm:"type:varchar(500)"`
	CreatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// InventoryItem is the aggregate root for a stocked material
type InventoryItem struct {
	shared.TenantAggregateRoot
	SKU            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_tenant_sku,priority:2"`
	Name           string          `gorm:"type:varchar(200);not null"`
	Category       ItemCategory    `gorm:"type:varchar(20);not null;index"`
	Unit           string          `gorm:"type:varchar(20);not null"` // ream, kg, sheet, roll, pcs
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem creates a new stocked item
func NewInventoryItem(tenantID uuid.UUID, sku, name string, category ItemCategory, unit string) (*InventoryItem, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Invalid item category: %s", category))
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}

	item := &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		Category:            category,
		Unit:                unit,
		QuantityOnHand:      decimal.Zero,
		ReorderLevel:        decimal.Zero,
		UnitCost:            decimal.Zero,
		Active:              true,
	}

	item.AddDomainEvent(NewItemCreatedEvent(item))

	return item, nil
}

// SetReorderLevel sets the low-stock threshold
func (i *InventoryItem) SetReorderLevel(level decimal.Decimal) error {
	if level.IsNegative() {
		return shared.NewDomainError("INVALID_LEVEL", "Reorder level cannot be negative")
	}

	i.ReorderLevel = level
	i.Touch()

	return nil
}

// Rename updates the display name
func (i *InventoryItem) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}

	i.Name = name
	i.Touch()

	return nil
}

// Deactivate retires the item. Stock must be zero first.
func (i *InventoryItem) Deactivate() error {
	if !i.QuantityOnHand.IsZero() {
		return shared.NewDomainError("STOCK_REMAINS", "Cannot deactivate an item with stock on hand")
	}

	i.Active = false
	i.Touch()

	return nil
}

// Activate re-enables a retired item
func (i *InventoryItem) Activate() {
	i.Active = true
	i.Touch()
}

// Receive adds stock and re-averages the unit cost over the new total
func (i *InventoryItem) Receive(quantity, unitCost decimal.Decimal, reference string) (*StockMovement, error) {
	if !i.Active {
		return nil, shared.NewDomainError("ITEM_INACTIVE", "Cannot receive into an inactive item")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	newQty := i.QuantityOnHand.Add(quantity)
	if newQty.IsPositive() {
		existingValue := i.QuantityOnHand.Mul(i.UnitCost)
		incomingValue := quantity.Mul(unitCost)
		i.UnitCost = existingValue.Add(incomingValue).Div(newQty).Round(4)
	}
	i.QuantityOnHand = newQty
	i.Touch()

	movement := i.newMovement(MovementTypeReceipt, quantity, reference, "")
	i.checkReorder()

	return movement, nil
}

// Issue removes stock for production. Insufficient stock is rejected.
func (i *InventoryItem) Issue(quantity decimal.Decimal, reference string) (*StockMovement, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Issued quantity must be positive")
	}
	if quantity.GreaterThan(i.QuantityOnHand) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock: %s on hand, %s requested", i.QuantityOnHand, quantity))
	}

	i.QuantityOnHand = i.QuantityOnHand.Sub(quantity)
	i.Touch()

	movement := i.newMovement(MovementTypeIssue, quantity.Neg(), reference, "")
	i.checkReorder()

	return movement, nil
}

// Adjust corrects the quantity on hand after a physical count.
// The signed delta moves stock up or down; a reason is mandatory.
func (i *InventoryItem) Adjust(delta decimal.Decimal, reason string) (*StockMovement, error) {
	if delta.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason cannot be empty")
	}
	newQty := i.QuantityOnHand.Add(delta)
	if newQty.IsNegative() {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "Adjustment would take stock below zero")
	}

	i.QuantityOnHand = newQty
	i.Touch()

	movement := i.newMovement(MovementTypeAdjustment, delta, "", reason)
	i.checkReorder()

	return movement, nil
}

// IsLowStock reports whether stock is at or below the reorder level
func (i *InventoryItem) IsLowStock() bool {
	return i.ReorderLevel.IsPositive() && i.QuantityOnHand.LessThanOrEqual(i.ReorderLevel)
}

// StockValue returns quantity on hand times average unit cost
func (i *InventoryItem) StockValue() decimal.Decimal {
	return i.QuantityOnHand.Mul(i.UnitCost).Round(2)
}

func (i *InventoryItem) newMovement(movementType MovementType, quantity decimal.Decimal, reference, reason string) *StockMovement {
	return &StockMovement{
		ID:              uuid.New(),
		InventoryItemID: i.ID,
		TenantID:        i.TenantID,
		Type:            movementType,
		Quantity:        quantity,
		BalanceAfter:    i.QuantityOnHand,
		Reference:       reference,
		Reason:          reason,
		CreatedAt:       time.Now(),
	}
}

func (i *InventoryItem) checkReorder() {
	if i.IsLowStock() {
		i.AddDomainEvent(NewLowStockEvent(i))
	}
}
