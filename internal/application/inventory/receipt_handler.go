package inventory

import (
	"context"
	"fmt"

	"github.com/printcloud/backend/internal/domain/inventory"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BillReceiptHandler receipts stocked materials into inventory when a
// supplier bill carrying inventory-linked lines is approved.
type BillReceiptHandler struct {
	itemRepo inventory.ItemRepository
	logger   *zap.Logger
}

// NewBillReceiptHandler creates a new BillReceiptHandler
func NewBillReceiptHandler(itemRepo inventory.ItemRepository, logger *zap.Logger) *BillReceiptHandler {
	return &BillReceiptHandler{
		itemRepo: itemRepo,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BillReceiptHandler) EventTypes() []string {
	return []string{purchasing.EventTypeSupplierBillApproved}
}

// Handle receipts every stocked line of the approved bill. Lines whose
// item cannot be found are logged and skipped so one bad reference does
// not block the rest of the bill.
func (h *BillReceiptHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approved, ok := event.(*purchasing.SupplierBillApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	var firstErr error
	for _, line := range approved.StockedItems {
		item, err := h.itemRepo.FindByIDForTenant(ctx, event.TenantID(), line.InventoryItemID)
		if err != nil {
			h.logger.Error("stocked line references unknown inventory item",
				zap.String("bill_number", approved.BillNumber),
				zap.String("item_id", line.InventoryItemID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		movement, err := item.Receive(line.Quantity, line.UnitPrice, approved.BillNumber)
		if err != nil {
			h.logger.Error("stock receipt from approved bill failed",
				zap.String("bill_number", approved.BillNumber),
				zap.String("sku", item.SKU),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		events := item.GetDomainEvents()
		if err := h.itemRepo.SaveWithMovements(ctx, item, []*inventory.StockMovement{movement}, events); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		item.ClearDomainEvents()

		h.logger.Debug("stock receipted from approved bill",
			zap.String("bill_number", approved.BillNumber),
			zap.String("sku", item.SKU),
			zap.String("quantity", line.Quantity.String()),
		)
	}
	return firstErr
}

var _ shared.EventHandler = (*BillReceiptHandler)(nil)
