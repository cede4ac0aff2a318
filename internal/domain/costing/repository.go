package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// SheetRepository defines persistence operations for costing sheets
type SheetRepository interface {
	shared.TenantRepository[CostingSheet]

	// FindByCustomer finds sheets quoted for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]CostingSheet, error)

	// FindByStatus finds sheets by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status SheetStatus, filter shared.Filter) ([]CostingSheet, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, sheet *CostingSheet, events []shared.DomainEvent) error
}
