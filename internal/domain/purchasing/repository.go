package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence operations for purchase orders
type PurchaseOrderRepository interface {
	shared.TenantRepository[PurchaseOrder]

	// FindByNumber finds an order by its document number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*PurchaseOrder, error)

	// FindBySupplier finds orders for a supplier
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus finds orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// CountOpenBySupplier counts non-terminal orders for a supplier
	CountOpenBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, order *PurchaseOrder, events []shared.DomainEvent) error

	// GenerateNumber generates the next PO- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SupplierBillRepository defines persistence operations for supplier bills
type SupplierBillRepository interface {
	shared.TenantRepository[SupplierBill]

	// FindByNumber finds a bill by its internal number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SupplierBill, error)

	// FindBySupplier finds bills for a supplier
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]SupplierBill, error)

	// FindByStatus finds bills by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status SupplierBillStatus, filter shared.Filter) ([]SupplierBill, error)

	// FindOverdue finds approved bills past their due date
	FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SupplierBill, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, bill *SupplierBill, events []shared.DomainEvent) error

	// GenerateNumber generates the next BILL- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// BillScanRepository defines persistence operations for bill scans
type BillScanRepository interface {
	shared.TenantRepository[BillScan]

	// FindByStatus finds scans by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status BillScanStatus, filter shared.Filter) ([]BillScan, error)

	// FindPending finds uploaded scans awaiting extraction, oldest first,
	// across tenants. The extraction worker drains this queue.
	FindPending(ctx context.Context, limit int) ([]BillScan, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, scan *BillScan, events []shared.DomainEvent) error
}
