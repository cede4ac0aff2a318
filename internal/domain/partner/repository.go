package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	shared.TenantRepository[Customer]
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[CustomerStatus]int64, error)
}

// SupplierRepository defines persistence operations for suppliers
type SupplierRepository interface {
	shared.TenantRepository[Supplier]
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Supplier, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[SupplierStatus]int64, error)
}
