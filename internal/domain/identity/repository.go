package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	shared.TenantRepository[User]

	// FindByUsername finds a user by username for a tenant
	FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*User, error)

	// ExistsByUsername checks if a username is taken for a tenant
	ExistsByUsername(ctx context.Context, tenantID uuid.UUID, username string) (bool, error)

	// ListTenantIDs returns the distinct tenants with at least one user.
	// The scheduler walks this list for per-tenant sweeps.
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}
