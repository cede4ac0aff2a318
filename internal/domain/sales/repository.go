package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
)

// QuotationRepository defines persistence operations for quotations
type QuotationRepository interface {
	shared.TenantRepository[SalesQuotation]

	// FindByNumber finds a quotation by its document number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SalesQuotation, error)

	// FindByCustomer finds quotations for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]SalesQuotation, error)

	// FindByStatus finds quotations by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status QuotationStatus, filter shared.Filter) ([]SalesQuotation, error)

	// FindExpirable finds sent quotations whose validity date has lapsed
	FindExpirable(ctx context.Context, tenantID uuid.UUID, limit int) ([]SalesQuotation, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, quotation *SalesQuotation, events []shared.DomainEvent) error

	// GenerateNumber generates the next QT- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// SalesOrderRepository defines persistence operations for sales orders
type SalesOrderRepository interface {
	shared.TenantRepository[SalesOrder]

	// FindByNumber finds an order by its document number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SalesOrder, error)

	// FindByCustomer finds orders for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]SalesOrder, error)

	// FindByStatus finds orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status SalesOrderStatus, filter shared.Filter) ([]SalesOrder, error)

	// FindOpen finds orders that are not delivered or cancelled
	FindOpen(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SalesOrder, error)

	// CountByStatus counts orders per status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[SalesOrderStatus]int64, error)

	// CountOpenByCustomer counts non-terminal orders for a customer,
	// used for validation before customer deletion
	CountOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, order *SalesOrder, events []shared.DomainEvent) error

	// GenerateNumber generates the next SO- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// InvoiceRepository defines persistence operations for sales invoices
type InvoiceRepository interface {
	shared.TenantRepository[SalesInvoice]

	// FindByNumber finds an invoice by its document number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*SalesInvoice, error)

	// FindByCustomer finds invoices for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]SalesInvoice, error)

	// FindByStatus finds invoices by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status InvoiceStatus, filter shared.Filter) ([]SalesInvoice, error)

	// FindByShareToken finds an invoice by its public share token.
	// Lookup is cross-tenant since the public view carries no tenant context.
	FindByShareToken(ctx context.Context, token string) (*SalesInvoice, error)

	// FindOverdue finds unpaid invoices past their due date
	FindOverdue(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]SalesInvoice, error)

	// SaveWithLockAndEvents saves with optimistic locking and writes domain
	// events to the outbox in the same transaction
	SaveWithLockAndEvents(ctx context.Context, invoice *SalesInvoice, events []shared.DomainEvent) error

	// GenerateNumber generates the next INV- number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
