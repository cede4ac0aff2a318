package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerBalanceHandler keeps customer receivable balances in step with
// the invoice lifecycle: issuing raises the balance, payments lower it.
type CustomerBalanceHandler struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerBalanceHandler creates a new CustomerBalanceHandler
func NewCustomerBalanceHandler(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerBalanceHandler {
	return &CustomerBalanceHandler{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CustomerBalanceHandler) EventTypes() []string {
	return []string{
		sales.EventTypeInvoiceIssued,
		sales.EventTypeInvoicePaymentRecorded,
	}
}

// Handle processes invoice lifecycle events
func (h *CustomerBalanceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.InvoiceIssuedEvent:
		return h.adjust(ctx, event, e.CustomerID, func(c *partner.Customer) error {
			return c.AddBalance(e.GrandTotal)
		})
	case *sales.InvoicePaymentRecordedEvent:
		return h.adjust(ctx, event, e.CustomerID, func(c *partner.Customer) error {
			return c.DeductBalance(e.Amount)
		})
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *CustomerBalanceHandler) adjust(ctx context.Context, event shared.DomainEvent, customerID uuid.UUID, op func(*partner.Customer) error) error {
	customer, err := h.customerRepo.FindByIDForTenant(ctx, event.TenantID(), customerID)
	if err != nil {
		h.logger.Error("customer not found for balance adjustment",
			zap.String("customer_id", customerID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	if err := op(customer); err != nil {
		return err
	}
	if err := h.customerRepo.Save(ctx, customer); err != nil {
		return err
	}
	customer.ClearDomainEvents()
	h.logger.Debug("customer balance adjusted",
		zap.String("customer_id", customerID.String()),
		zap.String("balance", customer.Balance.String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

var _ shared.EventHandler = (*CustomerBalanceHandler)(nil)

// SupplierBalanceHandler keeps supplier payable balances in step with the
// supplier bill lifecycle.
type SupplierBalanceHandler struct {
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierBalanceHandler creates a new SupplierBalanceHandler
func NewSupplierBalanceHandler(supplierRepo partner.SupplierRepository, logger *zap.Logger) *SupplierBalanceHandler {
	return &SupplierBalanceHandler{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SupplierBalanceHandler) EventTypes() []string {
	return []string{
		purchasing.EventTypeSupplierBillApproved,
		purchasing.EventTypeSupplierBillPaymentRecorded,
	}
}

// Handle processes supplier bill lifecycle events
func (h *SupplierBalanceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *purchasing.SupplierBillApprovedEvent:
		return h.adjust(ctx, event, e.SupplierID, func(s *partner.Supplier) error {
			return s.AddBalance(e.GrandTotal)
		})
	case *purchasing.SupplierBillPaymentRecordedEvent:
		return h.adjust(ctx, event, e.SupplierID, func(s *partner.Supplier) error {
			return s.DeductBalance(e.Amount)
		})
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *SupplierBalanceHandler) adjust(ctx context.Context, event shared.DomainEvent, supplierID uuid.UUID, op func(*partner.Supplier) error) error {
	supplier, err := h.supplierRepo.FindByIDForTenant(ctx, event.TenantID(), supplierID)
	if err != nil {
		h.logger.Error("supplier not found for balance adjustment",
			zap.String("supplier_id", supplierID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	if err := op(supplier); err != nil {
		return err
	}
	if err := h.supplierRepo.Save(ctx, supplier); err != nil {
		return err
	}
	supplier.ClearDomainEvents()
	return nil
}

var _ shared.EventHandler = (*SupplierBalanceHandler)(nil)
