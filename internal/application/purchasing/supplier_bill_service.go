package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// SupplierBillService handles supplier bill business operations
type SupplierBillService struct {
	billRepo        purchasing.SupplierBillRepository
	orderRepo       purchasing.PurchaseOrderRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewSupplierBillService creates a new SupplierBillService
func NewSupplierBillService(billRepo purchasing.SupplierBillRepository, orderRepo purchasing.PurchaseOrderRepository) *SupplierBillService {
	return &SupplierBillService{
		billRepo:  billRepo,
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SupplierBillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SupplierBillService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create records a new supplier bill in draft status
func (s *SupplierBillService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierBillRequest) (*SupplierBillResponse, error) {
	number, err := s.billRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	bill, err := purchasing.NewSupplierBill(tenantID, number, req.SupplierID, req.SupplierName, req.BillDate)
	if err != nil {
		return nil, err
	}

	if req.SupplierBillRef != "" {
		if err := bill.SetSupplierBillRef(req.SupplierBillRef); err != nil {
			return nil, err
		}
	}
	if req.PurchaseOrderID != nil {
		// The order must exist for this tenant before linking.
		if _, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, *req.PurchaseOrderID); err != nil {
			return nil, err
		}
		if err := bill.LinkPurchaseOrder(*req.PurchaseOrderID); err != nil {
			return nil, err
		}
	}
	for _, line := range req.Items {
		if _, err := bill.AddItem(line.Description, line.InventoryItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := bill.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if err := bill.SetDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		bill.Remark = req.Remark
	}

	if err := s.save(ctx, bill); err != nil {
		return nil, err
	}

	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// GetByID retrieves a supplier bill by ID
func (s *SupplierBillService) GetByID(ctx context.Context, tenantID, billID uuid.UUID) (*SupplierBillResponse, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// List retrieves supplier bills with filtering and pagination
func (s *SupplierBillService) List(ctx context.Context, tenantID uuid.UUID, filter SupplierBillListFilter) ([]SupplierBillResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	if filter.Overdue {
		bills, err := s.billRepo.FindOverdue(ctx, tenantID, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		return ToSupplierBillResponses(bills), int64(len(bills)), nil
	}

	bills, err := s.billRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierBillResponses(bills), total, nil
}

// Approve accepts the bill into accounts payable. Downstream handlers
// post the supplier balance, journal draft and inventory receipts.
func (s *SupplierBillService) Approve(ctx context.Context, tenantID, billID uuid.UUID) (*SupplierBillResponse, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if err := bill.Approve(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, bill); err != nil {
		return nil, err
	}
	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// RecordPayment applies a payment to an approved bill
func (s *SupplierBillService) RecordPayment(ctx context.Context, tenantID, billID uuid.UUID, req RecordBillPaymentRequest) (*SupplierBillResponse, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if err := bill.RecordPayment(valueobject.NewMoneyUSD(req.Amount), req.Reference); err != nil {
		return nil, err
	}
	if err := s.save(ctx, bill); err != nil {
		return nil, err
	}

	// Bill payments carry no method, only a bank reference
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, "supplier_bill")
	}

	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// Dispute marks the bill as disputed with the supplier
func (s *SupplierBillService) Dispute(ctx context.Context, tenantID, billID uuid.UUID, req DisputeBillRequest) (*SupplierBillResponse, error) {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return nil, err
	}
	if err := bill.Dispute(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, bill); err != nil {
		return nil, err
	}
	response := ToSupplierBillResponse(bill)
	return &response, nil
}

// Delete removes a draft supplier bill
func (s *SupplierBillService) Delete(ctx context.Context, tenantID, billID uuid.UUID) error {
	bill, err := s.billRepo.FindByIDForTenant(ctx, tenantID, billID)
	if err != nil {
		return err
	}
	if bill.Status != purchasing.SupplierBillStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft bills can be deleted")
	}
	return s.billRepo.Delete(ctx, billID)
}

func (s *SupplierBillService) save(ctx context.Context, bill *purchasing.SupplierBill) error {
	events := bill.GetDomainEvents()
	if err := s.billRepo.SaveWithLockAndEvents(ctx, bill, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	bill.ClearDomainEvents()
	return nil
}

func (s *SupplierBillService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
