package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/printcloud/backend/internal/domain/shared/valueobject"
	"github.com/printcloud/backend/internal/infrastructure/telemetry"
)

// DefaultShareTTL is used when a share request does not specify one
const DefaultShareTTL = 30 * 24 * time.Hour

// fallbackCreditDays applies when the customer's terms are unavailable
const fallbackCreditDays = 14

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo     sales.InvoiceRepository
	orderRepo       sales.SalesOrderRepository
	customerRepo    partner.CustomerRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo sales.InvoiceRepository, orderRepo sales.SalesOrderRepository) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetCustomerRepository wires the partner context for credit-term due dates
func (s *InvoiceService) SetCustomerRepository(repo partner.CustomerRepository) {
	s.customerRepo = repo
}

// SetBusinessMetrics sets the business metrics collector
func (s *InvoiceService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a standalone counter-sale invoice
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	number, err := s.invoiceRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invoice, err := sales.NewSalesInvoice(tenantID, number, req.CustomerID, req.CustomerName, req.DueDate)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Items {
		if err := invoice.AddItem(line.Description, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := invoice.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		invoice.Remark = req.Remark
	}

	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordInvoiceIssued(ctx, tenantID, invoice.GrandTotal)
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// IssueFromOrder issues an invoice from a ready or delivered sales order.
// Any advance paid on the order is carried over as the first payment, and
// the order is marked invoiced.
func (s *InvoiceService) IssueFromOrder(ctx context.Context, tenantID uuid.UUID, req IssueFromOrderRequest) (*InvoiceResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, req.OrderID)
	if err != nil {
		return nil, err
	}

	dueDate := time.Time{}
	if req.DueDate != nil {
		dueDate = *req.DueDate
	} else {
		dueDate = s.resolveDueDate(ctx, tenantID, order.CustomerID)
	}

	number, err := s.invoiceRepo.GenerateNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	invoice, err := sales.NewSalesInvoiceFromOrder(number, order, dueDate)
	if err != nil {
		return nil, err
	}
	if err := order.MarkInvoiced(invoice.ID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}

	orderEvents := order.GetDomainEvents()
	if err := s.orderRepo.SaveWithLockAndEvents(ctx, order, orderEvents); err != nil {
		return nil, err
	}
	s.publish(ctx, orderEvents)
	order.ClearDomainEvents()

	if s.businessMetrics != nil {
		s.businessMetrics.RecordInvoiceIssued(ctx, tenantID, invoice.GrandTotal)
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByNumber retrieves an invoice by document number
func (s *InvoiceService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := buildFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search)
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var (
		invoices []sales.SalesInvoice
		err      error
	)
	if filter.OverdueOnly {
		invoices, err = s.invoiceRepo.FindOverdue(ctx, tenantID, domainFilter)
	} else {
		invoices, err = s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// RecordPayment records a payment against an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	method := sales.PaymentMethod(req.Method)
	if err := invoice.RecordPayment(valueobject.NewMoneyUSD(req.Amount), method, req.Reference); err != nil {
		return nil, err
	}

	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, tenantID, string(method))
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Void voids an unpaid invoice
func (s *InvoiceService) Void(ctx context.Context, tenantID, invoiceID uuid.UUID, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Void(req.Reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// EnableSharing turns on the public share link for an invoice and returns
// the token. Calling it again rotates the token.
func (s *InvoiceService) EnableSharing(ctx context.Context, tenantID, invoiceID uuid.UUID, req ShareInvoiceRequest) (*ShareLinkResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	ttl := DefaultShareTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}
	token, err := invoice.EnableSharing(ttl)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, invoice); err != nil {
		return nil, err
	}
	return &ShareLinkResponse{
		Token:     token,
		ExpiresAt: invoice.ShareExpiresAt,
	}, nil
}

// DisableSharing revokes the public share link
func (s *InvoiceService) DisableSharing(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}
	invoice.DisableSharing()
	return s.save(ctx, invoice)
}

// GetShared resolves a public share token to the shared-invoice view.
// Unknown, expired, and revoked tokens all surface the same error.
func (s *InvoiceService) GetShared(ctx context.Context, token string) (*SharedInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByShareToken(ctx, token)
	if err != nil {
		return nil, shared.NewDomainError("SHARE_NOT_FOUND", "Shared invoice not found")
	}
	if !invoice.IsShareTokenValid(token) {
		return nil, shared.NewDomainError("SHARE_NOT_FOUND", "Shared invoice not found")
	}
	response := ToSharedInvoiceResponse(invoice)
	return &response, nil
}

// GetSharedAggregate resolves a share token to the underlying invoice for
// rendering. Same validity rules as GetShared.
func (s *InvoiceService) GetSharedAggregate(ctx context.Context, token string) (*sales.SalesInvoice, error) {
	invoice, err := s.invoiceRepo.FindByShareToken(ctx, token)
	if err != nil {
		return nil, shared.NewDomainError("SHARE_NOT_FOUND", "Shared invoice not found")
	}
	if !invoice.IsShareTokenValid(token) {
		return nil, shared.NewDomainError("SHARE_NOT_FOUND", "Shared invoice not found")
	}
	return invoice, nil
}

func (s *InvoiceService) resolveDueDate(ctx context.Context, tenantID, customerID uuid.UUID) time.Time {
	now := time.Now()
	if s.customerRepo != nil {
		if customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err == nil {
			return customer.DueDateFrom(now)
		}
	}
	return now.AddDate(0, 0, fallbackCreditDays)
}

func (s *InvoiceService) save(ctx context.Context, invoice *sales.SalesInvoice) error {
	events := invoice.GetDomainEvents()
	if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, events); err != nil {
		return err
	}
	s.publish(ctx, events)
	invoice.ClearDomainEvents()
	return nil
}

func (s *InvoiceService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
