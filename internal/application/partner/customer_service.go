package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/shared"
)

// OpenOrderCounter reports how many non-terminal sales orders a customer has.
// Implemented by the sales order repository; kept as a local interface to
// avoid a dependency from partner onto the sales context.
type OpenOrderCounter interface {
	CountOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}

// CustomerService handles customer business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	orderCounter   OpenOrderCounter
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOpenOrderCounter wires the sales-side check used before deletion
func (s *CustomerService) SetOpenOrderCounter(counter OpenOrderCounter) {
	s.orderCounter = counter
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "Customer code already in use")
	}

	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name, partner.CustomerType(req.Type))
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Phone != "" || req.WhatsApp != "" || req.Email != "" {
		if err := customer.SetContact(req.ContactName, req.Phone, req.WhatsApp, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" {
		if err := customer.SetAddress(req.Address, req.City); err != nil {
			return nil, err
		}
	}
	if req.TaxID != "" {
		if err := customer.SetTaxID(req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.CreditDays != nil || req.CreditLimit != nil {
		creditDays := customer.CreditDays
		creditLimit := customer.CreditLimit
		if req.CreditDays != nil {
			creditDays = *req.CreditDays
		}
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		if err := customer.SetCreditTerms(creditDays, creditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByCode retrieves a customer by code
func (s *CustomerService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}
	if filter.City != nil {
		domainFilter.Filters["city"] = *filter.City
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer's details
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.Update(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.Phone != nil || req.WhatsApp != nil || req.Email != nil {
		contactName := customer.ContactName
		phone := customer.Phone
		whatsapp := customer.WhatsApp
		email := customer.Email
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.WhatsApp != nil {
			whatsapp = *req.WhatsApp
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := customer.SetContact(contactName, phone, whatsapp, email); err != nil {
			return nil, err
		}
	}
	if req.Address != nil || req.City != nil {
		address := customer.Address
		city := customer.City
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if err := customer.SetAddress(address, city); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := customer.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.CreditDays != nil || req.CreditLimit != nil {
		creditDays := customer.CreditDays
		creditLimit := customer.CreditLimit
		if req.CreditDays != nil {
			creditDays = *req.CreditDays
		}
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		if err := customer.SetCreditTerms(creditDays, creditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Activate activates a customer
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, tenantID, customerID, (*partner.Customer).Activate)
}

// Deactivate deactivates a customer
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, tenantID, customerID, (*partner.Customer).Deactivate)
}

// Block blocks a customer from new sales documents
func (s *CustomerService) Block(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.transition(ctx, tenantID, customerID, (*partner.Customer).Block)
}

func (s *CustomerService) transition(ctx context.Context, tenantID, customerID uuid.UUID, op func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if err := op(customer); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer. Customers with outstanding balance or open
// orders cannot be deleted.
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if !customer.Balance.IsZero() {
		return shared.NewDomainError("HAS_BALANCE", "Customer has an outstanding balance")
	}
	if s.orderCounter != nil {
		open, err := s.orderCounter.CountOpenByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if open > 0 {
			return shared.NewDomainError("HAS_OPEN_ORDERS", "Customer has open sales orders")
		}
	}
	return s.customerRepo.Delete(ctx, customerID)
}

// StatusSummary returns customer counts per status
func (s *CustomerService) StatusSummary(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	counts, err := s.customerRepo.CountByStatus(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	summary := make(map[string]int64, len(counts))
	for status, count := range counts {
		summary[string(status)] = count
	}
	return summary, nil
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	if s.eventPublisher == nil {
		return
	}
	if events := customer.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		customer.ClearDomainEvents()
	}
}
