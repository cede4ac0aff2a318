package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/shared"
)

// OpenPurchaseCounter reports how many open purchase orders a supplier has.
// Implemented by the purchasing repository.
type OpenPurchaseCounter interface {
	CountOpenBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID) (int64, error)
}

// SupplierService handles supplier business operations
type SupplierService struct {
	supplierRepo    partner.SupplierRepository
	purchaseCounter OpenPurchaseCounter
	eventPublisher  shared.EventPublisher
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetOpenPurchaseCounter wires the purchasing-side check used before deletion
func (s *SupplierService) SetOpenPurchaseCounter(counter OpenPurchaseCounter) {
	s.purchaseCounter = counter
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, tenantID uuid.UUID, req CreateSupplierRequest) (*SupplierResponse, error) {
	exists, err := s.supplierRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "Supplier code already in use")
	}

	supplier, err := partner.NewSupplier(tenantID, req.Code, req.Name, partner.SupplierCategory(req.Category))
	if err != nil {
		return nil, err
	}

	if req.ContactName != "" || req.Phone != "" || req.Email != "" {
		if err := supplier.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" {
		if err := supplier.SetAddress(req.Address, req.City); err != nil {
			return nil, err
		}
	}
	if req.TaxID != "" {
		if err := supplier.SetTaxID(req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.BankName != "" || req.BankAccount != "" {
		if err := supplier.SetBankInfo(req.BankName, req.BankAccount); err != nil {
			return nil, err
		}
	}
	if req.CreditDays != nil || req.CreditLimit != nil {
		creditDays := supplier.CreditDays
		creditLimit := supplier.CreditLimit
		if req.CreditDays != nil {
			creditDays = *req.CreditDays
		}
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		if err := supplier.SetCreditTerms(creditDays, creditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		supplier.SetNotes(req.Notes)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByCode retrieves a supplier by code
func (s *SupplierService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, tenantID uuid.UUID, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
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
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}

	suppliers, err := s.supplierRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSupplierResponses(suppliers), total, nil
}

// Update updates a supplier's details
func (s *SupplierService) Update(ctx context.Context, tenantID, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Category != nil {
		name := supplier.Name
		category := supplier.Category
		if req.Name != nil {
			name = *req.Name
		}
		if req.Category != nil {
			category = partner.SupplierCategory(*req.Category)
		}
		if err := supplier.Update(name, category); err != nil {
			return nil, err
		}
	}
	if req.ContactName != nil || req.Phone != nil || req.Email != nil {
		contactName := supplier.ContactName
		phone := supplier.Phone
		email := supplier.Email
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Email != nil {
			email = *req.Email
		}
		if err := supplier.SetContact(contactName, phone, email); err != nil {
			return nil, err
		}
	}
	if req.Address != nil || req.City != nil {
		address := supplier.Address
		city := supplier.City
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if err := supplier.SetAddress(address, city); err != nil {
			return nil, err
		}
	}
	if req.TaxID != nil {
		if err := supplier.SetTaxID(*req.TaxID); err != nil {
			return nil, err
		}
	}
	if req.BankName != nil || req.BankAccount != nil {
		bankName := supplier.BankName
		bankAccount := supplier.BankAccount
		if req.BankName != nil {
			bankName = *req.BankName
		}
		if req.BankAccount != nil {
			bankAccount = *req.BankAccount
		}
		if err := supplier.SetBankInfo(bankName, bankAccount); err != nil {
			return nil, err
		}
	}
	if req.CreditDays != nil || req.CreditLimit != nil {
		creditDays := supplier.CreditDays
		creditLimit := supplier.CreditLimit
		if req.CreditDays != nil {
			creditDays = *req.CreditDays
		}
		if req.CreditLimit != nil {
			creditLimit = *req.CreditLimit
		}
		if err := supplier.SetCreditTerms(creditDays, creditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		supplier.SetNotes(*req.Notes)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Activate activates a supplier
func (s *SupplierService) Activate(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, tenantID, supplierID, (*partner.Supplier).Activate)
}

// Deactivate deactivates a supplier
func (s *SupplierService) Deactivate(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, tenantID, supplierID, (*partner.Supplier).Deactivate)
}

// Block blocks a supplier from new purchase documents
func (s *SupplierService) Block(ctx context.Context, tenantID, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.transition(ctx, tenantID, supplierID, (*partner.Supplier).Block)
}

func (s *SupplierService) transition(ctx context.Context, tenantID, supplierID uuid.UUID, op func(*partner.Supplier) error) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return nil, err
	}
	if err := op(supplier); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Delete removes a supplier. Suppliers with outstanding balance or open
// purchase orders cannot be deleted.
func (s *SupplierService) Delete(ctx context.Context, tenantID, supplierID uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByIDForTenant(ctx, tenantID, supplierID)
	if err != nil {
		return err
	}
	if supplier.HasBalance() {
		return shared.NewDomainError("HAS_BALANCE", "Supplier has an outstanding balance")
	}
	if s.purchaseCounter != nil {
		open, err := s.purchaseCounter.CountOpenBySupplier(ctx, tenantID, supplierID)
		if err != nil {
			return err
		}
		if open > 0 {
			return shared.NewDomainError("HAS_OPEN_ORDERS", "Supplier has open purchase orders")
		}
	}
	return s.supplierRepo.Delete(ctx, supplierID)
}

func (s *SupplierService) publish(ctx context.Context, supplier *partner.Supplier) {
	if s.eventPublisher == nil {
		return
	}
	if events := supplier.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		supplier.ClearDomainEvents()
	}
}
