package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
	SupplierStatusBlocked  SupplierStatus = "blocked" // Blocked due to quality/payment disputes
)

// SupplierCategory classifies what the supplier provides to the print shop
type SupplierCategory string

const (
	SupplierCategoryPaper      SupplierCategory = "paper"      // Paper mills and merchants
	SupplierCategoryInk        SupplierCategory = "ink"        // Ink and coating vendors
	SupplierCategoryPlates     SupplierCategory = "plates"     // Plate making and prepress
	SupplierCategoryFinishing  SupplierCategory = "finishing"  // Binding, lamination, die cutting
	SupplierCategoryOutsourced SupplierCategory = "outsourced" // Outsourced print work
	SupplierCategoryGeneral    SupplierCategory = "general"    // Consumables and services
)

// Supplier represents a supplier in the partner context.
// It is the aggregate root for supplier-related operations.
type Supplier struct {
	shared.TenantAggregateRoot
	Code        string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_tenant_code,priority:2"`
	Name        string           `gorm:"type:varchar(200);not null"`
	Category    SupplierCategory `gorm:"type:varchar(20);not null;default:'general'"`
	Status      SupplierStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName string           `gorm:"type:varchar(100)"`
	Phone       string           `gorm:"type:varchar(50);index"`
	Email       string           `gorm:"type:varchar(200);index"`
	Address     string           `gorm:"type:text"`
	City        string           `gorm:"type:varchar(100)"`
	TaxID       string           `gorm:"type:varchar(50)"`
	BankName    string           `gorm:"type:varchar(200)"`
	BankAccount string           `gorm:"type:varchar(100)"`
	CreditDays  int              `gorm:"not null;default:0"`                    // Days until payment due
	CreditLimit decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // Maximum payable allowed
	Balance     decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // Outstanding accounts payable
	Notes       string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(tenantID uuid.UUID, code, name string, category SupplierCategory) (*Supplier, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if err := validateSupplierCategory(category); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Category:            category,
		Status:              SupplierStatusActive,
		CreditLimit:         decimal.Zero,
		Balance:             decimal.Zero,
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// Update updates the supplier's basic information
func (s *Supplier) Update(name string, category SupplierCategory) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}
	if err := validateSupplierCategory(category); err != nil {
		return err
	}

	s.Name = name
	s.Category = category
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierUpdatedEvent(s))

	return nil
}

// SetContact sets the supplier's contact information
func (s *Supplier) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.Touch()
	s.IncrementVersion()

	return nil
}

// SetAddress sets the supplier's address information
func (s *Supplier) SetAddress(address, city string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}

	s.Address = address
	s.City = city
	s.Touch()
	s.IncrementVersion()

	return nil
}

// SetTaxID sets the supplier's tax identification number
func (s *Supplier) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	s.TaxID = taxID
	s.Touch()
	s.IncrementVersion()

	return nil
}

// SetBankInfo sets the supplier's bank information used on payment vouchers
func (s *Supplier) SetBankInfo(bankName, bankAccount string) error {
	if bankName != "" && len(bankName) > 200 {
		return shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot exceed 200 characters")
	}
	if bankAccount != "" && len(bankAccount) > 100 {
		return shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account cannot exceed 100 characters")
	}

	s.BankName = bankName
	s.BankAccount = bankAccount
	s.Touch()
	s.IncrementVersion()

	return nil
}

// SetCreditTerms sets the supplier's credit days and limit
func (s *Supplier) SetCreditTerms(creditDays int, creditLimit decimal.Decimal) error {
	if creditDays < 0 || creditDays > 365 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days must be between 0 and 365")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	s.CreditDays = creditDays
	s.CreditLimit = creditLimit
	s.Touch()
	s.IncrementVersion()

	return nil
}

// SetNotes sets the supplier's notes
func (s *Supplier) SetNotes(notes string) {
	s.Notes = notes
	s.Touch()
	s.IncrementVersion()
}

// AddBalance increases the outstanding payable (when a bill is approved)
func (s *Supplier) AddBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	oldBalance := s.Balance
	s.Balance = s.Balance.Add(amount)
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, oldBalance, s.Balance, "bill"))

	return nil
}

// DeductBalance reduces the outstanding payable (when we pay the supplier)
func (s *Supplier) DeductBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if s.Balance.LessThan(amount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount exceeds outstanding balance")
	}

	oldBalance := s.Balance
	s.Balance = s.Balance.Sub(amount)
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierBalanceChangedEvent(s, oldBalance, s.Balance, "payment"))

	return nil
}

// Activate activates the supplier
func (s *Supplier) Activate() error {
	if s.Status == SupplierStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Supplier is already active")
	}

	oldStatus := s.Status
	s.Status = SupplierStatusActive
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierStatusChangedEvent(s, oldStatus, SupplierStatusActive))

	return nil
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}

	oldStatus := s.Status
	s.Status = SupplierStatusInactive
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierStatusChangedEvent(s, oldStatus, SupplierStatusInactive))

	return nil
}

// Block blocks the supplier
func (s *Supplier) Block() error {
	if s.Status == SupplierStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Supplier is already blocked")
	}

	oldStatus := s.Status
	s.Status = SupplierStatusBlocked
	s.Touch()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierStatusChangedEvent(s, oldStatus, SupplierStatusBlocked))

	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// IsBlocked returns true if the supplier is blocked
func (s *Supplier) IsBlocked() bool {
	return s.Status == SupplierStatusBlocked
}

// HasBalance returns true if the supplier has an outstanding payable
func (s *Supplier) HasBalance() bool {
	return s.Balance.GreaterThan(decimal.Zero)
}

func validateSupplierCategory(c SupplierCategory) error {
	switch c {
	case SupplierCategoryPaper, SupplierCategoryInk, SupplierCategoryPlates,
		SupplierCategoryFinishing, SupplierCategoryOutsourced, SupplierCategoryGeneral:
		return nil
	default:
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid supplier category")
	}
}
