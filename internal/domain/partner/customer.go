package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusBlocked  CustomerStatus = "blocked" // Blocked due to payment issues
)

// CustomerType classifies how the customer trades with the print shop
type CustomerType string

const (
	CustomerTypeWalkIn    CustomerType = "walk_in"   // One-off retail job
	CustomerTypeBusiness  CustomerType = "business"  // Repeat commercial account
	CustomerTypeAgency    CustomerType = "agency"    // Advertising/design agency reselling print
	CustomerTypeGovernment CustomerType = "government"
)

// Customer represents a customer account in the partner context.
// It is the aggregate root for customer-related operations.
type Customer struct {
	shared.TenantAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Type         CustomerType    `gorm:"type:varchar(20);not null;default:'business'"`
	Status       CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string          `gorm:"type:varchar(100)"`
	Phone        string          `gorm:"type:varchar(50);index"`
	WhatsApp     string          `gorm:"type:varchar(50)"` // Number used for document dispatch
	Email        string          `gorm:"type:varchar(200);index"`
	Address      string          `gorm:"type:text"`
	City         string          `gorm:"type:varchar(100)"`
	TaxID        string          `gorm:"type:varchar(50)"`
	CreditDays   int             `gorm:"not null;default:0"`                    // Days until invoice payment is due
	CreditLimit  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Maximum receivable allowed
	Balance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Outstanding accounts receivable
	Notes        string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string, customerType CustomerType) (*Customer, error) {
	if err := validatePartnerCode(code); err != nil {
		return nil, err
	}
	if err := validatePartnerName(name); err != nil {
		return nil, err
	}
	if err := validateCustomerType(customerType); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                customerType,
		Status:              CustomerStatusActive,
		CreditLimit:         decimal.Zero,
		Balance:             decimal.Zero,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// Update updates the customer's basic information
func (c *Customer) Update(name string) error {
	if err := validatePartnerName(name); err != nil {
		return err
	}

	c.Name = name
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// SetContact sets contact information used for document dispatch
func (c *Customer) SetContact(contactName, phone, whatsapp, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if whatsapp != "" {
		if err := validatePhone(whatsapp); err != nil {
			return shared.NewDomainError("INVALID_WHATSAPP", "WhatsApp number is not a valid phone number")
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Phone = phone
	c.WhatsApp = whatsapp
	c.Email = email
	c.Touch()
	c.IncrementVersion()

	return nil
}

// SetAddress sets the customer's address information
func (c *Customer) SetAddress(address, city string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}

	c.Address = address
	c.City = city
	c.Touch()
	c.IncrementVersion()

	return nil
}

// SetTaxID sets the customer's tax identification number
func (c *Customer) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	c.TaxID = taxID
	c.Touch()
	c.IncrementVersion()

	return nil
}

// SetCreditTerms sets the customer's credit days and limit
func (c *Customer) SetCreditTerms(creditDays int, creditLimit decimal.Decimal) error {
	if creditDays < 0 || creditDays > 365 {
		return shared.NewDomainError("INVALID_CREDIT_DAYS", "Credit days must be between 0 and 365")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	c.CreditDays = creditDays
	c.CreditLimit = creditLimit
	c.Touch()
	c.IncrementVersion()

	return nil
}

// SetNotes sets the customer's notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
}

// AddBalance increases the outstanding receivable (when an invoice is issued)
func (c *Customer) AddBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	oldBalance := c.Balance
	c.Balance = c.Balance.Add(amount)
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, oldBalance, c.Balance, "invoice"))

	return nil
}

// DeductBalance reduces the outstanding receivable (when the customer pays)
func (c *Customer) DeductBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if c.Balance.LessThan(amount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount exceeds outstanding balance")
	}

	oldBalance := c.Balance
	c.Balance = c.Balance.Sub(amount)
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, oldBalance, c.Balance, "payment"))

	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.Status == CustomerStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}

	oldStatus := c.Status
	c.Status = CustomerStatusActive
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, oldStatus, CustomerStatusActive))

	return nil
}

// Deactivate deactivates the customer
func (c *Customer) Deactivate() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}

	oldStatus := c.Status
	c.Status = CustomerStatusInactive
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, oldStatus, CustomerStatusInactive))

	return nil
}

// Block blocks the customer (e.g., for repeated non-payment)
func (c *Customer) Block() error {
	if c.Status == CustomerStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Customer is already blocked")
	}

	oldStatus := c.Status
	c.Status = CustomerStatusBlocked
	c.Touch()
	c.IncrementVersion()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c, oldStatus, CustomerStatusBlocked))

	return nil
}

// IsActive returns true if the customer is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// IsBlocked returns true if the customer is blocked
func (c *Customer) IsBlocked() bool {
	return c.Status == CustomerStatusBlocked
}

// DueDateFrom returns the invoice due date implied by the customer's credit days
func (c *Customer) DueDateFrom(issueDate time.Time) time.Time {
	return issueDate.AddDate(0, 0, c.CreditDays)
}

// HasAvailableCredit reports whether a new charge fits within the credit limit.
// A zero credit limit means no limit is enforced.
func (c *Customer) HasAvailableCredit(amount decimal.Decimal) bool {
	if c.CreditLimit.IsZero() {
		return true
	}
	return c.Balance.Add(amount).LessThanOrEqual(c.CreditLimit)
}

// Validation functions shared across the partner context

var (
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\-\s]{5,19}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validatePartnerCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validatePartnerName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateCustomerType(t CustomerType) error {
	switch t {
	case CustomerTypeWalkIn, CustomerTypeBusiness, CustomerTypeAgency, CustomerTypeGovernment:
		return nil
	default:
		return shared.NewDomainError("INVALID_TYPE", "Invalid customer type")
	}
}

func validatePhone(phone string) error {
	if len(phone) > 50 || !phoneRegex.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is not valid")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	return nil
}
