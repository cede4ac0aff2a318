package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Code        string           `json:"code" binding:"required,min=2,max=20"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Type        string           `json:"type" binding:"required,oneof=walk_in business agency government"`
	ContactName string           `json:"contact_name"`
	Phone       string           `json:"phone"`
	WhatsApp    string           `json:"whatsapp"`
	Email       string           `json:"email"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	TaxID       string           `json:"tax_id"`
	CreditDays  *int             `json:"credit_days"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       string           `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name        *string          `json:"name"`
	ContactName *string          `json:"contact_name"`
	Phone       *string          `json:"phone"`
	WhatsApp    *string          `json:"whatsapp"`
	Email       *string          `json:"email"`
	Address     *string          `json:"address"`
	City        *string          `json:"city"`
	TaxID       *string          `json:"tax_id"`
	CreditDays  *int             `json:"credit_days"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       *string          `json:"notes"`
}

// CustomerListFilter represents filter options for customer lists
type CustomerListFilter struct {
	Search   string  `form:"search"`
	Status   *string `form:"status"`
	Type     *string `form:"type"`
	City     *string `form:"city"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	ContactName string          `json:"contact_name"`
	Phone       string          `json:"phone"`
	WhatsApp    string          `json:"whatsapp"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	TaxID       string          `json:"tax_id"`
	CreditDays  int             `json:"credit_days"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a customer aggregate to a response DTO
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Type:        string(c.Type),
		ContactName: c.ContactName,
		Phone:       c.Phone,
		WhatsApp:    c.WhatsApp,
		Email:       c.Email,
		Address:     c.Address,
		City:        c.City,
		TaxID:       c.TaxID,
		CreditDays:  c.CreditDays,
		CreditLimit: c.CreditLimit,
		Balance:     c.Balance,
		Status:      string(c.Status),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// ==================== Supplier DTOs ====================

// CreateSupplierRequest represents a request to create a supplier
type CreateSupplierRequest struct {
	Code        string           `json:"code" binding:"required,min=2,max=20"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Category    string           `json:"category" binding:"required"`
	ContactName string           `json:"contact_name"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	TaxID       string           `json:"tax_id"`
	BankName    string           `json:"bank_name"`
	BankAccount string           `json:"bank_account"`
	CreditDays  *int             `json:"credit_days"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       string           `json:"notes"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	ContactName *string          `json:"contact_name"`
	Phone       *string          `json:"phone"`
	Email       *string          `json:"email"`
	Address     *string          `json:"address"`
	City        *string          `json:"city"`
	TaxID       *string          `json:"tax_id"`
	BankName    *string          `json:"bank_name"`
	BankAccount *string          `json:"bank_account"`
	CreditDays  *int             `json:"credit_days"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Notes       *string          `json:"notes"`
}

// SupplierListFilter represents filter options for supplier lists
type SupplierListFilter struct {
	Search   string  `form:"search"`
	Status   *string `form:"status"`
	Category *string `form:"category"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	ContactName string          `json:"contact_name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	TaxID       string          `json:"tax_id"`
	BankName    string          `json:"bank_name"`
	BankAccount string          `json:"bank_account"`
	CreditDays  int             `json:"credit_days"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToSupplierResponse converts a supplier aggregate to a response DTO
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		Category:    string(s.Category),
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		City:        s.City,
		TaxID:       s.TaxID,
		BankName:    s.BankName,
		BankAccount: s.BankAccount,
		CreditDays:  s.CreditDays,
		CreditLimit: s.CreditLimit,
		Balance:     s.Balance,
		Status:      string(s.Status),
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}
