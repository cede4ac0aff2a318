package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/costing"
	"github.com/shopspring/decimal"
)

// CreateSheetRequest represents a request to open a costing sheet
type CreateSheetRequest struct {
	JobName      string            `json:"job_name" binding:"required,min=1,max=200"`
	Quantity     decimal.Decimal   `json:"quantity" binding:"required"`
	CustomerID   *uuid.UUID        `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	Formulas     map[string]string `json:"formulas"`
	ProfitPct    *decimal.Decimal  `json:"profit_percent"`
	TaxPct       *decimal.Decimal  `json:"tax_percent"`
}

// UpdateSheetRequest represents a request to rework a draft sheet
type UpdateSheetRequest struct {
	Quantity     *decimal.Decimal  `json:"quantity"`
	CustomerID   *uuid.UUID        `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	Formulas     map[string]string `json:"formulas"`
	ProfitPct    *decimal.Decimal  `json:"profit_percent"`
	TaxPct       *decimal.Decimal  `json:"tax_percent"`
}

// ValidateFormulaRequest carries a formula for standalone validation
type ValidateFormulaRequest struct {
	Formula string `json:"formula" binding:"required"`
}

// ValidateFormulaResponse reports validity and the evaluated amount
type ValidateFormulaResponse struct {
	Valid  bool            `json:"valid"`
	Error  string          `json:"error,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// SheetListFilter represents filter options for sheet lists
type SheetListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ComponentResponse represents one cost component in API responses
type ComponentResponse struct {
	Key     string          `json:"key"`
	Formula string          `json:"formula"`
	Amount  decimal.Decimal `json:"amount"`
}

// SheetResponse represents a costing sheet in API responses
type SheetResponse struct {
	ID            uuid.UUID           `json:"id"`
	JobName       string              `json:"job_name"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	CustomerName  string              `json:"customer_name,omitempty"`
	Quantity      decimal.Decimal     `json:"quantity"`
	Components    []ComponentResponse `json:"components"`
	ProfitPercent decimal.Decimal     `json:"profit_percent"`
	TaxPercent    decimal.Decimal     `json:"tax_percent"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ProfitAmount  decimal.Decimal     `json:"profit_amount"`
	TaxAmount     decimal.Decimal     `json:"tax_amount"`
	GrandTotal    decimal.Decimal     `json:"grand_total"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	Status        string              `json:"status"`
	FinalizedAt   *time.Time          `json:"finalized_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToSheetResponse converts a costing sheet aggregate to a response DTO
func ToSheetResponse(s *costing.CostingSheet) SheetResponse {
	components := make([]ComponentResponse, len(s.Components))
	for i, c := range s.Components {
		components[i] = ComponentResponse{
			Key:     string(c.Key),
			Formula: c.Formula,
			Amount:  c.Amount,
		}
	}
	return SheetResponse{
		ID:            s.ID,
		JobName:       s.JobName,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		Quantity:      s.Quantity,
		Components:    components,
		ProfitPercent: s.ProfitPercent,
		TaxPercent:    s.TaxPercent,
		Subtotal:      s.Subtotal,
		ProfitAmount:  s.ProfitAmount,
		TaxAmount:     s.TaxAmount,
		GrandTotal:    s.GrandTotal,
		UnitPrice:     s.UnitPrice,
		Status:        string(s.Status),
		FinalizedAt:   s.FinalizedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToSheetResponses converts a slice of costing sheets
func ToSheetResponses(sheets []costing.CostingSheet) []SheetResponse {
	responses := make([]SheetResponse, len(sheets))
	for i := range sheets {
		responses[i] = ToSheetResponse(&sheets[i])
	}
	return responses
}
