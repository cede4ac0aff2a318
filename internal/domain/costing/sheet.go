package costing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ComponentKey identifies one of the fixed cost components on a sheet
type ComponentKey string

const (
	ComponentPaper       ComponentKey = "paper"
	ComponentPlates      ComponentKey = "plates"
	ComponentPrinting    ComponentKey = "printing"
	ComponentLamination  ComponentKey = "lamination"
	ComponentCutting     ComponentKey = "cutting"
	ComponentFolding     ComponentKey = "folding"
	ComponentBinding     ComponentKey = "binding"
	ComponentNumbering   ComponentKey = "numbering"
	ComponentPerforation ComponentKey = "perforation"
	ComponentFoiling     ComponentKey = "foiling"
	ComponentUVCoating   ComponentKey = "uv_coating"
	ComponentDesign      ComponentKey = "design"
	ComponentPacking     ComponentKey = "packing"
	ComponentDelivery    ComponentKey = "delivery"
	ComponentOther       ComponentKey = "other"
)

// ComponentKeys lists every cost component in display order. Every sheet
// carries exactly this set.
var ComponentKeys = []ComponentKey{
	ComponentPaper, ComponentPlates, ComponentPrinting, ComponentLamination,
	ComponentCutting, ComponentFolding, ComponentBinding, ComponentNumbering,
	ComponentPerforation, ComponentFoiling, ComponentUVCoating, ComponentDesign,
	ComponentPacking, ComponentDelivery, ComponentOther,
}

// IsValid checks if the key is a known component
func (k ComponentKey) IsValid() bool {
	for _, known := range ComponentKeys {
		if k == known {
			return true
		}
	}
	return false
}

// CostComponent holds one component's formula and its evaluated amount
type CostComponent struct {
	Key     ComponentKey    `json:"key"`
	Formula string          `json:"formula"`
	Amount  decimal.Decimal `json:"amount"`
}

// SheetStatus represents the status of a costing sheet
type SheetStatus string

const (
	SheetStatusDraft     SheetStatus = "DRAFT"
	SheetStatusFinalized SheetStatus = "FINALIZED"
)

// CostingSheet is the aggregate root for a print job cost calculation.
// Each sheet carries the full fixed component set; empty formulas
// contribute zero. Finalized sheets are immutable and seed quotation
// line prices.
type CostingSheet struct {
	shared.TenantAggregateRoot
	JobName       string          `gorm:"type:varchar(200);not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	CustomerName  string          `gorm:"type:varchar(200)"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Components    []CostComponent `gorm:"serializer:json;type:jsonb"`
	ProfitPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProfitAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        SheetStatus     `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	FinalizedAt   *time.Time
}

// TableName returns the table name for GORM
func (CostingSheet) TableName() string {
	return "costing_sheets"
}

// NewCostingSheet creates a new draft sheet with all components empty
func NewCostingSheet(tenantID uuid.UUID, jobName string, quantity decimal.Decimal) (*CostingSheet, error) {
	if jobName == "" {
		return nil, shared.NewDomainError("INVALID_JOB_NAME", "Job name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	components := make([]CostComponent, 0, len(ComponentKeys))
	for _, key := range ComponentKeys {
		components = append(components, CostComponent{Key: key, Amount: decimal.Zero})
	}

	sheet := &CostingSheet{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		JobName:             jobName,
		Quantity:            quantity,
		Components:          components,
		ProfitPercent:       decimal.Zero,
		TaxPercent:          decimal.Zero,
		Subtotal:            decimal.Zero,
		ProfitAmount:        decimal.Zero,
		TaxAmount:           decimal.Zero,
		GrandTotal:          decimal.Zero,
		UnitPrice:           decimal.Zero,
		Status:              SheetStatusDraft,
	}
	sheet.rollup()

	return sheet, nil
}

// SetCustomer attaches the customer the job is quoted for
func (s *CostingSheet) SetCustomer(customerID uuid.UUID, customerName string) error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a finalized sheet")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	s.CustomerID = &customerID
	s.CustomerName = customerName
	s.Touch()

	return nil
}

// SetQuantity changes the job quantity and reprices the unit
func (s *CostingSheet) SetQuantity(quantity decimal.Decimal) error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a finalized sheet")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	s.Quantity = quantity
	s.rollup()
	s.Touch()

	return nil
}

// SetComponentFormula validates, evaluates and stores one component's
// formula. An empty formula clears the component to zero.
func (s *CostingSheet) SetComponentFormula(key ComponentKey, formula string) error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a finalized sheet")
	}
	if !key.IsValid() {
		return shared.NewDomainError("INVALID_COMPONENT", fmt.Sprintf("Unknown cost component: %s", key))
	}

	amount := decimal.Zero
	if formula != "" {
		evaluated, err := EvaluateFormula(formula)
		if err != nil {
			return err
		}
		if evaluated.IsNegative() {
			return shared.NewDomainError("NEGATIVE_AMOUNT", "Component amount cannot be negative")
		}
		amount = evaluated
	}

	for idx := range s.Components {
		if s.Components[idx].Key == key {
			s.Components[idx].Formula = formula
			s.Components[idx].Amount = amount
			break
		}
	}
	s.rollup()
	s.Touch()

	return nil
}

// SetProfitPercent sets the markup applied on the cost subtotal
func (s *CostingSheet) SetProfitPercent(percent decimal.Decimal) error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a finalized sheet")
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(500)) {
		return shared.NewDomainError("INVALID_PERCENT", "Profit percent must be between 0 and 500")
	}

	s.ProfitPercent = percent
	s.rollup()
	s.Touch()

	return nil
}

// SetTaxPercent sets the tax applied after profit
func (s *CostingSheet) SetTaxPercent(percent decimal.Decimal) error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change a finalized sheet")
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PERCENT", "Tax percent must be between 0 and 100")
	}

	s.TaxPercent = percent
	s.rollup()
	s.Touch()

	return nil
}

// Finalize freezes the sheet. At least one component must carry cost.
func (s *CostingSheet) Finalize() error {
	if s.Status != SheetStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Sheet is already finalized")
	}
	if s.Subtotal.IsZero() {
		return shared.NewDomainError("EMPTY_SHEET", "Cannot finalize a sheet with no cost")
	}

	now := time.Now()
	s.Status = SheetStatusFinalized
	s.FinalizedAt = &now
	s.Touch()

	s.AddDomainEvent(NewSheetFinalizedEvent(s))

	return nil
}

// GetComponent returns a component by key
func (s *CostingSheet) GetComponent(key ComponentKey) *CostComponent {
	for idx := range s.Components {
		if s.Components[idx].Key == key {
			return &s.Components[idx]
		}
	}
	return nil
}

// rollup recomputes the pricing chain in fixed order:
// Subtotal -> +profit% -> +tax% -> unit price at 4 decimal places.
func (s *CostingSheet) rollup() {
	subtotal := decimal.Zero
	for _, component := range s.Components {
		subtotal = subtotal.Add(component.Amount)
	}
	s.Subtotal = subtotal
	s.ProfitAmount = subtotal.Mul(s.ProfitPercent).Div(decimal.NewFromInt(100)).Round(2)
	s.TaxAmount = subtotal.Add(s.ProfitAmount).Mul(s.TaxPercent).Div(decimal.NewFromInt(100)).Round(2)
	s.GrandTotal = subtotal.Add(s.ProfitAmount).Add(s.TaxAmount)
	s.UnitPrice = s.GrandTotal.DivRound(s.Quantity, 4)
}
