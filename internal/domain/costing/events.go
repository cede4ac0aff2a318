package costing

import (
	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateTypeCostingSheet = "CostingSheet"

const (
	EventTypeSheetFinalized = "CostingSheetFinalized"
)

// SheetFinalizedEvent is published when a costing sheet is frozen
type SheetFinalizedEvent struct {
	shared.BaseDomainEvent
	SheetID    uuid.UUID       `json:"sheet_id"`
	JobName    string          `json:"job_name"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// NewSheetFinalizedEvent creates a new SheetFinalizedEvent
func NewSheetFinalizedEvent(s *CostingSheet) *SheetFinalizedEvent {
	return &SheetFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSheetFinalized, AggregateTypeCostingSheet, s.ID, s.TenantID),
		SheetID:         s.ID,
		JobName:         s.JobName,
		CustomerID:      s.CustomerID,
		Quantity:        s.Quantity,
		GrandTotal:      s.GrandTotal,
		UnitPrice:       s.UnitPrice,
	}
}
