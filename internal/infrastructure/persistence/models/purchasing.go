package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber    string                         `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID     uuid.UUID                      `gorm:"type:uuid;not null;index"`
	SupplierName   string                         `gorm:"type:varchar(200);not null"`
	Items          []PurchaseOrderItemModel       `gorm:"foreignKey:PurchaseOrderID;references:ID"`
	Subtotal       decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal                `gorm:"type:decimal(18,4);not null;default:0"`
	ExpectedDate   *time.Time                     `gorm:"index"`
	Status         purchasing.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark         string                         `gorm:"type:text"`
	SentAt         *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	o := &purchasing.PurchaseOrder{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		ExpectedDate:        m.ExpectedDate,
		Status:              m.Status,
		Remark:              m.Remark,
		SentAt:              m.SentAt,
		ReceivedAt:          m.ReceivedAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Items:               make([]purchasing.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *purchasing.PurchaseOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.Subtotal = o.Subtotal
	m.DiscountAmount = o.DiscountAmount
	m.TaxRate = o.TaxRate
	m.TaxAmount = o.TaxAmount
	m.GrandTotal = o.GrandTotal
	m.ExpectedDate = o.ExpectedDate
	m.Status = o.Status
	m.Remark = o.Remark
	m.SentAt = o.SentAt
	m.ReceivedAt = o.ReceivedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&item)
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for the PurchaseOrderItem entity.
type PurchaseOrderItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description      string          `gorm:"type:varchar(500);not null"`
	InventoryItemID  *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) ToDomain() *purchasing.PurchaseOrderItem {
	return &purchasing.PurchaseOrderItem{
		ID:               m.ID,
		PurchaseOrderID:  m.PurchaseOrderID,
		Description:      m.Description,
		InventoryItemID:  m.InventoryItemID,
		Quantity:         m.Quantity,
		QuantityReceived: m.QuantityReceived,
		UnitPrice:        m.UnitPrice,
		Amount:           m.Amount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain PurchaseOrderItem entity.
func PurchaseOrderItemModelFromDomain(item *purchasing.PurchaseOrderItem) *PurchaseOrderItemModel {
	return &PurchaseOrderItemModel{
		ID:               item.ID,
		PurchaseOrderID:  item.PurchaseOrderID,
		Description:      item.Description,
		InventoryItemID:  item.InventoryItemID,
		Quantity:         item.Quantity,
		QuantityReceived: item.QuantityReceived,
		UnitPrice:        item.UnitPrice,
		Amount:           item.Amount,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// SupplierBillModel is the persistence model for the SupplierBill aggregate root.
type SupplierBillModel struct {
	TenantAggregateModel
	BillNumber      string                        `gorm:"type:varchar(50);not null;uniqueIndex:idx_supplier_bill_tenant_number,priority:2"`
	SupplierBillRef string                        `gorm:"type:varchar(100)"`
	SupplierID      uuid.UUID                     `gorm:"type:uuid;not null;index"`
	SupplierName    string                        `gorm:"type:varchar(200);not null"`
	PurchaseOrderID *uuid.UUID                    `gorm:"type:uuid;index"`
	BillScanID      *uuid.UUID                    `gorm:"type:uuid"`
	Items           []SupplierBillItemModel       `gorm:"foreignKey:SupplierBillID;references:ID"`
	Payments        []SupplierBillPaymentModel    `gorm:"foreignKey:SupplierBillID;references:ID"`
	Subtotal        decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal      decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid      decimal.Decimal               `gorm:"type:decimal(18,4);not null;default:0"`
	BillDate        time.Time                     `gorm:"not null;index"`
	DueDate         *time.Time                    `gorm:"index"`
	Status          purchasing.SupplierBillStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark          string                        `gorm:"type:text"`
	ApprovedAt      *time.Time
	DisputedAt      *time.Time
	DisputeReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SupplierBillModel) TableName() string {
	return "supplier_bills"
}

// ToDomain converts the persistence model to a domain SupplierBill entity.
func (m *SupplierBillModel) ToDomain() *purchasing.SupplierBill {
	b := &purchasing.SupplierBill{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		BillNumber:          m.BillNumber,
		SupplierBillRef:     m.SupplierBillRef,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		PurchaseOrderID:     m.PurchaseOrderID,
		BillScanID:          m.BillScanID,
		Subtotal:            m.Subtotal,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		AmountPaid:          m.AmountPaid,
		BillDate:            m.BillDate,
		DueDate:             m.DueDate,
		Status:              m.Status,
		Remark:              m.Remark,
		ApprovedAt:          m.ApprovedAt,
		DisputedAt:          m.DisputedAt,
		DisputeReason:       m.DisputeReason,
		Items:               make([]purchasing.SupplierBillItem, len(m.Items)),
		Payments:            make([]purchasing.SupplierBillPayment, len(m.Payments)),
	}
	for i, item := range m.Items {
		b.Items[i] = *item.ToDomain()
	}
	for i, p := range m.Payments {
		b.Payments[i] = *p.ToDomain()
	}
	return b
}

// FromDomain populates the persistence model from a domain SupplierBill entity.
func (m *SupplierBillModel) FromDomain(b *purchasing.SupplierBill) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.BillNumber = b.BillNumber
	m.SupplierBillRef = b.SupplierBillRef
	m.SupplierID = b.SupplierID
	m.SupplierName = b.SupplierName
	m.PurchaseOrderID = b.PurchaseOrderID
	m.BillScanID = b.BillScanID
	m.Subtotal = b.Subtotal
	m.TaxRate = b.TaxRate
	m.TaxAmount = b.TaxAmount
	m.GrandTotal = b.GrandTotal
	m.AmountPaid = b.AmountPaid
	m.BillDate = b.BillDate
	m.DueDate = b.DueDate
	m.Status = b.Status
	m.Remark = b.Remark
	m.ApprovedAt = b.ApprovedAt
	m.DisputedAt = b.DisputedAt
	m.DisputeReason = b.DisputeReason
	m.Items = make([]SupplierBillItemModel, len(b.Items))
	for i, item := range b.Items {
		m.Items[i] = *SupplierBillItemModelFromDomain(&item)
	}
	m.Payments = make([]SupplierBillPaymentModel, len(b.Payments))
	for i, p := range b.Payments {
		m.Payments[i] = *SupplierBillPaymentModelFromDomain(&p)
	}
}

// SupplierBillModelFromDomain creates a new persistence model from a domain SupplierBill entity.
func SupplierBillModelFromDomain(b *purchasing.SupplierBill) *SupplierBillModel {
	m := &SupplierBillModel{}
	m.FromDomain(b)
	return m
}

// SupplierBillItemModel is the persistence model for the SupplierBillItem entity.
type SupplierBillItemModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	SupplierBillID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description     string          `gorm:"type:varchar(500);not null"`
	InventoryItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierBillItemModel) TableName() string {
	return "supplier_bill_items"
}

// ToDomain converts the persistence model to a domain SupplierBillItem entity.
func (m *SupplierBillItemModel) ToDomain() *purchasing.SupplierBillItem {
	return &purchasing.SupplierBillItem{
		ID:              m.ID,
		SupplierBillID:  m.SupplierBillID,
		Description:     m.Description,
		InventoryItemID: m.InventoryItemID,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Amount:          m.Amount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// SupplierBillItemModelFromDomain creates a new persistence model from a domain SupplierBillItem entity.
func SupplierBillItemModelFromDomain(item *purchasing.SupplierBillItem) *SupplierBillItemModel {
	return &SupplierBillItemModel{
		ID:              item.ID,
		SupplierBillID:  item.SupplierBillID,
		Description:     item.Description,
		InventoryItemID: item.InventoryItemID,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		Amount:          item.Amount,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// SupplierBillPaymentModel is the persistence model for the SupplierBillPayment entity.
type SupplierBillPaymentModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	SupplierBillID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reference      string          `gorm:"type:varchar(100)"`
	PaidAt         time.Time       `gorm:"not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierBillPaymentModel) TableName() string {
	return "supplier_bill_payments"
}

// ToDomain converts the persistence model to a domain SupplierBillPayment entity.
func (m *SupplierBillPaymentModel) ToDomain() *purchasing.SupplierBillPayment {
	return &purchasing.SupplierBillPayment{
		ID:             m.ID,
		SupplierBillID: m.SupplierBillID,
		Amount:         m.Amount,
		Reference:      m.Reference,
		PaidAt:         m.PaidAt,
		CreatedAt:      m.CreatedAt,
	}
}

// SupplierBillPaymentModelFromDomain creates a new persistence model from a domain SupplierBillPayment entity.
func SupplierBillPaymentModelFromDomain(p *purchasing.SupplierBillPayment) *SupplierBillPaymentModel {
	return &SupplierBillPaymentModel{
		ID:             p.ID,
		SupplierBillID: p.SupplierBillID,
		Amount:         p.Amount,
		Reference:      p.Reference,
		PaidAt:         p.PaidAt,
		CreatedAt:      p.CreatedAt,
	}
}
