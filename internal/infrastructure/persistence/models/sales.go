package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// QuotationModel is the persistence model for the SalesQuotation aggregate root.
type QuotationModel struct {
	TenantAggregateModel
	QuotationNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_quotation_tenant_number,priority:2"`
	CustomerID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName     string                `gorm:"type:varchar(200);not null"`
	Items            []QuotationItemModel  `gorm:"foreignKey:QuotationID;references:ID"`
	Subtotal         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate          decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	ValidUntil       *time.Time            `gorm:"index"`
	Status           sales.QuotationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark           string                `gorm:"type:text"`
	SentAt           *time.Time
	DecidedAt        *time.Time
	ConvertedOrderID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "sales_quotations"
}

// ToDomain converts the persistence model to a domain SalesQuotation entity.
func (m *QuotationModel) ToDomain() *sales.SalesQuotation {
	q := &sales.SalesQuotation{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		QuotationNumber:     m.QuotationNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		ValidUntil:          m.ValidUntil,
		Status:              m.Status,
		Remark:              m.Remark,
		SentAt:              m.SentAt,
		DecidedAt:           m.DecidedAt,
		ConvertedOrderID:    m.ConvertedOrderID,
		Items:               make([]sales.QuotationItem, len(m.Items)),
	}
	for i, item := range m.Items {
		q.Items[i] = *item.ToDomain()
	}
	return q
}

// FromDomain populates the persistence model from a domain SalesQuotation entity.
func (m *QuotationModel) FromDomain(q *sales.SalesQuotation) {
	m.FromDomainTenantAggregateRoot(q.TenantAggregateRoot)
	m.QuotationNumber = q.QuotationNumber
	m.CustomerID = q.CustomerID
	m.CustomerName = q.CustomerName
	m.Subtotal = q.Subtotal
	m.DiscountAmount = q.DiscountAmount
	m.TaxRate = q.TaxRate
	m.TaxAmount = q.TaxAmount
	m.GrandTotal = q.GrandTotal
	m.ValidUntil = q.ValidUntil
	m.Status = q.Status
	m.Remark = q.Remark
	m.SentAt = q.SentAt
	m.DecidedAt = q.DecidedAt
	m.ConvertedOrderID = q.ConvertedOrderID
	m.Items = make([]QuotationItemModel, len(q.Items))
	for i, item := range q.Items {
		m.Items[i] = *QuotationItemModelFromDomain(&item)
	}
}

// QuotationModelFromDomain creates a new persistence model from a domain SalesQuotation entity.
func QuotationModelFromDomain(q *sales.SalesQuotation) *QuotationModel {
	m := &QuotationModel{}
	m.FromDomain(q)
	return m
}

// QuotationItemModel is the persistence model for the QuotationItem entity.
type QuotationItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	QuotationID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostingSheetID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "sales_quotation_items"
}

// ToDomain converts the persistence model to a domain QuotationItem entity.
func (m *QuotationItemModel) ToDomain() *sales.QuotationItem {
	return &sales.QuotationItem{
		ID:             m.ID,
		QuotationID:    m.QuotationID,
		Description:    m.Description,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Amount:         m.Amount,
		CostingSheetID: m.CostingSheetID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// QuotationItemModelFromDomain creates a new persistence model from a domain QuotationItem entity.
func QuotationItemModelFromDomain(item *sales.QuotationItem) *QuotationItemModel {
	return &QuotationItemModel{
		ID:             item.ID,
		QuotationID:    item.QuotationID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Amount:         item.Amount,
		CostingSheetID: item.CostingSheetID,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	TenantAggregateModel
	OrderNumber    string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_order_tenant_number,priority:2"`
	QuotationID    *uuid.UUID             `gorm:"type:uuid;index"`
	CustomerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerName   string                 `gorm:"type:varchar(200);not null"`
	Items          []SalesOrderItemModel  `gorm:"foreignKey:OrderID;references:ID"`
	Subtotal       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	AdvancePaid    decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	DeliveryDate   *time.Time             `gorm:"index"`
	Status         sales.SalesOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Remark         string                 `gorm:"type:text"`
	ConfirmedAt    *time.Time             `gorm:"index"`
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string     `gorm:"type:varchar(500)"`
	InvoiceID      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
func (m *SalesOrderModel) ToDomain() *sales.SalesOrder {
	o := &sales.SalesOrder{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		QuotationID:         m.QuotationID,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		AdvancePaid:         m.AdvancePaid,
		DeliveryDate:        m.DeliveryDate,
		Status:              m.Status,
		Remark:              m.Remark,
		ConfirmedAt:         m.ConfirmedAt,
		DeliveredAt:         m.DeliveredAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		InvoiceID:           m.InvoiceID,
		Items:               make([]sales.SalesOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain SalesOrder entity.
func (m *SalesOrderModel) FromDomain(o *sales.SalesOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.QuotationID = o.QuotationID
	m.CustomerID = o.CustomerID
	m.CustomerName = o.CustomerName
	m.Subtotal = o.Subtotal
	m.DiscountAmount = o.DiscountAmount
	m.TaxRate = o.TaxRate
	m.TaxAmount = o.TaxAmount
	m.GrandTotal = o.GrandTotal
	m.AdvancePaid = o.AdvancePaid
	m.DeliveryDate = o.DeliveryDate
	m.Status = o.Status
	m.Remark = o.Remark
	m.ConfirmedAt = o.ConfirmedAt
	m.DeliveredAt = o.DeliveredAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.InvoiceID = o.InvoiceID
	m.Items = make([]SalesOrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *SalesOrderItemModelFromDomain(&item)
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder entity.
func SalesOrderModelFromDomain(o *sales.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesOrderItemModel is the persistence model for the SalesOrderItem entity.
type SalesOrderItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostingSheetID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the persistence model to a domain SalesOrderItem entity.
func (m *SalesOrderItemModel) ToDomain() *sales.SalesOrderItem {
	return &sales.SalesOrderItem{
		ID:             m.ID,
		OrderID:        m.OrderID,
		Description:    m.Description,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Amount:         m.Amount,
		CostingSheetID: m.CostingSheetID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// SalesOrderItemModelFromDomain creates a new persistence model from a domain SalesOrderItem entity.
func SalesOrderItemModelFromDomain(item *sales.SalesOrderItem) *SalesOrderItemModel {
	return &SalesOrderItemModel{
		ID:             item.ID,
		OrderID:        item.OrderID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Amount:         item.Amount,
		CostingSheetID: item.CostingSheetID,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

// InvoiceModel is the persistence model for the SalesInvoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	OrderID        *uuid.UUID            `gorm:"type:uuid;index"`
	CustomerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName   string                `gorm:"type:varchar(200);not null"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments       []InvoicePaymentModel `gorm:"foreignKey:InvoiceID;references:ID"`
	Subtotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	IssueDate      time.Time             `gorm:"not null;index"`
	DueDate        time.Time             `gorm:"not null;index"`
	Status         sales.InvoiceStatus   `gorm:"type:varchar(20);not null;default:'ISSUED';index"`
	Remark         string                `gorm:"type:text"`
	ShareToken     string                `gorm:"type:varchar(100);uniqueIndex"`
	ShareExpiresAt *time.Time
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "sales_invoices"
}

// ToDomain converts the persistence model to a domain SalesInvoice entity.
func (m *InvoiceModel) ToDomain() *sales.SalesInvoice {
	inv := &sales.SalesInvoice{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		OrderID:             m.OrderID,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxRate:             m.TaxRate,
		TaxAmount:           m.TaxAmount,
		GrandTotal:          m.GrandTotal,
		AmountPaid:          m.AmountPaid,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		Status:              m.Status,
		Remark:              m.Remark,
		ShareToken:          m.ShareToken,
		ShareExpiresAt:      m.ShareExpiresAt,
		VoidedAt:            m.VoidedAt,
		VoidReason:          m.VoidReason,
		Items:               make([]sales.InvoiceItem, len(m.Items)),
		Payments:            make([]sales.InvoicePayment, len(m.Payments)),
	}
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	for i, p := range m.Payments {
		inv.Payments[i] = *p.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain SalesInvoice entity.
func (m *InvoiceModel) FromDomain(inv *sales.SalesInvoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.OrderID = inv.OrderID
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.Subtotal = inv.Subtotal
	m.DiscountAmount = inv.DiscountAmount
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.GrandTotal = inv.GrandTotal
	m.AmountPaid = inv.AmountPaid
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.Remark = inv.Remark
	m.ShareToken = inv.ShareToken
	m.ShareExpiresAt = inv.ShareExpiresAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&item)
	}
	m.Payments = make([]InvoicePaymentModel, len(inv.Payments))
	for i, p := range inv.Payments {
		m.Payments[i] = *InvoicePaymentModelFromDomain(&p)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain SalesInvoice entity.
func InvoiceModelFromDomain(inv *sales.SalesInvoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem entity.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "sales_invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *sales.InvoiceItem {
	return &sales.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem entity.
func InvoiceItemModelFromDomain(item *sales.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// InvoicePaymentModel is the persistence model for the InvoicePayment entity.
type InvoicePaymentModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Method    sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference string              `gorm:"type:varchar(100)"`
	PaidAt    time.Time           `gorm:"not null"`
	CreatedAt time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "sales_invoice_payments"
}

// ToDomain converts the persistence model to a domain InvoicePayment entity.
func (m *InvoicePaymentModel) ToDomain() *sales.InvoicePayment {
	return &sales.InvoicePayment{
		ID:        m.ID,
		InvoiceID: m.InvoiceID,
		Amount:    m.Amount,
		Method:    m.Method,
		Reference: m.Reference,
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
	}
}

// InvoicePaymentModelFromDomain creates a new persistence model from a domain InvoicePayment entity.
func InvoicePaymentModelFromDomain(p *sales.InvoicePayment) *InvoicePaymentModel {
	return &InvoicePaymentModel{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
	}
}
