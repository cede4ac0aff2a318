package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"username":      true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"code":         true,
	"name":         true,
	"type":         true,
	"status":       true,
	"city":         true,
	"balance":      true,
	"credit_limit": true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"status":     true,
	"balance":    true,
}

// QuotationSortFields contains allowed sort fields for quotations
var QuotationSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"quotation_number": true,
	"customer_name":    true,
	"status":           true,
	"grand_total":      true,
	"valid_until":      true,
	"sent_at":          true,
}

// SalesOrderSortFields contains allowed sort fields for sales orders
var SalesOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"customer_name": true,
	"status":        true,
	"grand_total":   true,
	"delivery_date": true,
	"confirmed_at":  true,
	"delivered_at":  true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"customer_name":  true,
	"status":         true,
	"grand_total":    true,
	"amount_paid":    true,
	"issue_date":     true,
	"due_date":       true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"order_number":  true,
	"supplier_name": true,
	"status":        true,
	"grand_total":   true,
	"expected_date": true,
	"sent_at":       true,
	"received_at":   true,
}

// SupplierBillSortFields contains allowed sort fields for supplier bills
var SupplierBillSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"bill_number":   true,
	"supplier_name": true,
	"status":        true,
	"grand_total":   true,
	"amount_paid":   true,
	"bill_date":     true,
	"due_date":      true,
}

// BillScanSortFields contains allowed sort fields for bill scans
var BillScanSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"file_name":  true,
	"status":     true,
	"attempts":   true,
}

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"sku":              true,
	"name":             true,
	"category":         true,
	"quantity_on_hand": true,
	"reorder_level":    true,
	"unit_cost":        true,
}

// StockMovementSortFields contains allowed sort fields for stock movements
var StockMovementSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"type":       true,
	"quantity":   true,
	"reference":  true,
}

// FiscalPeriodSortFields contains allowed sort fields for fiscal periods
var FiscalPeriodSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"start_date": true,
	"end_date":   true,
	"status":     true,
}

// JournalEntrySortFields contains allowed sort fields for journal entries
var JournalEntrySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"entry_number": true,
	"entry_date":   true,
	"status":       true,
	"posted_at":    true,
}

// CashBookSortFields contains allowed sort fields for cash book entries
var CashBookSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"entry_date":   true,
	"type":         true,
	"amount":       true,
	"counterparty": true,
	"category":     true,
}

// CostingSheetSortFields contains allowed sort fields for costing sheets
var CostingSheetSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"job_name":      true,
	"customer_name": true,
	"status":        true,
	"grand_total":   true,
	"finalized_at":  true,
}

// TemplateSortFields contains allowed sort fields for document templates
var TemplateSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"document_type": true,
	"paper_size":    true,
}

// CommunicationLogSortFields contains allowed sort fields for communication logs
var CommunicationLogSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"channel":         true,
	"status":          true,
	"sent_at":         true,
}

// ReminderSortFields contains allowed sort fields for reminders
var ReminderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"due_at":          true,
	"status":          true,
	"document_number": true,
}

// ConflictSortFields contains allowed sort fields for reminder conflicts
var ConflictSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
}
