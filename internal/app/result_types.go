package app

import "shopledger/internal/core"

// ProductListResult is returned by ListProducts and LowStockProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// LedgerResult pairs a customer with their full ledger history.
type LedgerResult struct {
	Customer *core.Customer     `json:"customer"`
	Entries  []core.LedgerEntry `json:"entries"`
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
}
