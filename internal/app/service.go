package app

import (
	"context"

	"shopledger/internal/core"
)

// ApplicationService is the single interface presentation adapters call. It
// decouples the HTTP layer from the transactional core and validates request
// shape at the boundary before anything reaches the invoice processor.
type ApplicationService interface {
	// ListProducts returns the full catalog.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// CreateProduct adds a catalog item. Stock and minStock must be
	// non-negative integers.
	CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error)

	// UpdateProduct edits a catalog item. Past invoices keep their price and
	// name snapshots.
	UpdateProduct(ctx context.Context, productID int, req ProductRequest) (*core.Product, error)

	// DeleteProduct removes a catalog item. Invoice line snapshots survive.
	DeleteProduct(ctx context.Context, productID int) error

	// ListCustomers returns the customer directory with current balances.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// GetCustomer returns one customer with their current balance.
	GetCustomer(ctx context.Context, customerID int) (*core.Customer, error)

	// CreateCustomer adds a directory record with a zero opening balance.
	CreateCustomer(ctx context.Context, req CustomerRequest) (*core.Customer, error)

	// GetCustomerLedger returns the customer's full append-only history in
	// (date, insertion) order.
	GetCustomerLedger(ctx context.Context, customerID int) (*LedgerResult, error)

	// RecordPayment posts a credit entry against the customer's ledger and
	// atomically refreshes the running balance.
	RecordPayment(ctx context.Context, customerID int, req PaymentRequest) (*core.LedgerEntry, error)

	// ListInvoices returns all invoices, newest first, with their items.
	ListInvoices(ctx context.Context) (*InvoiceListResult, error)

	// GetInvoice returns one invoice with its items.
	GetInvoice(ctx context.Context, invoiceID int) (*core.Invoice, error)

	// CreateInvoice submits a cart. Stock decrement, invoice numbering,
	// persistence, and the ledger debit for credit sales commit as one atomic
	// transaction; any rejection leaves no side effects.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*core.Invoice, error)

	// LowStockProducts returns products with stock at or below their minimum.
	LowStockProducts(ctx context.Context) (*ProductListResult, error)

	// DashboardSummary aggregates posted data for the given day
	// (YYYY-MM-DD, empty for the server-local current day).
	DashboardSummary(ctx context.Context, date string) (*core.DashboardSummary, error)
}
