package app

import (
	"context"
	"time"

	"shopledger/internal/core"
)

type appService struct {
	products  core.ProductService
	customers core.CustomerService
	ledger    *core.CustomerLedger
	invoices  *core.InvoiceProcessor
	reports   core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	products core.ProductService,
	customers core.CustomerService,
	ledger *core.CustomerLedger,
	invoices *core.InvoiceProcessor,
	reports core.ReportingService,
) ApplicationService {
	return &appService{
		products:  products,
		customers: customers,
		ledger:    ledger,
		invoices:  invoices,
		reports:   reports,
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req ProductRequest) (*core.Product, error) {
	return s.products.Create(ctx, req.toInput())
}

func (s *appService) UpdateProduct(ctx context.Context, productID int, req ProductRequest) (*core.Product, error) {
	return s.products.Update(ctx, productID, req.toInput())
}

func (s *appService) DeleteProduct(ctx context.Context, productID int) error {
	return s.products.Delete(ctx, productID)
}

// ── Customers ────────────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) GetCustomer(ctx context.Context, customerID int) (*core.Customer, error) {
	return s.customers.Get(ctx, customerID)
}

func (s *appService) CreateCustomer(ctx context.Context, req CustomerRequest) (*core.Customer, error) {
	return s.customers.Create(ctx, req.toInput())
}

func (s *appService) GetCustomerLedger(ctx context.Context, customerID int) (*LedgerResult, error) {
	customer, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.History(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Customer: customer, Entries: entries}, nil
}

func (s *appService) RecordPayment(ctx context.Context, customerID int, req PaymentRequest) (*core.LedgerEntry, error) {
	return s.ledger.RecordPayment(ctx, customerID, req.Amount, req.Description)
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func (s *appService) ListInvoices(ctx context.Context) (*InvoiceListResult, error) {
	invoices, err := s.invoices.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices}, nil
}

func (s *appService) GetInvoice(ctx context.Context, invoiceID int) (*core.Invoice, error) {
	return s.invoices.GetInvoice(ctx, invoiceID)
}

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*core.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.invoices.CreateInvoice(ctx, req.toInput())
}

// ── Projections ──────────────────────────────────────────────────────────────

func (s *appService) LowStockProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.reports.LowStockProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) DashboardSummary(ctx context.Context, date string) (*core.DashboardSummary, error) {
	var day time.Time
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return nil, &core.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		day = parsed
	}
	return s.reports.DashboardSummary(ctx, day)
}
