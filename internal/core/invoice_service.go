package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput is a validated cart submitted for invoicing. Prices are
// never taken from the client; every line is priced from the product row at
// commit time.
type CreateInvoiceInput struct {
	CustomerID   *int
	CustomerName string
	IsCredit     bool
	Items        []CartLine
}

// InvoiceService turns carts into persisted invoices and answers invoice
// queries.
type InvoiceService interface {
	// CreateInvoice runs the full pipeline (validate, commit stock, issue a
	// number, persist the invoice, post the ledger debit for credit sales) as
	// one atomic transaction. A failure at any step leaves no side effects.
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
}

// InvoiceProcessor orchestrates the stock ledger, the numbering authority,
// and the customer ledger.
type InvoiceProcessor struct {
	pool      *pgxpool.Pool
	stock     *StockLedger
	ledger    *CustomerLedger
	numbering *InvoiceNumbering
}

func NewInvoiceProcessor(pool *pgxpool.Pool, stock *StockLedger, ledger *CustomerLedger, numbering *InvoiceNumbering) *InvoiceProcessor {
	return &InvoiceProcessor{pool: pool, stock: stock, ledger: ledger, numbering: numbering}
}

func (p *InvoiceProcessor) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	// Structural validation happens before any resource is touched.
	if _, err := p.stock.ValidateLines(input.Items); err != nil {
		return nil, err
	}
	if input.IsCredit && input.CustomerID == nil {
		return nil, ErrCreditRequiresCustomer
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	invoiceID, err := p.createInvoiceTx(ctx, tx, input)
	if err != nil {
		return nil, classifyTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit invoice: %w", err))
	}

	return p.GetInvoice(ctx, invoiceID)
}

// createInvoiceTx is the single unit of work per invoice. Lock order is fixed
// across all writers: product rows ascending by ID first, then the customer
// row (taken inside AppendTx). Payments lock only the customer, so the two
// paths cannot deadlock.
func (p *InvoiceProcessor) createInvoiceTx(ctx context.Context, tx pgx.Tx, input CreateInvoiceInput) (int, error) {
	// Resolve the customer before stock is committed. Plain read: the row
	// lock is taken later, after the product locks, to keep the lock order.
	customerName := input.CustomerName
	if input.CustomerID != nil {
		var liveName string
		err := tx.QueryRow(ctx,
			"SELECT name FROM customers WHERE id = $1", *input.CustomerID,
		).Scan(&liveName)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, &NotFoundError{Resource: "customer", ID: *input.CustomerID}
			}
			return 0, fmt.Errorf("failed to resolve customer %d: %w", *input.CustomerID, err)
		}
		if customerName == "" {
			customerName = liveName
		}
	}

	// Lock, validate, and decrement stock for the whole cart. The returned
	// snapshots freeze each product's name and sale price at sale time.
	snapshots, err := p.stock.ReserveAndCommitTx(ctx, tx, input.Items)
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, line := range input.Items {
		prod := snapshots[line.ProductID]
		total = total.Add(prod.SalePrice.Mul(decimal.NewFromInt(line.Quantity)))
	}

	number, err := p.numbering.NextNumberTx(ctx, tx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var invoiceID int
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, invoice_date, customer_id, customer_name, is_credit, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, number, now, input.CustomerID, customerName, input.IsCredit, total).Scan(&invoiceID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i, line := range input.Items {
		prod := snapshots[line.ProductID]
		if _, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, line_number, product_id, product_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, invoiceID, i+1, prod.ID, prod.Name, prod.SalePrice, line.Quantity); err != nil {
			return 0, fmt.Errorf("failed to insert invoice line %d: %w", i+1, err)
		}
	}

	// Credit sale: post the debit to the customer ledger inside the same
	// transaction, so stock, invoice, and ledger land together or not at all.
	if input.IsCredit {
		description := fmt.Sprintf("Invoice #%d", number)
		if _, err := p.ledger.AppendTx(ctx, tx, *input.CustomerID,
			total, decimal.Zero, description, now, &invoiceID); err != nil {
			return 0, err
		}
	}

	return invoiceID, nil
}

func (p *InvoiceProcessor) GetInvoice(ctx context.Context, invoiceID int) (*Invoice, error) {
	var inv Invoice
	err := p.pool.QueryRow(ctx, `
		SELECT id, invoice_number, invoice_date, customer_id, customer_name, is_credit, total, created_at
		FROM invoices
		WHERE id = $1
	`, invoiceID).Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Date, &inv.CustomerID,
		&inv.CustomerName, &inv.IsCredit, &inv.Total, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "invoice", ID: invoiceID}
		}
		return nil, fmt.Errorf("failed to fetch invoice %d: %w", invoiceID, err)
	}

	items, err := p.fetchItems(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

func (p *InvoiceProcessor) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, invoice_number, invoice_date, customer_id, customer_name, is_credit, total, created_at
		FROM invoices
		ORDER BY invoice_number DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.Date, &inv.CustomerID,
			&inv.CustomerName, &inv.IsCredit, &inv.Total, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range invoices {
		items, err := p.fetchItems(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

func (p *InvoiceProcessor) fetchItems(ctx context.Context, invoiceID int) ([]InvoiceItem, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, product_id, product_name, unit_price, quantity
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.LineNumber,
			&it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
