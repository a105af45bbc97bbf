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

// Default entry descriptions when the caller supplies none.
const (
	descPurchase = "Purchase"
	descPayment  = "Payment"
)

// CustomerLedgerService maintains per-customer append-only debit/credit
// history and the derived running balance.
type CustomerLedgerService interface {
	// RecordPayment appends a credit entry in its own transaction.
	RecordPayment(ctx context.Context, customerID int, amount decimal.Decimal, description string) (*LedgerEntry, error)
	// History returns the full ledger for a customer ordered by date, then
	// insertion order for ties.
	History(ctx context.Context, customerID int) ([]LedgerEntry, error)
	// CurrentBalance returns the customer's materialized running balance.
	CurrentBalance(ctx context.Context, customerID int) (decimal.Decimal, error)
}

// CustomerLedger implements CustomerLedgerService. Entries are immutable once
// created; this component never edits or deletes them.
type CustomerLedger struct {
	pool *pgxpool.Pool
}

func NewCustomerLedger(pool *pgxpool.Pool) *CustomerLedger {
	return &CustomerLedger{pool: pool}
}

// AppendTx appends one entry inside the caller's transaction. Exactly one of
// debit/credit must be positive. The customer row is locked FOR UPDATE so that
// balance_after is computed from the latest committed balance; two concurrent
// appends for the same customer cannot both read a stale prior balance.
//
// invoiceID, if non-nil, links the entry to the invoice that produced it.
func (cl *CustomerLedger) AppendTx(ctx context.Context, tx pgx.Tx, customerID int,
	debit, credit decimal.Decimal, description string, date time.Time, invoiceID *int) (*LedgerEntry, error) {

	if debit.IsNegative() || credit.IsNegative() {
		return nil, &ValidationError{Field: "amount", Reason: "debit and credit cannot be negative"}
	}
	if debit.IsPositive() == credit.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "exactly one of debit or credit must be positive"}
	}
	if description == "" {
		if debit.IsPositive() {
			description = descPurchase
		} else {
			description = descPayment
		}
	}
	if date.IsZero() {
		date = time.Now()
	}

	var prior decimal.Decimal
	err := tx.QueryRow(ctx,
		"SELECT balance FROM customers WHERE id = $1 FOR UPDATE",
		customerID,
	).Scan(&prior)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "customer", ID: customerID}
		}
		return nil, fmt.Errorf("failed to lock customer %d: %w", customerID, err)
	}

	balanceAfter := prior.Add(debit).Sub(credit)

	var entry LedgerEntry
	err = tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (customer_id, entry_date, description, debit, credit, balance_after, invoice_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, customer_id, entry_date, description, debit, credit, balance_after, invoice_id
	`, customerID, date, description, debit, credit, balanceAfter, invoiceID).Scan(
		&entry.ID, &entry.CustomerID, &entry.Date, &entry.Description,
		&entry.Debit, &entry.Credit, &entry.BalanceAfter, &entry.InvoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	// Refresh the materialized balance under the same lock that appended the
	// entry, so balance always equals the sum of the history.
	if _, err := tx.Exec(ctx,
		"UPDATE customers SET balance = $1 WHERE id = $2",
		balanceAfter, customerID,
	); err != nil {
		return nil, fmt.Errorf("failed to update customer balance: %w", err)
	}

	return &entry, nil
}

// RecordPayment appends a standalone credit entry (customer pays down their
// balance) in its own transaction.
func (cl *CustomerLedger) RecordPayment(ctx context.Context, customerID int, amount decimal.Decimal, description string) (*LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "payment amount must be greater than zero"}
	}

	tx, err := cl.pool.Begin(ctx)
	if err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	entry, err := cl.AppendTx(ctx, tx, customerID, decimal.Zero, amount, description, time.Now(), nil)
	if err != nil {
		return nil, classifyTxError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyTxError(fmt.Errorf("failed to commit payment: %w", err))
	}
	return entry, nil
}

func (cl *CustomerLedger) History(ctx context.Context, customerID int) ([]LedgerEntry, error) {
	// Verify the customer exists so an empty ledger is distinguishable from a
	// bad ID.
	var exists bool
	if err := cl.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)", customerID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check customer %d: %w", customerID, err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "customer", ID: customerID}
	}

	rows, err := cl.pool.Query(ctx, `
		SELECT id, customer_id, entry_date, description, debit, credit, balance_after, invoice_id
		FROM ledger_entries
		WHERE customer_id = $1
		ORDER BY entry_date, id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Date, &e.Description,
			&e.Debit, &e.Credit, &e.BalanceAfter, &e.InvoiceID); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (cl *CustomerLedger) CurrentBalance(ctx context.Context, customerID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := cl.pool.QueryRow(ctx,
		"SELECT balance FROM customers WHERE id = $1", customerID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, &NotFoundError{Resource: "customer", ID: customerID}
		}
		return decimal.Zero, fmt.Errorf("failed to fetch balance for customer %d: %w", customerID, err)
	}
	return balance, nil
}
