package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// sequenceRowID is the primary key of the single invoice counter row.
const sequenceRowID = 1

// InvoiceNumbering issues gap-free, strictly increasing invoice numbers.
// NextNumberTx must be called inside the same transaction that persists the
// invoice: the upsert takes a row lock that serializes concurrent callers, and
// a rollback releases the number before it was ever observable, keeping the
// sequence gap-free.
type InvoiceNumbering struct{}

func NewInvoiceNumbering() *InvoiceNumbering {
	return &InvoiceNumbering{}
}

// NextNumberTx bumps the counter and returns the issued number. The UNIQUE
// constraint on invoices.invoice_number backstops uniqueness even if the
// counter row were ever reseeded by hand.
func (n *InvoiceNumbering) NextNumberTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	var number int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_sequences (id, last_number)
		VALUES ($1, 1)
		ON CONFLICT (id) DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number
	`, sequenceRowID).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("failed to issue invoice number: %w", err)
	}
	return number, nil
}
