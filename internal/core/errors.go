package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel validation errors for conditions rejected before any resource is
// touched.
var (
	// ErrEmptyCart is returned when an invoice is submitted with no line items.
	ErrEmptyCart = errors.New("invoice must have at least one item")

	// ErrCreditRequiresCustomer is returned when a credit sale is submitted
	// without a customer.
	ErrCreditRequiresCustomer = errors.New("credit sale requires a customer")
)

// ValidationError reports a malformed field in an incoming request. It is
// always raised before any stock, invoice, or ledger state is read or written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unresolved product, customer, or invoice ID.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InsufficientStockError names the first product in the cart whose persisted
// stock cannot cover the requested quantity. The whole batch is aborted; no
// stock has been mutated when this error is returned.
type InsufficientStockError struct {
	ProductID   int
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id %d): available %d, requested %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

// ConflictError marks a lock or transaction contention failure. The whole
// operation rolled back, so the caller may safely retry the entire call.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction conflict, retry the operation: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// classifyTxError maps low-level database failures onto the domain taxonomy.
// Serialization failures, deadlocks, and lock timeouts become ConflictError;
// domain errors raised inside the transaction pass through unchanged.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization failure, deadlock, lock timeout
			return &ConflictError{Err: err}
		}
	}
	return err
}

// IsRetryable reports whether the whole operation can be safely re-submitted.
// Conflicts and transient storage failures never leave partial state behind.
func IsRetryable(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}
