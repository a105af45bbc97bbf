package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

// StockLedger guards product stock counters. All mutations happen inside a
// caller-provided transaction so that stock changes commit atomically with
// the invoice (or rollback) that caused them.
type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// lockedProduct is a product row snapshot taken under FOR UPDATE.
type lockedProduct struct {
	Product
	requested int64
}

// ValidateLines rejects malformed cart lines before any stock is read or
// written. Duplicate product IDs are merged into a single requested quantity.
func (l *StockLedger) ValidateLines(lines []CartLine) (map[int]int64, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	wanted := make(map[int]int64, len(lines))
	for i, line := range lines {
		if line.ProductID <= 0 {
			return nil, &ValidationError{Field: "items", Reason: fmt.Sprintf("line %d: missing product id", i+1)}
		}
		if line.Quantity <= 0 {
			return nil, &ValidationError{Field: "items", Reason: fmt.Sprintf("line %d: quantity must be a positive integer", i+1)}
		}
		wanted[line.ProductID] += line.Quantity
	}
	return wanted, nil
}

// ReserveAndCommitTx locks every affected product row in ascending ID order,
// validates each requested quantity against the persisted stock, and commits
// all decrements together. If any line is short, no stock is mutated and the
// offending product is named in the returned InsufficientStockError.
//
// The returned products carry the name and price snapshots taken under the
// same locks, so invoice lines are priced from exactly the state that was
// decremented.
func (l *StockLedger) ReserveAndCommitTx(ctx context.Context, tx pgx.Tx, lines []CartLine) (map[int]Product, error) {
	wanted, err := l.ValidateLines(lines)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	// Fixed lock order across all callers: product IDs ascending.
	sort.Ints(ids)

	rows, err := tx.Query(ctx, `
		SELECT id, name, COALESCE(sku, ''), sale_price, stock, min_stock, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock product rows: %w", err)
	}

	locked := make(map[int]lockedProduct, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan locked product: %w", err)
		}
		locked[p.ID] = lockedProduct{Product: p, requested: wanted[p.ID]}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked products: %w", err)
	}

	// Every requested product must resolve, and every line must be covered by
	// the current persisted stock, before any decrement happens.
	for _, id := range ids {
		lp, ok := locked[id]
		if !ok {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		if lp.Stock < lp.requested {
			return nil, &InsufficientStockError{
				ProductID:   lp.ID,
				ProductName: lp.Name,
				Requested:   lp.requested,
				Available:   lp.Stock,
			}
		}
	}

	for _, id := range ids {
		lp := locked[id]
		if _, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2",
			lp.requested, id,
		); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", id, err)
		}
	}

	snapshots := make(map[int]Product, len(locked))
	for id, lp := range locked {
		snapshots[id] = lp.Product
	}
	return snapshots, nil
}

// RestockTx adds qty units back to a product under its row lock. Used by
// guarded admin restocks; qty must be positive.
func (l *StockLedger) RestockTx(ctx context.Context, tx pgx.Tx, productID int, qty int64) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Reason: "restock quantity must be a positive integer"}
	}
	tag, err := tx.Exec(ctx,
		"UPDATE products SET stock = stock + $1 WHERE id = $2",
		qty, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "product", ID: productID}
	}
	return nil
}
