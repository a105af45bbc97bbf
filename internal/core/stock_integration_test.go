package core_test

import (
	"context"
	"testing"

	"shopledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// getStock fetches the current stock level for a product directly.
func getStock(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID int) int64 {
	t.Helper()
	var stock int64
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("Failed to read stock for product %d: %v", productID, err)
	}
	return stock
}

func TestStockLedger_ReserveAndCommit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	products, err := stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{
		{ProductID: 1, Quantity: 30},
		{ProductID: 2, Quantity: 5},
	})
	if err != nil {
		tx.Rollback(ctx)
		t.Fatalf("ReserveAndCommitTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Snapshots carry the pre-decrement values read under the row lock.
	if p := products[1]; p.Name != "Sugar 1kg" || p.Stock != 100 {
		t.Errorf("Unexpected snapshot for product 1: %+v", p)
	}

	if got := getStock(t, ctx, pool, 1); got != 70 {
		t.Errorf("Expected stock 70 for product 1, got %d", got)
	}
	if got := getStock(t, ctx, pool, 2); got != 15 {
		t.Errorf("Expected stock 15 for product 2, got %d", got)
	}
}

func TestStockLedger_BatchIsAtomic(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	// Product 1 has plenty, product 3 has only 1 unit. The whole batch must
	// fail and neither product may change.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{
		{ProductID: 1, Quantity: 10},
		{ProductID: 3, Quantity: 5},
	})
	tx.Rollback(ctx)

	var ise *core.InsufficientStockError
	if !asError(err, &ise) {
		t.Fatalf("Expected InsufficientStockError, got %v", err)
	}
	if ise.ProductID != 3 || ise.Requested != 5 || ise.Available != 1 {
		t.Errorf("Unexpected error detail: %+v", ise)
	}

	if got := getStock(t, ctx, pool, 1); got != 100 {
		t.Errorf("Product 1 stock changed on failed batch: %d", got)
	}
	if got := getStock(t, ctx, pool, 3); got != 1 {
		t.Errorf("Product 3 stock changed on failed batch: %d", got)
	}
}

func TestStockLedger_ExactStockToZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	// Taking exactly the remaining quantity succeeds and lands on zero.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{{ProductID: 3, Quantity: 1}}); err != nil {
		tx.Rollback(ctx)
		t.Fatalf("ReserveAndCommitTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if got := getStock(t, ctx, pool, 3); got != 0 {
		t.Errorf("Expected stock 0, got %d", got)
	}

	// One more unit is now unavailable.
	tx, err = pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{{ProductID: 3, Quantity: 1}})
	tx.Rollback(ctx)
	var ise *core.InsufficientStockError
	if !asError(err, &ise) {
		t.Errorf("Expected InsufficientStockError at zero stock, got %v", err)
	}
}

func TestStockLedger_UnknownProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{{ProductID: 9999, Quantity: 1}})
	tx.Rollback(ctx)

	var nf *core.NotFoundError
	if !asError(err, &nf) {
		t.Errorf("Expected NotFoundError for unknown product, got %v", err)
	}
}

func TestStockLedger_DuplicateLinesMerge(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	// Two lines for the same product are checked and decremented as their sum.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{
		{ProductID: 2, Quantity: 12},
		{ProductID: 2, Quantity: 8},
	}); err != nil {
		tx.Rollback(ctx)
		t.Fatalf("ReserveAndCommitTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if got := getStock(t, ctx, pool, 2); got != 0 {
		t.Errorf("Expected stock 0 after merged decrement, got %d", got)
	}

	// The merged total is what gets checked against availability.
	tx, err = pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err = stock.ReserveAndCommitTx(ctx, tx, []core.CartLine{
		{ProductID: 1, Quantity: 60},
		{ProductID: 1, Quantity: 60},
	})
	tx.Rollback(ctx)
	var ise *core.InsufficientStockError
	if !asError(err, &ise) {
		t.Fatalf("Expected InsufficientStockError for merged overdraw, got %v", err)
	}
	if ise.Requested != 120 {
		t.Errorf("Expected merged requested=120, got %d", ise.Requested)
	}
}

func TestStockLedger_Restock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	stock := core.NewStockLedger()
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := stock.RestockTx(ctx, tx, 3, 24); err != nil {
		tx.Rollback(ctx)
		t.Fatalf("RestockTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if got := getStock(t, ctx, pool, 3); got != 25 {
		t.Errorf("Expected stock 25 after restock, got %d", got)
	}
}
