package core_test

import (
	"context"
	"errors"
	"testing"

	"shopledger/internal/core"

	"github.com/shopspring/decimal"
)

func TestProductService_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	products := core.NewProductService(pool)
	ctx := context.Background()

	created, err := products.Create(ctx, core.ProductInput{
		Name:      "Salt 1kg",
		SKU:       "SAL-1",
		SalePrice: decimal.NewFromInt(18),
		Stock:     40,
		MinStock:  8,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 || created.SKU != "SAL-1" {
		t.Errorf("Unexpected created product: %+v", created)
	}

	updated, err := products.Update(ctx, created.ID, core.ProductInput{
		Name:      "Salt 1kg Iodised",
		SalePrice: decimal.NewFromInt(20),
		Stock:     40,
		MinStock:  8,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Salt 1kg Iodised" || !updated.SalePrice.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Update not applied: %+v", updated)
	}
	// Blank SKU clears the stored one.
	if updated.SKU != "" {
		t.Errorf("Expected empty SKU, got %q", updated.SKU)
	}

	list, err := products.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 4 {
		t.Errorf("Expected 4 products, got %d", len(list))
	}

	if err := products.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err = products.Get(ctx, created.ID)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}
	if err := products.Delete(ctx, created.ID); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError on double delete, got %v", err)
	}
}

func TestProductService_SoldProductSurvivesDeletion(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	products := core.NewProductService(pool)
	ledger := core.NewCustomerLedger(pool)
	proc := core.NewInvoiceProcessor(pool, core.NewStockLedger(), ledger, core.NewInvoiceNumbering())
	ctx := context.Background()

	inv, err := proc.CreateInvoice(ctx, core.CreateInvoiceInput{
		Items: []core.CartLine{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateInvoice failed: %v", err)
	}

	if err := products.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The invoice line keeps its snapshots; only the product link is dropped.
	got, err := proc.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	item := got.Items[0]
	if item.ProductID != nil {
		t.Errorf("Expected nil product link after deletion, got %v", *item.ProductID)
	}
	if item.ProductName != "Sugar 1kg" || !item.UnitPrice.Equal(decimal.NewFromInt(45)) {
		t.Errorf("Snapshots lost on product deletion: %+v", item)
	}
}

func TestCustomerService_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	customers := core.NewCustomerService(pool)
	ctx := context.Background()

	created, err := customers.Create(ctx, core.CustomerInput{Name: "New Shopper", Phone: "9811111111"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.Balance.IsZero() {
		t.Errorf("New customer must start at zero balance, got %s", created.Balance)
	}

	got, err := customers.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "New Shopper" || got.Phone != "9811111111" {
		t.Errorf("Unexpected customer: %+v", got)
	}

	_, err = customers.Create(ctx, core.CustomerInput{Name: "   "})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError for blank name, got %v", err)
	}

	list, err := customers.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("Expected 3 customers, got %d", len(list))
	}
}
