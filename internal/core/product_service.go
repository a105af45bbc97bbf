package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductInput carries the writable product fields for create and update.
type ProductInput struct {
	Name      string
	SKU       string
	SalePrice decimal.Decimal
	Stock     int64
	MinStock  int64
}

// Validate enforces the catalog write rules: name required, price and the two
// stock counters non-negative.
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "product name is required"}
	}
	if in.SalePrice.IsNegative() {
		return &ValidationError{Field: "salePrice", Reason: "sale price cannot be negative"}
	}
	if in.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "stock must be a non-negative integer"}
	}
	if in.MinStock < 0 {
		return &ValidationError{Field: "minStock", Reason: "minStock must be a non-negative integer"}
	}
	return nil
}

// ProductService is plain catalog CRUD. Invoicing mutates stock only through
// the StockLedger; direct stock writes here are admin corrections, still bound
// by the non-negative constraint.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*Product, error)
	Update(ctx context.Context, productID int, in ProductInput) (*Product, error)
	Delete(ctx context.Context, productID int) error
	Get(ctx context.Context, productID int) (*Product, error)
	List(ctx context.Context) ([]Product, error)
}

type productService struct {
	pool *pgxpool.Pool
}

func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

const productColumns = "id, name, COALESCE(sku, ''), sale_price, stock, min_stock, created_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, sku, sale_price, stock, min_stock)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		RETURNING `+productColumns,
		in.Name, in.SKU, in.SalePrice, in.Stock, in.MinStock))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) Update(ctx context.Context, productID int, in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $1, sku = NULLIF($2, ''), sale_price = $3, stock = $4, min_stock = $5
		WHERE id = $6
		RETURNING `+productColumns,
		in.Name, in.SKU, in.SalePrice, in.Stock, in.MinStock, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, productID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", productID)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Resource: "product", ID: productID}
	}
	return nil
}

func (s *productService) Get(ctx context.Context, productID int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", productID, err)
	}
	return p, nil
}

func (s *productService) List(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
