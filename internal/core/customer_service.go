package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerInput carries the writable customer fields. Balance is absent on
// purpose: it only ever changes through ledger appends.
type CustomerInput struct {
	Name    string
	Phone   string
	Address string
}

func (in CustomerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "customer name is required"}
	}
	return nil
}

// CustomerService manages the customer directory.
type CustomerService interface {
	Create(ctx context.Context, in CustomerInput) (*Customer, error)
	Get(ctx context.Context, customerID int) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var c Customer
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		RETURNING id, name, COALESCE(phone, ''), COALESCE(address, ''), balance, created_at
	`, in.Name, in.Phone, in.Address).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Address, &c.Balance, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

func (s *customerService) Get(ctx context.Context, customerID int) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), balance, created_at
		FROM customers
		WHERE id = $1
	`, customerID).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Balance, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "customer", ID: customerID}
		}
		return nil, fmt.Errorf("failed to fetch customer %d: %w", customerID, err)
	}
	return &c, nil
}

func (s *customerService) List(ctx context.Context) ([]Customer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), balance, created_at
		FROM customers
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.Balance, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
