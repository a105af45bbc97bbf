package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportingService provides the read projections: pure queries over posted
// data with no independent invariants or write paths.
type ReportingService interface {
	// LowStockProducts returns every product with stock <= min_stock.
	LowStockProducts(ctx context.Context) ([]Product, error)

	// DashboardSummary aggregates invoice and catalog counters for the given
	// day. Pass the zero time to use the server-local current day.
	DashboardSummary(ctx context.Context, day time.Time) (*DashboardSummary, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) LowStockProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock <= min_stock
		ORDER BY stock, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low-stock products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.SalePrice, &p.Stock, &p.MinStock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan low-stock product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *reportingService) DashboardSummary(ctx context.Context, day time.Time) (*DashboardSummary, error) {
	if day.IsZero() {
		day = time.Now()
	}
	// Day boundary in server-local time: [00:00, +24h).
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	summary := &DashboardSummary{Date: start.Format("2006-01-02")}

	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM invoices
		WHERE invoice_date >= $1 AND invoice_date < $2
	`, start, end).Scan(&summary.TotalSalesToday, &summary.InvoiceCountToday)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate today's invoices: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE stock <= min_stock),
			(SELECT COALESCE(SUM(balance), 0) FROM customers WHERE balance > 0),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM invoices)
	`).Scan(
		&summary.LowStockCount,
		&summary.OutstandingTotal,
		&summary.TotalProducts,
		&summary.TotalCustomers,
		&summary.TotalInvoices,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate dashboard counters: %w", err)
	}

	return summary, nil
}
