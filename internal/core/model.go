package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Stock is mutated only through the stock ledger
// (invoice commits and guarded admin restocks); it can never go negative.
type Product struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Stock     int64           `json:"stock"`
	MinStock  int64           `json:"minStock"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LowStock reports whether the product needs restocking.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// Customer is a directory record. Balance is a materialized projection of the
// customer's ledger history (Σ debit − Σ credit): positive means the customer
// owes the shop, negative means the shop owes the customer. It is updated only
// inside the same transaction that appends a ledger entry.
type Customer struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LedgerEntry is one immutable, append-only record on a customer account.
// Exactly one of Debit (purchase) or Credit (payment) is nonzero.
// BalanceAfter is the running balance snapshot taken at append time under the
// customer row lock; it is never recomputed later.
type LedgerEntry struct {
	ID           int             `json:"id"`
	CustomerID   int             `json:"customerId"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	InvoiceID    *int            `json:"invoiceId,omitempty"`
}

// Invoice is an immutable priced sale. CustomerName is a free-text snapshot
// and may differ from the live customer record. Total is computed once from
// the snapshotted line prices and never recalculated.
type Invoice struct {
	ID            int             `json:"id"`
	InvoiceNumber int64           `json:"invoiceNumber"`
	Date          time.Time       `json:"date"`
	CustomerID    *int            `json:"customerId,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	IsCredit      bool            `json:"isCredit"`
	Total         decimal.Decimal `json:"total"`
	Items         []InvoiceItem   `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// InvoiceItem is one invoice line. ProductName and UnitPrice are snapshots
// frozen at sale time; later product edits never change them. ProductID is
// nil when the product was deleted after the sale.
type InvoiceItem struct {
	ID          int             `json:"id"`
	InvoiceID   int             `json:"invoiceId"`
	LineNumber  int             `json:"lineNumber"`
	ProductID   *int            `json:"productId,omitempty"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

// CartLine is one requested line of an invoice-creation cart: which product
// and how many units. Prices are never taken from the client.
type CartLine struct {
	ProductID int   `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// DashboardSummary aggregates already-posted data for one calendar day.
type DashboardSummary struct {
	Date              string          `json:"date"` // YYYY-MM-DD
	TotalSalesToday   decimal.Decimal `json:"totalSalesToday"`
	InvoiceCountToday int             `json:"invoiceCountToday"`
	LowStockCount     int             `json:"lowStockCount"`
	OutstandingTotal  decimal.Decimal `json:"outstandingTotal"`
	TotalProducts     int             `json:"totalProducts"`
	TotalCustomers    int             `json:"totalCustomers"`
	TotalInvoices     int             `json:"totalInvoices"`
}
