package app

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shopledger/internal/core"
)

// ProductRequest is the payload for creating or updating a product. Numeric
// ranges are re-checked in core; the JSON shape check happens here so a
// malformed payload never reaches a transaction.
type ProductRequest struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Stock     int64           `json:"stock"`
	MinStock  int64           `json:"minStock"`
}

func (r ProductRequest) toInput() core.ProductInput {
	return core.ProductInput{
		Name:      r.Name,
		SKU:       r.SKU,
		SalePrice: r.SalePrice,
		Stock:     r.Stock,
		MinStock:  r.MinStock,
	}
}

// CustomerRequest is the payload for creating a customer.
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r CustomerRequest) toInput() core.CustomerInput {
	return core.CustomerInput{Name: r.Name, Phone: r.Phone, Address: r.Address}
}

// PaymentRequest is the payload for recording a customer payment.
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// InvoiceItemRequest is one cart line in a CreateInvoiceRequest.
type InvoiceItemRequest struct {
	ProductID int   `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// CreateInvoiceRequest is the submitted cart. CustomerName is an optional
// free-text snapshot (walk-in sales); CustomerID must resolve when IsCredit
// is set.
type CreateInvoiceRequest struct {
	CustomerID   *int                 `json:"customerId"`
	CustomerName string               `json:"customerName"`
	IsCredit     bool                 `json:"isCredit"`
	Items        []InvoiceItemRequest `json:"items"`
}

// Validate rejects structurally malformed carts before the processor runs.
// The processor re-validates, but a boundary failure here produces field-level
// messages without opening a transaction.
func (r CreateInvoiceRequest) Validate() error {
	if len(r.Items) == 0 {
		return core.ErrEmptyCart
	}
	if r.IsCredit && r.CustomerID == nil {
		return core.ErrCreditRequiresCustomer
	}
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			return &core.ValidationError{Field: "items", Reason: fmt.Sprintf("line %d: missing product id", i+1)}
		}
		if item.Quantity <= 0 {
			return &core.ValidationError{Field: "items", Reason: fmt.Sprintf("line %d: quantity must be a positive integer", i+1)}
		}
	}
	return nil
}

func (r CreateInvoiceRequest) toInput() core.CreateInvoiceInput {
	items := make([]core.CartLine, len(r.Items))
	for i, it := range r.Items {
		items[i] = core.CartLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return core.CreateInvoiceInput{
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		IsCredit:     r.IsCredit,
		Items:        items,
	}
}
