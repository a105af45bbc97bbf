package app

import (
	"errors"
	"testing"

	"shopledger/internal/core"
)

func TestCreateInvoiceRequest_Validate(t *testing.T) {
	customerID := 1

	tests := []struct {
		name    string
		req     CreateInvoiceRequest
		wantErr error
	}{
		{
			name:    "empty cart",
			req:     CreateInvoiceRequest{},
			wantErr: core.ErrEmptyCart,
		},
		{
			name: "credit without customer",
			req: CreateInvoiceRequest{
				IsCredit: true,
				Items:    []InvoiceItemRequest{{ProductID: 1, Quantity: 1}},
			},
			wantErr: core.ErrCreditRequiresCustomer,
		},
		{
			name: "zero quantity",
			req: CreateInvoiceRequest{
				Items: []InvoiceItemRequest{{ProductID: 1, Quantity: 0}},
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "missing product id",
			req: CreateInvoiceRequest{
				Items: []InvoiceItemRequest{{ProductID: 0, Quantity: 2}},
			},
			wantErr: &core.ValidationError{},
		},
		{
			name: "valid cash sale",
			req: CreateInvoiceRequest{
				CustomerName: "Walk-in",
				Items:        []InvoiceItemRequest{{ProductID: 1, Quantity: 2}},
			},
		},
		{
			name: "valid credit sale",
			req: CreateInvoiceRequest{
				CustomerID: &customerID,
				IsCredit:   true,
				Items:      []InvoiceItemRequest{{ProductID: 1, Quantity: 1}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			switch want := tc.wantErr.(type) {
			case nil:
				if err != nil {
					t.Errorf("Expected valid request, got %v", err)
				}
			case *core.ValidationError:
				var verr *core.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("Expected ValidationError, got %v", err)
				}
			default:
				if !errors.Is(err, want) {
					t.Errorf("Expected %v, got %v", want, err)
				}
			}
		})
	}
}

func TestCreateInvoiceRequest_ToInput(t *testing.T) {
	customerID := 4
	req := CreateInvoiceRequest{
		CustomerID:   &customerID,
		CustomerName: "Asha",
		IsCredit:     true,
		Items: []InvoiceItemRequest{
			{ProductID: 2, Quantity: 3},
			{ProductID: 5, Quantity: 1},
		},
	}

	in := req.toInput()
	if in.CustomerID == nil || *in.CustomerID != 4 {
		t.Errorf("CustomerID not carried over: %v", in.CustomerID)
	}
	if !in.IsCredit || in.CustomerName != "Asha" {
		t.Errorf("Header fields not carried over: %+v", in)
	}
	if len(in.Items) != 2 || in.Items[0] != (core.CartLine{ProductID: 2, Quantity: 3}) {
		t.Errorf("Items not carried over: %+v", in.Items)
	}
}
