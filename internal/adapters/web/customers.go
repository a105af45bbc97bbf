package web

import (
	"net/http"

	"shopledger/internal/app"
)

// listCustomers handles GET /api/customers.
func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createCustomer handles POST /api/customers.
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, customer)
}

// getCustomer handles GET /api/customers/{id}.
func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, customer)
}

// getCustomerLedger handles GET /api/customers/{id}/ledger.
func (h *Handler) getCustomerLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	result, err := h.svc.GetCustomerLedger(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// recordPayment handles POST /api/customers/{id}/payments.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid customer id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	var req app.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.svc.RecordPayment(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, entry)
}
