package web

import (
	"net/http"

	"shopledger/internal/app"
)

// listInvoices handles GET /api/invoices.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createInvoice handles POST /api/invoices. A rejected cart produces no side
// effects; quantities are never silently clamped.
func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	invoice, err := h.svc.CreateInvoice(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, invoice)
}

// getInvoice handles GET /api/invoices/{id}.
func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid invoice id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	invoice, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, invoice)
}

// dashboardSummary handles GET /api/dashboard/summary?date=YYYY-MM-DD.
func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.DashboardSummary(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// lowStock handles GET /api/dashboard/low-stock.
func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LowStockProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
