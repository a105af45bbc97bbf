package web

import (
	"net/http"

	"shopledger/internal/app"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// deleteProduct handles DELETE /api/products/{id}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest, false)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
