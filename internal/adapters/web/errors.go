package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopledger/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int, retryable bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Retryable: retryable,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps the core error taxonomy onto HTTP statuses and stable
// codes. Conflicts and internal failures are marked retryable: the engine
// guarantees a failed call left no partial state, so the whole request can be
// re-submitted as-is.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		stockErr      *core.InsufficientStockError
		conflictErr   *core.ConflictError
	)

	switch {
	case errors.Is(err, core.ErrEmptyCart):
		writeError(w, r, err.Error(), "EMPTY_CART", http.StatusBadRequest, false)
	case errors.Is(err, core.ErrCreditRequiresCustomer):
		writeError(w, r, err.Error(), "CREDIT_REQUIRES_CUSTOMER", http.StatusBadRequest, false)
	case errors.As(err, &validationErr):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest, false)
	case errors.As(err, &notFoundErr):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound, false)
	case errors.As(err, &stockErr):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusConflict, false)
	case errors.As(err, &conflictErr):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict, true)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError, true)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with the given status code.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
