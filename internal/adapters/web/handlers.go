package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// 1 MB body limit on all write endpoints.
	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20))

		// Products
		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Put("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)

		// Customers and their ledgers
		r.Get("/api/customers", h.listCustomers)
		r.Post("/api/customers", h.createCustomer)
		r.Get("/api/customers/{id}", h.getCustomer)
		r.Get("/api/customers/{id}/ledger", h.getCustomerLedger)
		r.Post("/api/customers/{id}/payments", h.recordPayment)

		// Invoices
		r.Get("/api/invoices", h.listInvoices)
		r.Post("/api/invoices", h.createInvoice)
		r.Get("/api/invoices/{id}", h.getInvoice)

		// Read projections
		r.Get("/api/dashboard/summary", h.dashboardSummary)
		r.Get("/api/dashboard/low-stock", h.lowStock)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// idParam extracts and parses the {id} URL parameter.
func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// decodeJSON decodes the request body into v, writing an appropriate error
// response on failure. Returns HTTP 413 when the body exceeds the size limit;
// HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge, false)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest, false)
		return false
	}
	return true
}
