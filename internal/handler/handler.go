// Package handler exposes the domain services over HTTP as thin JSON
// adapters: decode, delegate, map the typed error to a status code.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/primestore/sales-api/internal/domain/branch"
	"github.com/primestore/sales-api/internal/domain/customer"
	"github.com/primestore/sales-api/internal/domain/product"
	"github.com/primestore/sales-api/internal/domain/sale"
)

// Handler holds the domain dependencies for every HTTP endpoint.
type Handler struct {
	sales     *sale.Service
	products  product.Repository
	customers customer.Repository
	branches  branch.Repository
}

// New constructs a Handler with the required domain dependencies.
func New(
	sales *sale.Service,
	products product.Repository,
	customers customer.Repository,
	branches branch.Repository,
) *Handler {
	return &Handler{
		sales:     sales,
		products:  products,
		customers: customers,
		branches:  branches,
	}
}

// Register attaches all API routes to the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sales", h.createSale)
	mux.HandleFunc("GET /api/sales", h.listSales)
	mux.HandleFunc("GET /api/sales/{id}", h.getSale)
	mux.HandleFunc("POST /api/sales/{id}/cancel", h.cancelSale)
	mux.HandleFunc("POST /api/sales/{id}/complete", h.completeSale)
	mux.HandleFunc("DELETE /api/sales/{id}/items/{productId}", h.cancelSaleItem)
	mux.HandleFunc("DELETE /api/sales/{id}", h.deleteSale)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)

	mux.HandleFunc("GET /api/customers", h.listCustomers)
	mux.HandleFunc("POST /api/customers", h.createCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.getCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.updateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", h.deleteCustomer)

	mux.HandleFunc("GET /api/branches", h.listBranches)
	mux.HandleFunc("POST /api/branches", h.createBranch)
	mux.HandleFunc("GET /api/branches/{id}", h.getBranch)
	mux.HandleFunc("PUT /api/branches/{id}", h.updateBranch)
	mux.HandleFunc("DELETE /api/branches/{id}", h.deleteBranch)
}

// errorResponse is the JSON error envelope shared by all endpoints. For
// validation failures it carries the complete violation list.
type errorResponse struct {
	Code       int              `json:"code"`
	Message    string           `json:"message"`
	Violations []sale.Violation `json:"violations,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondError(w, http.StatusInternalServerError, "internal server error")
}
