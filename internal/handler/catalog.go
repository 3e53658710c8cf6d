package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/primestore/sales-api/internal/domain/branch"
	"github.com/primestore/sales-api/internal/domain/customer"
	"github.com/primestore/sales-api/internal/domain/product"
)

// Catalog endpoints are direct pass-throughs: load, check existence, delegate
// one repository call.

type productRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

type productResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Price: p.Price, Category: p.Category}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "name and a positive price are required")
		return
	}

	p := product.Product{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || !req.Price.IsPositive() {
		respondError(w, http.StatusBadRequest, "name and a positive price are required")
		return
	}

	p := product.Product{
		ID:       r.PathValue("id"),
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
	}
	if err := h.products.Update(r.Context(), &p); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type customerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]customerResponse, len(customers))
	for i, c := range customers {
		out[i] = toCustomerResponse(c)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerResponse(*c))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := customer.Customer{
		ID:    uuid.New().String(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.customers.Create(r.Context(), &c); err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := customer.Customer{
		ID:    r.PathValue("id"),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.customers.Update(r.Context(), &c); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type branchRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type branchResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

func toBranchResponse(b branch.Branch) branchResponse {
	return branchResponse{ID: b.ID, Name: b.Name, City: b.City}
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.branches.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	out := make([]branchResponse, len(branches))
	for i, b := range branches {
		out[i] = toBranchResponse(b)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getBranch(w http.ResponseWriter, r *http.Request) {
	b, err := h.branches.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBranchResponse(*b))
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	b := branch.Branch{
		ID:   uuid.New().String(),
		Name: req.Name,
		City: req.City,
	}
	if err := h.branches.Create(r.Context(), &b); err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toBranchResponse(b))
}

func (h *Handler) updateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	b := branch.Branch{
		ID:   r.PathValue("id"),
		Name: req.Name,
		City: req.City,
	}
	if err := h.branches.Update(r.Context(), &b); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBranchResponse(b))
}

func (h *Handler) deleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := h.branches.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.mapCatalogError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mapCatalogError converts catalog repository errors to HTTP responses.
func (h *Handler) mapCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, branch.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		internalError(w, r, err)
	}
}
