package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/primestore/sales-api/internal/domain/sale"
)

// createSaleRequest is the JSON body for POST /api/sales. Discounts are
// optional; omitting one applies the mandatory tier discount.
type createSaleRequest struct {
	Number     string            `json:"number"`
	Date       time.Time         `json:"date"`
	CustomerID string            `json:"customerId"`
	BranchID   string            `json:"branchId"`
	Items      []saleItemRequest `json:"items"`
}

type saleItemRequest struct {
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}

type listSalesResponse struct {
	Sales      []sale.Sale `json:"sales"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalCount int         `json:"totalCount"`
	TotalPages int         `json:"totalPages"`
}

type deleteSaleResponse struct {
	Deleted bool `json:"deleted"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]sale.CreateItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = sale.CreateItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Discount:  it.Discount,
		}
	}

	s, err := h.sales.CreateSale(r.Context(), sale.CreateSaleRequest{
		Number:     req.Number,
		Date:       req.Date,
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		Items:      items,
	})
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	s, err := h.sales.GetSale(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(w, r, "pageSize", 10)
	if !ok {
		return
	}

	result, err := h.sales.ListSales(r.Context(), page, pageSize)
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, listSalesResponse{
		Sales:      result.Sales,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalCount: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) cancelSale(w http.ResponseWriter, r *http.Request) {
	s, err := h.sales.CancelSale(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) completeSale(w http.ResponseWriter, r *http.Request) {
	s, err := h.sales.CompleteSale(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) cancelSaleItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.sales.CancelSaleItem(r.Context(), r.PathValue("id"), r.PathValue("productId"))
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.sales.DeleteSale(r.Context(), r.PathValue("id"))
	if err != nil {
		h.mapSaleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, deleteSaleResponse{Deleted: deleted})
}

// mapSaleError converts domain errors into HTTP responses. A missing sale and
// an illegal transition report different statuses so callers can tell
// "doesn't exist" from "exists but can't do that".
func (h *Handler) mapSaleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *sale.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:       http.StatusBadRequest,
			Message:    "validation failed",
			Violations: verr.Violations,
		})
		return
	}

	var infErr *sale.ItemNotFoundError
	if errors.Is(err, sale.ErrNotFound) || errors.As(err, &infErr) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var stErr *sale.InvalidStateTransitionError
	if errors.As(err, &stErr) {
		respondError(w, http.StatusConflict, stErr.Error())
		return
	}

	if errors.Is(err, sale.ErrConcurrencyConflict) {
		respondError(w, http.StatusConflict, "sale was modified concurrently, reload and retry")
		return
	}

	internalError(w, r, err)
}

// queryInt parses an integer query parameter, falling back to def when it is
// absent. A non-integer value is rejected here with a 400.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}
