package sale

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/primestore/sales-api/internal/domain/branch"
	"github.com/primestore/sales-api/internal/domain/customer"
	"github.com/primestore/sales-api/internal/domain/product"
)

// Pagination bounds for ListSales.
const (
	MinPageSize = 1
	MaxPageSize = 100
)

// CreateSaleRequest holds the input for creating a sale. Unit prices and
// display names are resolved from the catalog; the caller supplies only
// references and the per-line discount.
type CreateSaleRequest struct {
	Number     string
	Date       time.Time
	CustomerID string
	BranchID   string
	Items      []CreateItemRequest
}

// CreateItemRequest is one requested line in a new sale. A nil Discount asks
// for the mandatory tier discount; an explicit value is validated against the
// policy floor rather than silently overridden.
type CreateItemRequest struct {
	ProductID string
	Quantity  int
	Discount  *decimal.Decimal
}

// ListResult is one page of sales plus pagination counts.
type ListResult struct {
	Sales      []Sale
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// Service hosts the sale aggregate: it resolves display names through the
// injected lookups, delegates every business decision to the aggregate, and
// commits through the repository with optimistic concurrency.
type Service struct {
	sales     Repository
	products  product.Repository
	customers customer.Repository
	branches  branch.Repository
}

// NewService creates a sale Service with the required capabilities.
func NewService(
	sales Repository,
	products product.Repository,
	customers customer.Repository,
	branches branch.Repository,
) *Service {
	return &Service{
		sales:     sales,
		products:  products,
		customers: customers,
		branches:  branches,
	}
}

// CreateSale resolves customer, branch, and product references, builds the
// aggregate, validates it, and persists it as version 1. Every violated rule
// is reported in a single ValidationError, including unknown references.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	var violations []Violation

	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	switch {
	case errors.Is(err, customer.ErrNotFound):
		violations = append(violations, Violation{
			Code:    "customer_not_found",
			Message: "customer " + req.CustomerID + " not found",
		})
	case err != nil:
		return nil, errors.Wrapf(err, "get customer %s", req.CustomerID)
	}

	br, err := s.branches.GetByID(ctx, req.BranchID)
	switch {
	case errors.Is(err, branch.ErrNotFound):
		violations = append(violations, Violation{
			Code:    "branch_not_found",
			Message: "branch " + req.BranchID + " not found",
		})
	case err != nil:
		return nil, errors.Wrapf(err, "get branch %s", req.BranchID)
	}

	items, itemViolations, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	violations = append(violations, itemViolations...)

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	sale, err := New(NewSaleParams{
		Number:       req.Number,
		Date:         req.Date,
		CustomerID:   cust.ID,
		CustomerName: cust.Name,
		BranchID:     br.ID,
		BranchName:   br.Name,
		Items:        items,
	})
	if err != nil {
		return nil, err
	}

	if err := s.sales.Save(ctx, sale, 0); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return nil, &ValidationError{Violations: []Violation{{
				Code:    "number_duplicate",
				Message: "sale number " + req.Number + " already exists",
			}}}
		}
		return nil, errors.Wrap(err, "save sale")
	}
	return sale, nil
}

// buildItems prices each requested line from the catalog and constructs the
// line items, collecting validation violations instead of failing fast.
func (s *Service) buildItems(ctx context.Context, reqs []CreateItemRequest) ([]Item, []Violation, error) {
	if len(reqs) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ProductID
	}
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	var (
		items      []Item
		violations []Violation
	)
	for _, r := range reqs {
		p, ok := byID[r.ProductID]
		if !ok {
			violations = append(violations, Violation{
				Code:    "product_not_found",
				Message: "product " + r.ProductID + " not found",
			})
			continue
		}

		discount := decimal.Zero
		if r.Discount != nil {
			discount = *r.Discount
		} else if floor, err := MinimumDiscount(r.Quantity, p.Price); err == nil {
			discount = floor
		}

		item, err := NewItem(p.ID, p.Name, r.Quantity, p.Price, discount)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				violations = append(violations, verr.Violations...)
				continue
			}
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, violations, nil
}

// GetSale returns a sale snapshot including its items.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	return s.sales.Load(ctx, id)
}

// ListSales returns one page of sales with pagination counts. Page and page
// size bounds are validated before touching storage.
func (s *Service) ListSales(ctx context.Context, page, pageSize int) (*ListResult, error) {
	var violations []Violation
	if page < 1 {
		violations = append(violations, Violation{
			Code:    "page_out_of_range",
			Message: "page must be at least 1",
		})
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		violations = append(violations, Violation{
			Code:    "page_size_out_of_range",
			Message: "pageSize must be between 1 and 100",
		})
	}
	if err := newValidationError(violations); err != nil {
		return nil, err
	}

	sales, total, err := s.sales.List(ctx, page, pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "list sales")
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	return &ListResult{
		Sales:      sales,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// CancelSale cancels every item of the sale and transitions it to Cancelled.
func (s *Service) CancelSale(ctx context.Context, id string) (*Sale, error) {
	return s.mutate(ctx, id, (*Sale).Cancel)
}

// CancelSaleItem cancels a single line item and recomputes the sale total.
func (s *Service) CancelSaleItem(ctx context.Context, id, productID string) (*Sale, error) {
	return s.mutate(ctx, id, func(sale *Sale) error {
		return sale.CancelItem(productID)
	})
}

// CompleteSale finalizes an Active sale.
func (s *Service) CompleteSale(ctx context.Context, id string) (*Sale, error) {
	return s.mutate(ctx, id, (*Sale).Complete)
}

// DeleteSale removes a sale entirely, regardless of its status. This is an
// administrative hard delete, not a lifecycle transition.
func (s *Service) DeleteSale(ctx context.Context, id string) (bool, error) {
	if err := s.sales.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// mutate loads the sale, applies op, re-runs the validation rule set, and
// commits with the version captured at load time. A stale version surfaces as
// ErrConcurrencyConflict from the repository.
func (s *Service) mutate(ctx context.Context, id string, op func(*Sale) error) (*Sale, error) {
	sale, err := s.sales.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	loadedVersion := sale.Version
	if err := op(sale); err != nil {
		return nil, err
	}
	if err := newValidationError(Validate(sale, time.Now().UTC())); err != nil {
		return nil, err
	}
	if err := s.sales.Save(ctx, sale, loadedVersion); err != nil {
		return nil, err
	}
	return sale, nil
}
