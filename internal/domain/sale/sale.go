// Package sale implements the sale aggregate: an order of line items subject
// to quantity-tiered discounts, partial cancellation, automatic total
// recomputation, and a status lifecycle. The aggregate is a pure in-memory
// rule engine; persistence adapters call around it.
package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a sale.
//
// Transitions: Pending -> Active -> {Completed, Cancelled}, and
// Pending -> Cancelled. Completed and Cancelled are terminal: no further
// mutation is permitted except audit metadata.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Item is a single product line within a sale. Items have no identity or
// lifecycle outside their parent sale; they are created and cancelled only
// through Sale operations.
type Item struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	Cancelled   bool            `json:"cancelled"`
	Total       decimal.Decimal `json:"total"`
}

// NewItem builds a line item and computes its total. All rule violations are
// collected into a single ValidationError rather than failing on the first.
func NewItem(productID, productName string, quantity int, unitPrice, discount decimal.Decimal) (Item, error) {
	it := Item{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Discount:    discount,
	}
	if err := newValidationError(validateItem(it)); err != nil {
		return Item{}, err
	}
	it.recompute()
	return it, nil
}

// Subtotal returns unit price times quantity, before discount.
func (it Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// recompute derives the line total from its inputs. The total is never stored
// independently: a cancelled item contributes zero, otherwise
// subtotal - discount floored at zero and rounded to 2 places.
func (it *Item) recompute() {
	if it.Cancelled {
		it.Total = decimal.Zero
		return
	}
	total := it.Subtotal().Sub(it.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	it.Total = total.Round(2)
}

// cancel marks the item cancelled and zeroes its total. Cancelling an
// already-cancelled item is a no-op.
func (it *Item) cancel() {
	if it.Cancelled {
		return
	}
	it.Cancelled = true
	it.recompute()
}

// Sale is the aggregate root. It exclusively owns its item collection and is
// the only place item mutations happen.
type Sale struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	Date         time.Time       `json:"date"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	BranchID     string          `json:"branchId"`
	BranchName   string          `json:"branchName"`
	Items        []Item          `json:"items"`
	Status       Status          `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewSaleParams holds the input for creating a sale. Customer and branch
// names are denormalized by the caller; the aggregate does not check that the
// referenced customer or branch exists.
type NewSaleParams struct {
	Number       string
	Date         time.Time
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
	Items        []Item
}

// New creates a sale in the Active state, computes its total, and runs the
// full validation rule set. On failure it returns a ValidationError carrying
// every violated rule.
func New(p NewSaleParams) (*Sale, error) {
	now := time.Now().UTC()
	s := &Sale{
		ID:           uuid.New().String(),
		Number:       p.Number,
		Date:         p.Date,
		CustomerID:   p.CustomerID,
		CustomerName: p.CustomerName,
		BranchID:     p.BranchID,
		BranchName:   p.BranchName,
		Items:        p.Items,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.recompute()

	if err := newValidationError(Validate(s, now)); err != nil {
		return nil, err
	}
	return s, nil
}

// CancelItem cancels the active line item for the given product and
// recomputes the sale total. It is permitted only while the sale is Active.
// When the last active item is cancelled the sale itself transitions to
// Cancelled.
func (s *Sale) CancelItem(productID string) error {
	if s.Status != StatusActive {
		return &InvalidStateTransitionError{Status: s.Status, Operation: "cancel an item of"}
	}

	for i := range s.Items {
		it := &s.Items[i]
		if it.ProductID != productID || it.Cancelled {
			continue
		}
		it.cancel()
		s.recompute()
		if s.activeItems() == 0 {
			s.Status = StatusCancelled
		}
		s.touch()
		return nil
	}
	return &ItemNotFoundError{ProductID: productID}
}

// Cancel cancels the whole sale: every item is cancelled, the total drops to
// zero, and the status becomes Cancelled. Permitted while Active or Pending;
// cancelling an already-terminal sale fails so callers can distinguish a
// genuine no-op from a logic error.
func (s *Sale) Cancel() error {
	if s.Status.Terminal() {
		return &InvalidStateTransitionError{Status: s.Status, Operation: "cancel"}
	}

	for i := range s.Items {
		s.Items[i].cancel()
	}
	s.recompute()
	s.Status = StatusCancelled
	s.touch()
	return nil
}

// Complete finalizes an Active sale with its current total.
func (s *Sale) Complete() error {
	if s.Status != StatusActive {
		return &InvalidStateTransitionError{Status: s.Status, Operation: "complete"}
	}
	s.Status = StatusCompleted
	s.touch()
	return nil
}

// recompute derives TotalAmount as the sum of non-cancelled item totals.
func (s *Sale) recompute() {
	total := decimal.Zero
	for _, it := range s.Items {
		if !it.Cancelled {
			total = total.Add(it.Total)
		}
	}
	s.TotalAmount = total.Round(2)
}

func (s *Sale) activeItems() int {
	n := 0
	for _, it := range s.Items {
		if !it.Cancelled {
			n++
		}
	}
	return n
}

func (s *Sale) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Repository defines persistence operations for sales. Save with
// expectedVersion 0 inserts a new sale; any other value is a compare-and-swap
// that must fail with ErrConcurrencyConflict when the stored version differs.
type Repository interface {
	Load(ctx context.Context, id string) (*Sale, error)
	Save(ctx context.Context, s *Sale, expectedVersion int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int) ([]Sale, int, error)
}
