package sale

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Size limits for sale fields. MaxSaleItems bounds the aggregate, not storage.
const (
	MaxNumberLength      = 50
	MaxProductNameLength = 200
	MaxSaleItems         = 100
)

// Validate runs the full rule set against a sale snapshot and returns every
// violated rule. It is a pure function: it inspects, never mutates. The
// hosting service runs it before each persistence commit; New runs it at
// construction.
func Validate(s *Sale, now time.Time) []Violation {
	var vs []Violation

	if s.Number == "" {
		vs = append(vs, Violation{Code: "number_required", Message: "sale number is required"})
	} else if len(s.Number) > MaxNumberLength {
		vs = append(vs, Violation{
			Code:    "number_too_long",
			Message: fmt.Sprintf("sale number exceeds %d characters", MaxNumberLength),
		})
	}

	if s.Date.IsZero() {
		vs = append(vs, Violation{Code: "date_required", Message: "sale date is required"})
	} else if s.Date.After(now) {
		vs = append(vs, Violation{Code: "date_in_future", Message: "sale date cannot be in the future"})
	}

	if s.CustomerID == "" {
		vs = append(vs, Violation{Code: "customer_id_required", Message: "customer id is required"})
	}
	if s.CustomerName == "" {
		vs = append(vs, Violation{Code: "customer_name_required", Message: "customer name is required"})
	}
	if s.BranchID == "" {
		vs = append(vs, Violation{Code: "branch_id_required", Message: "branch id is required"})
	}
	if s.BranchName == "" {
		vs = append(vs, Violation{Code: "branch_name_required", Message: "branch name is required"})
	}

	switch {
	case len(s.Items) == 0:
		vs = append(vs, Violation{Code: "items_required", Message: "sale must have at least one item"})
	case len(s.Items) > MaxSaleItems:
		vs = append(vs, Violation{
			Code:    "too_many_items",
			Message: fmt.Sprintf("sale cannot have more than %d items", MaxSaleItems),
		})
	}

	for _, it := range s.Items {
		vs = append(vs, validateItem(it)...)
	}

	// Total consistency: cancelled items contribute zero.
	want := decimal.Zero
	for _, it := range s.Items {
		if !it.Cancelled {
			want = want.Add(it.Total)
		}
	}
	if !s.TotalAmount.Equal(want.Round(2)) {
		vs = append(vs, Violation{
			Code:    "total_mismatch",
			Message: "total amount does not match the sum of active item totals",
		})
	}

	return vs
}

// validateItem checks a single line item against the item rule set.
func validateItem(it Item) []Violation {
	var vs []Violation

	if it.ProductID == "" {
		vs = append(vs, Violation{Code: "product_id_required", Message: "product id is required"})
	}
	if it.ProductName == "" {
		vs = append(vs, Violation{
			Code:    "product_name_required",
			Message: itemMessage(it, "product name is required"),
		})
	} else if len(it.ProductName) > MaxProductNameLength {
		vs = append(vs, Violation{
			Code:    "product_name_too_long",
			Message: itemMessage(it, fmt.Sprintf("product name exceeds %d characters", MaxProductNameLength)),
		})
	}

	if !it.UnitPrice.IsPositive() {
		vs = append(vs, Violation{
			Code:    "unit_price_not_positive",
			Message: itemMessage(it, "unit price must be greater than zero"),
		})
	}

	if it.Discount.IsNegative() {
		vs = append(vs, Violation{
			Code:    "discount_negative",
			Message: itemMessage(it, "discount cannot be negative"),
		})
	} else if it.Discount.GreaterThan(it.Subtotal()) {
		vs = append(vs, Violation{
			Code:    "discount_exceeds_subtotal",
			Message: itemMessage(it, "discount cannot exceed unit price times quantity"),
		})
	}

	floor, err := MinimumDiscount(it.Quantity, it.UnitPrice)
	if err != nil {
		vs = append(vs, Violation{
			Code: "quantity_out_of_range",
			Message: itemMessage(it, fmt.Sprintf("quantity must be between %d and %d",
				MinItemQuantity, MaxItemQuantity)),
		})
	} else if !it.Discount.IsNegative() && it.Discount.LessThan(floor) {
		vs = append(vs, Violation{
			Code:    "discount_below_minimum",
			Message: itemMessage(it, fmt.Sprintf("discount is below the mandatory %s for this quantity", floor)),
		})
	}

	return vs
}

func itemMessage(it Item, msg string) string {
	if it.ProductID == "" {
		return msg
	}
	return fmt.Sprintf("product %s: %s", it.ProductID, msg)
}
