package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity bounds for a single line item. The upper bound is a business rule:
// no sale may carry more than 20 units of the same product.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 20
)

var (
	rateTen    = decimal.RequireFromString("0.10")
	rateTwenty = decimal.RequireFromString("0.20")
)

// InvalidQuantityError indicates a quantity outside the sellable range.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d outside allowed range %d-%d",
		e.Quantity, MinItemQuantity, MaxItemQuantity)
}

// DiscountRate returns the mandatory discount rate for the given quantity.
// Tiers: 1-9 no discount, 10-14 ten percent, 15-20 twenty percent.
// Quantities outside 1-20 are rejected.
//
// The function is pure and safe for concurrent use.
func DiscountRate(quantity int) (decimal.Decimal, error) {
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return decimal.Zero, &InvalidQuantityError{Quantity: quantity}
	}

	switch {
	case quantity >= 15:
		return rateTwenty, nil
	case quantity >= 10:
		return rateTen, nil
	default:
		return decimal.Zero, nil
	}
}

// MinimumDiscount returns the policy-mandated discount floor for a line of
// the given quantity and unit price, rounded to 2 decimal places.
func MinimumDiscount(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	rate, err := DiscountRate(quantity)
	if err != nil {
		return decimal.Zero, err
	}
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return subtotal.Mul(rate).Round(2), nil
}
