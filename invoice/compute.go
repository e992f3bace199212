package invoice

import (
	"errors"
	"fmt"

	"github.com/xraph/invoicer/types"
)

// Computation errors. A negative quantity or unit price has no defined
// business meaning, so computation rejects them loudly rather than
// clamping. Rate bounds (0-100) are the boundary's responsibility and are
// checked by Validate before any computation runs.
var (
	ErrNegativeQuantity = errors.New("invoice: negative quantity")
	ErrNegativePrice    = errors.New("invoice: negative unit price")
)

// Subtotal returns quantity × unit price, exact.
func (li LineItem) Subtotal() types.Money {
	return li.UnitPrice.Multiply(li.Quantity)
}

// TaxAmount returns the tax contribution: subtotal × taxRate/100.
func (li LineItem) TaxAmount() types.Money {
	return li.Subtotal().Percent(li.TaxRate)
}

// DiscountAmount returns the discount: subtotal × discountRate/100.
func (li LineItem) DiscountAmount() types.Money {
	return li.Subtotal().Percent(li.DiscountRate)
}

// LineTotal returns subtotal + tax − discount. A discount exceeding
// subtotal plus tax yields a negative line total, which is permitted and
// propagates as a negative contribution to the invoice total.
func (li LineItem) LineTotal() types.Money {
	return li.Subtotal().Add(li.TaxAmount()).Subtract(li.DiscountAmount())
}

// Total sums the line totals of items into a single amount in the given
// currency. It is deterministic and side-effect free: the same items
// always produce the same result, equal to the sum of each item's
// independently computed LineTotal. No rounding occurs here; display
// rounding happens at presentation time only.
func Total(currency string, items []LineItem) (types.Money, error) {
	total := types.Zero(currency)
	for i, li := range items {
		if li.Quantity.IsNegative() {
			return types.Money{}, fmt.Errorf("item %d: %w", i, ErrNegativeQuantity)
		}
		if li.UnitPrice.IsNegative() {
			return types.Money{}, fmt.Errorf("item %d: %w", i, ErrNegativePrice)
		}
		total = total.Add(li.LineTotal())
	}
	return total, nil
}
