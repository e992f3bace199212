package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors.
var (
	ErrClientNameRequired = errors.New("invoice: client name is required")
	ErrNoItems            = errors.New("invoice: at least one line item is required")
	ErrInvalidStatus      = errors.New("invoice: invalid status")
)

// ValidationError reports a malformed field in a creation or update
// request, with enough detail for the caller to prompt a correction.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invoice: validation failed for %s: %s", e.Field, e.Message)
}

var hundred = decimal.NewFromInt(100)

// ValidateItems checks line items at the boundary, before any computation
// runs: descriptions present, quantities and prices non-negative, tax and
// discount rates within 0-100, every unit price denominated in the
// invoice currency. Computation assumes a single currency per invoice,
// so mixed input must be stopped here.
func ValidateItems(currency string, items []LineItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}

	for i, li := range items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if li.Description == "" {
			return ValidationError{Field: field("description"), Message: "must not be empty"}
		}
		if !strings.EqualFold(li.UnitPrice.Currency, currency) {
			return ValidationError{
				Field:   field("unit_price"),
				Message: fmt.Sprintf("currency %q does not match invoice currency %q", li.UnitPrice.Currency, currency),
			}
		}
		if li.Quantity.IsNegative() {
			return ValidationError{Field: field("quantity"), Message: "must not be negative"}
		}
		if li.UnitPrice.IsNegative() {
			return ValidationError{Field: field("unit_price"), Message: "must not be negative"}
		}
		if li.TaxRate.IsNegative() || li.TaxRate.GreaterThan(hundred) {
			return ValidationError{Field: field("tax_rate"), Message: "must be between 0 and 100"}
		}
		if li.DiscountRate.IsNegative() || li.DiscountRate.GreaterThan(hundred) {
			return ValidationError{Field: field("discount_rate"), Message: "must be between 0 and 100"}
		}
	}
	return nil
}

// ValidateClient checks the client snapshot: only the name is required,
// email and address may be empty.
func ValidateClient(c Client) error {
	if c.Name == "" {
		return ErrClientNameRequired
	}
	return nil
}
