package invoicer

import (
	"errors"
	"fmt"

	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/render"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("invoicer: not found")
	ErrAlreadyExists = errors.New("invoicer: already exists")
	ErrInvalidInput  = errors.New("invoicer: invalid input")

	// Invoice errors
	ErrInvoiceNotFound = errors.New("invoicer: invoice not found")
	ErrInvoiceSent     = errors.New("invoicer: invoice already sent")
	ErrInvoicePaid     = errors.New("invoicer: invoice already paid")
	ErrNotDraft        = errors.New("invoicer: invoice is not a draft")

	// Sequence errors
	ErrAllocationFailed = errors.New("invoicer: invoice number allocation failed")

	// Delivery errors
	ErrQueueFull    = errors.New("invoicer: delivery queue full")
	ErrNoDispatcher = errors.New("invoicer: no delivery dispatcher configured")
	ErrNotStarted   = errors.New("invoicer: engine not started")

	// Store errors
	ErrStoreNotReady     = errors.New("invoicer: store not ready")
	ErrStoreClosed       = errors.New("invoicer: store is closed")
	ErrTransactionFailed = errors.New("invoicer: transaction failed")
	ErrMigrationFailed   = errors.New("invoicer: migration failed")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}

// IsValidation returns true if the error is a validation failure: bad
// input that the caller must correct before retrying.
func IsValidation(err error) bool {
	var ve invoice.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, invoice.ErrNoItems) ||
		errors.Is(err, invoice.ErrClientNameRequired) ||
		errors.Is(err, invoice.ErrInvalidStatus) ||
		errors.Is(err, invoice.ErrNegativeQuantity) ||
		errors.Is(err, invoice.ErrNegativePrice)
}

// IsAllocation returns true if the error came from invoice number
// allocation. Creation aborts entirely on allocation failure; nothing is
// persisted.
func IsAllocation(err error) bool {
	return errors.Is(err, ErrAllocationFailed)
}

// IsRenderFailure returns true if the error came from document
// rendering. Render failures mean the invoice data cannot produce a
// document; retrying without changing the invoice will fail again.
func IsRenderFailure(err error) bool {
	return errors.Is(err, render.ErrNoItems) ||
		errors.Is(err, render.ErrTotalUnset)
}

// IsDeliveryFailure returns true if the error came from the delivery
// transport or recipient validation.
func IsDeliveryFailure(err error) bool {
	var te *deliver.TransportError
	return errors.As(err, &te) ||
		errors.Is(err, deliver.ErrNoRecipient) ||
		errors.Is(err, deliver.ErrInvalidRecipient)
}

// IsRetryable returns true if the error is temporary and the operation
// can be retried as-is. Transport failures qualify; validation and
// render failures do not.
func IsRetryable(err error) bool {
	var te *deliver.TransportError
	return errors.As(err, &te) ||
		errors.Is(err, ErrQueueFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "invoicer: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("invoicer: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}
