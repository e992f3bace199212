// Package invoice defines the invoice aggregate and its pure monetary
// computation. Everything here is side-effect free; persistence lives in
// the store backends and orchestration in the engine.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/types"
)

// Status is the coarse billing state of an invoice.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Valid reports whether s is one of the known lifecycle states.
// Overdue is an observed state (due date passed without payment): the
// engine never transitions into it, but records already carrying it are
// accepted everywhere.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Client is a point-in-time snapshot of the billed party, captured at
// creation. It is deliberately not a reference: historical invoices stay
// stable even if the client record changes later. Only the name is
// required.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Invoice is the aggregate root.
//
// Number is the immutable, globally unique, customer-facing identifier
// (e.g. "INV-00042"); ID is the internal record identifier. Total is
// derived from Items and is never edited independently; any operation
// that changes Items must recompute it before persisting.
type Invoice struct {
	types.Entity
	ID        id.InvoiceID `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Number    string       `json:"number"`
	Status    Status       `json:"status"`
	Currency  string       `json:"currency"`
	Client    Client       `json:"client"`
	Items     []LineItem   `json:"items"`
	Total     types.Money  `json:"total"`
	IssueDate time.Time    `json:"issue_date"`
	DueDate   *time.Time   `json:"due_date,omitempty"`
	SentAt    *time.Time   `json:"sent_at,omitempty"`
}

// LineItem is one billable entry on an invoice. It is a value type owned
// by exactly one invoice; item order is significant and preserved.
type LineItem struct {
	ID           id.LineItemID   `json:"id"`
	InvoiceID    id.InvoiceID    `json:"invoice_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    types.Money     `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`      // percent, 0-100
	DiscountRate decimal.Decimal `json:"discount_rate"` // percent, 0-100
}

// Overdue reports whether the invoice is past due at the given instant:
// sent, unpaid, and with a due date in the past. It observes state
// rather than changing it; callers that want the overdue status stored
// must persist it themselves.
func (i *Invoice) Overdue(at time.Time) bool {
	if i.Status != StatusSent || i.DueDate == nil {
		return false
	}
	return at.After(*i.DueDate)
}

// ListOpts filters and pages invoice listings.
type ListOpts struct {
	Status Status
	Limit  int
	Offset int
}
