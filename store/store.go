// Package store defines the unified storage interface for Invoicer and is
// implemented by the memory, postgres, sqlite, and mongo backends.
package store

import (
	"context"
	"time"

	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
)

// Store is the unified storage interface for all Invoicer entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Sequence methods.
	// NextInvoiceNumber atomically increments and returns the invoice
	// counter. Two concurrent calls never observe the same value, and
	// values never go backwards, including across restarts for durable
	// backends.
	NextInvoiceNumber(ctx context.Context) (int64, error)

	// Invoice methods
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, ownerID string, opts invoice.ListOpts) ([]*invoice.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error
	DeleteInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) error
	MarkInvoiceSent(ctx context.Context, invID id.InvoiceID, sentAt time.Time) error
	MarkInvoicePaid(ctx context.Context, invID id.InvoiceID, paidAt time.Time) error

	// Delivery attempt methods
	RecordAttempt(ctx context.Context, a *deliver.Attempt) error
	ListAttempts(ctx context.Context, invID id.InvoiceID) ([]*deliver.Attempt, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
