// Package plugin provides an extensible plugin system for Invoicer.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated is called when a new invoice is created.
type OnInvoiceCreated interface {
	Plugin
	OnInvoiceCreated(ctx context.Context, inv interface{}) error
}

// OnInvoiceUpdated is called when an invoice is updated.
type OnInvoiceUpdated interface {
	Plugin
	OnInvoiceUpdated(ctx context.Context, oldInv, newInv interface{}) error
}

// OnInvoiceDeleted is called when an invoice is deleted.
type OnInvoiceDeleted interface {
	Plugin
	OnInvoiceDeleted(ctx context.Context, invoiceID string) error
}

// OnInvoicePaid is called when an invoice is marked paid.
type OnInvoicePaid interface {
	Plugin
	OnInvoicePaid(ctx context.Context, inv interface{}) error
}

// ──────────────────────────────────────────────────
// Numbering hooks
// ──────────────────────────────────────────────────

// OnNumberAllocated is called when a sequence number is allocated for an
// invoice.
type OnNumberAllocated interface {
	Plugin
	OnNumberAllocated(ctx context.Context, number string, counter int64) error
}

// ──────────────────────────────────────────────────
// Rendering hooks
// ──────────────────────────────────────────────────

// OnInvoiceRendered is called when an invoice document is rendered.
type OnInvoiceRendered interface {
	Plugin
	OnInvoiceRendered(ctx context.Context, inv interface{}, size int) error
}

// ──────────────────────────────────────────────────
// Delivery hooks
// ──────────────────────────────────────────────────

// OnInvoiceDelivered is called when an invoice is delivered to its client.
type OnInvoiceDelivered interface {
	Plugin
	OnInvoiceDelivered(ctx context.Context, inv interface{}, recipient string) error
}

// OnDeliveryFailed is called when a delivery attempt fails.
type OnDeliveryFailed interface {
	Plugin
	OnDeliveryFailed(ctx context.Context, inv interface{}, err error) error
}
