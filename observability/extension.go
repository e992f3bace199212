// Package observability provides a metrics extension for Invoicer that
// records lifecycle event counts via a caller-provided MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/invoicer/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceCreated   = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceUpdated   = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDeleted   = (*MetricsExtension)(nil)
	_ plugin.OnInvoicePaid      = (*MetricsExtension)(nil)
	_ plugin.OnNumberAllocated  = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceRendered  = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDelivered = (*MetricsExtension)(nil)
	_ plugin.OnDeliveryFailed   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as an Invoicer plugin to automatically track invoicing metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceCreated Counter
	InvoiceUpdated Counter
	InvoiceDeleted Counter
	InvoicePaid    Counter

	// Numbering metrics
	NumberAllocated Counter
	SequenceCounter Histogram

	// Rendering metrics
	InvoiceRendered Counter
	DocumentSize    Histogram

	// Delivery metrics
	DeliverySuccess Counter
	DeliveryFailure Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Invoice metrics
		InvoiceCreated: factory.Counter("invoicer.invoice.created"),
		InvoiceUpdated: factory.Counter("invoicer.invoice.updated"),
		InvoiceDeleted: factory.Counter("invoicer.invoice.deleted"),
		InvoicePaid:    factory.Counter("invoicer.invoice.paid"),

		// Numbering metrics
		NumberAllocated: factory.Counter("invoicer.number.allocated"),
		SequenceCounter: factory.Histogram("invoicer.number.counter"),

		// Rendering metrics
		InvoiceRendered: factory.Counter("invoicer.render.count"),
		DocumentSize:    factory.Histogram("invoicer.render.size_bytes"),

		// Delivery metrics
		DeliverySuccess: factory.Counter("invoicer.delivery.success"),
		DeliveryFailure: factory.Counter("invoicer.delivery.failure"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (m *MetricsExtension) OnInvoiceCreated(_ context.Context, _ interface{}) error {
	m.InvoiceCreated.Inc()
	return nil
}

// OnInvoiceUpdated implements plugin.OnInvoiceUpdated.
func (m *MetricsExtension) OnInvoiceUpdated(_ context.Context, _, _ interface{}) error {
	m.InvoiceUpdated.Inc()
	return nil
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (m *MetricsExtension) OnInvoiceDeleted(_ context.Context, _ string) error {
	m.InvoiceDeleted.Inc()
	return nil
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (m *MetricsExtension) OnInvoicePaid(_ context.Context, _ interface{}) error {
	m.InvoicePaid.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Numbering hooks
// ──────────────────────────────────────────────────

// OnNumberAllocated implements plugin.OnNumberAllocated.
func (m *MetricsExtension) OnNumberAllocated(_ context.Context, _ string, counter int64) error {
	m.NumberAllocated.Inc()
	m.SequenceCounter.Observe(float64(counter))
	return nil
}

// ──────────────────────────────────────────────────
// Rendering hooks
// ──────────────────────────────────────────────────

// OnInvoiceRendered implements plugin.OnInvoiceRendered.
func (m *MetricsExtension) OnInvoiceRendered(_ context.Context, _ interface{}, size int) error {
	m.InvoiceRendered.Inc()
	m.DocumentSize.Observe(float64(size))
	return nil
}

// ──────────────────────────────────────────────────
// Delivery hooks
// ──────────────────────────────────────────────────

// OnInvoiceDelivered implements plugin.OnInvoiceDelivered.
func (m *MetricsExtension) OnInvoiceDelivered(_ context.Context, _ interface{}, _ string) error {
	m.DeliverySuccess.Inc()
	return nil
}

// OnDeliveryFailed implements plugin.OnDeliveryFailed.
func (m *MetricsExtension) OnDeliveryFailed(_ context.Context, _ interface{}, _ error) error {
	m.DeliveryFailure.Inc()
	return nil
}
