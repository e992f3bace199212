// Package audithook bridges Invoicer lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/invoicer/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnInvoiceCreated   = (*Extension)(nil)
	_ plugin.OnInvoiceUpdated   = (*Extension)(nil)
	_ plugin.OnInvoiceDeleted   = (*Extension)(nil)
	_ plugin.OnInvoicePaid      = (*Extension)(nil)
	_ plugin.OnNumberAllocated  = (*Extension)(nil)
	_ plugin.OnInvoiceRendered  = (*Extension)(nil)
	_ plugin.OnInvoiceDelivered = (*Extension)(nil)
	_ plugin.OnDeliveryFailed   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// It is defined locally so that the audit_hook package carries no
// dependency on a concrete audit system; callers inject one at wiring
// time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Invoicer lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceCreated implements plugin.OnInvoiceCreated.
func (e *Extension) OnInvoiceCreated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionInvoiceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"event", "invoice_created",
	)
}

// OnInvoiceUpdated implements plugin.OnInvoiceUpdated.
func (e *Extension) OnInvoiceUpdated(ctx context.Context, _, _ interface{}) error {
	return e.record(ctx, ActionInvoiceUpdated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"event", "invoice_updated",
	)
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (e *Extension) OnInvoiceDeleted(ctx context.Context, invoiceID string) error {
	return e.record(ctx, ActionInvoiceDeleted, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, invoiceID, CategoryBilling, nil,
		"invoice_id", invoiceID,
	)
}

// OnInvoicePaid implements plugin.OnInvoicePaid.
func (e *Extension) OnInvoicePaid(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionInvoicePaid, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, "", CategoryBilling, nil,
		"event", "invoice_paid",
	)
}

// ──────────────────────────────────────────────────
// Numbering hooks
// ──────────────────────────────────────────────────

// OnNumberAllocated implements plugin.OnNumberAllocated.
func (e *Extension) OnNumberAllocated(ctx context.Context, number string, counter int64) error {
	return e.record(ctx, ActionNumberAllocated, SeverityInfo, OutcomeSuccess,
		ResourceSequence, number, CategoryBilling, nil,
		"number", number,
		"counter", counter,
	)
}

// ──────────────────────────────────────────────────
// Rendering hooks
// ──────────────────────────────────────────────────

// OnInvoiceRendered implements plugin.OnInvoiceRendered.
func (e *Extension) OnInvoiceRendered(ctx context.Context, _ interface{}, size int) error {
	return e.record(ctx, ActionInvoiceRendered, SeverityInfo, OutcomeSuccess,
		ResourceDocument, "", CategoryDocument, nil,
		"event", "invoice_rendered",
		"size_bytes", size,
	)
}

// ──────────────────────────────────────────────────
// Delivery hooks
// ──────────────────────────────────────────────────

// OnInvoiceDelivered implements plugin.OnInvoiceDelivered.
func (e *Extension) OnInvoiceDelivered(ctx context.Context, _ interface{}, recipient string) error {
	return e.record(ctx, ActionInvoiceDelivered, SeverityInfo, OutcomeSuccess,
		ResourceDelivery, "", CategoryDelivery, nil,
		"event", "invoice_delivered",
		"recipient", recipient,
	)
}

// OnDeliveryFailed implements plugin.OnDeliveryFailed.
func (e *Extension) OnDeliveryFailed(ctx context.Context, _ interface{}, err error) error {
	return e.record(ctx, ActionDeliveryFailed, SeverityCritical, OutcomeFailure,
		ResourceDelivery, "", CategoryDelivery, err,
		"event", "delivery_failed",
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
