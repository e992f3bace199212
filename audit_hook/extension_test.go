package audithook

import (
	"context"
	"errors"
	"testing"
)

// memRecorder captures emitted events.
type memRecorder struct {
	events []*AuditEvent
}

func (r *memRecorder) Record(_ context.Context, evt *AuditEvent) error {
	r.events = append(r.events, evt)
	return nil
}

func TestEmitsAuditEvents(t *testing.T) {
	rec := &memRecorder{}
	ext := New(rec)
	ctx := context.Background()

	if err := ext.OnNumberAllocated(ctx, "INV-00042", 42); err != nil {
		t.Fatal(err)
	}
	if err := ext.OnInvoiceDelivered(ctx, nil, "billing@acme.test"); err != nil {
		t.Fatal(err)
	}
	if err := ext.OnDeliveryFailed(ctx, nil, errors.New("refused")); err != nil {
		t.Fatal(err)
	}

	if len(rec.events) != 3 {
		t.Fatalf("got %d events, want 3", len(rec.events))
	}

	alloc := rec.events[0]
	if alloc.Action != ActionNumberAllocated || alloc.ResourceID != "INV-00042" {
		t.Errorf("allocation event: %+v", alloc)
	}
	if alloc.Metadata["counter"] != int64(42) {
		t.Errorf("counter metadata: %v", alloc.Metadata["counter"])
	}

	failed := rec.events[2]
	if failed.Outcome != OutcomeFailure || failed.Severity != SeverityCritical {
		t.Errorf("failure event: %+v", failed)
	}
	if failed.Reason != "refused" {
		t.Errorf("reason: got %q", failed.Reason)
	}
}

func TestEnabledActionFiltering(t *testing.T) {
	rec := &memRecorder{}
	ext := New(rec, WithEnabledActions(ActionInvoiceDeleted))
	ctx := context.Background()

	_ = ext.OnInvoiceCreated(ctx, nil)
	_ = ext.OnInvoiceDeleted(ctx, "inv_123")

	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	if rec.events[0].Action != ActionInvoiceDeleted {
		t.Errorf("got %s", rec.events[0].Action)
	}
}

func TestDisabledActionFiltering(t *testing.T) {
	rec := &memRecorder{}
	ext := New(rec, WithDisabledActions(ActionInvoiceRendered))
	ctx := context.Background()

	_ = ext.OnInvoiceRendered(ctx, nil, 1024)
	_ = ext.OnInvoicePaid(ctx, nil)

	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	if rec.events[0].Action != ActionInvoicePaid {
		t.Errorf("got %s", rec.events[0].Action)
	}
}

func TestRecorderFailureIsSwallowed(t *testing.T) {
	ext := New(RecorderFunc(func(context.Context, *AuditEvent) error {
		return errors.New("audit backend down")
	}))

	// A failing recorder must never fail the invoicing operation.
	if err := ext.OnInvoiceCreated(context.Background(), nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
