package plugin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

// countingPlugin implements a subset of the hook interfaces.
type countingPlugin struct {
	name      string
	created   atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

func (p *countingPlugin) Name() string { return p.name }

func (p *countingPlugin) OnInvoiceCreated(_ context.Context, _ interface{}) error {
	p.created.Add(1)
	return nil
}

func (p *countingPlugin) OnInvoiceDelivered(_ context.Context, _ interface{}, _ string) error {
	p.delivered.Add(1)
	return nil
}

func (p *countingPlugin) OnDeliveryFailed(_ context.Context, _ interface{}, _ error) error {
	p.failed.Add(1)
	return nil
}

// failingPlugin always errors; the registry must swallow the failure.
type failingPlugin struct{}

func (failingPlugin) Name() string { return "failing" }

func (failingPlugin) OnInvoiceCreated(_ context.Context, _ interface{}) error {
	return errors.New("hook blew up")
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	p := &countingPlugin{name: "counter"}

	if err := r.Register(p); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count: got %d, want 1", r.Count())
	}
	if got := r.Get("counter"); got != p {
		t.Error("Get returned wrong plugin")
	}
	if got := r.Get("missing"); got != nil {
		t.Error("Get for unknown name should return nil")
	}
	if len(r.List()) != 1 {
		t.Errorf("List: got %d plugins", len(r.List()))
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&countingPlugin{name: "dup"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&countingPlugin{name: "dup"}); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestEmitDispatchesToImplementers(t *testing.T) {
	r := NewRegistry()
	p := &countingPlugin{name: "counter"}
	if err := r.Register(p); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	r.EmitInvoiceCreated(ctx, nil)
	r.EmitInvoiceCreated(ctx, nil)
	r.EmitInvoiceDelivered(ctx, nil, "a@b.test")
	r.EmitDeliveryFailed(ctx, nil, errors.New("boom"))

	// Hooks the plugin does not implement dispatch to nobody.
	r.EmitInvoicePaid(ctx, nil)
	r.EmitNumberAllocated(ctx, "INV-00001", 1)

	if p.created.Load() != 2 {
		t.Errorf("created: got %d, want 2", p.created.Load())
	}
	if p.delivered.Load() != 1 {
		t.Errorf("delivered: got %d, want 1", p.delivered.Load())
	}
	if p.failed.Load() != 1 {
		t.Errorf("failed: got %d, want 1", p.failed.Load())
	}
}

func TestEmitSurvivesFailingPlugin(t *testing.T) {
	r := NewRegistry()
	good := &countingPlugin{name: "counter"}
	if err := r.Register(failingPlugin{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(good); err != nil {
		t.Fatal(err)
	}

	// A failing hook is logged, not propagated; later plugins still run.
	r.EmitInvoiceCreated(context.Background(), nil)
	if good.created.Load() != 1 {
		t.Errorf("created: got %d, want 1", good.created.Load())
	}
}
