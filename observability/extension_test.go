package observability

import (
	"context"
	"errors"
	"testing"
)

type testCounter struct{ value float64 }

func (c *testCounter) Inc()          { c.value++ }
func (c *testCounter) Add(v float64) { c.value += v }

type testHistogram struct{ observed []float64 }

func (h *testHistogram) Observe(v float64) { h.observed = append(h.observed, v) }

type testFactory struct {
	counters   map[string]*testCounter
	histograms map[string]*testHistogram
}

func newTestFactory() *testFactory {
	return &testFactory{
		counters:   make(map[string]*testCounter),
		histograms: make(map[string]*testHistogram),
	}
}

func (f *testFactory) Counter(name string) Counter {
	c := &testCounter{}
	f.counters[name] = c
	return c
}

func (f *testFactory) Histogram(name string) Histogram {
	h := &testHistogram{}
	f.histograms[name] = h
	return h
}

func TestMetricsExtension(t *testing.T) {
	f := newTestFactory()
	m := NewMetricsExtension(f)
	ctx := context.Background()

	_ = m.OnInvoiceCreated(ctx, nil)
	_ = m.OnInvoiceCreated(ctx, nil)
	_ = m.OnInvoicePaid(ctx, nil)
	_ = m.OnNumberAllocated(ctx, "INV-00042", 42)
	_ = m.OnInvoiceRendered(ctx, nil, 2048)
	_ = m.OnInvoiceDelivered(ctx, nil, "billing@acme.test")
	_ = m.OnDeliveryFailed(ctx, nil, errors.New("refused"))

	if got := f.counters["invoicer.invoice.created"].value; got != 2 {
		t.Errorf("created: got %v, want 2", got)
	}
	if got := f.counters["invoicer.invoice.paid"].value; got != 1 {
		t.Errorf("paid: got %v, want 1", got)
	}
	if got := f.counters["invoicer.delivery.success"].value; got != 1 {
		t.Errorf("delivery success: got %v, want 1", got)
	}
	if got := f.counters["invoicer.delivery.failure"].value; got != 1 {
		t.Errorf("delivery failure: got %v, want 1", got)
	}

	seq := f.histograms["invoicer.number.counter"].observed
	if len(seq) != 1 || seq[0] != 42 {
		t.Errorf("sequence counter observations: %v", seq)
	}
	size := f.histograms["invoicer.render.size_bytes"].observed
	if len(size) != 1 || size[0] != 2048 {
		t.Errorf("document size observations: %v", size)
	}
}
