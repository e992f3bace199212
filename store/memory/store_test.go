package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

func newInvoice(owner string) *invoice.Invoice {
	return &invoice.Invoice{
		Entity:  types.NewEntity(),
		ID:      id.NewInvoiceID(),
		OwnerID: owner,
		Number:  "INV-00001",
		Status:  invoice.StatusDraft,
		Client:  invoice.Client{Name: "Acme Corp"},
		Items: []invoice.LineItem{{
			ID:          id.NewLineItemID(),
			Description: "Widget",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   types.USD("100.00"),
		}},
		Total:     types.USD("100.00"),
		IssueDate: time.Now().UTC(),
	}
}

func TestNextInvoiceNumberSequential(t *testing.T) {
	s := New()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.NextInvoiceNumber(ctx)
		if err != nil {
			t.Fatalf("NextInvoiceNumber: %v", err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
}

func TestNextInvoiceNumberConcurrent(t *testing.T) {
	s := New()
	ctx := context.Background()

	const workers = 50
	const perWorker = 20

	var mu sync.Mutex
	seen := make([]int64, 0, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := s.NextInvoiceNumber(ctx)
				if err != nil {
					t.Errorf("NextInvoiceNumber: %v", err)
					return
				}
				mu.Lock()
				seen = append(seen, n)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every allocation must be unique and, under the mutex, contiguous.
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	for i, n := range seen {
		if n != int64(i+1) {
			t.Fatalf("allocation %d: got %d, want %d (duplicate or gap)", i, n, i+1)
		}
	}
}

func TestNumberNotReusedAfterDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.NextInvoiceNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteInvoice(ctx, inv.ID, "owner_1"); err != nil {
		t.Fatal(err)
	}

	// The counter keeps advancing past the deleted invoice's number.
	next, err := s.NextInvoiceNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != first+1 {
		t.Errorf("got %d, want %d", next, first+1)
	}
}

func TestInvoiceCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if err := s.CreateInvoice(ctx, inv); !errors.Is(err, invoicer.ErrAlreadyExists) {
		t.Errorf("duplicate create: expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetInvoice(ctx, inv.ID, "owner_1")
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Number != inv.Number {
		t.Errorf("number: got %s, want %s", got.Number, inv.Number)
	}

	// Owner scoping
	if _, err := s.GetInvoice(ctx, inv.ID, "owner_2"); !errors.Is(err, invoicer.ErrInvoiceNotFound) {
		t.Errorf("wrong owner: expected ErrInvoiceNotFound, got %v", err)
	}

	inv.Client.Name = "Updated Corp"
	if err := s.UpdateInvoice(ctx, inv); err != nil {
		t.Fatalf("UpdateInvoice: %v", err)
	}

	if err := s.DeleteInvoice(ctx, inv.ID, "owner_1"); err != nil {
		t.Fatalf("DeleteInvoice: %v", err)
	}
	if _, err := s.GetInvoice(ctx, inv.ID, "owner_1"); !errors.Is(err, invoicer.ErrInvoiceNotFound) {
		t.Errorf("after delete: expected ErrInvoiceNotFound, got %v", err)
	}
	if err := s.DeleteInvoice(ctx, inv.ID, "owner_1"); !errors.Is(err, invoicer.ErrInvoiceNotFound) {
		t.Errorf("double delete: expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestGetInvoiceReturnsSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}

	before, err := s.GetInvoice(ctx, inv.ID, "owner_1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkInvoiceSent(ctx, inv.ID, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	// A snapshot handed out earlier never changes under later writes.
	if before.Status != invoice.StatusDraft {
		t.Errorf("snapshot status: got %s, want draft", before.Status)
	}
	if before.SentAt != nil {
		t.Error("snapshot gained a sent_at from a later write")
	}

	// Caller mutations never leak back into the store.
	before.Items[0].Description = "tampered"
	again, err := s.GetInvoice(ctx, inv.ID, "owner_1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Items[0].Description != "Widget" {
		t.Errorf("stored item mutated through a returned snapshot: %s", again.Items[0].Description)
	}
}

func TestConcurrentReadsDuringStatusWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			got, err := s.GetInvoice(ctx, inv.ID, "owner_1")
			if err != nil {
				t.Errorf("GetInvoice: %v", err)
				return
			}
			// Either the old or the new state, never a torn one.
			if got.Status == invoice.StatusSent && got.SentAt == nil {
				t.Error("sent invoice without sent_at")
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		if err := s.MarkInvoiceSent(ctx, inv.ID, time.Now().UTC()); err != nil {
			t.Errorf("MarkInvoiceSent: %v", err)
			break
		}
	}
	<-done
}

func TestListInvoices(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		inv := newInvoice("owner_1")
		inv.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		if i%2 == 0 {
			inv.Status = invoice.StatusSent
		}
		if err := s.CreateInvoice(ctx, inv); err != nil {
			t.Fatal(err)
		}
	}
	other := newInvoice("owner_2")
	if err := s.CreateInvoice(ctx, other); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListInvoices(ctx, "owner_1", invoice.ListOpts{})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("got %d invoices, want 5", len(all))
	}
	// Newest first
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Error("not sorted newest first")
		}
	}

	sent, err := s.ListInvoices(ctx, "owner_1", invoice.ListOpts{Status: invoice.StatusSent})
	if err != nil {
		t.Fatal(err)
	}
	if len(sent) != 3 {
		t.Errorf("got %d sent invoices, want 3", len(sent))
	}

	page, err := s.ListInvoices(ctx, "owner_1", invoice.ListOpts{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 {
		t.Errorf("got %d invoices on last page, want 1", len(page))
	}
}

func TestMarkInvoiceSent(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}

	sentAt := time.Now().UTC()
	if err := s.MarkInvoiceSent(ctx, inv.ID, sentAt); err != nil {
		t.Fatalf("MarkInvoiceSent: %v", err)
	}

	got, err := s.GetInvoice(ctx, inv.ID, "owner_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != invoice.StatusSent {
		t.Errorf("status: got %s, want sent", got.Status)
	}
	if got.SentAt == nil || !got.SentAt.Equal(sentAt) {
		t.Errorf("sent_at: got %v, want %v", got.SentAt, sentAt)
	}

	if err := s.MarkInvoiceSent(ctx, id.NewInvoiceID(), sentAt); !errors.Is(err, invoicer.ErrInvoiceNotFound) {
		t.Errorf("unknown invoice: expected ErrInvoiceNotFound, got %v", err)
	}
}

func TestMarkInvoicePaid(t *testing.T) {
	s := New()
	ctx := context.Background()

	inv := newInvoice("owner_1")
	if err := s.CreateInvoice(ctx, inv); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkInvoicePaid(ctx, inv.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkInvoicePaid: %v", err)
	}

	got, err := s.GetInvoice(ctx, inv.ID, "owner_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != invoice.StatusPaid {
		t.Errorf("status: got %s, want paid", got.Status)
	}
}

func TestAttempts(t *testing.T) {
	s := New()
	ctx := context.Background()

	invID := id.NewInvoiceID()

	none, err := s.ListAttempts(ctx, invID)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("got %d attempts, want 0", len(none))
	}

	a1 := &deliver.Attempt{ID: id.NewAttemptID(), InvoiceID: invID, Recipient: "a@b.test", Succeeded: false, Error: "boom", At: time.Now().UTC()}
	a2 := &deliver.Attempt{ID: id.NewAttemptID(), InvoiceID: invID, Recipient: "a@b.test", Succeeded: true, At: time.Now().UTC()}
	if err := s.RecordAttempt(ctx, a1); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAttempt(ctx, a2); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListAttempts(ctx, invID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d attempts, want 2", len(got))
	}
	if got[0].Succeeded || !got[1].Succeeded {
		t.Error("attempts out of order")
	}
	if got[0].Error != "boom" {
		t.Errorf("error: got %q, want boom", got[0].Error)
	}
}

func TestClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Ping(ctx); !errors.Is(err, invoicer.ErrStoreClosed) {
		t.Errorf("Ping after close: expected ErrStoreClosed, got %v", err)
	}
	if _, err := s.NextInvoiceNumber(ctx); !errors.Is(err, invoicer.ErrStoreClosed) {
		t.Errorf("NextInvoiceNumber after close: expected ErrStoreClosed, got %v", err)
	}
}
