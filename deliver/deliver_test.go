package deliver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

// fakeTransport records the last message and returns a scripted error.
type fakeTransport struct {
	sent []*Message
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg *Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func testInvoice(email string) *invoice.Invoice {
	return &invoice.Invoice{
		Number: "INV-00007",
		Status: invoice.StatusDraft,
		Client: invoice.Client{
			Name:  "Acme Corp",
			Email: email,
		},
		Total: types.USD("105.00"),
	}
}

func TestDispatch(t *testing.T) {
	ft := &fakeTransport{}
	dp := NewDispatcher(ft, WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	}))

	doc := []byte("%PDF-fake")
	outcome, err := dp.Dispatch(context.Background(), testInvoice("billing@acme.test"), doc)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(ft.sent) != 1 {
		t.Fatalf("transport called %d times, want 1", len(ft.sent))
	}
	msg := ft.sent[0]
	if msg.To != "billing@acme.test" {
		t.Errorf("to: got %q", msg.To)
	}
	if msg.Subject != "Invoice INV-00007" {
		t.Errorf("subject: got %q, want %q", msg.Subject, "Invoice INV-00007")
	}
	if msg.Attachment.Filename != "INV-00007.pdf" {
		t.Errorf("attachment: got %q, want INV-00007.pdf", msg.Attachment.Filename)
	}
	if msg.Attachment.ContentType != "application/pdf" {
		t.Errorf("content type: got %q", msg.Attachment.ContentType)
	}
	if string(msg.Attachment.Data) != string(doc) {
		t.Error("attachment data does not match rendered document")
	}

	if outcome.Recipient != "billing@acme.test" {
		t.Errorf("outcome recipient: got %q", outcome.Recipient)
	}
	if outcome.AttachmentName != "INV-00007.pdf" {
		t.Errorf("outcome attachment: got %q", outcome.AttachmentName)
	}
	if outcome.SentAt.IsZero() {
		t.Error("outcome sent_at is zero")
	}
}

func TestDispatchValidatesRecipientFirst(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"Empty", "", ErrNoRecipient},
		{"Malformed", "not-an-email", ErrInvalidRecipient},
		{"MissingDomain", "user@", ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{}
			dp := NewDispatcher(ft)

			_, err := dp.Dispatch(context.Background(), testInvoice(tt.email), []byte("doc"))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			// The transport must never see an invalid recipient.
			if len(ft.sent) != 0 {
				t.Errorf("transport called %d times, want 0", len(ft.sent))
			}
		})
	}
}

func TestDispatchWrapsTransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	ft := &fakeTransport{err: cause}
	dp := NewDispatcher(ft)

	_, err := dp.Dispatch(context.Background(), testInvoice("billing@acme.test"), []byte("doc"))

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to the transport's error")
	}

	// Exactly one attempt; the dispatcher never retries on its own.
	if len(ft.sent) != 1 {
		t.Errorf("transport called %d times, want 1", len(ft.sent))
	}
}

func TestDispatchTimeout(t *testing.T) {
	ft := &slowTransport{delay: 200 * time.Millisecond}
	dp := NewDispatcher(ft, WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := dp.Dispatch(context.Background(), testInvoice("billing@acme.test"), []byte("doc"))
	elapsed := time.Since(start)

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if elapsed >= 200*time.Millisecond {
		t.Errorf("dispatch was not bounded by the timeout: took %v", elapsed)
	}
}

// slowTransport blocks until the context deadline.
type slowTransport struct {
	delay time.Duration
}

func (s *slowTransport) Send(ctx context.Context, _ *Message) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
