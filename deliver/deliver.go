// Package deliver sends rendered invoices to clients over a pluggable
// transport. The dispatcher validates the recipient before touching the
// transport, bounds every send with a timeout, and never retries on its
// own: each call is exactly one transport attempt, and the caller decides
// what a failure means.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
)

// Recipient errors, raised before the transport is touched.
var (
	ErrNoRecipient      = errors.New("deliver: invoice client has no email address")
	ErrInvalidRecipient = errors.New("deliver: invalid recipient email address")
)

// TransportError wraps a failure from the underlying transport. It is
// distinct from render and validation failures so callers can tell "the
// document could not be produced" apart from "the document could not be
// sent". Transport failures are the retryable kind, though retrying is
// the caller's decision.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("deliver: transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Attachment is a file carried by an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a fully assembled outgoing delivery, transport-agnostic.
type Message struct {
	To         string
	Subject    string
	TextBody   string
	HTMLBody   string
	Attachment Attachment
}

// Transport sends an assembled message. Implementations must honor
// context cancellation and return promptly when the deadline passes.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// Outcome reports a completed dispatch.
type Outcome struct {
	Recipient      string
	AttachmentName string
	SentAt         time.Time
}

// Attempt is the persisted record of one delivery try, successful or not.
// Failed sends are recorded too, so operators can see why an invoice
// never reached its client.
type Attempt struct {
	ID        id.AttemptID `json:"id" bson:"_id"`
	InvoiceID id.InvoiceID `json:"invoice_id" bson:"invoice_id"`
	Recipient string       `json:"recipient" bson:"recipient"`
	Succeeded bool         `json:"succeeded" bson:"succeeded"`
	Error     string       `json:"error,omitempty" bson:"error,omitempty"`
	At        time.Time    `json:"at" bson:"at"`
}

// Dispatcher assembles invoice messages and pushes them through a
// transport.
type Dispatcher struct {
	transport Transport
	timeout   time.Duration
	now       func() time.Time
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each transport send. Defaults to 30 seconds.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.timeout = d }
}

// WithClock overrides the dispatch timestamp source.
func WithClock(now func() time.Time) DispatcherOption {
	return func(dp *Dispatcher) { dp.now = now }
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, opts ...DispatcherOption) *Dispatcher {
	dp := &Dispatcher{
		transport: transport,
		timeout:   30 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(dp)
	}
	return dp
}

// Dispatch sends the rendered document to the invoice's client. The
// recipient address is validated first; the transport is never invoked
// for an invoice whose client cannot receive mail. Exactly one send is
// attempted.
func (dp *Dispatcher) Dispatch(ctx context.Context, inv *invoice.Invoice, document []byte) (*Outcome, error) {
	to := inv.Client.Email
	if to == "" {
		return nil, ErrNoRecipient
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	msg := &Message{
		To:         to,
		Subject:    fmt.Sprintf("Invoice %s", inv.Number),
		TextBody:   textBody(inv),
		HTMLBody:   htmlBody(inv),
		Attachment: Attachment{
			Filename:    inv.Number + ".pdf",
			ContentType: "application/pdf",
			Data:        document,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, dp.timeout)
	defer cancel()

	if err := dp.transport.Send(ctx, msg); err != nil {
		return nil, &TransportError{Err: err}
	}

	return &Outcome{
		Recipient:      to,
		AttachmentName: msg.Attachment.Filename,
		SentAt:         dp.now().UTC(),
	}, nil
}

func textBody(inv *invoice.Invoice) string {
	return fmt.Sprintf(
		"Dear %s,\n\nPlease find attached invoice %s for %s.\n\nThank you for your business.\n",
		inv.Client.Name, inv.Number, inv.Total.String(),
	)
}

func htmlBody(inv *invoice.Invoice) string {
	return fmt.Sprintf(
		"<p>Dear %s,</p><p>Please find attached invoice <strong>%s</strong> for <strong>%s</strong>.</p><p>Thank you for your business.</p>",
		inv.Client.Name, inv.Number, inv.Total.String(),
	)
}
