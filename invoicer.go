package invoicer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/number"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/render"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/types"
)

// Renderer turns an invoice into a document. The PDF renderer in the
// render package is the default implementation.
type Renderer interface {
	Render(inv *invoice.Invoice) ([]byte, error)
}

// Invoicer is the main invoicing engine.
type Invoicer struct {
	store      store.Store
	plugins    *plugin.Registry
	logger     *slog.Logger
	renderer   Renderer
	dispatcher *deliver.Dispatcher

	// Background delivery worker
	sendQueue chan sendRequest
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	// Configuration
	numberFormat number.Format
	currency     string
	queueSize    int
	sendTimeout  time.Duration
}

type sendRequest struct {
	invoiceID id.InvoiceID
	ownerID   string
}

// New creates a new Invoicer instance.
func New(s store.Store, opts ...Option) *Invoicer {
	inv := &Invoicer{
		store:        s,
		plugins:      plugin.NewRegistry(),
		logger:       slog.Default(),
		renderer:     render.NewPDF(),
		stopChan:     make(chan struct{}),
		numberFormat: number.Default,
		currency:     "USD",
		queueSize:    1000,
		sendTimeout:  30 * time.Second,
	}

	for _, opt := range opts {
		opt(inv)
	}

	inv.sendQueue = make(chan sendRequest, inv.queueSize)

	return inv
}

// Option configures an Invoicer instance.
type Option func(*Invoicer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(inv *Invoicer) {
		inv.logger = logger
		inv.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(inv *Invoicer) {
		_ = inv.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithRenderer sets the document renderer.
func WithRenderer(r Renderer) Option {
	return func(inv *Invoicer) {
		inv.renderer = r
	}
}

// WithDispatcher sets the delivery dispatcher.
func WithDispatcher(d *deliver.Dispatcher) Option {
	return func(inv *Invoicer) {
		inv.dispatcher = d
	}
}

// WithNumberFormat sets the invoice number format.
func WithNumberFormat(f number.Format) Option {
	return func(inv *Invoicer) {
		inv.numberFormat = f
	}
}

// WithCurrency sets the default invoice currency.
func WithCurrency(currency string) Option {
	return func(inv *Invoicer) {
		inv.currency = currency
	}
}

// WithQueueSize sets the delivery queue capacity.
func WithQueueSize(n int) Option {
	return func(inv *Invoicer) {
		inv.queueSize = n
	}
}

// WithSendTimeout bounds each queued delivery, end to end.
func WithSendTimeout(d time.Duration) Option {
	return func(inv *Invoicer) {
		inv.sendTimeout = d
	}
}

// Start migrates the store, initializes plugins, and begins the delivery
// worker.
func (l *Invoicer) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.wg.Add(1)
	go l.deliveryWorker()

	l.logger.Info("invoicer started",
		"number_format", l.numberFormat.Apply(0),
		"currency", l.currency,
		"queue_size", l.queueSize,
	)

	return nil
}

// Stop drains the delivery worker and shuts down the Invoicer. Calling
// Stop more than once is safe; only the first call does the work.
func (l *Invoicer) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()

		l.plugins.EmitShutdown(context.Background())

		err = l.store.Close()
	})
	return err
}

// ──────────────────────────────────────────────────
// Invoice Management
// ──────────────────────────────────────────────────

// CreateInvoice validates, numbers, totals, and persists a new invoice.
// The invoice number is allocated atomically by the store: creation is
// the only place numbers are handed out, and a number once assigned is
// never reused even if the invoice is later deleted.
func (l *Invoicer) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if err := invoice.ValidateClient(inv.Client); err != nil {
		return err
	}
	if inv.Currency == "" {
		inv.Currency = l.currency
	}
	if err := invoice.ValidateItems(inv.Currency, inv.Items); err != nil {
		return err
	}
	if inv.Status == "" {
		inv.Status = invoice.StatusDraft
	}
	if !inv.Status.Valid() {
		return invoice.ErrInvalidStatus
	}

	inv.Entity = types.NewEntity()
	if inv.ID.IsNil() {
		inv.ID = id.NewInvoiceID()
	}
	for i := range inv.Items {
		if inv.Items[i].ID.IsNil() {
			inv.Items[i].ID = id.NewLineItemID()
		}
		inv.Items[i].InvoiceID = inv.ID
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now().UTC()
	}

	total, err := invoice.Total(inv.Currency, inv.Items)
	if err != nil {
		return err
	}
	inv.Total = total

	counter, err := l.store.NextInvoiceNumber(ctx)
	if err != nil {
		return err
	}
	inv.Number = l.numberFormat.Apply(counter)

	if err := l.store.CreateInvoice(ctx, inv); err != nil {
		return err
	}

	l.plugins.EmitNumberAllocated(ctx, inv.Number, counter)
	l.plugins.EmitInvoiceCreated(ctx, inv)

	l.logger.Info("invoice created",
		"invoice_id", inv.ID.String(),
		"number", inv.Number,
		"total", inv.Total.String(),
	)

	return nil
}

// GetInvoice retrieves an invoice by ID, scoped to its owner.
func (l *Invoicer) GetInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) (*invoice.Invoice, error) {
	return l.store.GetInvoice(ctx, invID, ownerID)
}

// ListInvoices lists an owner's invoices, newest first.
func (l *Invoicer) ListInvoices(ctx context.Context, ownerID string, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return l.store.ListInvoices(ctx, ownerID, opts)
}

// UpdateInvoice validates and persists changes to an existing invoice.
// The number, creation time, and lifecycle status are preserved from the
// stored record; the total is always recomputed from the updated items,
// never taken from the caller.
func (l *Invoicer) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	old, err := l.store.GetInvoice(ctx, inv.ID, inv.OwnerID)
	if err != nil {
		return err
	}

	if err := invoice.ValidateClient(inv.Client); err != nil {
		return err
	}
	if inv.Currency == "" {
		inv.Currency = old.Currency
	}
	if err := invoice.ValidateItems(inv.Currency, inv.Items); err != nil {
		return err
	}

	inv.Number = old.Number
	inv.Status = old.Status
	inv.SentAt = old.SentAt
	inv.CreatedAt = old.CreatedAt
	for i := range inv.Items {
		if inv.Items[i].ID.IsNil() {
			inv.Items[i].ID = id.NewLineItemID()
		}
		inv.Items[i].InvoiceID = inv.ID
	}

	total, err := invoice.Total(inv.Currency, inv.Items)
	if err != nil {
		return err
	}
	inv.Total = total
	inv.Touch()

	if err := l.store.UpdateInvoice(ctx, inv); err != nil {
		return err
	}

	l.plugins.EmitInvoiceUpdated(ctx, old, inv)
	return nil
}

// DeleteInvoice removes an invoice. Its number is never reissued.
func (l *Invoicer) DeleteInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) error {
	if err := l.store.DeleteInvoice(ctx, invID, ownerID); err != nil {
		return err
	}
	l.plugins.EmitInvoiceDeleted(ctx, invID.String())
	return nil
}

// RecomputeTotal recalculates an invoice's total from its stored items
// and persists the result. Useful after data repairs; normal update
// paths recompute automatically.
func (l *Invoicer) RecomputeTotal(ctx context.Context, invID id.InvoiceID, ownerID string) (types.Money, error) {
	inv, err := l.store.GetInvoice(ctx, invID, ownerID)
	if err != nil {
		return types.Money{}, err
	}

	total, err := invoice.Total(inv.Currency, inv.Items)
	if err != nil {
		return types.Money{}, err
	}
	if !total.Equal(inv.Total) {
		inv.Total = total
		inv.Touch()
		if err := l.store.UpdateInvoice(ctx, inv); err != nil {
			return types.Money{}, err
		}
	}
	return total, nil
}

// MarkPaid records payment of an invoice.
func (l *Invoicer) MarkPaid(ctx context.Context, invID id.InvoiceID, ownerID string) error {
	inv, err := l.store.GetInvoice(ctx, invID, ownerID)
	if err != nil {
		return err
	}
	if inv.Status == invoice.StatusPaid {
		return ErrInvoicePaid
	}

	if err := l.store.MarkInvoicePaid(ctx, invID, time.Now().UTC()); err != nil {
		return err
	}

	l.plugins.EmitInvoicePaid(ctx, inv)
	return nil
}

// ──────────────────────────────────────────────────
// Rendering
// ──────────────────────────────────────────────────

// RenderDocument produces the invoice's PDF document from its current
// stored state.
func (l *Invoicer) RenderDocument(ctx context.Context, invID id.InvoiceID, ownerID string) ([]byte, error) {
	inv, err := l.store.GetInvoice(ctx, invID, ownerID)
	if err != nil {
		return nil, err
	}

	doc, err := l.renderer.Render(inv)
	if err != nil {
		return nil, err
	}

	l.plugins.EmitInvoiceRendered(ctx, inv, len(doc))
	return doc, nil
}

// ──────────────────────────────────────────────────
// Delivery
// ──────────────────────────────────────────────────

// SendInvoice renders the invoice's current state and dispatches it to
// the client in one synchronous pass. Every attempt, successful or not,
// is recorded. On the first successful delivery a draft transitions to
// sent; redelivery of an already-sent invoice leaves the status alone.
func (l *Invoicer) SendInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) (*deliver.Outcome, error) {
	if l.dispatcher == nil {
		return nil, ErrNoDispatcher
	}

	inv, err := l.store.GetInvoice(ctx, invID, ownerID)
	if err != nil {
		return nil, err
	}

	doc, err := l.renderer.Render(inv)
	if err != nil {
		return nil, err
	}

	outcome, err := l.dispatcher.Dispatch(ctx, inv, doc)
	if err != nil {
		l.recordAttempt(ctx, inv, err)
		l.plugins.EmitDeliveryFailed(ctx, inv, err)
		l.logger.Warn("invoice delivery failed",
			"invoice_id", inv.ID.String(),
			"number", inv.Number,
			"error", err,
		)
		return nil, err
	}

	l.recordAttempt(ctx, inv, nil)

	if inv.Status == invoice.StatusDraft {
		if err := l.store.MarkInvoiceSent(ctx, invID, outcome.SentAt); err != nil {
			return nil, err
		}
	}

	l.plugins.EmitInvoiceDelivered(ctx, inv, outcome.Recipient)
	l.logger.Info("invoice delivered",
		"invoice_id", inv.ID.String(),
		"number", inv.Number,
		"recipient", outcome.Recipient,
	)

	return outcome, nil
}

// QueueSend enqueues an invoice for background delivery. It returns
// immediately; failures surface through recorded attempts and the
// OnDeliveryFailed hook, not through this call.
func (l *Invoicer) QueueSend(invID id.InvoiceID, ownerID string) error {
	select {
	case l.sendQueue <- sendRequest{invoiceID: invID, ownerID: ownerID}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ListAttempts returns the delivery history of an invoice, oldest first.
func (l *Invoicer) ListAttempts(ctx context.Context, invID id.InvoiceID) ([]*deliver.Attempt, error) {
	return l.store.ListAttempts(ctx, invID)
}

// deliveryWorker drains the send queue until Stop.
func (l *Invoicer) deliveryWorker() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case req := <-l.sendQueue:
					l.processSend(req)
				default:
					return
				}
			}

		case req := <-l.sendQueue:
			l.processSend(req)
		}
	}
}

func (l *Invoicer) processSend(req sendRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), l.sendTimeout)
	defer cancel()

	if _, err := l.SendInvoice(ctx, req.invoiceID, req.ownerID); err != nil {
		l.logger.Warn("queued delivery failed",
			"invoice_id", req.invoiceID.String(),
			"error", err,
		)
	}
}

// recordAttempt persists one delivery attempt. Recording is best-effort:
// a store failure here must not mask the delivery result.
func (l *Invoicer) recordAttempt(ctx context.Context, inv *invoice.Invoice, sendErr error) {
	a := &deliver.Attempt{
		ID:        id.NewAttemptID(),
		InvoiceID: inv.ID,
		Recipient: inv.Client.Email,
		Succeeded: sendErr == nil,
		At:        time.Now().UTC(),
	}
	if sendErr != nil {
		a.Error = sendErr.Error()
	}

	// The send context may already be expired (transport timeouts land
	// here), so the record gets a detached context of its own.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := l.store.RecordAttempt(rctx, a); err != nil {
		l.logger.Error("failed to record delivery attempt",
			"invoice_id", inv.ID.String(),
			"error", err,
		)
	}
}
