package invoice

import (
	"context"
	"time"

	"github.com/xraph/invoicer/id"
)

// Store is the invoice-facing slice of the unified storage interface.
// All reads and writes are scoped to an owning account.
type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invID id.InvoiceID, ownerID string) (*Invoice, error)
	List(ctx context.Context, ownerID string, opts ListOpts) ([]*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invID id.InvoiceID, ownerID string) error
	MarkSent(ctx context.Context, invID id.InvoiceID, sentAt time.Time) error
	MarkPaid(ctx context.Context, invID id.InvoiceID, paidAt time.Time) error
}
