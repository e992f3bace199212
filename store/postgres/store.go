// Package postgres implements the Invoicer store on PostgreSQL via the
// Grove ORM.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	invoicer "github.com/xraph/invoicer"
	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	invoicerstore "github.com/xraph/invoicer/store"
)

// compile-time interface check
var _ invoicerstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("invoicer/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("invoicer/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Sequence Store ====================

// NextInvoiceNumber increments the counter in a single upsert statement.
// The database serializes concurrent calls, so no two callers ever see
// the same value and the counter survives restarts.
func (s *Store) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var value int64
	err := s.pg.NewRaw(`
		INSERT INTO invoicer_sequence (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = invoicer_sequence.value + 1
		RETURNING value
	`, sequenceName).Scan(ctx, &value)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", invoicer.ErrAllocationFailed, err)
	}
	return value, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = $1", invID.String()).
		Where("owner_id = $2", ownerID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(m)
}

func (s *Store) ListInvoices(ctx context.Context, ownerID string, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.pg.NewSelect(&models).Where("owner_id = $1", ownerID)

	argIdx := 1
	if opts.Status != "" {
		argIdx++
		q = q.Where(fmt.Sprintf("status = $%d", argIdx), string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		inv, err := fromInvoiceModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = inv
	}
	return result, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) error {
	res, err := s.pg.NewDelete((*invoiceModel)(nil)).
		Where("id = $1", invID.String()).
		Where("owner_id = $2", ownerID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) MarkInvoiceSent(ctx context.Context, invID id.InvoiceID, sentAt time.Time) error {
	t := now()
	res, err := s.pg.NewUpdate((*invoiceModel)(nil)).
		Set("status = $1", string(invoice.StatusSent)).
		Set("sent_at = $2", sentAt).
		Set("updated_at = $3", t).
		Where("id = $4", invID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) MarkInvoicePaid(ctx context.Context, invID id.InvoiceID, paidAt time.Time) error {
	res, err := s.pg.NewUpdate((*invoiceModel)(nil)).
		Set("status = $1", string(invoice.StatusPaid)).
		Set("updated_at = $2", paidAt).
		Where("id = $3", invID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Delivery attempt Store ====================

func (s *Store) RecordAttempt(ctx context.Context, a *deliver.Attempt) error {
	m := toAttemptModel(a)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListAttempts(ctx context.Context, invID id.InvoiceID) ([]*deliver.Attempt, error) {
	var models []attemptModel
	err := s.pg.NewSelect(&models).
		Where("invoice_id = $1", invID.String()).
		OrderExpr("at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*deliver.Attempt, len(models))
	for i := range models {
		a, err := fromAttemptModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
