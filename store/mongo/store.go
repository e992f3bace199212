// Package mongo implements the Invoicer store on MongoDB via the Grove
// ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	invoicer "github.com/xraph/invoicer"
	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	invoicerstore "github.com/xraph/invoicer/store"
)

// Collection name constants.
const (
	colSequence = "invoicer_sequence"
	colInvoices = "invoicer_invoices"
	colAttempts = "invoicer_delivery_attempts"
)

// sequenceName is the single document key for the invoice counter.
const sequenceName = "invoice_number"

// compile-time interface check
var _ invoicerstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all invoicer collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("invoicer/mongo: migrate %s indexes: %w", col, err)
		}
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

// NextInvoiceNumber increments the counter document with an atomic $inc
// upsert. The server serializes concurrent increments, so no two callers
// ever see the same value and the counter survives restarts.
func (s *Store) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.mdb.Collection(colSequence).FindOneAndUpdate(ctx,
		bson.M{"_id": sequenceName},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", invoicer.ErrAllocationFailed, err)
	}
	return doc.Value, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": invID.String(), "owner_id": ownerID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, invoicer.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoicer/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m)
}

func (s *Store) ListInvoices(ctx context.Context, ownerID string, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel

	filter := bson.M{"owner_id": ownerID}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("invoicer/mongo: list invoices: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: update invoice: %w", err)
	}
	if res.MatchedCount() == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, invID id.InvoiceID, ownerID string) error {
	res, err := s.mdb.NewDelete((*invoiceModel)(nil)).
		Filter(bson.M{"_id": invID.String(), "owner_id": ownerID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: delete invoice: %w", err)
	}
	if res.DeletedCount() == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) MarkInvoiceSent(ctx context.Context, invID id.InvoiceID, sentAt time.Time) error {
	t := now()
	res, err := s.mdb.NewUpdate((*invoiceModel)(nil)).
		Filter(bson.M{"_id": invID.String()}).
		Set("status", string(invoice.StatusSent)).
		Set("sent_at", sentAt).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: mark invoice sent: %w", err)
	}
	if res.MatchedCount() == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) MarkInvoicePaid(ctx context.Context, invID id.InvoiceID, paidAt time.Time) error {
	res, err := s.mdb.NewUpdate((*invoiceModel)(nil)).
		Filter(bson.M{"_id": invID.String()}).
		Set("status", string(invoice.StatusPaid)).
		Set("updated_at", paidAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: mark invoice paid: %w", err)
	}
	if res.MatchedCount() == 0 {
		return invoicer.ErrInvoiceNotFound
	}
	return nil
}

// ==================== Delivery attempt Store ====================

func (s *Store) RecordAttempt(ctx context.Context, a *deliver.Attempt) error {
	m := toAttemptModel(a)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("invoicer/mongo: record attempt: %w", err)
	}
	return nil
}

func (s *Store) ListAttempts(ctx context.Context, invID id.InvoiceID) ([]*deliver.Attempt, error) {
	var models []attemptModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"invoice_id": invID.String()}).
		Sort(bson.D{{Key: "at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoicer/mongo: list attempts: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all invoicer collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colInvoices: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		colAttempts: {
			{Keys: bson.D{{Key: "invoice_id", Value: 1}, {Key: "at", Value: 1}}},
		},
		colSequence: {},
	}
}
