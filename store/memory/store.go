// Package memory provides an in-memory store, suitable for tests and
// single-process setups. The invoice counter resets with the process, so
// durable deployments should use a database-backed store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/invoicer"
	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
)

type Store struct {
	mu sync.RWMutex

	// Invoice sequence counter
	counter int64

	// Invoice storage
	invoices map[string]*invoice.Invoice

	// Delivery attempt storage
	attempts map[string][]*deliver.Attempt

	closed bool
}

func New() *Store {
	return &Store{
		invoices: make(map[string]*invoice.Invoice),
		attempts: make(map[string][]*deliver.Attempt),
	}
}

// cloneInvoice deep-copies an invoice so readers and the store never
// share memory. Line items, money amounts, and rates are value types;
// only the slice and the time pointers need fresh allocations.
func cloneInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	c.Items = append([]invoice.LineItem(nil), inv.Items...)
	if inv.DueDate != nil {
		d := *inv.DueDate
		c.DueDate = &d
	}
	if inv.SentAt != nil {
		s := *inv.SentAt
		c.SentAt = &s
	}
	return &c
}

// Sequence implementation

func (s *Store) NextInvoiceNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, invoicer.ErrStoreClosed
	}
	s.counter++
	return s.counter, nil
}

// Invoice Store implementation

func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID.String()]; exists {
		return invoicer.ErrAlreadyExists
	}
	s.invoices[inv.ID.String()] = cloneInvoice(inv)
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invID id.InvoiceID, ownerID string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.invoices[invID.String()]; ok && inv.OwnerID == ownerID {
		return cloneInvoice(inv), nil
	}
	return nil, invoicer.ErrInvoiceNotFound
}

func (s *Store) ListInvoices(_ context.Context, ownerID string, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if inv.OwnerID == ownerID {
			if opts.Status == "" || inv.Status == opts.Status {
				result = append(result, cloneInvoice(inv))
			}
		}
	}

	// Newest first, matching the database backends
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID.String()]; !exists {
		return invoicer.ErrInvoiceNotFound
	}
	s.invoices[inv.ID.String()] = cloneInvoice(inv)
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, invID id.InvoiceID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv, exists := s.invoices[invID.String()]; !exists || inv.OwnerID != ownerID {
		return invoicer.ErrInvoiceNotFound
	}
	delete(s.invoices, invID.String())
	return nil
}

func (s *Store) MarkInvoiceSent(_ context.Context, invID id.InvoiceID, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv, exists := s.invoices[invID.String()]; exists {
		inv.Status = invoice.StatusSent
		inv.SentAt = &sentAt
		inv.Touch()
		return nil
	}
	return invoicer.ErrInvoiceNotFound
}

func (s *Store) MarkInvoicePaid(_ context.Context, invID id.InvoiceID, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv, exists := s.invoices[invID.String()]; exists {
		inv.Status = invoice.StatusPaid
		inv.UpdatedAt = paidAt
		return nil
	}
	return invoicer.ErrInvoiceNotFound
}

// Delivery attempt Store implementation

func (s *Store) RecordAttempt(_ context.Context, a *deliver.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := a.InvoiceID.String()
	s.attempts[key] = append(s.attempts[key], a)
	return nil
}

func (s *Store) ListAttempts(_ context.Context, invID id.InvoiceID) ([]*deliver.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := s.attempts[invID.String()]
	result := make([]*deliver.Attempt, len(attempts))
	copy(result, attempts)
	return result, nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return invoicer.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
