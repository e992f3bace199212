package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

// ==================== Sequence models ====================

// sequenceName is the single row key for the invoice counter.
const sequenceName = "invoice_number"

// ==================== Invoice models ====================

// Monetary amounts are stored as decimal strings, not floats, so the
// exact values survive the round trip.
type invoiceModel struct {
	grove.BaseModel `grove:"table:invoicer_invoices"`

	ID            string          `grove:"id,pk"`
	OwnerID       string          `grove:"owner_id"`
	Number        string          `grove:"number"`
	Status        string          `grove:"status"`
	Currency      string          `grove:"currency"`
	ClientName    string          `grove:"client_name"`
	ClientEmail   string          `grove:"client_email"`
	ClientAddress string          `grove:"client_address"`
	Items         json.RawMessage `grove:"items,type:jsonb"`
	TotalAmount   string          `grove:"total_amount"`
	TotalCurrency string          `grove:"total_currency"`
	IssueDate     time.Time       `grove:"issue_date"`
	DueDate       *time.Time      `grove:"due_date"`
	SentAt        *time.Time      `grove:"sent_at"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	items, _ := json.Marshal(inv.Items) //nolint:errcheck // best-effort

	return &invoiceModel{
		ID:            inv.ID.String(),
		OwnerID:       inv.OwnerID,
		Number:        inv.Number,
		Status:        string(inv.Status),
		Currency:      inv.Currency,
		ClientName:    inv.Client.Name,
		ClientEmail:   inv.Client.Email,
		ClientAddress: inv.Client.Address,
		Items:         items,
		TotalAmount:   inv.Total.Amount.String(),
		TotalCurrency: inv.Total.Currency,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		SentAt:        inv.SentAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) (*invoice.Invoice, error) {
	invID, err := id.ParseInvoiceID(m.ID)
	if err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(m.TotalAmount)
	if err != nil {
		return nil, err
	}

	var items []invoice.LineItem
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, fmt.Errorf("invoicer/postgres: decode items for %s: %w", m.ID, err)
		}
	}

	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       invID,
		OwnerID:  m.OwnerID,
		Number:   m.Number,
		Status:   invoice.Status(m.Status),
		Currency: m.Currency,
		Client: invoice.Client{
			Name:    m.ClientName,
			Email:   m.ClientEmail,
			Address: m.ClientAddress,
		},
		Items:     items,
		Total:     types.Money{Amount: total, Currency: m.TotalCurrency},
		IssueDate: m.IssueDate,
		DueDate:   m.DueDate,
		SentAt:    m.SentAt,
	}, nil
}

// ==================== Delivery attempt models ====================

type attemptModel struct {
	grove.BaseModel `grove:"table:invoicer_delivery_attempts"`

	ID        string    `grove:"id,pk"`
	InvoiceID string    `grove:"invoice_id"`
	Recipient string    `grove:"recipient"`
	Succeeded bool      `grove:"succeeded"`
	Error     string    `grove:"error"`
	At        time.Time `grove:"at"`
}

func toAttemptModel(a *deliver.Attempt) *attemptModel {
	return &attemptModel{
		ID:        a.ID.String(),
		InvoiceID: a.InvoiceID.String(),
		Recipient: a.Recipient,
		Succeeded: a.Succeeded,
		Error:     a.Error,
		At:        a.At,
	}
}

func fromAttemptModel(m *attemptModel) (*deliver.Attempt, error) {
	attID, err := id.ParseAttemptID(m.ID)
	if err != nil {
		return nil, err
	}
	invID, err := id.ParseInvoiceID(m.InvoiceID)
	if err != nil {
		return nil, err
	}

	return &deliver.Attempt{
		ID:        attID,
		InvoiceID: invID,
		Recipient: m.Recipient,
		Succeeded: m.Succeeded,
		Error:     m.Error,
		At:        m.At,
	}, nil
}
