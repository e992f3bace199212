package mongo

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

// ==================== Invoice models ====================

// Monetary amounts and rates are stored as decimal strings so the exact
// values survive the round trip.
type invoiceModel struct {
	grove.BaseModel `grove:"table:invoicer_invoices"`

	ID            string          `grove:"id,pk"          bson:"_id"`
	OwnerID       string          `grove:"owner_id"       bson:"owner_id"`
	Number        string          `grove:"number"         bson:"number"`
	Status        string          `grove:"status"         bson:"status"`
	Currency      string          `grove:"currency"       bson:"currency"`
	ClientName    string          `grove:"client_name"    bson:"client_name"`
	ClientEmail   string          `grove:"client_email"   bson:"client_email"`
	ClientAddress string          `grove:"client_address" bson:"client_address"`
	Items         []lineItemModel `grove:"items"          bson:"items"`
	TotalAmount   string          `grove:"total_amount"   bson:"total_amount"`
	TotalCurrency string          `grove:"total_currency" bson:"total_currency"`
	IssueDate     time.Time       `grove:"issue_date"     bson:"issue_date"`
	DueDate       *time.Time      `grove:"due_date"       bson:"due_date,omitempty"`
	SentAt        *time.Time      `grove:"sent_at"        bson:"sent_at,omitempty"`
	CreatedAt     time.Time       `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"     bson:"updated_at"`
}

type lineItemModel struct {
	ID                string `bson:"id"`
	Description       string `bson:"description"`
	Quantity          string `bson:"quantity"`
	UnitPriceAmount   string `bson:"unit_price_amount"`
	UnitPriceCurrency string `bson:"unit_price_currency"`
	TaxRate           string `bson:"tax_rate"`
	DiscountRate      string `bson:"discount_rate"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	items := make([]lineItemModel, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = lineItemModel{
			ID:                li.ID.String(),
			Description:       li.Description,
			Quantity:          li.Quantity.String(),
			UnitPriceAmount:   li.UnitPrice.Amount.String(),
			UnitPriceCurrency: li.UnitPrice.Currency,
			TaxRate:           li.TaxRate.String(),
			DiscountRate:      li.DiscountRate.String(),
		}
	}

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

	items := make([]invoice.LineItem, len(m.Items))
	for i, lm := range m.Items {
		li, err := fromLineItemModel(invID, &lm)
		if err != nil {
			return nil, err
		}
		items[i] = *li
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

func fromLineItemModel(invID id.InvoiceID, m *lineItemModel) (*invoice.LineItem, error) {
	liID, err := id.ParseLineItemID(m.ID)
	if err != nil {
		return nil, err
	}
	qty, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(m.UnitPriceAmount)
	if err != nil {
		return nil, err
	}
	taxRate, err := decimal.NewFromString(m.TaxRate)
	if err != nil {
		return nil, err
	}
	discountRate, err := decimal.NewFromString(m.DiscountRate)
	if err != nil {
		return nil, err
	}

	return &invoice.LineItem{
		ID:           liID,
		InvoiceID:    invID,
		Description:  m.Description,
		Quantity:     qty,
		UnitPrice:    types.Money{Amount: price, Currency: m.UnitPriceCurrency},
		TaxRate:      taxRate,
		DiscountRate: discountRate,
	}, nil
}

// ==================== Delivery attempt models ====================

type attemptModel struct {
	grove.BaseModel `grove:"table:invoicer_delivery_attempts"`

	ID        string    `grove:"id,pk"      bson:"_id"`
	InvoiceID string    `grove:"invoice_id" bson:"invoice_id"`
	Recipient string    `grove:"recipient"  bson:"recipient"`
	Succeeded bool      `grove:"succeeded"  bson:"succeeded"`
	Error     string    `grove:"error"      bson:"error,omitempty"`
	At        time.Time `grove:"at"         bson:"at"`
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
