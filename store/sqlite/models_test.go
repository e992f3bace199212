package sqlite

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/invoicer/id"
	"github.com/xraph/invoicer/invoice"
	"github.com/xraph/invoicer/types"
)

func storedInvoice() *invoice.Invoice {
	invID := id.NewInvoiceID()
	due := time.Now().UTC().Add(14 * 24 * time.Hour)
	return &invoice.Invoice{
		Entity:   types.NewEntity(),
		ID:       invID,
		OwnerID:  "owner_1",
		Number:   "INV-00042",
		Status:   invoice.StatusDraft,
		Currency: "usd",
		Client:   invoice.Client{Name: "Acme Corp", Email: "billing@acme.test"},
		Items: []invoice.LineItem{{
			ID:           id.NewLineItemID(),
			InvoiceID:    invID,
			Description:  "Consulting",
			Quantity:     decimal.RequireFromString("2.5"),
			UnitPrice:    types.USD("150.00"),
			TaxRate:      decimal.NewFromInt(20),
			DiscountRate: decimal.NewFromInt(10),
		}},
		Total:     types.USD("412.5"),
		IssueDate: time.Now().UTC(),
		DueDate:   &due,
	}
}

func TestInvoiceModelRoundTrip(t *testing.T) {
	inv := storedInvoice()

	got, err := fromInvoiceModel(toInvoiceModel(inv))
	if err != nil {
		t.Fatalf("fromInvoiceModel: %v", err)
	}

	if got.ID != inv.ID || got.Number != inv.Number || got.Status != inv.Status {
		t.Errorf("identity fields changed: %+v", got)
	}
	if !got.Total.Equal(inv.Total) {
		t.Errorf("total: got %s, want %s", got.Total.String(), inv.Total.String())
	}
	if len(got.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(got.Items))
	}
	if !got.Items[0].Quantity.Equal(inv.Items[0].Quantity) {
		t.Errorf("quantity: got %s, want %s", got.Items[0].Quantity, inv.Items[0].Quantity)
	}
	if !got.Items[0].UnitPrice.Equal(inv.Items[0].UnitPrice) {
		t.Errorf("unit price: got %s", got.Items[0].UnitPrice.String())
	}
}

func TestFromInvoiceModelCorruptItems(t *testing.T) {
	m := toInvoiceModel(storedInvoice())
	m.Items = json.RawMessage(`{"not": "a list"`)

	if _, err := fromInvoiceModel(m); err == nil {
		t.Fatal("a corrupt items column must not decode into an itemless invoice")
	}
}
