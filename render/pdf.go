// Package render turns an invoice into an immutable, paginated PDF
// document. Rendering is pure with respect to its input: the same invoice
// state always produces identical bytes, given a fixed clock (the only
// timestamp lives in the PDF metadata, never in page content, so golden
// tests simply pin the clock).
//
// The renderer displays the stored total; it never computes one. An
// invoice without a computed total or without items is rejected here
// rather than producing a degenerate document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/xraph/invoicer/invoice"
)

// Render precondition errors. Both indicate an upstream problem with the
// invoice data, not a transient fault: callers must not retry without
// fixing the source.
var (
	ErrNoItems    = errors.New("render: invoice has no line items")
	ErrTotalUnset = errors.New("render: invoice total has not been computed")
)

// Page geometry in millimeters (A4 portrait, 10mm margins).
const (
	pageWidth   = 190.0
	leftMargin  = 10.0
	topMargin   = 10.0
	pageBreakAt = 275.0
	rowHeight   = 7.0
)

// Item table column widths. Description gets the slack.
var colWidths = [6]float64{74, 20, 28, 14, 14, 40}

var colTitles = [6]string{"Description", "Qty", "Unit Price", "Tax", "Disc", "Line Total"}

// PDF renders invoices into fixed-layout PDF documents.
type PDF struct {
	now func() time.Time
}

// Option configures a PDF renderer.
type Option func(*PDF)

// WithClock overrides the clock used for the embedded document timestamp.
// Fix it to get byte-identical output across renders.
func WithClock(now func() time.Time) Option {
	return func(p *PDF) { p.now = now }
}

// NewPDF creates a PDF renderer.
func NewPDF(opts ...Option) *PDF {
	p := &PDF{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render lays the invoice out into PDF bytes. Item order is preserved;
// when items overflow a page the table continues on the next page with
// the header row repeated.
func (p *PDF) Render(inv *invoice.Invoice) ([]byte, error) {
	if len(inv.Items) == 0 {
		return nil, ErrNoItems
	}
	if !inv.Total.IsSet() {
		return nil, ErrTotalUnset
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	ts := p.now()
	pdf.SetCreationDate(ts)
	pdf.SetModificationDate(ts)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetMargins(leftMargin, topMargin, leftMargin)
	// Page breaks are driven manually so the table header can be repeated.
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Document header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(pageWidth, 12, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice details
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(pageWidth, 6, "Invoice Number: "+inv.Number, "", 1, "L", false, 0, "")
	pdf.CellFormat(pageWidth, 6, "Issue Date: "+inv.IssueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	if inv.DueDate != nil {
		pdf.CellFormat(pageWidth, 6, "Due Date: "+inv.DueDate.Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(pageWidth, 6, "Status: "+strings.ToUpper(string(inv.Status)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Client block; optional fields are omitted, never rendered blank.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pageWidth, 7, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(pageWidth, 6, tr(inv.Client.Name), "", 1, "L", false, 0, "")
	if inv.Client.Email != "" {
		pdf.CellFormat(pageWidth, 6, tr(inv.Client.Email), "", 1, "L", false, 0, "")
	}
	if inv.Client.Address != "" {
		pdf.CellFormat(pageWidth, 6, tr(inv.Client.Address), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table
	tableHeader(pdf)
	for i := range inv.Items {
		if pdf.GetY()+rowHeight > pageBreakAt {
			pdf.AddPage()
			tableHeader(pdf)
		}
		itemRow(pdf, tr, &inv.Items[i])
	}

	// Total line, visually distinct from item rows.
	if pdf.GetY()+rowHeight+2 > pageBreakAt {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 12)
	sum := colWidths[0] + colWidths[1] + colWidths[2] + colWidths[3] + colWidths[4]
	pdf.CellFormat(sum, rowHeight+2, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[5], rowHeight+2, tr(inv.Total.String()), "T", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, title := range colTitles {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(colWidths[i], rowHeight, title, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func itemRow(pdf *gofpdf.Fpdf, tr func(string) string, li *invoice.LineItem) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(colWidths[0], rowHeight, tr(li.Description), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], rowHeight, li.Quantity.String(), "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[2], rowHeight, tr(li.UnitPrice.String()), "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], rowHeight, li.TaxRate.String()+"%", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[4], rowHeight, li.DiscountRate.String()+"%", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[5], rowHeight, tr(li.LineTotal().String()), "", 1, "R", false, 0, "")
}
