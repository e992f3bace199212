// Package invoicer provides a composable invoicing engine for Go applications.
//
// Invoicer is designed as a library, not a service. Import it directly into
// your Go application and wire it to your own storage and mail settings. It
// provides:
//
//   - Atomic, gap-tolerant invoice numbering ("INV-00001") that never
//     repeats or goes backwards, even under concurrent creation
//   - Exact decimal monetary computation with per-line tax and discount
//   - Deterministic PDF rendering: the same invoice always produces the
//     same bytes
//   - Email delivery with per-attempt history and a background send queue
//   - A draft / sent / paid / overdue lifecycle driven by delivery and
//     payment events
//
// # Quick Start
//
// Create an invoicer instance with your preferred store:
//
//	import (
//	    "github.com/xraph/invoicer"
//	    "github.com/xraph/invoicer/deliver"
//	    "github.com/xraph/invoicer/store/postgres"
//	)
//
//	store := postgres.New(db)
//
//	transport, err := deliver.NewSMTPTransport(deliver.SMTPConfig{
//	    Host: "smtp.example.com",
//	    Port: 587,
//	    From: "billing@example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inv := invoicer.New(store,
//	    invoicer.WithDispatcher(deliver.NewDispatcher(transport)),
//	)
//
//	// Start the invoicer (migrates the store, begins the delivery worker)
//	if err := inv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer inv.Stop()
//
// # Core Concepts
//
// Invoices carry a client snapshot and ordered line items. Creation
// allocates the number and computes the total:
//
//	err := inv.CreateInvoice(ctx, &invoice.Invoice{
//	    OwnerID: userID,
//	    Client:  invoice.Client{Name: "Acme Corp", Email: "ap@acme.test"},
//	    Items: []invoice.LineItem{{
//	        Description: "Consulting",
//	        Quantity:    decimal.NewFromInt(10),
//	        UnitPrice:   types.USD("150.00"),
//	        TaxRate:     decimal.NewFromInt(20),
//	    }},
//	})
//
// Sending renders the current state to PDF and emails it; the first
// successful delivery moves a draft to sent:
//
//	outcome, err := inv.SendInvoice(ctx, invoiceID, userID)
//
// # Monetary Precision
//
// All monetary calculations use arbitrary-precision decimals. Line totals
// are computed exactly and summed without intermediate rounding; rounding
// happens only when an amount is formatted for display.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	inv_01h455vb4pex5vsknk084sn02q  // Invoice ID
//	li_01h2xcejqtf2nbrexx3vqjhp41   // Line item ID
//	dlv_01h2xcejqtf2nbrexx3vqjhp41  // Delivery attempt ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package invoicer
