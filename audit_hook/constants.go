package audithook

// Action constants for audit events.
const (
	// Invoice actions
	ActionInvoiceCreated = "invoice.created"
	ActionInvoiceUpdated = "invoice.updated"
	ActionInvoiceDeleted = "invoice.deleted"
	ActionInvoicePaid    = "invoice.paid"

	// Numbering actions
	ActionNumberAllocated = "number.allocated"

	// Rendering actions
	ActionInvoiceRendered = "invoice.rendered"

	// Delivery actions
	ActionInvoiceDelivered = "invoice.delivered"
	ActionDeliveryFailed   = "delivery.failed"
)

// Resource constants for audit events.
const (
	ResourceInvoice  = "invoice"
	ResourceSequence = "sequence"
	ResourceDocument = "document"
	ResourceDelivery = "delivery"
)

// Category constants for audit events.
const (
	CategoryBilling  = "billing"
	CategoryDocument = "document"
	CategoryDelivery = "delivery"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
