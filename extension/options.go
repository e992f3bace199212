package extension

import (
	"time"

	"github.com/xraph/grove"

	invoicer "github.com/xraph/invoicer"
	"github.com/xraph/invoicer/plugin"
	"github.com/xraph/invoicer/store"
)

// Option configures the Invoicer Forge extension.
type Option func(*Extension)

// WithStore sets the store for the invoicing engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithGroveDB sets the grove database the store is built from. The
// backend is selected by the Driver config field ("postgres", "sqlite",
// or "mongo").
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.groveDB = db
	}
}

// WithInvoicerOption passes an invoicer.Option through to the underlying engine.
func WithInvoicerOption(opt invoicer.Option) Option {
	return func(e *Extension) {
		e.invoicerOpts = append(e.invoicerOpts, opt)
	}
}

// WithPlugin registers an invoicer plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.invoicerOpts = append(e.invoicerOpts, invoicer.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithNumberFormat sets the invoice number prefix and minimum width.
func WithNumberFormat(prefix string, width int) Option {
	return func(e *Extension) {
		e.config.NumberPrefix = prefix
		e.config.NumberWidth = width
	}
}

// WithCurrency sets the default invoice currency.
func WithCurrency(currency string) Option {
	return func(e *Extension) { e.config.Currency = currency }
}

// WithQueueSize sets the background delivery queue capacity.
func WithQueueSize(n int) Option {
	return func(e *Extension) { e.config.QueueSize = n }
}

// WithSendTimeout bounds each delivery, render to transport.
func WithSendTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.SendTimeout = d }
}

// WithSMTP configures the email transport.
func WithSMTP(cfg SMTPConfig) Option {
	return func(e *Extension) { e.config.SMTP = cfg }
}

// WithDriver selects the store backend built from the grove database.
func WithDriver(driver string) Option {
	return func(e *Extension) { e.config.Driver = driver }
}
