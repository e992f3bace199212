package extension

import "time"

// Config holds the Invoicer extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.invoicer" or "invoicer" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// NumberPrefix is the invoice number prefix (default: "INV").
	NumberPrefix string `json:"number_prefix" mapstructure:"number_prefix" yaml:"number_prefix"`

	// NumberWidth is the minimum number of counter digits (default: 5).
	NumberWidth int `json:"number_width" mapstructure:"number_width" yaml:"number_width"`

	// Currency is the default invoice currency (default: "USD").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// QueueSize is the background delivery queue capacity (default: 1000).
	QueueSize int `json:"queue_size" mapstructure:"queue_size" yaml:"queue_size"`

	// SendTimeout bounds each delivery, render to transport (default: 30s).
	SendTimeout time.Duration `json:"send_timeout" mapstructure:"send_timeout" yaml:"send_timeout"`

	// SMTP configures the email transport. When Host is empty no
	// dispatcher is constructed and send operations return an error.
	SMTP SMTPConfig `json:"smtp" mapstructure:"smtp" yaml:"smtp"`

	// Driver selects the store backend built from a grove.DB provided via
	// WithGroveDB: "postgres", "sqlite", or "mongo".
	Driver string `json:"driver" mapstructure:"driver" yaml:"driver"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string `json:"host" mapstructure:"host" yaml:"host"`
	Port     int    `json:"port" mapstructure:"port" yaml:"port"`
	Username string `json:"username" mapstructure:"username" yaml:"username"`
	Password string `json:"password" mapstructure:"password" yaml:"password"`
	From     string `json:"from" mapstructure:"from" yaml:"from"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		NumberPrefix: "INV",
		NumberWidth:  5,
		Currency:     "USD",
		QueueSize:    1000,
		SendTimeout:  30 * time.Second,
	}
}
