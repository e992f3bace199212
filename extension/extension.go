// Package extension provides the Forge extension adapter for Invoicer.
//
// It implements the forge.Extension interface to integrate Invoicer
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.invoicer" or
// "invoicer" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/vessel"

	invoicer "github.com/xraph/invoicer"
	"github.com/xraph/invoicer/deliver"
	"github.com/xraph/invoicer/number"
	"github.com/xraph/invoicer/store"
	"github.com/xraph/invoicer/store/memory"
	"github.com/xraph/invoicer/store/mongo"
	"github.com/xraph/invoicer/store/postgres"
	"github.com/xraph/invoicer/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "invoicer"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Composable invoicing engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Invoicer as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config       Config
	engine       *invoicer.Invoicer
	store        store.Store
	groveDB      *grove.DB
	invoicerOpts []invoicer.Option
}

// New creates a new Invoicer Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Invoicer instance.
// This is nil until Register is called.
func (e *Extension) Engine() *invoicer.Invoicer { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the invoicing engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.resolveStore(); err != nil {
		return err
	}

	opts, err := e.buildInvoicerOpts()
	if err != nil {
		return err
	}

	eng := invoicer.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*invoicer.Invoicer, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("invoicer: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("invoicer: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolveStore selects the store backend: an explicitly provided store
// wins, then a grove database with a configured driver, then the
// in-memory fallback.
func (e *Extension) resolveStore() error {
	if e.store != nil {
		return nil
	}

	if e.groveDB != nil {
		switch e.config.Driver {
		case "postgres":
			e.store = postgres.New(e.groveDB)
		case "sqlite":
			e.store = sqlite.New(e.groveDB)
		case "mongo":
			e.store = mongo.New(e.groveDB)
		default:
			return fmt.Errorf("invoicer: unknown store driver %q", e.config.Driver)
		}
		return nil
	}

	e.store = memory.New()
	return nil
}

// buildInvoicerOpts constructs invoicer.Option values from the resolved config.
func (e *Extension) buildInvoicerOpts() ([]invoicer.Option, error) {
	opts := make([]invoicer.Option, 0, len(e.invoicerOpts)+5)

	opts = append(opts,
		invoicer.WithNumberFormat(number.Format{
			Prefix: e.config.NumberPrefix,
			Width:  e.config.NumberWidth,
		}),
		invoicer.WithCurrency(e.config.Currency),
		invoicer.WithQueueSize(e.config.QueueSize),
		invoicer.WithSendTimeout(e.config.SendTimeout),
	)

	if e.config.SMTP.Host != "" {
		transport, err := deliver.NewSMTPTransport(deliver.SMTPConfig{
			Host:     e.config.SMTP.Host,
			Port:     e.config.SMTP.Port,
			Username: e.config.SMTP.Username,
			Password: e.config.SMTP.Password,
			From:     e.config.SMTP.From,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, invoicer.WithDispatcher(
			deliver.NewDispatcher(transport, deliver.WithTimeout(e.config.SendTimeout)),
		))
	}

	// Append any pass-through invoicer options.
	opts = append(opts, e.invoicerOpts...)

	return opts, nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("invoicer: configuration is required but not found in config files; " +
				"ensure 'extensions.invoicer' or 'invoicer' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("invoicer: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("number_prefix", e.config.NumberPrefix),
		forge.F("number_width", e.config.NumberWidth),
		forge.F("currency", e.config.Currency),
		forge.F("queue_size", e.config.QueueSize),
		forge.F("send_timeout", e.config.SendTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.invoicer" first (namespaced pattern).
	if cm.IsSet("extensions.invoicer") {
		if err := cm.Bind("extensions.invoicer", &cfg); err == nil {
			e.Logger().Debug("invoicer: loaded config from file",
				forge.F("key", "extensions.invoicer"),
			)
			return cfg, true
		}
		e.Logger().Warn("invoicer: failed to bind extensions.invoicer config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "invoicer" key.
	if cm.IsSet("invoicer") {
		if err := cm.Bind("invoicer", &cfg); err == nil {
			e.Logger().Debug("invoicer: loaded config from file",
				forge.F("key", "invoicer"),
			)
			return cfg, true
		}
		e.Logger().Warn("invoicer: failed to bind invoicer config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = defaults.NumberPrefix
	}
	if cfg.NumberWidth == 0 {
		cfg.NumberWidth = defaults.NumberWidth
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = defaults.SendTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.NumberPrefix == "" && programmaticConfig.NumberPrefix != "" {
		yamlConfig.NumberPrefix = programmaticConfig.NumberPrefix
	}
	if yamlConfig.Currency == "" && programmaticConfig.Currency != "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.Driver == "" && programmaticConfig.Driver != "" {
		yamlConfig.Driver = programmaticConfig.Driver
	}
	if yamlConfig.SMTP.Host == "" && programmaticConfig.SMTP.Host != "" {
		yamlConfig.SMTP = programmaticConfig.SMTP
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.NumberWidth == 0 && programmaticConfig.NumberWidth != 0 {
		yamlConfig.NumberWidth = programmaticConfig.NumberWidth
	}
	if yamlConfig.QueueSize == 0 && programmaticConfig.QueueSize != 0 {
		yamlConfig.QueueSize = programmaticConfig.QueueSize
	}
	if yamlConfig.SendTimeout == 0 && programmaticConfig.SendTimeout != 0 {
		yamlConfig.SendTimeout = programmaticConfig.SendTimeout
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
