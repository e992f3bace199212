package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit             []OnInit
	onShutdown         []OnShutdown
	onInvoiceCreated   []OnInvoiceCreated
	onInvoiceUpdated   []OnInvoiceUpdated
	onInvoiceDeleted   []OnInvoiceDeleted
	onInvoicePaid      []OnInvoicePaid
	onNumberAllocated  []OnNumberAllocated
	onInvoiceRendered  []OnInvoiceRendered
	onInvoiceDelivered []OnInvoiceDelivered
	onDeliveryFailed   []OnDeliveryFailed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceCreated); ok {
		r.onInvoiceCreated = append(r.onInvoiceCreated, v)
	}
	if v, ok := p.(OnInvoiceUpdated); ok {
		r.onInvoiceUpdated = append(r.onInvoiceUpdated, v)
	}
	if v, ok := p.(OnInvoiceDeleted); ok {
		r.onInvoiceDeleted = append(r.onInvoiceDeleted, v)
	}
	if v, ok := p.(OnInvoicePaid); ok {
		r.onInvoicePaid = append(r.onInvoicePaid, v)
	}
	if v, ok := p.(OnNumberAllocated); ok {
		r.onNumberAllocated = append(r.onNumberAllocated, v)
	}
	if v, ok := p.(OnInvoiceRendered); ok {
		r.onInvoiceRendered = append(r.onInvoiceRendered, v)
	}
	if v, ok := p.(OnInvoiceDelivered); ok {
		r.onInvoiceDelivered = append(r.onInvoiceDelivered, v)
	}
	if v, ok := p.(OnDeliveryFailed); ok {
		r.onDeliveryFailed = append(r.onDeliveryFailed, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnInvoiceCreated)(nil)).Elem(), "OnInvoiceCreated")
	checkInterface(reflect.TypeOf((*OnInvoiceUpdated)(nil)).Elem(), "OnInvoiceUpdated")
	checkInterface(reflect.TypeOf((*OnInvoiceDeleted)(nil)).Elem(), "OnInvoiceDeleted")
	checkInterface(reflect.TypeOf((*OnInvoicePaid)(nil)).Elem(), "OnInvoicePaid")
	checkInterface(reflect.TypeOf((*OnNumberAllocated)(nil)).Elem(), "OnNumberAllocated")
	checkInterface(reflect.TypeOf((*OnInvoiceRendered)(nil)).Elem(), "OnInvoiceRendered")
	checkInterface(reflect.TypeOf((*OnInvoiceDelivered)(nil)).Elem(), "OnInvoiceDelivered")
	checkInterface(reflect.TypeOf((*OnDeliveryFailed)(nil)).Elem(), "OnDeliveryFailed")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceCreated emits an invoice created event.
func (r *Registry) EmitInvoiceCreated(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceCreated(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceUpdated emits an invoice updated event.
func (r *Registry) EmitInvoiceUpdated(ctx context.Context, oldInv, newInv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoiceUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceUpdated(ctx, oldInv, newInv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceDeleted emits an invoice deleted event.
func (r *Registry) EmitInvoiceDeleted(ctx context.Context, invoiceID string) {
	r.mu.RLock()
	plugins := r.onInvoiceDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceDeleted(ctx, invoiceID)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoicePaid emits an invoice paid event.
func (r *Registry) EmitInvoicePaid(ctx context.Context, inv interface{}) {
	r.mu.RLock()
	plugins := r.onInvoicePaid
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoicePaid(ctx, inv)
		}); err != nil {
			r.logger.Warn("plugin OnInvoicePaid failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitNumberAllocated emits a number allocated event.
func (r *Registry) EmitNumberAllocated(ctx context.Context, number string, counter int64) {
	r.mu.RLock()
	plugins := r.onNumberAllocated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnNumberAllocated(ctx, number, counter)
		}); err != nil {
			r.logger.Warn("plugin OnNumberAllocated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceRendered emits an invoice rendered event.
func (r *Registry) EmitInvoiceRendered(ctx context.Context, inv interface{}, size int) {
	r.mu.RLock()
	plugins := r.onInvoiceRendered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceRendered(ctx, inv, size)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceRendered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitInvoiceDelivered emits an invoice delivered event.
func (r *Registry) EmitInvoiceDelivered(ctx context.Context, inv interface{}, recipient string) {
	r.mu.RLock()
	plugins := r.onInvoiceDelivered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInvoiceDelivered(ctx, inv, recipient)
		}); err != nil {
			r.logger.Warn("plugin OnInvoiceDelivered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDeliveryFailed emits a delivery failed event.
func (r *Registry) EmitDeliveryFailed(ctx context.Context, inv interface{}, deliveryErr error) {
	r.mu.RLock()
	plugins := r.onDeliveryFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDeliveryFailed(ctx, inv, deliveryErr)
		}); err != nil {
			r.logger.Warn("plugin OnDeliveryFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the invoicing pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
