package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
)

// DefaultTimeout bounds every hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// Hook implementations are discovered once at registration time.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit               []OnInit
	onShutdown           []OnShutdown
	onIngredientCreated  []OnIngredientCreated
	onIngredientUpdated  []OnIngredientUpdated
	onStockAdjusted      []OnStockAdjusted
	onLowStock           []OnLowStock
	onMenuCreated        []OnMenuCreated
	onMenuUpdated        []OnMenuUpdated
	onOrderRecorded      []OnOrderRecorded
	onOrderProcessed     []OnOrderProcessed
	onOrderStatusChanged []OnOrderStatusChanged
	onPurchaseRecorded   []OnPurchaseRecorded
	onExpenseRecorded    []OnExpenseRecorded
	onReferenceMissing   []OnReferenceMissing
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
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
	if v, ok := p.(OnIngredientCreated); ok {
		r.onIngredientCreated = append(r.onIngredientCreated, v)
	}
	if v, ok := p.(OnIngredientUpdated); ok {
		r.onIngredientUpdated = append(r.onIngredientUpdated, v)
	}
	if v, ok := p.(OnStockAdjusted); ok {
		r.onStockAdjusted = append(r.onStockAdjusted, v)
	}
	if v, ok := p.(OnLowStock); ok {
		r.onLowStock = append(r.onLowStock, v)
	}
	if v, ok := p.(OnMenuCreated); ok {
		r.onMenuCreated = append(r.onMenuCreated, v)
	}
	if v, ok := p.(OnMenuUpdated); ok {
		r.onMenuUpdated = append(r.onMenuUpdated, v)
	}
	if v, ok := p.(OnOrderRecorded); ok {
		r.onOrderRecorded = append(r.onOrderRecorded, v)
	}
	if v, ok := p.(OnOrderProcessed); ok {
		r.onOrderProcessed = append(r.onOrderProcessed, v)
	}
	if v, ok := p.(OnOrderStatusChanged); ok {
		r.onOrderStatusChanged = append(r.onOrderStatusChanged, v)
	}
	if v, ok := p.(OnPurchaseRecorded); ok {
		r.onPurchaseRecorded = append(r.onPurchaseRecorded, v)
	}
	if v, ok := p.(OnExpenseRecorded); ok {
		r.onExpenseRecorded = append(r.onExpenseRecorded, v)
	}
	if v, ok := p.(OnReferenceMissing); ok {
		r.onReferenceMissing = append(r.onReferenceMissing, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name  string
	iface reflect.Type
}{
	{"OnInit", reflect.TypeOf((*OnInit)(nil)).Elem()},
	{"OnShutdown", reflect.TypeOf((*OnShutdown)(nil)).Elem()},
	{"OnIngredientCreated", reflect.TypeOf((*OnIngredientCreated)(nil)).Elem()},
	{"OnIngredientUpdated", reflect.TypeOf((*OnIngredientUpdated)(nil)).Elem()},
	{"OnStockAdjusted", reflect.TypeOf((*OnStockAdjusted)(nil)).Elem()},
	{"OnLowStock", reflect.TypeOf((*OnLowStock)(nil)).Elem()},
	{"OnMenuCreated", reflect.TypeOf((*OnMenuCreated)(nil)).Elem()},
	{"OnMenuUpdated", reflect.TypeOf((*OnMenuUpdated)(nil)).Elem()},
	{"OnOrderRecorded", reflect.TypeOf((*OnOrderRecorded)(nil)).Elem()},
	{"OnOrderProcessed", reflect.TypeOf((*OnOrderProcessed)(nil)).Elem()},
	{"OnOrderStatusChanged", reflect.TypeOf((*OnOrderStatusChanged)(nil)).Elem()},
	{"OnPurchaseRecorded", reflect.TypeOf((*OnPurchaseRecorded)(nil)).Elem()},
	{"OnExpenseRecorded", reflect.TypeOf((*OnExpenseRecorded)(nil)).Elem()},
	{"OnReferenceMissing", reflect.TypeOf((*OnReferenceMissing)(nil)).Elem()},
}

// implementedInterfaces returns the hook names implemented by the plugin.
func implementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.iface) {
			interfaces = append(interfaces, h.name)
		}
	}
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

// emit runs call for every hook in hooks, logging failures under event.
func emit[H Plugin](ctx context.Context, r *Registry, event string, hooks []H, call func(H) error) {
	for _, p := range hooks {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+event+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// snapshot reads a cached hook list under the read lock.
func snapshot[H any](r *Registry, hooks *[]H) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *hooks
}

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, ledger)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitIngredientCreated emits an ingredient created event.
func (r *Registry) EmitIngredientCreated(ctx context.Context, ing *ingredient.Ingredient) {
	emit(ctx, r, "OnIngredientCreated", snapshot(r, &r.onIngredientCreated), func(p OnIngredientCreated) error {
		return p.OnIngredientCreated(ctx, ing)
	})
}

// EmitIngredientUpdated emits an ingredient updated event.
func (r *Registry) EmitIngredientUpdated(ctx context.Context, ing *ingredient.Ingredient) {
	emit(ctx, r, "OnIngredientUpdated", snapshot(r, &r.onIngredientUpdated), func(p OnIngredientUpdated) error {
		return p.OnIngredientUpdated(ctx, ing)
	})
}

// EmitStockAdjusted emits one stock adjusted event per change, then a low
// stock event for every change that crossed its minimum.
func (r *Registry) EmitStockAdjusted(ctx context.Context, changes ...ingredient.StockChange) {
	adjusted := snapshot(r, &r.onStockAdjusted)
	low := snapshot(r, &r.onLowStock)

	for _, c := range changes {
		emit(ctx, r, "OnStockAdjusted", adjusted, func(p OnStockAdjusted) error {
			return p.OnStockAdjusted(ctx, c)
		})
		if c.CrossedMinimum() {
			emit(ctx, r, "OnLowStock", low, func(p OnLowStock) error {
				return p.OnLowStock(ctx, c)
			})
		}
	}
}

// EmitMenuCreated emits a menu created event.
func (r *Registry) EmitMenuCreated(ctx context.Context, m *menu.Menu) {
	emit(ctx, r, "OnMenuCreated", snapshot(r, &r.onMenuCreated), func(p OnMenuCreated) error {
		return p.OnMenuCreated(ctx, m)
	})
}

// EmitMenuUpdated emits a menu updated event.
func (r *Registry) EmitMenuUpdated(ctx context.Context, m *menu.Menu) {
	emit(ctx, r, "OnMenuUpdated", snapshot(r, &r.onMenuUpdated), func(p OnMenuUpdated) error {
		return p.OnMenuUpdated(ctx, m)
	})
}

// EmitOrderRecorded emits an order recorded event.
func (r *Registry) EmitOrderRecorded(ctx context.Context, o *order.Order) {
	emit(ctx, r, "OnOrderRecorded", snapshot(r, &r.onOrderRecorded), func(p OnOrderRecorded) error {
		return p.OnOrderRecorded(ctx, o)
	})
}

// EmitOrderProcessed emits an order processed event followed by the stock
// events of its deductions.
func (r *Registry) EmitOrderProcessed(ctx context.Context, o *order.Order, changes []ingredient.StockChange) {
	emit(ctx, r, "OnOrderProcessed", snapshot(r, &r.onOrderProcessed), func(p OnOrderProcessed) error {
		return p.OnOrderProcessed(ctx, o, changes)
	})
	r.EmitStockAdjusted(ctx, changes...)
}

// EmitOrderStatusChanged emits an order status changed event.
func (r *Registry) EmitOrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) {
	emit(ctx, r, "OnOrderStatusChanged", snapshot(r, &r.onOrderStatusChanged), func(p OnOrderStatusChanged) error {
		return p.OnOrderStatusChanged(ctx, o, from)
	})
}

// EmitPurchaseRecorded emits a purchase recorded event followed by the
// stock event of its restock, if any.
func (r *Registry) EmitPurchaseRecorded(ctx context.Context, pur *purchase.Purchase, change *ingredient.StockChange) {
	emit(ctx, r, "OnPurchaseRecorded", snapshot(r, &r.onPurchaseRecorded), func(p OnPurchaseRecorded) error {
		return p.OnPurchaseRecorded(ctx, pur, change)
	})
	if change != nil {
		r.EmitStockAdjusted(ctx, *change)
	}
}

// EmitExpenseRecorded emits an expense recorded event.
func (r *Registry) EmitExpenseRecorded(ctx context.Context, e *expense.Expense) {
	emit(ctx, r, "OnExpenseRecorded", snapshot(r, &r.onExpenseRecorded), func(p OnExpenseRecorded) error {
		return p.OnExpenseRecorded(ctx, e)
	})
}

// EmitReferenceMissing emits a reference missing event.
func (r *Registry) EmitReferenceMissing(ctx context.Context, op string, missing []id.ID) {
	emit(ctx, r, "OnReferenceMissing", snapshot(r, &r.onReferenceMissing), func(p OnReferenceMissing) error {
		return p.OnReferenceMissing(ctx, op, missing)
	})
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.timeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
