// Package plugin provides an extensible plugin system for kedai.
// Plugins can hook into ledger lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the ledger starts. l is the *kedai.Ledger.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated is called when an ingredient is added to inventory.
type OnIngredientCreated interface {
	Plugin
	OnIngredientCreated(ctx context.Context, ing *ingredient.Ingredient) error
}

// OnIngredientUpdated is called when an ingredient is edited.
type OnIngredientUpdated interface {
	Plugin
	OnIngredientUpdated(ctx context.Context, ing *ingredient.Ingredient) error
}

// OnStockAdjusted is called for every applied stock movement, whatever
// caused it.
type OnStockAdjusted interface {
	Plugin
	OnStockAdjusted(ctx context.Context, change ingredient.StockChange) error
}

// OnLowStock is called when a movement takes an ingredient from above its
// minimum to at or below it.
type OnLowStock interface {
	Plugin
	OnLowStock(ctx context.Context, change ingredient.StockChange) error
}

// ──────────────────────────────────────────────────
// Menu hooks
// ──────────────────────────────────────────────────

// OnMenuCreated is called when a menu item is created.
type OnMenuCreated interface {
	Plugin
	OnMenuCreated(ctx context.Context, m *menu.Menu) error
}

// OnMenuUpdated is called when a menu item is edited.
type OnMenuUpdated interface {
	Plugin
	OnMenuUpdated(ctx context.Context, m *menu.Menu) error
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderRecorded is called when an order is appended without processing.
type OnOrderRecorded interface {
	Plugin
	OnOrderRecorded(ctx context.Context, o *order.Order) error
}

// OnOrderProcessed is called after an order and its stock deductions have
// been committed.
type OnOrderProcessed interface {
	Plugin
	OnOrderProcessed(ctx context.Context, o *order.Order, changes []ingredient.StockChange) error
}

// OnOrderStatusChanged is called after an order's status is replaced.
type OnOrderStatusChanged interface {
	Plugin
	OnOrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error
}

// ──────────────────────────────────────────────────
// Purchase & expense hooks
// ──────────────────────────────────────────────────

// OnPurchaseRecorded is called after a purchase is committed. change is nil
// when the ingredient could not be resolved.
type OnPurchaseRecorded interface {
	Plugin
	OnPurchaseRecorded(ctx context.Context, p *purchase.Purchase, change *ingredient.StockChange) error
}

// OnExpenseRecorded is called after an expense is committed.
type OnExpenseRecorded interface {
	Plugin
	OnExpenseRecorded(ctx context.Context, e *expense.Expense) error
}

// ──────────────────────────────────────────────────
// Reference hooks
// ──────────────────────────────────────────────────

// OnReferenceMissing is called when a mutation is applied leniently with
// references that did not resolve.
type OnReferenceMissing interface {
	Plugin
	OnReferenceMissing(ctx context.Context, op string, missing []id.ID) error
}
