// Package store defines the unified persistence contract for kedai.
package store

import (
	"context"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
)

// Store is the unified storage interface for all kedai entities.
// Methods are declared explicitly rather than by embedding the per-entity
// interfaces so every backend signature is visible in one place.
//
// Every mutation that touches more than one record is atomic: readers
// observe either none or all of its effects.
type Store interface {
	// Ingredient methods
	CreateIngredient(ctx context.Context, ing *ingredient.Ingredient) error
	GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error)
	ListIngredients(ctx context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *ingredient.Ingredient) error
	AdjustStock(ctx context.Context, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error)

	// Menu methods
	CreateMenu(ctx context.Context, m *menu.Menu) error
	GetMenu(ctx context.Context, menuID id.MenuID) (*menu.Menu, error)
	ListMenus(ctx context.Context, opts menu.ListOpts) ([]*menu.Menu, error)
	UpdateMenu(ctx context.Context, m *menu.Menu) error

	// Order methods
	RecordOrder(ctx context.Context, o *order.Order, deductions []ingredient.Adjustment) ([]ingredient.StockChange, error)
	GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error)
	ListOrders(ctx context.Context, opts order.ListOpts) ([]*order.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID id.OrderID, from, to order.Status, completedAt *time.Time) error

	// Purchase methods
	RecordPurchase(ctx context.Context, p *purchase.Purchase, restock *ingredient.Adjustment) (*ingredient.StockChange, error)
	GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error)
	ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error)

	// Expense methods
	CreateExpense(ctx context.Context, e *expense.Expense) error
	GetExpense(ctx context.Context, expenseID id.ExpenseID) (*expense.Expense, error)
	ListExpenses(ctx context.Context, opts expense.ListOpts) ([]*expense.Expense, error)

	// Snapshot returns a consistent read-only view of every collection.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is a point-in-time view of the five ledger collections.
// Collections are in insertion order for the logs and creation order for
// ingredients and menus. Callers must treat the records as read-only.
type Snapshot struct {
	Ingredients []*ingredient.Ingredient `json:"ingredients"`
	Menus       []*menu.Menu             `json:"menus"`
	Orders      []*order.Order           `json:"orders"`
	Purchases   []*purchase.Purchase     `json:"purchases"`
	Expenses    []*expense.Expense       `json:"expenses"`
	TakenAt     time.Time                `json:"taken_at"`
}

// Ingredient returns the ingredient with the given ID, if present.
func (s *Snapshot) Ingredient(ingredientID id.IngredientID) (*ingredient.Ingredient, bool) {
	key := ingredientID.String()
	for _, ing := range s.Ingredients {
		if ing.ID.String() == key {
			return ing, true
		}
	}
	return nil, false
}

// Menu returns the menu with the given ID, if present.
func (s *Snapshot) Menu(menuID id.MenuID) (*menu.Menu, bool) {
	key := menuID.String()
	for _, m := range s.Menus {
		if m.ID.String() == key {
			return m, true
		}
	}
	return nil, false
}
