package ingredient

import (
	"context"

	"github.com/xraph/kedai/id"
)

// Store defines the persistence operations for ingredients.
type Store interface {
	CreateIngredient(ctx context.Context, ing *Ingredient) error
	GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*Ingredient, error)
	ListIngredients(ctx context.Context, opts ListOpts) ([]*Ingredient, error)
	UpdateIngredient(ctx context.Context, ing *Ingredient) error

	// AdjustStock applies every adjustment atomically. Decrements clamp at
	// zero. Fails without applying anything if any ingredient is missing.
	AdjustStock(ctx context.Context, adjs []Adjustment) ([]StockChange, error)
}

// ListOpts filters ingredient listings.
type ListOpts struct {
	// LowStockOnly keeps ingredients whose stock is at or below the minimum.
	LowStockOnly bool
}

// Match reports whether ing passes the filter.
func (o ListOpts) Match(ing *Ingredient) bool {
	return !o.LowStockOnly || ing.IsLowStock()
}
