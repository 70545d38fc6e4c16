// Package purchase models ingredient purchases from suppliers.
package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/types"
)

// Purchase is an immutable record of stock bought from a supplier.
type Purchase struct {
	types.Entity
	ID             id.PurchaseID   `json:"id"`
	IngredientID   id.IngredientID `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           ingredient.Unit `json:"unit"`
	CostPerUnit    types.Money     `json:"cost_per_unit"`
	TotalCost      types.Money     `json:"total_cost"`
	Supplier       string          `json:"supplier"`
	PurchasedAt    time.Time       `json:"purchased_at"`
}

// New builds a purchase of qty units of ing at costPerUnit, snapshotting
// the ingredient's name and unit and computing the total cost.
func New(ing *ingredient.Ingredient, qty decimal.Decimal, costPerUnit types.Money, supplier string, at time.Time) *Purchase {
	return &Purchase{
		IngredientID:   ing.ID,
		IngredientName: ing.Name,
		Quantity:       qty,
		Unit:           ing.Unit,
		CostPerUnit:    costPerUnit,
		TotalCost:      costPerUnit.MultiplyQuantity(qty),
		Supplier:       supplier,
		PurchasedAt:    at,
	}
}

// ComputedTotal returns quantity × cost per unit.
func (p *Purchase) ComputedTotal() types.Money {
	return p.CostPerUnit.MultiplyQuantity(p.Quantity)
}

// Restock returns the stock adjustment this purchase implies.
func (p *Purchase) Restock() ingredient.Adjustment {
	return ingredient.Adjustment{IngredientID: p.IngredientID, Delta: p.Quantity}
}
