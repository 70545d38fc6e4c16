// Package menu models sellable menu items and the recipes that tie them to
// inventory.
package menu

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/types"
)

// Menu is an item sold at the cashier.
type Menu struct {
	types.Entity
	ID        id.MenuID    `json:"id"`
	Name      string       `json:"name"`
	Price     types.Money  `json:"price"`
	Category  string       `json:"category"`
	Recipe    []RecipeLine `json:"recipe"`
	Available bool         `json:"available"`
}

// RecipeLine is the amount of one ingredient a single serving consumes.
type RecipeLine struct {
	IngredientID       id.IngredientID `json:"ingredient_id"`
	QuantityPerServing decimal.Decimal `json:"quantity_per_serving"`
}

// Menu categories offered by the menu management form.
const (
	CategoryMainCourse = "Makanan Utama"
	CategoryDrink      = "Minuman"
	CategorySnack      = "Snack"
	CategoryDessert    = "Dessert"
)

// Categories lists the standard categories. Any label is accepted.
func Categories() []string {
	return []string{CategoryMainCourse, CategoryDrink, CategorySnack, CategoryDessert}
}

// Consumption returns the stock deductions for selling qty servings.
func (m *Menu) Consumption(qty int) []ingredient.Adjustment {
	q := decimal.NewFromInt(int64(qty))
	out := make([]ingredient.Adjustment, 0, len(m.Recipe))
	for _, line := range m.Recipe {
		out = append(out, ingredient.Adjustment{
			IngredientID: line.IngredientID,
			Delta:        line.QuantityPerServing.Mul(q).Neg(),
		})
	}
	return out
}

// IngredientIDs returns the ingredients referenced by the recipe.
func (m *Menu) IngredientIDs() []id.IngredientID {
	ids := make([]id.IngredientID, 0, len(m.Recipe))
	for _, line := range m.Recipe {
		ids = append(ids, line.IngredientID)
	}
	return ids
}

// Clone returns a deep copy of the menu.
func (m *Menu) Clone() *Menu {
	c := *m
	c.Recipe = append([]RecipeLine(nil), m.Recipe...)
	return &c
}
