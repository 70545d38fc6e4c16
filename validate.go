package kedai

import (
	"strings"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/purchase"
)

func validateIngredient(ing *ingredient.Ingredient) error {
	var errs MultiError
	if strings.TrimSpace(ing.Name) == "" {
		errs.Add(ValidationError{Field: "name", Message: "must not be empty"})
	}
	if ing.Stock.IsNegative() {
		errs.Add(ValidationError{Field: "stock", Message: "must not be negative"})
	}
	if ing.MinStock.IsNegative() {
		errs.Add(ValidationError{Field: "min_stock", Message: "must not be negative"})
	}
	if ing.CostPerUnit.IsNegative() {
		errs.Add(ValidationError{Field: "cost_per_unit", Message: "must not be negative"})
	}
	return errs.Err()
}

func validateMenu(m *menu.Menu) error {
	var errs MultiError
	if strings.TrimSpace(m.Name) == "" {
		errs.Add(ValidationError{Field: "name", Message: "must not be empty"})
	}
	if m.Price.IsNegative() {
		errs.Add(ValidationError{Field: "price", Message: "must not be negative"})
	}
	for _, line := range m.Recipe {
		if !line.QuantityPerServing.IsPositive() {
			errs.Add(ValidationError{
				Field:   "recipe",
				Message: "quantity per serving of " + line.IngredientID.String() + " must be positive",
			})
		}
	}
	return errs.Err()
}

func validatePurchase(p *purchase.Purchase) error {
	var errs MultiError
	if p.IngredientID.IsNil() {
		errs.Add(ValidationError{Field: "ingredient_id", Message: "is required"})
	}
	if !p.Quantity.IsPositive() {
		errs.Add(ValidationError{Field: "quantity", Message: "must be positive"})
	}
	if p.CostPerUnit.IsNegative() {
		errs.Add(ValidationError{Field: "cost_per_unit", Message: "must not be negative"})
	}
	if p.TotalCost.IsNegative() {
		errs.Add(ValidationError{Field: "total_cost", Message: "must not be negative"})
	}
	return errs.Err()
}

func validateExpense(e *expense.Expense) error {
	if e.Amount.IsNegative() {
		return ValidationError{Field: "amount", Message: "must not be negative"}
	}
	return nil
}
