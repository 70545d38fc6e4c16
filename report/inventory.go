package report

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/types"
)

// StockLine is the valuation of one ingredient.
type StockLine struct {
	IngredientID id.IngredientID        `json:"ingredient_id"`
	Name         string                 `json:"name"`
	Unit         ingredient.Unit        `json:"unit"`
	Stock        decimal.Decimal        `json:"stock"`
	MinStock     decimal.Decimal        `json:"min_stock"`
	CostPerUnit  types.Money            `json:"cost_per_unit"`
	Value        types.Money            `json:"value"`
	Status       ingredient.StockStatus `json:"status"`
}

// InventoryReport values the current stock.
type InventoryReport struct {
	Lines      []StockLine `json:"lines"`
	TotalValue types.Money `json:"total_value"`
	Safe       int         `json:"safe"`
	Caution    int         `json:"caution"`
	Critical   int         `json:"critical"`
	LowStock   int         `json:"low_stock"`
}

// Inventory computes the stock valuation in ingredient order.
func Inventory(ingredients []*ingredient.Ingredient, opts Options) *InventoryReport {
	r := &InventoryReport{Lines: make([]StockLine, 0, len(ingredients))}

	var total types.Money
	for _, ing := range ingredients {
		line := StockLine{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Unit:         ing.Unit,
			Stock:        ing.Stock,
			MinStock:     ing.MinStock,
			CostPerUnit:  ing.CostPerUnit,
			Value:        ing.Value(),
			Status:       ing.Status(),
		}
		total = opts.add(total, line.Value)

		switch line.Status {
		case ingredient.StatusSafe:
			r.Safe++
		case ingredient.StatusCaution:
			r.Caution++
		case ingredient.StatusCritical:
			r.Critical++
		}
		if ing.IsLowStock() {
			r.LowStock++
		}
		r.Lines = append(r.Lines, line)
	}
	r.TotalValue = opts.money(total)
	return r
}
