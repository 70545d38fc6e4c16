// Package ingredient models inventory ingredients and their stock movements.
package ingredient

import (
	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/types"
)

// Ingredient is a stocked raw material consumed by menu recipes.
type Ingredient struct {
	types.Entity
	ID          id.IngredientID `json:"id"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	Unit        Unit            `json:"unit"`
	CostPerUnit types.Money     `json:"cost_per_unit"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// Unit is the unit of measure an ingredient is stocked in.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "gram"
	UnitLiter    Unit = "liter"
	UnitMilliter Unit = "ml"
	UnitPiece    Unit = "pcs"
	UnitPack     Unit = "pack"
)

// Units lists the units offered by inventory forms. Other values are
// accepted as free text.
func Units() []Unit {
	return []Unit{UnitKilogram, UnitGram, UnitLiter, UnitMilliter, UnitPiece, UnitPack}
}

// StockStatus classifies current stock against the minimum threshold.
type StockStatus string

const (
	StatusSafe     StockStatus = "safe"     // stock above minimum
	StatusCaution  StockStatus = "caution"  // stock exactly at minimum
	StatusCritical StockStatus = "critical" // stock below minimum
)

// Status reports the stock status of the ingredient.
func (i *Ingredient) Status() StockStatus {
	switch i.Stock.Cmp(i.MinStock) {
	case 1:
		return StatusSafe
	case 0:
		return StatusCaution
	default:
		return StatusCritical
	}
}

// IsLowStock reports whether stock is at or below the minimum threshold.
func (i *Ingredient) IsLowStock() bool {
	return i.Stock.LessThanOrEqual(i.MinStock)
}

// Value returns stock × cost per unit.
func (i *Ingredient) Value() types.Money {
	return i.CostPerUnit.MultiplyQuantity(i.Stock)
}

// Clone returns a copy that shares no mutable state with i.
func (i *Ingredient) Clone() *Ingredient {
	c := *i
	return &c
}

// Adjustment is a requested stock movement. A positive Delta adds stock, a
// negative Delta removes it (clamped at zero).
type Adjustment struct {
	IngredientID id.IngredientID `json:"ingredient_id"`
	Delta        decimal.Decimal `json:"delta"`
}

// StockChange records the effect of one applied Adjustment.
type StockChange struct {
	IngredientID id.IngredientID `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         Unit            `json:"unit"`
	Requested    decimal.Decimal `json:"requested"`
	Before       decimal.Decimal `json:"before"`
	After        decimal.Decimal `json:"after"`
	MinStock     decimal.Decimal `json:"min_stock"`
}

// Applied is the signed movement actually applied, which differs from
// Requested when a decrement was clamped at zero.
func (c StockChange) Applied() decimal.Decimal {
	return c.After.Sub(c.Before)
}

// Clamped reports whether the decrement was cut short at zero.
func (c StockChange) Clamped() bool {
	return !c.Applied().Equal(c.Requested)
}

// CrossedMinimum reports whether the change moved stock from above the
// minimum threshold to at or below it.
func (c StockChange) CrossedMinimum() bool {
	return c.Before.GreaterThan(c.MinStock) && c.After.LessThanOrEqual(c.MinStock)
}

// Apply computes the post-adjustment stock for the ingredient, clamping at
// zero, and returns the recorded change. The ingredient is not modified.
func Apply(ing *Ingredient, delta decimal.Decimal) StockChange {
	after := ing.Stock.Add(delta)
	if after.IsNegative() {
		after = decimal.Zero
	}
	return StockChange{
		IngredientID: ing.ID,
		Name:         ing.Name,
		Unit:         ing.Unit,
		Requested:    delta,
		Before:       ing.Stock,
		After:        after,
		MinStock:     ing.MinStock,
	}
}

// Merge folds adjustments for the same ingredient into one, preserving the
// order in which ingredients first appear.
func Merge(adjs []Adjustment) []Adjustment {
	idx := make(map[string]int, len(adjs))
	out := make([]Adjustment, 0, len(adjs))
	for _, a := range adjs {
		key := a.IngredientID.String()
		if i, ok := idx[key]; ok {
			out[i].Delta = out[i].Delta.Add(a.Delta)
			continue
		}
		idx[key] = len(out)
		out = append(out, a)
	}
	return out
}
