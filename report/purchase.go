package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// SupplierSpend aggregates purchases from one supplier.
type SupplierSpend struct {
	Supplier string      `json:"supplier"`
	Cost     types.Money `json:"cost"`
	Count    int         `json:"count"`
}

// IngredientSpend aggregates purchases of one ingredient.
type IngredientSpend struct {
	IngredientID id.IngredientID `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         ingredient.Unit `json:"unit"`
	Cost         types.Money     `json:"cost"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// CostPoint is one bucket of a cost series.
type CostPoint struct {
	Label string      `json:"label"`
	Cost  types.Money `json:"cost"`
	Count int         `json:"count"`
}

// PurchaseReport summarizes ingredient purchases over a period.
type PurchaseReport struct {
	Kind            Kind              `json:"kind"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	TotalCost       types.Money       `json:"total_cost"`
	TotalQuantity   decimal.Decimal   `json:"total_quantity"`
	AverageUnitCost types.Money       `json:"average_unit_cost"`
	Count           int               `json:"count"`
	BySupplier      []SupplierSpend   `json:"by_supplier"`
	ByIngredient    []IngredientSpend `json:"by_ingredient"`
	Series          []CostPoint       `json:"series"`
}

// Purchases computes the purchase report. The average unit cost is total
// cost over total quantity across all units, 0 when nothing was bought.
func Purchases(p Period, purchases []*purchase.Purchase, opts Options) *PurchaseReport {
	inWindow := Filter(p, purchases, purchaseTime)

	total := sumPurchases(inWindow, opts)
	qty := decimal.Zero
	for _, pur := range inWindow {
		qty = qty.Add(pur.Quantity)
	}

	r := &PurchaseReport{
		Kind:            p.Kind,
		Start:           p.Start,
		End:             p.End,
		TotalCost:       opts.money(total),
		TotalQuantity:   qty,
		AverageUnitCost: opts.money(total.DivideQuantity(qty)),
		Count:           len(inWindow),
		BySupplier:      bySupplier(inWindow, opts),
		ByIngredient:    byIngredient(inWindow, opts),
		Series:          make([]CostPoint, len(p.Buckets)),
	}
	for i, bucket := range Partition(p, inWindow, purchaseTime) {
		r.Series[i] = CostPoint{
			Label: p.Buckets[i].Label,
			Cost:  opts.money(sumPurchases(bucket, opts)),
			Count: len(bucket),
		}
	}
	return r
}

func bySupplier(purchases []*purchase.Purchase, opts Options) []SupplierSpend {
	idx := map[string]int{}
	out := []SupplierSpend{}
	for _, p := range purchases {
		i, ok := idx[p.Supplier]
		if !ok {
			i = len(out)
			idx[p.Supplier] = i
			out = append(out, SupplierSpend{Supplier: p.Supplier})
		}
		out[i].Cost = opts.add(out[i].Cost, p.TotalCost)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Cost.Amount > out[b].Cost.Amount
	})
	return out
}

func byIngredient(purchases []*purchase.Purchase, opts Options) []IngredientSpend {
	idx := map[string]int{}
	out := []IngredientSpend{}
	for _, p := range purchases {
		key := p.IngredientID.String()
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, IngredientSpend{
				IngredientID: p.IngredientID,
				Name:         p.IngredientName,
				Unit:         p.Unit,
				Quantity:     decimal.Zero,
			})
		}
		out[i].Cost = opts.add(out[i].Cost, p.TotalCost)
		out[i].Quantity = out[i].Quantity.Add(p.Quantity)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Cost.Amount > out[b].Cost.Amount
	})
	return out
}
