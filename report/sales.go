package report

import (
	"sort"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/types"
)

// SalesPoint is one bucket of the sales series.
type SalesPoint struct {
	Label  string      `json:"label"`
	Sales  types.Money `json:"sales"`
	Orders int         `json:"orders"`
}

// ProductSales aggregates every order line of one menu item.
type ProductSales struct {
	MenuID   id.MenuID   `json:"menu_id"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Revenue  types.Money `json:"revenue"`
}

// SalesReport summarizes orders over a period.
type SalesReport struct {
	Kind         Kind           `json:"kind"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	TotalSales   types.Money    `json:"total_sales"`
	OrderCount   int            `json:"order_count"`
	AverageOrder types.Money    `json:"average_order"`
	Series       []SalesPoint   `json:"series"`
	TopProducts  []ProductSales `json:"top_products"`
}

// Sales computes the sales report. Orders of every status count unless
// opts.Status is set.
func Sales(p Period, orders []*order.Order, opts Options) *SalesReport {
	inWindow := Filter(p, orders, orderTime)
	if opts.Status != "" {
		filtered := inWindow[:0:0]
		for _, o := range inWindow {
			if o.Status == opts.Status {
				filtered = append(filtered, o)
			}
		}
		inWindow = filtered
	}

	total := sumOrders(inWindow, opts)
	r := &SalesReport{
		Kind:         p.Kind,
		Start:        p.Start,
		End:          p.End,
		TotalSales:   opts.money(total),
		OrderCount:   len(inWindow),
		AverageOrder: opts.money(total.DivideSafe(int64(len(inWindow)))),
		Series:       make([]SalesPoint, len(p.Buckets)),
		TopProducts:  TopProducts(inWindow, opts.topN(), opts),
	}
	for i, bucket := range Partition(p, inWindow, orderTime) {
		r.Series[i] = SalesPoint{
			Label:  p.Buckets[i].Label,
			Sales:  opts.money(sumOrders(bucket, opts)),
			Orders: len(bucket),
		}
	}
	for i := range r.TopProducts {
		r.TopProducts[i].Revenue = opts.money(r.TopProducts[i].Revenue)
	}
	return r
}

// AverageOrderValue returns the mean order total in the report currency,
// 0 for no orders.
func AverageOrderValue(orders []*order.Order, opts Options) types.Money {
	return sumOrders(orders, opts).DivideSafe(int64(len(orders)))
}

// TopProducts groups order lines by menu ID and returns the n best sellers
// by revenue, ties broken by name. The name is taken from the first line
// seen for each menu. n <= 0 returns every product. Revenue is in the
// report currency of opts.
func TopProducts(orders []*order.Order, n int, opts Options) []ProductSales {
	idx := map[string]int{}
	var products []ProductSales
	for _, o := range orders {
		for _, l := range o.Lines {
			key := l.MenuID.String()
			i, ok := idx[key]
			if !ok {
				i = len(products)
				idx[key] = i
				products = append(products, ProductSales{MenuID: l.MenuID, Name: l.MenuName})
			}
			products[i].Quantity += l.Quantity
			products[i].Revenue = opts.add(products[i].Revenue, l.Subtotal)
		}
	}

	sort.SliceStable(products, func(a, b int) bool {
		if products[a].Revenue.Amount != products[b].Revenue.Amount {
			return products[a].Revenue.Amount > products[b].Revenue.Amount
		}
		return products[a].Name < products[b].Name
	})

	if n > 0 && len(products) > n {
		products = products[:n]
	}
	if products == nil {
		products = []ProductSales{}
	}
	return products
}
