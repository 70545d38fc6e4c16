package report

import (
	"sort"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// RecentOrders is the number of orders listed on the dashboard.
const RecentOrders = 5

// DashboardReport is the at-a-glance summary of the whole ledger.
type DashboardReport struct {
	TotalSales      types.Money              `json:"total_sales"`
	TotalOrders     int                      `json:"total_orders"`
	CompletedOrders int                      `json:"completed_orders"`
	PendingOrders   int                      `json:"pending_orders"`
	CancelledOrders int                      `json:"cancelled_orders"`
	TodaySales      types.Money              `json:"today_sales"`
	TodayOrders     int                      `json:"today_orders"`
	TotalExpenses   types.Money              `json:"total_expenses"`
	TotalPurchases  types.Money              `json:"total_purchases"`
	LowStock        []*ingredient.Ingredient `json:"low_stock"`
	Recent          []*order.Order           `json:"recent"`
}

// Dashboard computes the dashboard summary. Total sales count completed
// orders only; today's figures cover every order created on now's civil
// date in now.Location().
func Dashboard(now time.Time, ingredients []*ingredient.Ingredient, orders []*order.Order, purchases []*purchase.Purchase, expenses []*expense.Expense, opts Options) *DashboardReport {
	today := MustPeriod(HourOfDay, now)

	r := &DashboardReport{
		TotalOrders: len(orders),
		LowStock:    LowStock(ingredients),
		Recent:      recent(orders, RecentOrders),
	}

	var sales, todaySales types.Money
	for _, o := range orders {
		switch o.Status {
		case order.StatusCompleted:
			r.CompletedOrders++
			sales = opts.add(sales, o.Total)
		case order.StatusPending:
			r.PendingOrders++
		case order.StatusCancelled:
			r.CancelledOrders++
		}
		if today.Contains(o.CreatedAt) {
			r.TodayOrders++
			todaySales = opts.add(todaySales, o.Total)
		}
	}

	r.TotalSales = opts.money(sales)
	r.TodaySales = opts.money(todaySales)
	r.TotalExpenses = opts.money(sumExpenses(expenses, opts))
	r.TotalPurchases = opts.money(sumPurchases(purchases, opts))
	return r
}

// LowStock returns the ingredients at or below their minimum stock.
func LowStock(ingredients []*ingredient.Ingredient) []*ingredient.Ingredient {
	out := []*ingredient.Ingredient{}
	for _, ing := range ingredients {
		if ing.IsLowStock() {
			out = append(out, ing)
		}
	}
	return out
}

// recent returns the n newest orders, newest first.
func recent(orders []*order.Order, n int) []*order.Order {
	out := append([]*order.Order(nil), orders...)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []*order.Order{}
	}
	return out
}
