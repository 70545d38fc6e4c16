package report_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/types"
)

var (
	nasiGoreng = &menu.Menu{ID: id.NewMenuID(), Name: "Nasi Goreng Ayam", Price: types.IDR(25000), Available: true}
	mieGoreng  = &menu.Menu{ID: id.NewMenuID(), Name: "Mie Goreng", Price: types.IDR(22000), Available: true}
	esTeh      = &menu.Menu{ID: id.NewMenuID(), Name: "Es Teh Manis", Price: types.IDR(5000), Available: true}
)

func newOrder(at time.Time, status order.Status, lines ...order.Line) *order.Order {
	o := order.New("ORD", at, lines...)
	o.ID = id.NewOrderID()
	o.Status = status
	return o
}

func newPurchase(at time.Time, name, supplier string, qty int64, cost int64) *purchase.Purchase {
	ing := &ingredient.Ingredient{ID: id.NewIngredientID(), Name: name, Unit: ingredient.UnitKilogram}
	p := purchase.New(ing, decimal.NewFromInt(qty), types.IDR(cost), supplier, at)
	p.ID = id.NewPurchaseID()
	return p
}

func newExpense(at time.Time, desc, category string, amount int64) *expense.Expense {
	return &expense.Expense{ID: id.NewExpenseID(), Description: desc, Category: category, Amount: types.IDR(amount), Date: at}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// ──────────────────────────────────────────────────
// Sales
// ──────────────────────────────────────────────────

func TestSalesTotals(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2024, time.January, 15, 10, 30), order.StatusCompleted,
			order.NewLine(nasiGoreng, 2), order.NewLine(esTeh, 1)),
		newOrder(at(2024, time.January, 15, 12, 5), order.StatusPending,
			order.NewLine(mieGoreng, 1)),
		newOrder(at(2024, time.January, 16, 9, 0), order.StatusCompleted,
			order.NewLine(esTeh, 3)),
	}

	p := report.MustPeriod(report.HourOfDay, at(2024, time.January, 15, 0, 0))
	r := report.Sales(p, orders, report.Options{})

	if r.OrderCount != 2 {
		t.Errorf("OrderCount = %d, want 2", r.OrderCount)
	}
	if r.TotalSales.Amount != 77000 {
		t.Errorf("TotalSales = %d, want 77000", r.TotalSales.Amount)
	}
	if r.AverageOrder.Amount != 38500 {
		t.Errorf("AverageOrder = %d, want 38500", r.AverageOrder.Amount)
	}
	if len(r.Series) != 24 {
		t.Fatalf("Series = %d buckets, want 24", len(r.Series))
	}
	if r.Series[10].Sales.Amount != 55000 || r.Series[10].Orders != 1 {
		t.Errorf("10:00 bucket = %+v, want 55000 / 1", r.Series[10])
	}
	if r.Series[12].Sales.Amount != 22000 {
		t.Errorf("12:00 bucket sales = %d, want 22000", r.Series[12].Sales.Amount)
	}

	want := []string{"Nasi Goreng Ayam", "Mie Goreng", "Es Teh Manis"}
	if len(r.TopProducts) != len(want) {
		t.Fatalf("TopProducts = %d, want %d", len(r.TopProducts), len(want))
	}
	for i, name := range want {
		if r.TopProducts[i].Name != name {
			t.Errorf("TopProducts[%d] = %q, want %q", i, r.TopProducts[i].Name, name)
		}
	}
	if r.TopProducts[0].Quantity != 2 || r.TopProducts[0].Revenue.Amount != 50000 {
		t.Errorf("top product = %+v, want qty 2 revenue 50000", r.TopProducts[0])
	}
}

func TestSalesStatusFilter(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2024, time.January, 15, 10, 0), order.StatusCompleted, order.NewLine(esTeh, 2)),
		newOrder(at(2024, time.January, 15, 11, 0), order.StatusCancelled, order.NewLine(esTeh, 4)),
	}
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 1, 0, 0))

	all := report.Sales(p, orders, report.Options{})
	if all.TotalSales.Amount != 30000 {
		t.Errorf("unfiltered total = %d, want 30000", all.TotalSales.Amount)
	}
	done := report.Sales(p, orders, report.Options{Status: order.StatusCompleted})
	if done.TotalSales.Amount != 10000 || done.OrderCount != 1 {
		t.Errorf("completed total = %d / %d orders, want 10000 / 1", done.TotalSales.Amount, done.OrderCount)
	}
}

func TestSalesEmpty(t *testing.T) {
	p := report.MustPeriod(report.MonthOfYear, at(2024, time.January, 1, 0, 0))
	r := report.Sales(p, nil, report.Options{})

	if !r.AverageOrder.IsZero() || !r.TotalSales.IsZero() || r.OrderCount != 0 {
		t.Errorf("empty report = %+v, want zeros", r)
	}
	if r.TotalSales.Currency != types.DefaultCurrency {
		t.Errorf("currency = %q, want %q", r.TotalSales.Currency, types.DefaultCurrency)
	}
	if len(r.TopProducts) != 0 {
		t.Errorf("TopProducts = %d, want 0", len(r.TopProducts))
	}
	if got := report.AverageOrderValue(nil, report.Options{}); !got.IsZero() {
		t.Errorf("AverageOrderValue(nil) = %v, want 0", got)
	}
}

func TestTopProductsLimitAndTies(t *testing.T) {
	a := &menu.Menu{ID: id.NewMenuID(), Name: "B Item", Price: types.IDR(1000)}
	b := &menu.Menu{ID: id.NewMenuID(), Name: "A Item", Price: types.IDR(1000)}
	c := &menu.Menu{ID: id.NewMenuID(), Name: "C Item", Price: types.IDR(500)}
	orders := []*order.Order{
		newOrder(at(2024, time.January, 1, 8, 0), order.StatusCompleted,
			order.NewLine(a, 1), order.NewLine(b, 1), order.NewLine(c, 1)),
	}

	got := report.TopProducts(orders, 2, report.Options{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "A Item" || got[1].Name != "B Item" {
		t.Errorf("order = %q, %q; want A Item, B Item", got[0].Name, got[1].Name)
	}
}

func TestTopProductsDefaultN(t *testing.T) {
	var lines []order.Line
	for i := range 12 {
		m := &menu.Menu{ID: id.NewMenuID(), Name: string(rune('a' + i)), Price: types.IDR(int64(1000 * (i + 1)))}
		lines = append(lines, order.NewLine(m, 1))
	}
	orders := []*order.Order{newOrder(at(2024, time.January, 1, 8, 0), order.StatusCompleted, lines...)}
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 1, 0, 0))

	r := report.Sales(p, orders, report.Options{})
	if len(r.TopProducts) != report.DefaultTopN {
		t.Errorf("TopProducts = %d, want %d", len(r.TopProducts), report.DefaultTopN)
	}
	if r.TopProducts[0].Revenue.Amount != 12000 {
		t.Errorf("best seller revenue = %d, want 12000", r.TopProducts[0].Revenue.Amount)
	}
}

func TestSalesIsPure(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2024, time.January, 15, 10, 30), order.StatusCompleted, order.NewLine(nasiGoreng, 2)),
		newOrder(at(2024, time.January, 15, 9, 0), order.StatusPending, order.NewLine(esTeh, 1)),
	}
	before := mustJSON(t, orders)
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 15, 0, 0))

	first := mustJSON(t, report.Sales(p, orders, report.Options{}))
	second := mustJSON(t, report.Sales(p, orders, report.Options{}))

	if first != second {
		t.Error("Sales is not idempotent")
	}
	if mustJSON(t, orders) != before {
		t.Error("Sales modified its input")
	}
}

// ──────────────────────────────────────────────────
// Purchases & expenses
// ──────────────────────────────────────────────────

func TestPurchases(t *testing.T) {
	purchases := []*purchase.Purchase{
		newPurchase(at(2024, time.January, 10, 9, 0), "Nasi", "PT Beras Sejahtera", 100, 12000),
		newPurchase(at(2024, time.January, 12, 9, 0), "Ayam", "Toko Ayam", 10, 35000),
		newPurchase(at(2024, time.January, 20, 9, 0), "Sayur", "Toko Ayam", 10, 15000),
		newPurchase(at(2024, time.February, 1, 9, 0), "Nasi", "PT Beras Sejahtera", 50, 12000),
	}
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 1, 0, 0))
	r := report.Purchases(p, purchases, report.Options{})

	if r.Count != 3 {
		t.Errorf("Count = %d, want 3", r.Count)
	}
	if r.TotalCost.Amount != 1700000 {
		t.Errorf("TotalCost = %d, want 1700000", r.TotalCost.Amount)
	}
	if !r.TotalQuantity.Equal(decimal.NewFromInt(120)) {
		t.Errorf("TotalQuantity = %s, want 120", r.TotalQuantity)
	}
	// 1700000 / 120 = 14166.67
	if r.AverageUnitCost.Amount != 14167 {
		t.Errorf("AverageUnitCost = %d, want 14167", r.AverageUnitCost.Amount)
	}

	if len(r.BySupplier) != 2 {
		t.Fatalf("BySupplier = %d, want 2", len(r.BySupplier))
	}
	if r.BySupplier[0].Supplier != "PT Beras Sejahtera" || r.BySupplier[0].Cost.Amount != 1200000 {
		t.Errorf("top supplier = %+v", r.BySupplier[0])
	}
	if r.BySupplier[1].Count != 2 || r.BySupplier[1].Cost.Amount != 500000 {
		t.Errorf("second supplier = %+v, want 2 purchases / 500000", r.BySupplier[1])
	}

	if len(r.ByIngredient) != 3 || r.ByIngredient[0].Name != "Nasi" {
		t.Errorf("ByIngredient = %+v", r.ByIngredient)
	}
	if r.Series[9].Cost.Amount != 1200000 {
		t.Errorf("day 10 cost = %d, want 1200000", r.Series[9].Cost.Amount)
	}
}

func TestPurchasesEmpty(t *testing.T) {
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 1, 0, 0))
	r := report.Purchases(p, nil, report.Options{})
	if !r.AverageUnitCost.IsZero() || !r.TotalQuantity.IsZero() {
		t.Errorf("empty purchase report = %+v, want zeros", r)
	}
}

func TestExpenses(t *testing.T) {
	expenses := []*expense.Expense{
		newExpense(at(2024, time.January, 15, 8, 0), "Biaya Listrik", expense.CategoryOperational, 500000),
		newExpense(at(2024, time.January, 15, 9, 0), "Biaya Air", expense.CategoryOperational, 150000),
		newExpense(at(2024, time.January, 31, 9, 0), "Gaji Januari", expense.CategorySalary, 3000000),
		newExpense(at(2024, time.February, 1, 9, 0), "Sewa", expense.CategoryRent, 2000000),
	}
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 20, 0, 0))
	r := report.Expenses(p, expenses, report.Options{})

	if r.Total.Amount != 3650000 || r.Count != 3 {
		t.Errorf("total = %d / %d, want 3650000 / 3", r.Total.Amount, r.Count)
	}
	if r.Average.Amount != 1216667 {
		t.Errorf("Average = %d, want 1216667", r.Average.Amount)
	}
	if len(r.ByCategory) != 2 || r.ByCategory[0].Category != expense.CategorySalary {
		t.Errorf("ByCategory = %+v", r.ByCategory)
	}
	if r.ByCategory[1].Count != 2 || r.ByCategory[1].Amount.Amount != 650000 {
		t.Errorf("Operasional = %+v, want 2 / 650000", r.ByCategory[1])
	}
	if len(r.Series) != 31 {
		t.Fatalf("Series = %d days, want 31", len(r.Series))
	}
	if r.Series[14].Amount.Amount != 650000 || r.Series[30].Amount.Amount != 3000000 {
		t.Errorf("series day 15 = %d, day 31 = %d", r.Series[14].Amount.Amount, r.Series[30].Amount.Amount)
	}
}

func TestExpensesEmptyAverage(t *testing.T) {
	p := report.MustPeriod(report.DayOfMonth, at(2024, time.January, 1, 0, 0))
	if r := report.Expenses(p, nil, report.Options{}); !r.Average.IsZero() {
		t.Errorf("Average = %v, want 0", r.Average)
	}
}

// ──────────────────────────────────────────────────
// Cash flow & profit and loss
// ──────────────────────────────────────────────────

func TestCashFlowNegativeMonth(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2024, time.January, 15, 10, 30), order.StatusCompleted,
			order.NewLine(nasiGoreng, 2), order.NewLine(esTeh, 2)),
	}
	expenses := []*expense.Expense{
		newExpense(at(2024, time.January, 15, 8, 0), "Biaya Listrik", expense.CategoryOperational, 500000),
		newExpense(at(2024, time.January, 15, 8, 0), "Biaya Air", expense.CategoryOperational, 150000),
	}

	r := report.CashFlow(report.Calendar, at(2024, time.March, 1, 0, 0), orders, nil, expenses, report.Options{})
	jan := r.Months[0]

	if jan.Label != "Jan" {
		t.Errorf("label = %q, want Jan", jan.Label)
	}
	if jan.Income.Amount != 60000 {
		t.Errorf("income = %d, want 60000", jan.Income.Amount)
	}
	if jan.Outflow.Amount != 650000 || !jan.Purchases.IsZero() {
		t.Errorf("outflow = %d purchases = %d, want 650000 / 0", jan.Outflow.Amount, jan.Purchases.Amount)
	}
	if jan.Net.Amount != -590000 {
		t.Errorf("net = %d, want -590000", jan.Net.Amount)
	}
	if r.Summary.NegativeMonths != 1 || r.Summary.PositiveMonths != 0 {
		t.Errorf("positive/negative = %d/%d, want 0/1", r.Summary.PositiveMonths, r.Summary.NegativeMonths)
	}
	if r.Summary.Net.Amount != -590000 {
		t.Errorf("summary net = %d, want -590000", r.Summary.Net.Amount)
	}
}

func TestCashFlowTrailing(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2023, time.February, 3, 10, 0), order.StatusCompleted, order.NewLine(esTeh, 1)),
		newOrder(at(2023, time.January, 31, 10, 0), order.StatusCompleted, order.NewLine(esTeh, 1)),
		newOrder(at(2024, time.January, 5, 10, 0), order.StatusCompleted, order.NewLine(esTeh, 2)),
	}

	r := report.CashFlow(report.Trailing, at(2024, time.January, 20, 0, 0), orders, nil, nil, report.Options{})
	if len(r.Months) != 12 {
		t.Fatalf("months = %d, want 12", len(r.Months))
	}
	if r.Months[0].Label != "Feb 2023" || r.Months[11].Label != "Jan 2024" {
		t.Errorf("labels = %q..%q, want Feb 2023..Jan 2024", r.Months[0].Label, r.Months[11].Label)
	}
	if r.Months[0].Income.Amount != 5000 || r.Months[11].Income.Amount != 10000 {
		t.Errorf("income first/last = %d/%d, want 5000/10000", r.Months[0].Income.Amount, r.Months[11].Income.Amount)
	}
	if r.Summary.Income.Amount != 15000 {
		t.Errorf("summary income = %d, want 15000 (January 2023 is outside)", r.Summary.Income.Amount)
	}
	if r.Summary.PositiveMonths != 2 || r.Summary.NegativeMonths != 0 {
		t.Errorf("positive/negative = %d/%d, want 2/0", r.Summary.PositiveMonths, r.Summary.NegativeMonths)
	}
}

func TestParseCashFlowMode(t *testing.T) {
	tests := []struct {
		in   string
		want report.CashFlowMode
	}{
		{"trailing", report.Trailing},
		{"monthly", report.Trailing},
		{"", report.Trailing},
		{"calendar", report.Calendar},
		{"yearly", report.Calendar},
	}
	for _, tt := range tests {
		got, err := report.ParseCashFlowMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseCashFlowMode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := report.ParseCashFlowMode("weekly"); err == nil {
		t.Error("expected error for weekly")
	}
}

func TestProfitLossZeroRevenue(t *testing.T) {
	expenses := []*expense.Expense{
		newExpense(at(2024, time.March, 2, 8, 0), "Sewa", expense.CategoryRent, 2000000),
	}
	r := report.ProfitLoss(at(2024, time.June, 1, 0, 0), nil, nil, expenses, report.Options{})

	if r.GrossMargin != 0 || r.NetMargin != 0 {
		t.Errorf("yearly margins = %v/%v, want 0/0", r.GrossMargin, r.NetMargin)
	}
	for _, m := range r.Months {
		if m.GrossMargin != 0 || m.NetMargin != 0 {
			t.Errorf("%s margins = %v/%v, want 0/0", m.Label, m.GrossMargin, m.NetMargin)
		}
	}
	if r.NetProfit.Amount != -2000000 {
		t.Errorf("NetProfit = %d, want -2000000", r.NetProfit.Amount)
	}
}

func TestProfitLoss(t *testing.T) {
	orders := []*order.Order{
		newOrder(at(2024, time.January, 15, 10, 0), order.StatusCompleted, order.NewLine(nasiGoreng, 40)),
		newOrder(at(2023, time.December, 31, 10, 0), order.StatusCompleted, order.NewLine(nasiGoreng, 40)),
	}
	purchases := []*purchase.Purchase{
		newPurchase(at(2024, time.January, 10, 9, 0), "Nasi", "PT Beras Sejahtera", 25, 12000),
	}
	expenses := []*expense.Expense{
		newExpense(at(2024, time.January, 15, 8, 0), "Biaya Listrik", expense.CategoryOperational, 500000),
		newExpense(at(2023, time.January, 15, 8, 0), "Sewa lama", expense.CategoryRent, 100),
	}

	r := report.ProfitLoss(at(2024, time.January, 1, 0, 0), orders, purchases, expenses, report.Options{})

	if r.Year != 2024 {
		t.Errorf("Year = %d, want 2024", r.Year)
	}
	if r.Revenue.Amount != 1000000 || r.CostOfGoods.Amount != 300000 {
		t.Errorf("revenue/cogs = %d/%d, want 1000000/300000", r.Revenue.Amount, r.CostOfGoods.Amount)
	}
	if r.GrossProfit.Amount != 700000 || r.NetProfit.Amount != 200000 {
		t.Errorf("gross/net = %d/%d, want 700000/200000", r.GrossProfit.Amount, r.NetProfit.Amount)
	}
	if r.GrossMargin != 70 || r.NetMargin != 20 {
		t.Errorf("margins = %v/%v, want 70/20", r.GrossMargin, r.NetMargin)
	}
	if r.Months[0].GrossMargin != 70 || r.Months[1].GrossMargin != 0 {
		t.Errorf("monthly gross margins = %v/%v, want 70/0", r.Months[0].GrossMargin, r.Months[1].GrossMargin)
	}
	// the breakdown spans every expense given
	if len(r.ExpenseBreakdown) != 2 {
		t.Errorf("ExpenseBreakdown = %d categories, want 2", len(r.ExpenseBreakdown))
	}
}

func TestMargin(t *testing.T) {
	tests := []struct {
		name            string
		profit, revenue types.Money
		want            float64
	}{
		{"half", types.IDR(50), types.IDR(100), 50},
		{"loss", types.IDR(-25), types.IDR(100), -25},
		{"no revenue", types.IDR(-500), types.IDR(0), 0},
		{"both zero", types.Money{}, types.Money{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := report.Margin(tt.profit, tt.revenue); got != tt.want {
				t.Errorf("Margin = %v, want %v", got, tt.want)
			}
		})
	}
}

// ──────────────────────────────────────────────────
// Dashboard & inventory
// ──────────────────────────────────────────────────

func stocked(name string, stock, minStock, cost int64) *ingredient.Ingredient {
	return &ingredient.Ingredient{
		ID:          id.NewIngredientID(),
		Name:        name,
		Unit:        ingredient.UnitKilogram,
		Stock:       decimal.NewFromInt(stock),
		MinStock:    decimal.NewFromInt(minStock),
		CostPerUnit: types.IDR(cost),
	}
}

func TestDashboard(t *testing.T) {
	now := at(2024, time.January, 15, 18, 0)
	ingredients := []*ingredient.Ingredient{
		stocked("Nasi", 50, 10, 12000),
		stocked("Ayam", 5, 5, 35000),
		stocked("Sayur", 2, 8, 15000),
	}
	var orders []*order.Order
	for i := range 7 {
		orders = append(orders, newOrder(at(2024, time.January, 9+i, 10, 0), order.StatusCompleted, order.NewLine(esTeh, 1)))
	}
	orders = append(orders,
		newOrder(at(2024, time.January, 15, 11, 0), order.StatusPending, order.NewLine(nasiGoreng, 1)),
		newOrder(at(2024, time.January, 15, 12, 0), order.StatusCancelled, order.NewLine(mieGoreng, 1)),
	)
	purchases := []*purchase.Purchase{newPurchase(at(2024, time.January, 10, 9, 0), "Nasi", "PT Beras Sejahtera", 100, 12000)}
	expenses := []*expense.Expense{newExpense(at(2024, time.January, 15, 8, 0), "Biaya Air", expense.CategoryOperational, 150000)}

	r := report.Dashboard(now, ingredients, orders, purchases, expenses, report.Options{})

	if r.TotalOrders != 9 || r.CompletedOrders != 7 || r.PendingOrders != 1 || r.CancelledOrders != 1 {
		t.Errorf("counts = %d/%d/%d/%d", r.TotalOrders, r.CompletedOrders, r.PendingOrders, r.CancelledOrders)
	}
	if r.TotalSales.Amount != 35000 {
		t.Errorf("TotalSales = %d, want 35000 (completed only)", r.TotalSales.Amount)
	}
	// 15 January: one completed Es Teh, one pending, one cancelled
	if r.TodayOrders != 3 || r.TodaySales.Amount != 52000 {
		t.Errorf("today = %d orders / %d, want 3 / 52000", r.TodayOrders, r.TodaySales.Amount)
	}
	if r.TotalPurchases.Amount != 1200000 || r.TotalExpenses.Amount != 150000 {
		t.Errorf("purchases/expenses = %d/%d", r.TotalPurchases.Amount, r.TotalExpenses.Amount)
	}
	if len(r.LowStock) != 2 {
		t.Errorf("LowStock = %d, want 2", len(r.LowStock))
	}
	if len(r.Recent) != report.RecentOrders {
		t.Fatalf("Recent = %d, want %d", len(r.Recent), report.RecentOrders)
	}
	for i := 1; i < len(r.Recent); i++ {
		if r.Recent[i].CreatedAt.After(r.Recent[i-1].CreatedAt) {
			t.Error("Recent is not newest first")
		}
	}
}

func TestInventory(t *testing.T) {
	ingredients := []*ingredient.Ingredient{
		stocked("Nasi", 50, 10, 12000),
		stocked("Ayam", 5, 5, 35000),
		stocked("Sayur", 2, 8, 15000),
	}
	ingredients[0].Stock = decimal.RequireFromString("0.5")

	r := report.Inventory(ingredients, report.Options{})

	if r.Safe != 0 || r.Caution != 1 || r.Critical != 2 || r.LowStock != 3 {
		t.Errorf("status counts = safe %d caution %d critical %d low %d", r.Safe, r.Caution, r.Critical, r.LowStock)
	}
	// 0.5×12000 + 5×35000 + 2×15000
	if r.TotalValue.Amount != 211000 {
		t.Errorf("TotalValue = %d, want 211000", r.TotalValue.Amount)
	}
	if r.Lines[1].Status != ingredient.StatusCaution {
		t.Errorf("Ayam status = %s, want caution", r.Lines[1].Status)
	}
}

func TestMixedCurrencies(t *testing.T) {
	plain := &menu.Menu{ID: id.NewMenuID(), Name: "Kerupuk", Price: types.Money{Amount: 10000}}
	dollar := &menu.Menu{ID: id.NewMenuID(), Name: "Imported Cola", Price: types.USD(300)}
	ref := at(2024, time.January, 15, 12, 0)

	orders := []*order.Order{
		newOrder(ref, order.StatusCompleted, order.NewLine(nasiGoreng, 1)),
		newOrder(ref, order.StatusCompleted, order.NewLine(plain, 2)),
		newOrder(ref, order.StatusCompleted, order.NewLine(dollar, 1)),
	}
	ing := &ingredient.Ingredient{ID: id.NewIngredientID(), Name: "Cola", Unit: ingredient.UnitPiece}
	purchases := []*purchase.Purchase{
		newPurchase(ref, "Nasi", "PT Beras", 10, 12000),
		purchase.New(ing, decimal.NewFromInt(2), types.USD(100), "Importir", ref),
	}
	expenses := []*expense.Expense{
		newExpense(ref, "Biaya Air", expense.CategoryOperational, 5000),
		{ID: id.NewExpenseID(), Description: "Parkir", Category: expense.CategoryOperational, Amount: types.Money{Amount: 2000}, Date: ref},
	}
	ingredients := []*ingredient.Ingredient{
		stocked("Nasi", 50, 10, 12000),
		{ID: ing.ID, Name: "Cola", Stock: decimal.NewFromInt(2), Unit: ingredient.UnitPiece, CostPerUnit: types.USD(100)},
	}

	tests := []struct {
		name         string
		opts         report.Options
		wantCurrency string
		wantSales    int64
		wantCost     int64
		wantExpenses int64
	}{
		{"rupiah", report.Options{}, "idr", 25000 + 20000, 120000, 7000},
		{"dollar", report.Options{Currency: "USD"}, "usd", 20000 + 300, 200, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := report.Sales(report.MustPeriod(report.DayOfMonth, ref), orders, tt.opts)
			if sales.TotalSales.Currency != tt.wantCurrency || sales.TotalSales.Amount != tt.wantSales {
				t.Errorf("sales = %+v, want %d %s", sales.TotalSales, tt.wantSales, tt.wantCurrency)
			}
			if sales.OrderCount != 3 {
				t.Errorf("order count = %d, want 3", sales.OrderCount)
			}

			pur := report.Purchases(report.MustPeriod(report.DayOfMonth, ref), purchases, tt.opts)
			if pur.TotalCost.Amount != tt.wantCost {
				t.Errorf("purchase cost = %d, want %d", pur.TotalCost.Amount, tt.wantCost)
			}

			exp := report.Expenses(report.MustPeriod(report.DayOfMonth, ref), expenses, tt.opts)
			if exp.Total.Amount != tt.wantExpenses {
				t.Errorf("expenses = %d, want %d", exp.Total.Amount, tt.wantExpenses)
			}

			cf := report.CashFlow(report.Calendar, ref, orders, purchases, expenses, tt.opts)
			if want := tt.wantSales - tt.wantCost - tt.wantExpenses; cf.Summary.Net.Amount != want {
				t.Errorf("cash flow net = %d, want %d", cf.Summary.Net.Amount, want)
			}

			pl := report.ProfitLoss(ref, orders, purchases, expenses, tt.opts)
			if pl.NetProfit.Currency != tt.wantCurrency {
				t.Errorf("net profit currency = %q, want %q", pl.NetProfit.Currency, tt.wantCurrency)
			}

			d := report.Dashboard(ref, ingredients, orders, purchases, expenses, tt.opts)
			if d.TotalSales.Amount != tt.wantSales {
				t.Errorf("dashboard sales = %d, want %d", d.TotalSales.Amount, tt.wantSales)
			}

			inv := report.Inventory(ingredients, tt.opts)
			if inv.TotalValue.Currency != tt.wantCurrency {
				t.Errorf("inventory currency = %q, want %q", inv.TotalValue.Currency, tt.wantCurrency)
			}
		})
	}
}
