package report

import (
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// ProfitLossMonth is the income statement of one month.
type ProfitLossMonth struct {
	Label       string      `json:"label"`
	Start       time.Time   `json:"start"`
	Revenue     types.Money `json:"revenue"`
	CostOfGoods types.Money `json:"cost_of_goods"`
	GrossProfit types.Money `json:"gross_profit"`
	Expenses    types.Money `json:"expenses"`
	NetProfit   types.Money `json:"net_profit"`
	GrossMargin float64     `json:"gross_margin"`
	NetMargin   float64     `json:"net_margin"`
}

// ProfitLossReport is the income statement of one calendar year.
type ProfitLossReport struct {
	Year        int               `json:"year"`
	Revenue     types.Money       `json:"revenue"`
	CostOfGoods types.Money       `json:"cost_of_goods"`
	GrossProfit types.Money       `json:"gross_profit"`
	Expenses    types.Money       `json:"expenses"`
	NetProfit   types.Money       `json:"net_profit"`
	GrossMargin float64           `json:"gross_margin"`
	NetMargin   float64           `json:"net_margin"`
	Months      []ProfitLossMonth `json:"months"`

	// ExpenseBreakdown covers every expense passed in, not only the year.
	ExpenseBreakdown []CategoryTotal `json:"expense_breakdown"`
}

// Margin returns profit as a percentage of revenue, 0 when there is no
// revenue.
func Margin(profit, revenue types.Money) float64 {
	if !revenue.IsPositive() {
		return 0
	}
	return types.Percent(profit, revenue)
}

// ProfitLoss computes the year's income statement for the year of ref.
// Cost of goods is the sum of purchase costs.
func ProfitLoss(ref time.Time, orders []*order.Order, purchases []*purchase.Purchase, expenses []*expense.Expense, opts Options) *ProfitLossReport {
	p := MustPeriod(MonthOfYear, ref)

	ob := Partition(p, orders, orderTime)
	pb := Partition(p, purchases, purchaseTime)
	eb := Partition(p, expenses, expenseTime)

	r := &ProfitLossReport{
		Year:             ref.Year(),
		Months:           make([]ProfitLossMonth, len(p.Buckets)),
		ExpenseBreakdown: ByCategory(expenses, opts),
	}

	var revenue, cogs, exp types.Money
	for i, b := range p.Buckets {
		mRevenue := sumOrders(ob[i], opts)
		mCogs := sumPurchases(pb[i], opts)
		mExp := sumExpenses(eb[i], opts)
		gross := mRevenue.Subtract(mCogs)
		net := gross.Subtract(mExp)

		r.Months[i] = ProfitLossMonth{
			Label:       b.Label,
			Start:       b.Start,
			Revenue:     opts.money(mRevenue),
			CostOfGoods: opts.money(mCogs),
			GrossProfit: opts.money(gross),
			Expenses:    opts.money(mExp),
			NetProfit:   opts.money(net),
			GrossMargin: Margin(gross, mRevenue),
			NetMargin:   Margin(net, mRevenue),
		}

		revenue = revenue.Add(mRevenue)
		cogs = cogs.Add(mCogs)
		exp = exp.Add(mExp)
	}

	gross := revenue.Subtract(cogs)
	net := gross.Subtract(exp)
	r.Revenue = opts.money(revenue)
	r.CostOfGoods = opts.money(cogs)
	r.GrossProfit = opts.money(gross)
	r.Expenses = opts.money(exp)
	r.NetProfit = opts.money(net)
	r.GrossMargin = Margin(gross, revenue)
	r.NetMargin = Margin(net, revenue)
	return r
}
