package report

import (
	"fmt"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// CashFlowMode selects which 12 months a cash flow report covers.
type CashFlowMode string

const (
	// Trailing covers the month of the reference date and the 11 before it.
	Trailing CashFlowMode = "trailing"
	// Calendar covers January to December of the reference date's year.
	Calendar CashFlowMode = "calendar"
)

// ParseCashFlowMode converts a string into a CashFlowMode. The report page
// names "monthly" (trailing) and "yearly" (calendar) are accepted.
func ParseCashFlowMode(s string) (CashFlowMode, error) {
	switch s {
	case string(Trailing), "monthly", "":
		return Trailing, nil
	case string(Calendar), "yearly":
		return Calendar, nil
	}
	return "", fmt.Errorf("report: unknown cash flow mode %q", s)
}

// CashFlowMonth is the cash movement of one month.
type CashFlowMonth struct {
	Label     string      `json:"label"`
	Start     time.Time   `json:"start"`
	Income    types.Money `json:"income"`
	Expenses  types.Money `json:"expenses"`
	Purchases types.Money `json:"purchases"`
	Outflow   types.Money `json:"outflow"`
	Net       types.Money `json:"net"`
}

// CashFlowSummary totals the 12 months of a cash flow report.
type CashFlowSummary struct {
	Income         types.Money `json:"income"`
	Expenses       types.Money `json:"expenses"`
	Purchases      types.Money `json:"purchases"`
	Outflow        types.Money `json:"outflow"`
	Net            types.Money `json:"net"`
	PositiveMonths int         `json:"positive_months"`
	NegativeMonths int         `json:"negative_months"`
}

// CashFlowReport is 12 months of income against outflow.
type CashFlowReport struct {
	Mode    CashFlowMode    `json:"mode"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Months  []CashFlowMonth `json:"months"`
	Summary CashFlowSummary `json:"summary"`
}

// CashFlowPeriod returns the 12-month window of a cash flow report
// anchored on ref. Trailing months are labelled "Mon YYYY", calendar
// months "Mon".
func CashFlowPeriod(mode CashFlowMode, ref time.Time) Period {
	loc := ref.Location()
	y, m, _ := ref.Date()

	var start time.Time
	withYear := true
	if mode == Calendar {
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		withYear = false
	} else {
		start = time.Date(y, m-11, 1, 0, 0, 0, 0, loc)
	}
	buckets := monthBuckets(start, withYear)
	return Period{
		Kind:    MonthOfYear,
		Start:   buckets[0].Start,
		End:     buckets[len(buckets)-1].End,
		Buckets: buckets,
	}
}

// CashFlow computes the cash flow report. Income is the sum of order
// totals; outflow is expenses plus purchase costs.
func CashFlow(mode CashFlowMode, ref time.Time, orders []*order.Order, purchases []*purchase.Purchase, expenses []*expense.Expense, opts Options) *CashFlowReport {
	if mode != Calendar {
		mode = Trailing
	}
	p := CashFlowPeriod(mode, ref)

	ob := Partition(p, orders, orderTime)
	pb := Partition(p, purchases, purchaseTime)
	eb := Partition(p, expenses, expenseTime)

	r := &CashFlowReport{
		Mode:   mode,
		Start:  p.Start,
		End:    p.End,
		Months: make([]CashFlowMonth, len(p.Buckets)),
	}

	var sum CashFlowSummary
	for i, b := range p.Buckets {
		income := sumOrders(ob[i], opts)
		exp := sumExpenses(eb[i], opts)
		pur := sumPurchases(pb[i], opts)
		outflow := exp.Add(pur)
		net := income.Subtract(outflow)

		r.Months[i] = CashFlowMonth{
			Label:     b.Label,
			Start:     b.Start,
			Income:    opts.money(income),
			Expenses:  opts.money(exp),
			Purchases: opts.money(pur),
			Outflow:   opts.money(outflow),
			Net:       opts.money(net),
		}

		sum.Income = sum.Income.Add(income)
		sum.Expenses = sum.Expenses.Add(exp)
		sum.Purchases = sum.Purchases.Add(pur)
		switch {
		case net.IsPositive():
			sum.PositiveMonths++
		case net.IsNegative():
			sum.NegativeMonths++
		}
	}
	sum.Outflow = sum.Expenses.Add(sum.Purchases)
	sum.Net = sum.Income.Subtract(sum.Outflow)

	sum.Income = opts.money(sum.Income)
	sum.Expenses = opts.money(sum.Expenses)
	sum.Purchases = opts.money(sum.Purchases)
	sum.Outflow = opts.money(sum.Outflow)
	sum.Net = opts.money(sum.Net)
	r.Summary = sum
	return r
}
