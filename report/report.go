package report

import (
	"strings"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// DefaultTopN is the number of products listed by the sales report.
const DefaultTopN = 10

// Options tunes report computation. The zero value reports in IDR with
// the default top-N and no status filter.
type Options struct {
	// Currency every amount is reported in. Recorded amounts without a
	// currency are taken to be in it; amounts in another currency are not
	// converted and are left out of the totals.
	Currency string

	// TopN limits the sales report's product ranking.
	TopN int

	// Status, when set, restricts the sales report to orders in that status.
	Status order.Status
}

func (o Options) currency() string {
	if o.Currency == "" {
		return types.DefaultCurrency
	}
	return strings.ToLower(o.Currency)
}

// money gives a sum that saw no records the report currency.
func (o Options) money(m types.Money) types.Money {
	if m.Currency == "" {
		m.Currency = o.currency()
	}
	return m
}

// in returns a recorded amount in the report currency, or zero when it
// was recorded in another one.
func (o Options) in(m types.Money) types.Money {
	cur := o.currency()
	if m.Currency == "" || strings.EqualFold(m.Currency, cur) {
		return types.Money{Amount: m.Amount, Currency: cur}
	}
	return types.Zero(cur)
}

// add accumulates a recorded amount into a report total.
func (o Options) add(total, m types.Money) types.Money {
	return o.money(total).Add(o.in(m))
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// Timestamp accessors used for bucketing.

func orderTime(o *order.Order) time.Time          { return o.CreatedAt }
func purchaseTime(p *purchase.Purchase) time.Time { return p.PurchasedAt }
func expenseTime(e *expense.Expense) time.Time    { return e.Date }

func sumOrders(orders []*order.Order, opts Options) types.Money {
	total := types.Zero(opts.currency())
	for _, o := range orders {
		total = opts.add(total, o.Total)
	}
	return total
}

func sumPurchases(purchases []*purchase.Purchase, opts Options) types.Money {
	total := types.Zero(opts.currency())
	for _, p := range purchases {
		total = opts.add(total, p.TotalCost)
	}
	return total
}

func sumExpenses(expenses []*expense.Expense, opts Options) types.Money {
	total := types.Zero(opts.currency())
	for _, e := range expenses {
		total = opts.add(total, e.Amount)
	}
	return total
}
