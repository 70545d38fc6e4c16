package report

import (
	"sort"
	"time"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/types"
)

// CategoryTotal aggregates expenses of one category.
type CategoryTotal struct {
	Category string      `json:"category"`
	Amount   types.Money `json:"amount"`
	Count    int         `json:"count"`
}

// AmountPoint is one bucket of an amount series.
type AmountPoint struct {
	Label  string      `json:"label"`
	Amount types.Money `json:"amount"`
	Count  int         `json:"count"`
}

// ExpenseReport summarizes operating expenses over a period.
type ExpenseReport struct {
	Kind       Kind            `json:"kind"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Total      types.Money     `json:"total"`
	Count      int             `json:"count"`
	Average    types.Money     `json:"average"`
	ByCategory []CategoryTotal `json:"by_category"`
	Series     []AmountPoint   `json:"series"`
}

// Expenses computes the expense report. With a DayOfMonth period the
// series is the per-day breakdown of the month.
func Expenses(p Period, expenses []*expense.Expense, opts Options) *ExpenseReport {
	inWindow := Filter(p, expenses, expenseTime)
	total := sumExpenses(inWindow, opts)

	r := &ExpenseReport{
		Kind:       p.Kind,
		Start:      p.Start,
		End:        p.End,
		Total:      opts.money(total),
		Count:      len(inWindow),
		Average:    opts.money(total.DivideSafe(int64(len(inWindow)))),
		ByCategory: ByCategory(inWindow, opts),
		Series:     make([]AmountPoint, len(p.Buckets)),
	}
	for i, bucket := range Partition(p, inWindow, expenseTime) {
		r.Series[i] = AmountPoint{
			Label:  p.Buckets[i].Label,
			Amount: opts.money(sumExpenses(bucket, opts)),
			Count:  len(bucket),
		}
	}
	return r
}

// ByCategory groups expenses by category, largest total first.
func ByCategory(expenses []*expense.Expense, opts Options) []CategoryTotal {
	idx := map[string]int{}
	out := []CategoryTotal{}
	for _, e := range expenses {
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].Amount = opts.add(out[i].Amount, e.Amount)
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Amount.Amount > out[b].Amount.Amount
	})
	return out
}
