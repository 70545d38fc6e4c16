package expense

import (
	"context"
	"time"

	"github.com/xraph/kedai/id"
)

// Store defines the persistence operations for expenses.
type Store interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, expenseID id.ExpenseID) (*Expense, error)
	ListExpenses(ctx context.Context, opts ListOpts) ([]*Expense, error)
}

// ListOpts filters expense listings. From and To bound Date as the
// half-open range [From, To).
type ListOpts struct {
	Category string
	From     time.Time
	To       time.Time
}

// Match reports whether e passes the filter.
func (o ListOpts) Match(e *Expense) bool {
	if o.Category != "" && e.Category != o.Category {
		return false
	}
	if !o.From.IsZero() && e.Date.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && !e.Date.Before(o.To) {
		return false
	}
	return true
}
