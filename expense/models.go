// Package expense models operating expenses.
package expense

import (
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/types"
)

// Expense is an immutable operating cost with no inventory effect.
type Expense struct {
	types.Entity
	ID          id.ExpenseID `json:"id"`
	Description string       `json:"description"`
	Amount      types.Money  `json:"amount"`
	Category    string       `json:"category"`
	Date        time.Time    `json:"date"`
}

// Expense categories offered by the expense form. Any label is accepted.
const (
	CategoryOperational = "Operasional"
	CategorySalary      = "Gaji"
	CategoryRent        = "Sewa"
	CategoryUtilities   = "Utilitas"
	CategoryMarketing   = "Pemasaran"
	CategoryOther       = "Lainnya"
)

// Categories lists the standard expense categories.
func Categories() []string {
	return []string{
		CategoryOperational,
		CategorySalary,
		CategoryRent,
		CategoryUtilities,
		CategoryMarketing,
		CategoryOther,
	}
}
