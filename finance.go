package kedai

import (
	"context"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// PurchaseResult is the outcome of recording a purchase.
type PurchaseResult struct {
	Purchase *purchase.Purchase `json:"purchase"`

	// Change is the restock applied, nil when the ingredient was missing.
	Change *ingredient.StockChange `json:"change,omitempty"`

	// Missing holds the purchase's ingredient when it could not be
	// resolved under ReferenceLenient.
	Missing []id.ID `json:"missing,omitempty"`
}

// ──────────────────────────────────────────────────
// Purchases
// ──────────────────────────────────────────────────

// AddPurchase appends a purchase to the purchase log and adds its
// quantity to the ingredient's stock in the same step. The total cost is
// computed when zero and the ingredient's name and unit are snapshotted
// when empty.
func (l *Ledger) AddPurchase(ctx context.Context, p *purchase.Purchase) (*PurchaseResult, error) {
	if err := validatePurchase(p); err != nil {
		return nil, err
	}

	ing, err := l.store.GetIngredient(ctx, p.IngredientID)
	var missing []id.ID
	switch {
	case err == nil:
	case IsNotFound(err):
		missing = []id.ID{p.IngredientID}
	default:
		return nil, err
	}
	if err := l.rejectMissing("add purchase", missing); err != nil {
		return nil, err
	}

	if p.ID.IsNil() {
		p.ID = id.NewPurchaseID()
	}
	now := l.now()
	p.Entity = types.NewEntityAt(now)
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = now
	}
	if ing != nil {
		if p.IngredientName == "" {
			p.IngredientName = ing.Name
		}
		if p.Unit == "" {
			p.Unit = ing.Unit
		}
	}
	p.CostPerUnit = l.money(p.CostPerUnit)
	if p.TotalCost.IsZero() {
		p.TotalCost = p.ComputedTotal()
	}

	var restock *ingredient.Adjustment
	if ing != nil {
		adj := p.Restock()
		restock = &adj
	}

	change, err := l.store.RecordPurchase(ctx, p, restock)
	if err != nil {
		return nil, err
	}

	l.reportMissing(ctx, "add purchase", missing)
	l.plugins.EmitPurchaseRecorded(ctx, p, change)

	return &PurchaseResult{Purchase: p, Change: change, Missing: missing}, nil
}

// GetPurchase retrieves a purchase by ID.
func (l *Ledger) GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	return l.store.GetPurchase(ctx, purchaseID)
}

// ListPurchases lists purchases in insertion order.
func (l *Ledger) ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	return l.store.ListPurchases(ctx, opts)
}

// ──────────────────────────────────────────────────
// Expenses
// ──────────────────────────────────────────────────

// AddExpense appends an operating expense. It has no stock effect.
func (l *Ledger) AddExpense(ctx context.Context, e *expense.Expense) error {
	if err := validateExpense(e); err != nil {
		return err
	}
	if e.ID.IsNil() {
		e.ID = id.NewExpenseID()
	}
	now := l.now()
	e.Entity = types.NewEntityAt(now)
	if e.Date.IsZero() {
		e.Date = now
	}
	e.Amount = l.money(e.Amount)

	if err := l.store.CreateExpense(ctx, e); err != nil {
		return err
	}

	l.plugins.EmitExpenseRecorded(ctx, e)
	return nil
}

// GetExpense retrieves an expense by ID.
func (l *Ledger) GetExpense(ctx context.Context, expenseID id.ExpenseID) (*expense.Expense, error) {
	return l.store.GetExpense(ctx, expenseID)
}

// ListExpenses lists expenses in insertion order.
func (l *Ledger) ListExpenses(ctx context.Context, opts expense.ListOpts) ([]*expense.Expense, error) {
	return l.store.ListExpenses(ctx, opts)
}
