package kedai

import (
	"context"
	"time"

	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/store"
)

// Snapshot returns a consistent read-only view of every collection.
func (l *Ledger) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	return l.store.Snapshot(ctx)
}

// ReportOptions returns the report options the ledger is configured with.
func (l *Ledger) ReportOptions() report.Options {
	return report.Options{Currency: l.currency, TopN: l.topProducts}
}

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

// SalesReport computes the sales report for the period of kind around ref.
func (l *Ledger) SalesReport(ctx context.Context, kind report.Kind, ref time.Time) (*report.SalesReport, error) {
	p, err := report.NewPeriod(kind, ref)
	if err != nil {
		return nil, err
	}
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Sales(p, snap.Orders, l.ReportOptions()), nil
}

// PurchaseReport computes the purchase report for the period of kind
// around ref.
func (l *Ledger) PurchaseReport(ctx context.Context, kind report.Kind, ref time.Time) (*report.PurchaseReport, error) {
	p, err := report.NewPeriod(kind, ref)
	if err != nil {
		return nil, err
	}
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Purchases(p, snap.Purchases, l.ReportOptions()), nil
}

// ExpenseReport computes the expense report for the period of kind around
// ref.
func (l *Ledger) ExpenseReport(ctx context.Context, kind report.Kind, ref time.Time) (*report.ExpenseReport, error) {
	p, err := report.NewPeriod(kind, ref)
	if err != nil {
		return nil, err
	}
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Expenses(p, snap.Expenses, l.ReportOptions()), nil
}

// CashFlow computes the 12-month cash flow report anchored on ref.
func (l *Ledger) CashFlow(ctx context.Context, mode report.CashFlowMode, ref time.Time) (*report.CashFlowReport, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.CashFlow(mode, ref, snap.Orders, snap.Purchases, snap.Expenses, l.ReportOptions()), nil
}

// ProfitLoss computes the income statement for the year of ref.
func (l *Ledger) ProfitLoss(ctx context.Context, ref time.Time) (*report.ProfitLossReport, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.ProfitLoss(ref, snap.Orders, snap.Purchases, snap.Expenses, l.ReportOptions()), nil
}

// Dashboard computes the dashboard summary as of the ledger clock.
func (l *Ledger) Dashboard(ctx context.Context) (*report.DashboardReport, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Dashboard(l.now(), snap.Ingredients, snap.Orders, snap.Purchases, snap.Expenses, l.ReportOptions()), nil
}

// Inventory computes the current stock valuation.
func (l *Ledger) Inventory(ctx context.Context) (*report.InventoryReport, error) {
	snap, err := l.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return report.Inventory(snap.Ingredients, l.ReportOptions()), nil
}
