// Package observability provides a metrics extension for kedai that records
// ledger event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/plugin"
	"github.com/xraph/kedai/purchase"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin               = (*MetricsExtension)(nil)
	_ plugin.OnInit               = (*MetricsExtension)(nil)
	_ plugin.OnIngredientCreated  = (*MetricsExtension)(nil)
	_ plugin.OnIngredientUpdated  = (*MetricsExtension)(nil)
	_ plugin.OnStockAdjusted      = (*MetricsExtension)(nil)
	_ plugin.OnLowStock           = (*MetricsExtension)(nil)
	_ plugin.OnMenuCreated        = (*MetricsExtension)(nil)
	_ plugin.OnMenuUpdated        = (*MetricsExtension)(nil)
	_ plugin.OnOrderRecorded      = (*MetricsExtension)(nil)
	_ plugin.OnOrderProcessed     = (*MetricsExtension)(nil)
	_ plugin.OnOrderStatusChanged = (*MetricsExtension)(nil)
	_ plugin.OnPurchaseRecorded   = (*MetricsExtension)(nil)
	_ plugin.OnExpenseRecorded    = (*MetricsExtension)(nil)
	_ plugin.OnReferenceMissing   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger activity metrics.
// Register it as a kedai plugin to track sales, stock and spending.
type MetricsExtension struct {
	factory MetricFactory

	// Inventory metrics
	IngredientCreated Counter
	IngredientUpdated Counter
	StockAdjusted     Counter
	StockClamped      Counter
	StockLow          Counter

	// Menu metrics
	MenuCreated Counter
	MenuUpdated Counter

	// Order metrics
	OrderRecorded  Counter
	OrderProcessed Counter
	OrderCompleted Counter
	OrderCancelled Counter
	OrderTotal     Histogram
	OrderItems     Histogram

	// Spending metrics
	PurchaseRecorded Counter
	PurchaseCost     Histogram
	ExpenseRecorded  Counter
	ExpenseAmount    Histogram

	// Integrity metrics
	ReferenceMissing Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		IngredientCreated: factory.Counter("kedai.ingredient.created"),
		IngredientUpdated: factory.Counter("kedai.ingredient.updated"),
		StockAdjusted:     factory.Counter("kedai.stock.adjusted"),
		StockClamped:      factory.Counter("kedai.stock.clamped"),
		StockLow:          factory.Counter("kedai.stock.low"),

		MenuCreated: factory.Counter("kedai.menu.created"),
		MenuUpdated: factory.Counter("kedai.menu.updated"),

		OrderRecorded:  factory.Counter("kedai.order.recorded"),
		OrderProcessed: factory.Counter("kedai.order.processed"),
		OrderCompleted: factory.Counter("kedai.order.completed"),
		OrderCancelled: factory.Counter("kedai.order.cancelled"),
		OrderTotal:     factory.Histogram("kedai.order.total_amount"),
		OrderItems:     factory.Histogram("kedai.order.items"),

		PurchaseRecorded: factory.Counter("kedai.purchase.recorded"),
		PurchaseCost:     factory.Histogram("kedai.purchase.total_cost"),
		ExpenseRecorded:  factory.Counter("kedai.expense.recorded"),
		ExpenseAmount:    factory.Histogram("kedai.expense.amount"),

		ReferenceMissing: factory.Counter("kedai.reference.missing"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated implements plugin.OnIngredientCreated.
func (m *MetricsExtension) OnIngredientCreated(_ context.Context, _ *ingredient.Ingredient) error {
	m.IngredientCreated.Inc()
	return nil
}

// OnIngredientUpdated implements plugin.OnIngredientUpdated.
func (m *MetricsExtension) OnIngredientUpdated(_ context.Context, _ *ingredient.Ingredient) error {
	m.IngredientUpdated.Inc()
	return nil
}

// OnStockAdjusted implements plugin.OnStockAdjusted.
func (m *MetricsExtension) OnStockAdjusted(_ context.Context, change ingredient.StockChange) error {
	m.StockAdjusted.Inc()
	if change.Clamped() {
		m.StockClamped.Inc()
	}
	return nil
}

// OnLowStock implements plugin.OnLowStock.
func (m *MetricsExtension) OnLowStock(_ context.Context, _ ingredient.StockChange) error {
	m.StockLow.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Menu hooks
// ──────────────────────────────────────────────────

// OnMenuCreated implements plugin.OnMenuCreated.
func (m *MetricsExtension) OnMenuCreated(_ context.Context, _ *menu.Menu) error {
	m.MenuCreated.Inc()
	return nil
}

// OnMenuUpdated implements plugin.OnMenuUpdated.
func (m *MetricsExtension) OnMenuUpdated(_ context.Context, _ *menu.Menu) error {
	m.MenuUpdated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderRecorded implements plugin.OnOrderRecorded.
func (m *MetricsExtension) OnOrderRecorded(_ context.Context, o *order.Order) error {
	m.OrderRecorded.Inc()
	m.observeOrder(o)
	return nil
}

// OnOrderProcessed implements plugin.OnOrderProcessed.
func (m *MetricsExtension) OnOrderProcessed(_ context.Context, o *order.Order, _ []ingredient.StockChange) error {
	m.OrderProcessed.Inc()
	m.observeOrder(o)
	return nil
}

// OnOrderStatusChanged implements plugin.OnOrderStatusChanged.
func (m *MetricsExtension) OnOrderStatusChanged(_ context.Context, o *order.Order, from order.Status) error {
	if o.Status == from {
		return nil
	}
	switch o.Status {
	case order.StatusCompleted:
		m.OrderCompleted.Inc()
	case order.StatusCancelled:
		m.OrderCancelled.Inc()
	}
	return nil
}

func (m *MetricsExtension) observeOrder(o *order.Order) {
	m.OrderTotal.Observe(float64(o.Total.Amount))
	m.OrderItems.Observe(float64(o.Quantity()))
}

// ──────────────────────────────────────────────────
// Purchase & expense hooks
// ──────────────────────────────────────────────────

// OnPurchaseRecorded implements plugin.OnPurchaseRecorded.
func (m *MetricsExtension) OnPurchaseRecorded(_ context.Context, p *purchase.Purchase, _ *ingredient.StockChange) error {
	m.PurchaseRecorded.Inc()
	m.PurchaseCost.Observe(float64(p.TotalCost.Amount))
	return nil
}

// OnExpenseRecorded implements plugin.OnExpenseRecorded.
func (m *MetricsExtension) OnExpenseRecorded(_ context.Context, e *expense.Expense) error {
	m.ExpenseRecorded.Inc()
	m.ExpenseAmount.Observe(float64(e.Amount.Amount))
	return nil
}

// OnReferenceMissing implements plugin.OnReferenceMissing.
func (m *MetricsExtension) OnReferenceMissing(_ context.Context, _ string, missing []id.ID) error {
	m.ReferenceMissing.Add(float64(len(missing)))
	return nil
}
