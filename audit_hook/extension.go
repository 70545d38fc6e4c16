// Package audithook bridges kedai ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter at
// wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/plugin"
	"github.com/xraph/kedai/purchase"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Extension)(nil)
	_ plugin.OnIngredientCreated  = (*Extension)(nil)
	_ plugin.OnIngredientUpdated  = (*Extension)(nil)
	_ plugin.OnStockAdjusted      = (*Extension)(nil)
	_ plugin.OnLowStock           = (*Extension)(nil)
	_ plugin.OnMenuCreated        = (*Extension)(nil)
	_ plugin.OnMenuUpdated        = (*Extension)(nil)
	_ plugin.OnOrderRecorded      = (*Extension)(nil)
	_ plugin.OnOrderProcessed     = (*Extension)(nil)
	_ plugin.OnOrderStatusChanged = (*Extension)(nil)
	_ plugin.OnPurchaseRecorded   = (*Extension)(nil)
	_ plugin.OnExpenseRecorded    = (*Extension)(nil)
	_ plugin.OnReferenceMissing   = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a single audit trail entry.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges ledger events to an audit trail backend.
type Extension struct {
	recorder       Recorder
	enabled        map[string]bool // nil = all enabled
	stockMovements bool
	logger         *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Inventory hooks
// ──────────────────────────────────────────────────

// OnIngredientCreated implements plugin.OnIngredientCreated.
func (e *Extension) OnIngredientCreated(ctx context.Context, ing *ingredient.Ingredient) error {
	return e.record(ctx, ActionIngredientCreated, SeverityInfo, OutcomeSuccess,
		ResourceIngredient, ing.ID.String(), CategoryInventory, nil,
		"name", ing.Name,
		"stock", ing.Stock.String(),
		"unit", string(ing.Unit),
	)
}

// OnIngredientUpdated implements plugin.OnIngredientUpdated.
func (e *Extension) OnIngredientUpdated(ctx context.Context, ing *ingredient.Ingredient) error {
	return e.record(ctx, ActionIngredientUpdated, SeverityInfo, OutcomeSuccess,
		ResourceIngredient, ing.ID.String(), CategoryInventory, nil,
		"name", ing.Name,
		"stock", ing.Stock.String(),
		"cost_per_unit", ing.CostPerUnit.Amount,
	)
}

// OnStockAdjusted implements plugin.OnStockAdjusted.
func (e *Extension) OnStockAdjusted(ctx context.Context, c ingredient.StockChange) error {
	if !e.stockMovements {
		return nil
	}
	outcome := OutcomeSuccess
	if c.Clamped() {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionStockAdjusted, SeverityInfo, outcome,
		ResourceIngredient, c.IngredientID.String(), CategoryInventory, nil,
		"name", c.Name,
		"requested", c.Requested.String(),
		"before", c.Before.String(),
		"after", c.After.String(),
	)
}

// OnLowStock implements plugin.OnLowStock.
func (e *Extension) OnLowStock(ctx context.Context, c ingredient.StockChange) error {
	severity := SeverityWarning
	if c.After.IsZero() {
		severity = SeverityCritical
	}
	return e.record(ctx, ActionStockLow, severity, OutcomeSuccess,
		ResourceIngredient, c.IngredientID.String(), CategoryInventory, nil,
		"name", c.Name,
		"stock", c.After.String(),
		"min_stock", c.MinStock.String(),
		"unit", string(c.Unit),
	)
}

// ──────────────────────────────────────────────────
// Menu hooks
// ──────────────────────────────────────────────────

// OnMenuCreated implements plugin.OnMenuCreated.
func (e *Extension) OnMenuCreated(ctx context.Context, m *menu.Menu) error {
	return e.record(ctx, ActionMenuCreated, SeverityInfo, OutcomeSuccess,
		ResourceMenu, m.ID.String(), CategoryCatalog, nil,
		"name", m.Name,
		"price", m.Price.Amount,
		"recipe_lines", len(m.Recipe),
	)
}

// OnMenuUpdated implements plugin.OnMenuUpdated.
func (e *Extension) OnMenuUpdated(ctx context.Context, m *menu.Menu) error {
	return e.record(ctx, ActionMenuUpdated, SeverityInfo, OutcomeSuccess,
		ResourceMenu, m.ID.String(), CategoryCatalog, nil,
		"name", m.Name,
		"price", m.Price.Amount,
		"available", m.Available,
	)
}

// ──────────────────────────────────────────────────
// Order hooks
// ──────────────────────────────────────────────────

// OnOrderRecorded implements plugin.OnOrderRecorded.
func (e *Extension) OnOrderRecorded(ctx context.Context, o *order.Order) error {
	return e.record(ctx, ActionOrderRecorded, SeverityInfo, OutcomeSuccess,
		ResourceOrder, o.ID.String(), CategorySales, nil,
		"number", o.Number,
		"total", o.Total.Amount,
		"items", o.Quantity(),
	)
}

// OnOrderProcessed implements plugin.OnOrderProcessed.
func (e *Extension) OnOrderProcessed(ctx context.Context, o *order.Order, changes []ingredient.StockChange) error {
	outcome := OutcomeSuccess
	for _, c := range changes {
		if c.Clamped() {
			outcome = OutcomePartial
			break
		}
	}
	return e.record(ctx, ActionOrderProcessed, SeverityInfo, outcome,
		ResourceOrder, o.ID.String(), CategorySales, nil,
		"number", o.Number,
		"total", o.Total.Amount,
		"items", o.Quantity(),
		"deductions", len(changes),
	)
}

// OnOrderStatusChanged implements plugin.OnOrderStatusChanged.
func (e *Extension) OnOrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	if o.Status == from {
		return nil
	}

	var action string
	severity := SeverityInfo
	switch o.Status {
	case order.StatusCompleted:
		action = ActionOrderCompleted
	case order.StatusCancelled:
		action = ActionOrderCancelled
	default:
		action = ActionOrderReopened
		severity = SeverityWarning
	}

	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceOrder, o.ID.String(), CategorySales, nil,
		"number", o.Number,
		"from", string(from),
		"to", string(o.Status),
	)
}

// ──────────────────────────────────────────────────
// Purchase & expense hooks
// ──────────────────────────────────────────────────

// OnPurchaseRecorded implements plugin.OnPurchaseRecorded.
func (e *Extension) OnPurchaseRecorded(ctx context.Context, p *purchase.Purchase, change *ingredient.StockChange) error {
	outcome := OutcomeSuccess
	if change == nil {
		outcome = OutcomePartial
	}
	return e.record(ctx, ActionPurchaseRecorded, SeverityInfo, outcome,
		ResourcePurchase, p.ID.String(), CategorySpending, nil,
		"ingredient_id", p.IngredientID.String(),
		"quantity", p.Quantity.String(),
		"total_cost", p.TotalCost.Amount,
		"supplier", p.Supplier,
	)
}

// OnExpenseRecorded implements plugin.OnExpenseRecorded.
func (e *Extension) OnExpenseRecorded(ctx context.Context, x *expense.Expense) error {
	return e.record(ctx, ActionExpenseRecorded, SeverityInfo, OutcomeSuccess,
		ResourceExpense, x.ID.String(), CategorySpending, nil,
		"description", x.Description,
		"amount", x.Amount.Amount,
		"category", x.Category,
	)
}

// OnReferenceMissing implements plugin.OnReferenceMissing.
func (e *Extension) OnReferenceMissing(ctx context.Context, op string, missing []id.ID) error {
	ids := make([]string, len(missing))
	for i, m := range missing {
		ids[i] = m.String()
	}
	return e.record(ctx, ActionReferenceMissing, SeverityWarning, OutcomePartial,
		"", "", CategoryIntegrity, nil,
		"op", op,
		"missing", ids,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
