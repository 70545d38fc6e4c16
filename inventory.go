package kedai

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/types"
)

// ──────────────────────────────────────────────────
// Ingredient Management
// ──────────────────────────────────────────────────

// CreateIngredient adds an ingredient to inventory.
func (l *Ledger) CreateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := validateIngredient(ing); err != nil {
		return err
	}
	if ing.ID.IsNil() {
		ing.ID = id.NewIngredientID()
	}
	ing.Entity = types.NewEntityAt(l.now())
	ing.CostPerUnit = l.money(ing.CostPerUnit)

	if err := l.store.CreateIngredient(ctx, ing); err != nil {
		return err
	}

	l.plugins.EmitIngredientCreated(ctx, ing)
	return nil
}

// GetIngredient retrieves an ingredient by ID.
func (l *Ledger) GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	return l.store.GetIngredient(ctx, ingredientID)
}

// ListIngredients lists ingredients in creation order.
func (l *Ledger) ListIngredients(ctx context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	return l.store.ListIngredients(ctx, opts)
}

// UpdateIngredient replaces an ingredient's fields, stock included. The
// creation time is preserved.
func (l *Ledger) UpdateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := validateIngredient(ing); err != nil {
		return err
	}
	existing, err := l.store.GetIngredient(ctx, ing.ID)
	if err != nil {
		return err
	}
	ing.CreatedAt = existing.CreatedAt
	ing.UpdatedAt = l.now().UTC()
	ing.CostPerUnit = l.money(ing.CostPerUnit)

	if err := l.store.UpdateIngredient(ctx, ing); err != nil {
		return err
	}

	l.plugins.EmitIngredientUpdated(ctx, ing)
	return nil
}

// AdjustIngredientStock removes delta from an ingredient's stock, clamping
// at zero: stock = max(0, stock - delta). A negative delta adds stock.
func (l *Ledger) AdjustIngredientStock(ctx context.Context, ingredientID id.IngredientID, delta decimal.Decimal) (*ingredient.StockChange, error) {
	changes, err := l.store.AdjustStock(ctx, []ingredient.Adjustment{
		{IngredientID: ingredientID, Delta: delta.Neg()},
	})
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, ErrIngredientNotFound
	}

	change := changes[0]
	l.warnLowStock(change)
	l.plugins.EmitStockAdjusted(ctx, change)
	return &change, nil
}

func (l *Ledger) warnLowStock(changes ...ingredient.StockChange) {
	for _, c := range changes {
		if c.CrossedMinimum() {
			l.logger.Warn("ingredient low on stock",
				"ingredient", c.Name,
				"stock", c.After.String(),
				"min_stock", c.MinStock.String(),
				"unit", string(c.Unit),
			)
		}
	}
}

// ──────────────────────────────────────────────────
// Menu Management
// ──────────────────────────────────────────────────

// CreateMenu adds a menu item. Recipe ingredients that do not exist are
// rejected under ReferenceStrict and logged otherwise.
func (l *Ledger) CreateMenu(ctx context.Context, m *menu.Menu) error {
	if err := validateMenu(m); err != nil {
		return err
	}
	missing, err := l.unresolvedRecipe(ctx, m)
	if err != nil {
		return err
	}
	if err := l.rejectMissing("create menu", missing); err != nil {
		return err
	}
	if m.ID.IsNil() {
		m.ID = id.NewMenuID()
	}
	m.Entity = types.NewEntityAt(l.now())
	m.Price = l.money(m.Price)

	if err := l.store.CreateMenu(ctx, m); err != nil {
		return err
	}

	l.reportMissing(ctx, "create menu", missing)
	l.plugins.EmitMenuCreated(ctx, m)
	return nil
}

// GetMenu retrieves a menu item by ID.
func (l *Ledger) GetMenu(ctx context.Context, menuID id.MenuID) (*menu.Menu, error) {
	return l.store.GetMenu(ctx, menuID)
}

// ListMenus lists menu items in creation order.
func (l *Ledger) ListMenus(ctx context.Context, opts menu.ListOpts) ([]*menu.Menu, error) {
	return l.store.ListMenus(ctx, opts)
}

// UpdateMenu replaces a menu item. Orders already recorded keep the name
// and price they were sold at.
func (l *Ledger) UpdateMenu(ctx context.Context, m *menu.Menu) error {
	if err := validateMenu(m); err != nil {
		return err
	}
	existing, err := l.store.GetMenu(ctx, m.ID)
	if err != nil {
		return err
	}
	missing, err := l.unresolvedRecipe(ctx, m)
	if err != nil {
		return err
	}
	if err := l.rejectMissing("update menu", missing); err != nil {
		return err
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = l.now().UTC()
	m.Price = l.money(m.Price)

	if err := l.store.UpdateMenu(ctx, m); err != nil {
		return err
	}

	l.reportMissing(ctx, "update menu", missing)
	l.plugins.EmitMenuUpdated(ctx, m)
	return nil
}

// unresolvedRecipe returns the recipe ingredients that do not exist.
func (l *Ledger) unresolvedRecipe(ctx context.Context, m *menu.Menu) ([]id.ID, error) {
	var missing []id.ID
	seen := map[string]bool{}
	for _, ingID := range m.IngredientIDs() {
		if seen[ingID.String()] {
			continue
		}
		seen[ingID.String()] = true
		ok, err := l.ingredientExists(ctx, ingID)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, ingID)
		}
	}
	return missing, nil
}

func (l *Ledger) ingredientExists(ctx context.Context, ingredientID id.IngredientID) (bool, error) {
	_, err := l.store.GetIngredient(ctx, ingredientID)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// rejectMissing returns a *ReferenceError under ReferenceStrict when
// anything is missing.
func (l *Ledger) rejectMissing(op string, missing []id.ID) error {
	if len(missing) == 0 || l.referencePolicy != ReferenceStrict {
		return nil
	}
	return &ReferenceError{Op: op, Missing: missing}
}

// reportMissing logs references a lenient mutation could not resolve and
// announces them to plugins.
func (l *Ledger) reportMissing(ctx context.Context, op string, missing []id.ID) {
	if len(missing) == 0 {
		return
	}

	ids := make([]string, len(missing))
	for i, m := range missing {
		ids[i] = m.String()
	}
	l.logger.Warn("unresolved references",
		"op", op,
		"missing", ids,
	)
	l.plugins.EmitReferenceMissing(ctx, op, missing)
}
