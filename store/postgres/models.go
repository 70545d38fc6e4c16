package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// NUMERIC columns are selected as text so decimals round-trip exactly.

const ingredientColumns = `id, name, stock::text, unit, cost_amount, currency, min_stock::text, created_at, updated_at`

const menuColumns = `id, name, price_amount, currency, category, recipe, available, created_at, updated_at`

const orderColumns = `id, number, lines, total_amount, currency, status, created_at, completed_at`

const purchaseColumns = `id, ingredient_id, ingredient_name, quantity::text, unit, cost_amount, total_amount, currency, supplier, purchased_at, created_at, updated_at`

const expenseColumns = `id, description, amount, currency, category, date, created_at, updated_at`

// recipeLineModel is the JSONB shape of one recipe line.
type recipeLineModel struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// orderLineModel is the JSONB shape of one order line. Amounts share the
// order's currency column.
type orderLineModel struct {
	MenuID    string `json:"menu_id"`
	MenuName  string `json:"menu_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

func money(amount int64, currency string) types.Money {
	return types.Money{Amount: amount, Currency: currency}
}

func currencyOf(ms ...types.Money) string {
	for _, m := range ms {
		if m.Currency != "" {
			return m.Currency
		}
	}
	return ""
}

func utc(t time.Time) time.Time { return t.UTC() }

func toRecipeJSON(lines []menu.RecipeLine) ([]byte, error) {
	out := make([]recipeLineModel, len(lines))
	for i, l := range lines {
		out[i] = recipeLineModel{IngredientID: l.IngredientID.String(), Quantity: l.QuantityPerServing}
	}
	return json.Marshal(out)
}

func fromRecipeJSON(raw []byte) ([]menu.RecipeLine, error) {
	var in []recipeLineModel
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	out := make([]menu.RecipeLine, len(in))
	for i, l := range in {
		ingID, err := id.ParseIngredientID(l.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
		out[i] = menu.RecipeLine{IngredientID: ingID, QuantityPerServing: l.Quantity}
	}
	return out, nil
}

func toLinesJSON(lines []order.Line) ([]byte, error) {
	out := make([]orderLineModel, len(lines))
	for i, l := range lines {
		out[i] = orderLineModel{
			MenuID:    l.MenuID.String(),
			MenuName:  l.MenuName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount,
			Subtotal:  l.Subtotal.Amount,
		}
	}
	return json.Marshal(out)
}

func fromLinesJSON(raw []byte, currency string) ([]order.Line, error) {
	var in []orderLineModel
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("lines: %w", err)
	}
	out := make([]order.Line, len(in))
	for i, l := range in {
		var menuID id.MenuID
		if err := menuID.UnmarshalText([]byte(l.MenuID)); err != nil {
			return nil, fmt.Errorf("lines: %w", err)
		}
		out[i] = order.Line{
			MenuID:    menuID,
			MenuName:  l.MenuName,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPrice, currency),
			Subtotal:  money(l.Subtotal, currency),
		}
	}
	return out, nil
}

func lineCurrency(o *order.Order) string {
	ms := []types.Money{o.Total}
	for _, l := range o.Lines {
		ms = append(ms, l.UnitPrice)
	}
	return currencyOf(ms...)
}

// ──────────────────────────────────────────────────
// Row scanners
// ──────────────────────────────────────────────────

func scanIngredient(row pgx.Row) (*ingredient.Ingredient, error) {
	var (
		ing             ingredient.Ingredient
		stock, minStock string
		unit, currency  string
		cost            int64
	)
	if err := row.Scan(&ing.ID, &ing.Name, &stock, &unit, &cost, &currency, &minStock, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if ing.Stock, err = decimal.NewFromString(stock); err != nil {
		return nil, fmt.Errorf("stock: %w", err)
	}
	if ing.MinStock, err = decimal.NewFromString(minStock); err != nil {
		return nil, fmt.Errorf("min_stock: %w", err)
	}
	ing.Unit = ingredient.Unit(unit)
	ing.CostPerUnit = money(cost, currency)
	ing.CreatedAt, ing.UpdatedAt = utc(ing.CreatedAt), utc(ing.UpdatedAt)
	return &ing, nil
}

func scanMenu(row pgx.Row) (*menu.Menu, error) {
	var (
		m        menu.Menu
		price    int64
		currency string
		recipe   []byte
	)
	if err := row.Scan(&m.ID, &m.Name, &price, &currency, &m.Category, &recipe, &m.Available, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if m.Recipe, err = fromRecipeJSON(recipe); err != nil {
		return nil, err
	}
	m.Price = money(price, currency)
	m.CreatedAt, m.UpdatedAt = utc(m.CreatedAt), utc(m.UpdatedAt)
	return &m, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o                order.Order
		lines            []byte
		total            int64
		currency, status string
		completed        *time.Time
	)
	if err := row.Scan(&o.ID, &o.Number, &lines, &total, &currency, &status, &o.CreatedAt, &completed); err != nil {
		return nil, err
	}
	var err error
	if o.Lines, err = fromLinesJSON(lines, currency); err != nil {
		return nil, err
	}
	o.Total = money(total, currency)
	o.Status = order.Status(status)
	o.CreatedAt = utc(o.CreatedAt)
	if completed != nil {
		t := utc(*completed)
		o.CompletedAt = &t
	}
	return &o, nil
}

func scanPurchase(row pgx.Row) (*purchase.Purchase, error) {
	var (
		p                   purchase.Purchase
		qty, unit, currency string
		cost, total         int64
	)
	if err := row.Scan(&p.ID, &p.IngredientID, &p.IngredientName, &qty, &unit, &cost, &total,
		&currency, &p.Supplier, &p.PurchasedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Quantity, err = decimal.NewFromString(qty); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	p.Unit = ingredient.Unit(unit)
	p.CostPerUnit = money(cost, currency)
	p.TotalCost = money(total, currency)
	p.PurchasedAt, p.CreatedAt, p.UpdatedAt = utc(p.PurchasedAt), utc(p.CreatedAt), utc(p.UpdatedAt)
	return &p, nil
}

func scanExpense(row pgx.Row) (*expense.Expense, error) {
	var (
		e        expense.Expense
		amount   int64
		currency string
	)
	if err := row.Scan(&e.ID, &e.Description, &amount, &currency, &e.Category, &e.Date, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Amount = money(amount, currency)
	e.Date, e.CreatedAt, e.UpdatedAt = utc(e.Date), utc(e.CreatedAt), utc(e.UpdatedAt)
	return &e, nil
}
