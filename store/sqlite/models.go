package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/types"
)

// timeLayout is fixed width so that stored UTC timestamps compare
// lexically in range filters.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// currencyOf returns the first non-empty currency among ms.
func currencyOf(ms ...types.Money) string {
	for _, m := range ms {
		if m.Currency != "" {
			return m.Currency
		}
	}
	return ""
}

func money(amount int64, currency string) types.Money {
	return types.Money{Amount: amount, Currency: currency}
}

// ──────────────────────────────────────────────────
// Ingredient
// ──────────────────────────────────────────────────

const ingredientColumns = `id, name, stock, unit, cost_amount, currency, min_stock, created_at, updated_at`

func scanIngredient(r rowScanner) (*ingredient.Ingredient, error) {
	var (
		ing              ingredient.Ingredient
		stock, minStock  string
		unit, currency   string
		cost             int64
		created, updated string
	)
	if err := r.Scan(&ing.ID, &ing.Name, &stock, &unit, &cost, &currency, &minStock, &created, &updated); err != nil {
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
	if ing.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if ing.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &ing, nil
}

// ──────────────────────────────────────────────────
// Menu
// ──────────────────────────────────────────────────

const menuColumns = `id, name, price_amount, currency, category, recipe, available, created_at, updated_at`

type recipeModel struct {
	IngredientID string `json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

func encodeRecipe(lines []menu.RecipeLine) (string, error) {
	out := make([]recipeModel, len(lines))
	for i, l := range lines {
		out[i] = recipeModel{IngredientID: l.IngredientID.String(), Quantity: l.QuantityPerServing.String()}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRecipe(s string) ([]menu.RecipeLine, error) {
	var in []recipeModel
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	out := make([]menu.RecipeLine, len(in))
	for i, l := range in {
		ingID, err := id.ParseIngredientID(l.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
		out[i] = menu.RecipeLine{IngredientID: ingID, QuantityPerServing: qty}
	}
	return out, nil
}

func scanMenu(r rowScanner) (*menu.Menu, error) {
	var (
		m                menu.Menu
		price            int64
		currency, recipe string
		created, updated string
	)
	if err := r.Scan(&m.ID, &m.Name, &price, &currency, &m.Category, &recipe, &m.Available, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	m.Price = money(price, currency)
	if m.Recipe, err = decodeRecipe(recipe); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &m, nil
}

// ──────────────────────────────────────────────────
// Order
// ──────────────────────────────────────────────────

const orderColumns = `id, number, lines, total_amount, currency, status, created_at, completed_at`

// lineModel stores amounts only; every line shares the order currency.
type lineModel struct {
	MenuID    string `json:"menu_id"`
	MenuName  string `json:"menu_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

func encodeLines(lines []order.Line) (string, error) {
	out := make([]lineModel, len(lines))
	for i, l := range lines {
		out[i] = lineModel{
			MenuID:    l.MenuID.String(),
			MenuName:  l.MenuName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount,
			Subtotal:  l.Subtotal.Amount,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeLines(s, currency string) ([]order.Line, error) {
	var in []lineModel
	if err := json.Unmarshal([]byte(s), &in); err != nil {
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

func orderCurrency(o *order.Order) string {
	ms := []types.Money{o.Total}
	for _, l := range o.Lines {
		ms = append(ms, l.UnitPrice, l.Subtotal)
	}
	return currencyOf(ms...)
}

func scanOrder(r rowScanner) (*order.Order, error) {
	var (
		o               order.Order
		lines, currency string
		status, created string
		total           int64
		completed       sql.NullString
	)
	if err := r.Scan(&o.ID, &o.Number, &lines, &total, &currency, &status, &created, &completed); err != nil {
		return nil, err
	}
	var err error
	if o.Lines, err = decodeLines(lines, currency); err != nil {
		return nil, err
	}
	o.Total = money(total, currency)
	o.Status = order.Status(status)
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return nil, err
		}
		o.CompletedAt = &t
	}
	return &o, nil
}

// ──────────────────────────────────────────────────
// Purchase
// ──────────────────────────────────────────────────

const purchaseColumns = `id, ingredient_id, ingredient_name, quantity, unit, cost_amount, total_amount, currency, supplier, purchased_at, created_at, updated_at`

func scanPurchase(r rowScanner) (*purchase.Purchase, error) {
	var (
		p                       purchase.Purchase
		qty, unit, currency     string
		cost, total             int64
		purchased, created, upd string
	)
	if err := r.Scan(&p.ID, &p.IngredientID, &p.IngredientName, &qty, &unit, &cost, &total,
		&currency, &p.Supplier, &purchased, &created, &upd); err != nil {
		return nil, err
	}
	var err error
	if p.Quantity, err = decimal.NewFromString(qty); err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	p.Unit = ingredient.Unit(unit)
	p.CostPerUnit = money(cost, currency)
	p.TotalCost = money(total, currency)
	if p.PurchasedAt, err = parseTime(purchased); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(upd); err != nil {
		return nil, err
	}
	return &p, nil
}

// ──────────────────────────────────────────────────
// Expense
// ──────────────────────────────────────────────────

const expenseColumns = `id, description, amount, currency, category, date, created_at, updated_at`

func scanExpense(r rowScanner) (*expense.Expense, error) {
	var (
		e                      expense.Expense
		amount                 int64
		currency               string
		date, created, updated string
	)
	if err := r.Scan(&e.ID, &e.Description, &amount, &currency, &e.Category, &date, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	e.Amount = money(amount, currency)
	if e.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &e, nil
}
