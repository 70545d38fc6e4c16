package mongo

import (
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

// Decimals are stored in their exact string form.

// ==================== Ingredient models ====================

type ingredientModel struct {
	ID         string    `bson:"_id"`
	Seq        int64     `bson:"seq"`
	Name       string    `bson:"name"`
	Stock      string    `bson:"stock"`
	Unit       string    `bson:"unit"`
	CostAmount int64     `bson:"cost_amount"`
	Currency   string    `bson:"currency"`
	MinStock   string    `bson:"min_stock"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func toIngredientModel(ing *ingredient.Ingredient) *ingredientModel {
	return &ingredientModel{
		ID:         ing.ID.String(),
		Name:       ing.Name,
		Stock:      ing.Stock.String(),
		Unit:       string(ing.Unit),
		CostAmount: ing.CostPerUnit.Amount,
		Currency:   ing.CostPerUnit.Currency,
		MinStock:   ing.MinStock.String(),
		CreatedAt:  ing.CreatedAt,
		UpdatedAt:  ing.UpdatedAt,
	}
}

func fromIngredientModel(m *ingredientModel) (*ingredient.Ingredient, error) {
	ingID, err := id.ParseIngredientID(m.ID)
	if err != nil {
		return nil, err
	}
	stock, err := decimal.NewFromString(m.Stock)
	if err != nil {
		return nil, fmt.Errorf("stock: %w", err)
	}
	minStock, err := decimal.NewFromString(m.MinStock)
	if err != nil {
		return nil, fmt.Errorf("min_stock: %w", err)
	}
	return &ingredient.Ingredient{
		Entity:      types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
		ID:          ingID,
		Name:        m.Name,
		Stock:       stock,
		Unit:        ingredient.Unit(m.Unit),
		CostPerUnit: types.Money{Amount: m.CostAmount, Currency: m.Currency},
		MinStock:    minStock,
	}, nil
}

// ==================== Menu models ====================

type menuModel struct {
	ID          string            `bson:"_id"`
	Seq         int64             `bson:"seq"`
	Name        string            `bson:"name"`
	PriceAmount int64             `bson:"price_amount"`
	Currency    string            `bson:"currency"`
	Category    string            `bson:"category"`
	Recipe      []recipeLineModel `bson:"recipe"`
	Available   bool              `bson:"available"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

type recipeLineModel struct {
	IngredientID string `bson:"ingredient_id"`
	Quantity     string `bson:"quantity"`
}

func toMenuModel(m *menu.Menu) *menuModel {
	recipe := make([]recipeLineModel, len(m.Recipe))
	for i, l := range m.Recipe {
		recipe[i] = recipeLineModel{IngredientID: l.IngredientID.String(), Quantity: l.QuantityPerServing.String()}
	}
	return &menuModel{
		ID:          m.ID.String(),
		Name:        m.Name,
		PriceAmount: m.Price.Amount,
		Currency:    m.Price.Currency,
		Category:    m.Category,
		Recipe:      recipe,
		Available:   m.Available,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromMenuModel(m *menuModel) (*menu.Menu, error) {
	menuID, err := id.ParseMenuID(m.ID)
	if err != nil {
		return nil, err
	}
	recipe := make([]menu.RecipeLine, len(m.Recipe))
	for i, l := range m.Recipe {
		ingID, err := id.ParseIngredientID(l.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			return nil, fmt.Errorf("recipe: %w", err)
		}
		recipe[i] = menu.RecipeLine{IngredientID: ingID, QuantityPerServing: qty}
	}
	return &menu.Menu{
		Entity:    types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
		ID:        menuID,
		Name:      m.Name,
		Price:     types.Money{Amount: m.PriceAmount, Currency: m.Currency},
		Category:  m.Category,
		Recipe:    recipe,
		Available: m.Available,
	}, nil
}

// ==================== Order models ====================

type orderModel struct {
	ID          string           `bson:"_id"`
	Seq         int64            `bson:"seq"`
	Number      string           `bson:"number"`
	Lines       []orderLineModel `bson:"lines"`
	TotalAmount int64            `bson:"total_amount"`
	Currency    string           `bson:"currency"`
	Status      string           `bson:"status"`
	CreatedAt   time.Time        `bson:"created_at"`
	CompletedAt *time.Time       `bson:"completed_at,omitempty"`
}

type orderLineModel struct {
	MenuID    string `bson:"menu_id"`
	MenuName  string `bson:"menu_name"`
	Quantity  int    `bson:"quantity"`
	UnitPrice int64  `bson:"unit_price"`
	Subtotal  int64  `bson:"subtotal"`
}

func toOrderModel(o *order.Order) *orderModel {
	currency := o.Total.Currency
	lines := make([]orderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		if currency == "" {
			currency = l.UnitPrice.Currency
		}
		lines[i] = orderLineModel{
			MenuID:    l.MenuID.String(),
			MenuName:  l.MenuName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Amount,
			Subtotal:  l.Subtotal.Amount,
		}
	}
	return &orderModel{
		ID:          o.ID.String(),
		Number:      o.Number,
		Lines:       lines,
		TotalAmount: o.Total.Amount,
		Currency:    currency,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
		CompletedAt: o.CompletedAt,
	}
}

func fromOrderModel(m *orderModel) (*order.Order, error) {
	orderID, err := id.ParseOrderID(m.ID)
	if err != nil {
		return nil, err
	}
	lines := make([]order.Line, len(m.Lines))
	for i, l := range m.Lines {
		var menuID id.MenuID
		if err := menuID.UnmarshalText([]byte(l.MenuID)); err != nil {
			return nil, fmt.Errorf("lines: %w", err)
		}
		lines[i] = order.Line{
			MenuID:    menuID,
			MenuName:  l.MenuName,
			Quantity:  l.Quantity,
			UnitPrice: types.Money{Amount: l.UnitPrice, Currency: m.Currency},
			Subtotal:  types.Money{Amount: l.Subtotal, Currency: m.Currency},
		}
	}
	o := &order.Order{
		ID:        orderID,
		Number:    m.Number,
		Lines:     lines,
		Total:     types.Money{Amount: m.TotalAmount, Currency: m.Currency},
		Status:    order.Status(m.Status),
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		t := m.CompletedAt.UTC()
		o.CompletedAt = &t
	}
	return o, nil
}

// ==================== Purchase models ====================

type purchaseModel struct {
	ID             string    `bson:"_id"`
	Seq            int64     `bson:"seq"`
	IngredientID   string    `bson:"ingredient_id"`
	IngredientName string    `bson:"ingredient_name"`
	Quantity       string    `bson:"quantity"`
	Unit           string    `bson:"unit"`
	CostAmount     int64     `bson:"cost_amount"`
	TotalAmount    int64     `bson:"total_amount"`
	Currency       string    `bson:"currency"`
	Supplier       string    `bson:"supplier"`
	PurchasedAt    time.Time `bson:"purchased_at"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func toPurchaseModel(p *purchase.Purchase) *purchaseModel {
	currency := p.TotalCost.Currency
	if currency == "" {
		currency = p.CostPerUnit.Currency
	}
	return &purchaseModel{
		ID:             p.ID.String(),
		IngredientID:   p.IngredientID.String(),
		IngredientName: p.IngredientName,
		Quantity:       p.Quantity.String(),
		Unit:           string(p.Unit),
		CostAmount:     p.CostPerUnit.Amount,
		TotalAmount:    p.TotalCost.Amount,
		Currency:       currency,
		Supplier:       p.Supplier,
		PurchasedAt:    p.PurchasedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromPurchaseModel(m *purchaseModel) (*purchase.Purchase, error) {
	purchaseID, err := id.ParsePurchaseID(m.ID)
	if err != nil {
		return nil, err
	}
	ingID, err := id.ParseIngredientID(m.IngredientID)
	if err != nil {
		return nil, err
	}
	qty, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return nil, fmt.Errorf("quantity: %w", err)
	}
	return &purchase.Purchase{
		Entity:         types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
		ID:             purchaseID,
		IngredientID:   ingID,
		IngredientName: m.IngredientName,
		Quantity:       qty,
		Unit:           ingredient.Unit(m.Unit),
		CostPerUnit:    types.Money{Amount: m.CostAmount, Currency: m.Currency},
		TotalCost:      types.Money{Amount: m.TotalAmount, Currency: m.Currency},
		Supplier:       m.Supplier,
		PurchasedAt:    m.PurchasedAt.UTC(),
	}, nil
}

// ==================== Expense models ====================

type expenseModel struct {
	ID          string    `bson:"_id"`
	Seq         int64     `bson:"seq"`
	Description string    `bson:"description"`
	Amount      int64     `bson:"amount"`
	Currency    string    `bson:"currency"`
	Category    string    `bson:"category"`
	Date        time.Time `bson:"date"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toExpenseModel(e *expense.Expense) *expenseModel {
	return &expenseModel{
		ID:          e.ID.String(),
		Description: e.Description,
		Amount:      e.Amount.Amount,
		Currency:    e.Amount.Currency,
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromExpenseModel(m *expenseModel) (*expense.Expense, error) {
	expenseID, err := id.ParseExpenseID(m.ID)
	if err != nil {
		return nil, err
	}
	return &expense.Expense{
		Entity:      types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
		ID:          expenseID,
		Description: m.Description,
		Amount:      types.Money{Amount: m.Amount, Currency: m.Currency},
		Category:    m.Category,
		Date:        m.Date.UTC(),
	}, nil
}
