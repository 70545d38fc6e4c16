// Package seed provides the demonstration dataset a fresh kedai ledger
// starts with.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/types"
)

// Jakarta is Western Indonesian Time (UTC+7). A fixed zone keeps the
// dataset independent of the host's tzdata.
var Jakarta = time.FixedZone("WIB", 7*60*60)

// Stable identifiers of the seeded records.
var (
	Nasi         = id.MustParseWithPrefix("ingr_00000000000000000000000001", id.PrefixIngredient)
	Ayam         = id.MustParseWithPrefix("ingr_00000000000000000000000002", id.PrefixIngredient)
	Sayur        = id.MustParseWithPrefix("ingr_00000000000000000000000003", id.PrefixIngredient)
	Bumbu        = id.MustParseWithPrefix("ingr_00000000000000000000000004", id.PrefixIngredient)
	MinyakGoreng = id.MustParseWithPrefix("ingr_00000000000000000000000005", id.PrefixIngredient)

	NasiGorengAyam = id.MustParseWithPrefix("menu_00000000000000000000000001", id.PrefixMenu)
	MieGoreng      = id.MustParseWithPrefix("menu_00000000000000000000000002", id.PrefixMenu)
	EsTehManis     = id.MustParseWithPrefix("menu_00000000000000000000000003", id.PrefixMenu)

	FirstOrder    = id.MustParseWithPrefix("ord_00000000000000000000000001", id.PrefixOrder)
	FirstPurchase = id.MustParseWithPrefix("pur_00000000000000000000000001", id.PrefixPurchase)
	Electricity   = id.MustParseWithPrefix("exp_00000000000000000000000001", id.PrefixExpense)
	Water         = id.MustParseWithPrefix("exp_00000000000000000000000002", id.PrefixExpense)
)

// Data is a complete dataset.
type Data struct {
	Ingredients []*ingredient.Ingredient
	Menus       []*menu.Menu
	Orders      []*order.Order
	Purchases   []*purchase.Purchase
	Expenses    []*expense.Expense
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func wib(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, Jakarta)
}

// Dataset returns a fresh copy of the demonstration data: 5 ingredients,
// 3 menus with recipes, 1 order, 1 purchase and 2 expenses. The recorded
// purchase is history; stock levels already include it.
func Dataset() *Data {
	created := types.NewEntityAt(wib(2024, time.January, 1, 8, 0))

	ingredients := []*ingredient.Ingredient{
		{Entity: created, ID: Nasi, Name: "Nasi", Stock: qty("50"), Unit: ingredient.UnitKilogram, CostPerUnit: types.IDR(12000), MinStock: qty("10")},
		{Entity: created, ID: Ayam, Name: "Ayam", Stock: qty("30"), Unit: ingredient.UnitKilogram, CostPerUnit: types.IDR(35000), MinStock: qty("5")},
		{Entity: created, ID: Sayur, Name: "Sayur", Stock: qty("20"), Unit: ingredient.UnitKilogram, CostPerUnit: types.IDR(15000), MinStock: qty("8")},
		{Entity: created, ID: Bumbu, Name: "Bumbu", Stock: qty("15"), Unit: ingredient.UnitKilogram, CostPerUnit: types.IDR(25000), MinStock: qty("3")},
		{Entity: created, ID: MinyakGoreng, Name: "Minyak Goreng", Stock: qty("25"), Unit: ingredient.UnitLiter, CostPerUnit: types.IDR(18000), MinStock: qty("5")},
	}

	menus := []*menu.Menu{
		{
			Entity:   created,
			ID:       NasiGorengAyam,
			Name:     "Nasi Goreng Ayam",
			Price:    types.IDR(25000),
			Category: menu.CategoryMainCourse,
			Recipe: []menu.RecipeLine{
				{IngredientID: Nasi, QuantityPerServing: qty("0.3")},
				{IngredientID: Ayam, QuantityPerServing: qty("0.2")},
				{IngredientID: Sayur, QuantityPerServing: qty("0.1")},
				{IngredientID: Bumbu, QuantityPerServing: qty("0.05")},
				{IngredientID: MinyakGoreng, QuantityPerServing: qty("0.02")},
			},
			Available: true,
		},
		{
			Entity:   created,
			ID:       MieGoreng,
			Name:     "Mie Goreng",
			Price:    types.IDR(22000),
			Category: menu.CategoryMainCourse,
			Recipe: []menu.RecipeLine{
				{IngredientID: Ayam, QuantityPerServing: qty("0.15")},
				{IngredientID: Sayur, QuantityPerServing: qty("0.1")},
				{IngredientID: Bumbu, QuantityPerServing: qty("0.05")},
				{IngredientID: MinyakGoreng, QuantityPerServing: qty("0.02")},
			},
			Available: true,
		},
		{
			Entity:   created,
			ID:       EsTehManis,
			Name:     "Es Teh Manis",
			Price:    types.IDR(5000),
			Category: menu.CategoryDrink,
			Recipe: []menu.RecipeLine{
				{IngredientID: Bumbu, QuantityPerServing: qty("0.01")},
			},
			Available: true,
		},
	}

	first := order.New("ORD-001", wib(2024, time.January, 15, 10, 30),
		order.NewLine(menus[0], 2),
		order.NewLine(menus[2], 2),
	)
	first.ID = FirstOrder
	first.Status = order.StatusCompleted
	completed := wib(2024, time.January, 15, 10, 45)
	first.CompletedAt = &completed

	rice := purchase.New(ingredients[0], qty("100"), types.IDR(12000), "PT Beras Sejahtera", wib(2024, time.January, 10, 0, 0))
	rice.ID = FirstPurchase
	rice.Entity = types.NewEntityAt(rice.PurchasedAt)

	expenses := []*expense.Expense{
		{
			Entity:      types.NewEntityAt(wib(2024, time.January, 15, 0, 0)),
			ID:          Electricity,
			Description: "Biaya Listrik",
			Amount:      types.IDR(500000),
			Category:    expense.CategoryOperational,
			Date:        wib(2024, time.January, 15, 0, 0),
		},
		{
			Entity:      types.NewEntityAt(wib(2024, time.January, 15, 0, 0)),
			ID:          Water,
			Description: "Biaya Air",
			Amount:      types.IDR(150000),
			Category:    expense.CategoryOperational,
			Date:        wib(2024, time.January, 15, 0, 0),
		},
	}

	return &Data{
		Ingredients: ingredients,
		Menus:       menus,
		Orders:      []*order.Order{first},
		Purchases:   []*purchase.Purchase{rice},
		Expenses:    expenses,
	}
}

// Load writes the demonstration dataset into s. Historical records are
// stored as-is without replaying their stock effects.
func Load(ctx context.Context, s store.Store) error {
	return LoadData(ctx, s, Dataset())
}

// LoadData writes d into s in dependency order.
func LoadData(ctx context.Context, s store.Store, d *Data) error {
	for _, ing := range d.Ingredients {
		if err := s.CreateIngredient(ctx, ing); err != nil {
			return fmt.Errorf("seed: ingredient %s: %w", ing.Name, err)
		}
	}
	for _, m := range d.Menus {
		if err := s.CreateMenu(ctx, m); err != nil {
			return fmt.Errorf("seed: menu %s: %w", m.Name, err)
		}
	}
	for _, o := range d.Orders {
		if _, err := s.RecordOrder(ctx, o, nil); err != nil {
			return fmt.Errorf("seed: order %s: %w", o.Number, err)
		}
	}
	for _, p := range d.Purchases {
		if _, err := s.RecordPurchase(ctx, p, nil); err != nil {
			return fmt.Errorf("seed: purchase %s: %w", p.ID, err)
		}
	}
	for _, e := range d.Expenses {
		if err := s.CreateExpense(ctx, e); err != nil {
			return fmt.Errorf("seed: expense %s: %w", e.Description, err)
		}
	}
	return nil
}
