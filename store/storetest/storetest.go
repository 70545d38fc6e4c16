// Package storetest is a conformance suite for store.Store backends.
//
// A backend test calls Run with a factory returning an empty, migrated
// store. Every subtest gets a fresh store loaded with the seed dataset.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/seed"
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/types"
)

// Factory returns an empty store ready for use. It registers its own
// cleanup on t.
type Factory func(t *testing.T) store.Store

// Run executes the suite against the stores produced by open.
func Run(t *testing.T, open Factory) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"Seed", testSeed},
		{"Duplicates", testDuplicates},
		{"NotFound", testNotFound},
		{"AdjustStock", testAdjustStock},
		{"RecordOrder", testRecordOrder},
		{"RecordOrderRollback", testRecordOrderRollback},
		{"ListOrders", testListOrders},
		{"UpdateOrderStatus", testUpdateOrderStatus},
		{"RecordPurchase", testRecordPurchase},
		{"ListFilters", testListFilters},
		{"Snapshot", testSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			if err := seed.Load(context.Background(), s); err != nil {
				t.Fatalf("seed: %v", err)
			}
			tt.fn(t, s)
		})
	}
}

// at returns a WIB time with millisecond precision, which every backend
// can represent.
func at(m time.Month, d, h int) time.Time {
	return time.Date(2024, m, d, h, 0, 0, 0, seed.Jakarta)
}

func stockOf(t *testing.T, s store.Store, ingID id.IngredientID) decimal.Decimal {
	t.Helper()
	ing, err := s.GetIngredient(context.Background(), ingID)
	if err != nil {
		t.Fatalf("GetIngredient(%s): %v", ingID, err)
	}
	return ing.Stock
}

func wantStock(t *testing.T, s store.Store, ingID id.IngredientID, want string) {
	t.Helper()
	if got := stockOf(t, s, ingID); !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("stock of %s = %s, want %s", ingID, got, want)
	}
}

func menuOf(t *testing.T, s store.Store, menuID id.MenuID) *menu.Menu {
	t.Helper()
	m, err := s.GetMenu(context.Background(), menuID)
	if err != nil {
		t.Fatalf("GetMenu(%s): %v", menuID, err)
	}
	return m
}

func testSeed(t *testing.T, s store.Store) {
	ctx := context.Background()

	ings, err := s.ListIngredients(ctx, ingredient.ListOpts{})
	if err != nil {
		t.Fatalf("ListIngredients: %v", err)
	}
	if len(ings) != 5 || ings[0].Name != "Nasi" || ings[4].Name != "Minyak Goreng" {
		t.Fatalf("ingredients = %d, first/last out of order", len(ings))
	}
	if !ings[0].CostPerUnit.Equal(types.IDR(12000)) || ings[4].Unit != ingredient.UnitLiter {
		t.Errorf("ingredient fields lost: %+v", ings[4])
	}

	m := menuOf(t, s, seed.NasiGorengAyam)
	if len(m.Recipe) != 5 || !m.Recipe[4].QuantityPerServing.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("recipe = %+v", m.Recipe)
	}

	o, err := s.GetOrder(ctx, seed.FirstOrder)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if o.Number != "ORD-001" || !o.Total.Equal(types.IDR(60000)) || !o.Consistent() {
		t.Errorf("order = %+v", o)
	}
	if o.CompletedAt == nil || !o.CompletedAt.Equal(at(time.January, 15, 10).Add(45*time.Minute)) {
		t.Errorf("completed at = %v", o.CompletedAt)
	}

	p, err := s.GetPurchase(ctx, seed.FirstPurchase)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	if !p.TotalCost.Equal(types.IDR(1200000)) || !p.Quantity.Equal(decimal.NewFromInt(100)) {
		t.Errorf("purchase = %+v", p)
	}

	e, err := s.GetExpense(ctx, seed.Electricity)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if e.Category != expense.CategoryOperational || !e.Amount.Equal(types.IDR(500000)) {
		t.Errorf("expense = %+v", e)
	}
}

func testDuplicates(t *testing.T, s store.Store) {
	ctx := context.Background()
	d := seed.Dataset()

	if err := s.CreateIngredient(ctx, d.Ingredients[0]); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("ingredient: %v", err)
	}
	if err := s.CreateMenu(ctx, d.Menus[0]); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("menu: %v", err)
	}
	if _, err := s.RecordOrder(ctx, d.Orders[0], nil); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("order: %v", err)
	}
	if _, err := s.RecordPurchase(ctx, d.Purchases[0], nil); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("purchase: %v", err)
	}
	if err := s.CreateExpense(ctx, d.Expenses[0]); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("expense: %v", err)
	}
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"ingredient", second(s.GetIngredient(ctx, id.NewIngredientID())), kedai.ErrIngredientNotFound},
		{"menu", second(s.GetMenu(ctx, id.NewMenuID())), kedai.ErrMenuNotFound},
		{"order", second(s.GetOrder(ctx, id.NewOrderID())), kedai.ErrOrderNotFound},
		{"purchase", second(s.GetPurchase(ctx, id.NewPurchaseID())), kedai.ErrPurchaseNotFound},
		{"expense", second(s.GetExpense(ctx, id.NewExpenseID())), kedai.ErrExpenseNotFound},
		{"update ingredient", s.UpdateIngredient(ctx, &ingredient.Ingredient{ID: id.NewIngredientID(), Name: "ghost"}), kedai.ErrIngredientNotFound},
		{"update menu", s.UpdateMenu(ctx, &menu.Menu{ID: id.NewMenuID(), Name: "ghost"}), kedai.ErrMenuNotFound},
		{"update order status", s.UpdateOrderStatus(ctx, id.NewOrderID(), "", order.StatusCompleted, nil), kedai.ErrOrderNotFound},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
		if !kedai.IsNotFound(tt.err) {
			t.Errorf("%s: IsNotFound(%v) = false", tt.name, tt.err)
		}
	}
}

func second[T any](_ T, err error) error { return err }

func testAdjustStock(t *testing.T, s store.Store) {
	ctx := context.Background()

	changes, err := s.AdjustStock(ctx, []ingredient.Adjustment{
		{IngredientID: seed.Ayam, Delta: decimal.NewFromInt(-10)},
		{IngredientID: seed.Nasi, Delta: decimal.RequireFromString("2.5")},
		{IngredientID: seed.Ayam, Delta: decimal.NewFromInt(-25)},
	})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2 (merged)", len(changes))
	}
	if changes[0].IngredientID.String() != seed.Ayam.String() || !changes[0].Clamped() || !changes[0].After.IsZero() {
		t.Errorf("ayam change = %+v", changes[0])
	}
	wantStock(t, s, seed.Ayam, "0")
	wantStock(t, s, seed.Nasi, "52.5")

	_, err = s.AdjustStock(ctx, []ingredient.Adjustment{
		{IngredientID: seed.Nasi, Delta: decimal.NewFromInt(-1)},
		{IngredientID: id.NewIngredientID(), Delta: decimal.NewFromInt(-1)},
	})
	if !errors.Is(err, kedai.ErrIngredientNotFound) {
		t.Fatalf("missing ingredient error = %v", err)
	}
	wantStock(t, s, seed.Nasi, "52.5")
}

func testRecordOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := menuOf(t, s, seed.MieGoreng)

	o := order.New("ORD-002", at(time.January, 16, 9), order.NewLine(m, 2))
	o.ID = id.NewOrderID()
	changes, err := s.RecordOrder(ctx, o, m.Consumption(2))
	if err != nil {
		t.Fatalf("RecordOrder: %v", err)
	}
	if len(changes) != 4 {
		t.Errorf("changes = %d, want 4", len(changes))
	}
	wantStock(t, s, seed.Ayam, "29.7")
	wantStock(t, s, seed.Sayur, "19.8")
	wantStock(t, s, seed.Bumbu, "14.9")
	wantStock(t, s, seed.MinyakGoreng, "24.96")

	got, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Lines[0].MenuName != "Mie Goreng" || got.Lines[0].Quantity != 2 || !got.Total.Equal(types.IDR(44000)) {
		t.Errorf("order = %+v", got)
	}
	if got.Status != order.StatusPending || got.CompletedAt != nil {
		t.Errorf("status = %s, completed = %v", got.Status, got.CompletedAt)
	}
}

func testRecordOrderRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := menuOf(t, s, seed.EsTehManis)

	o := order.New("ORD-X", at(time.January, 16, 9), order.NewLine(m, 1))
	o.ID = id.NewOrderID()
	deductions := append(m.Consumption(1), ingredient.Adjustment{IngredientID: id.NewIngredientID(), Delta: decimal.NewFromInt(-1)})
	if _, err := s.RecordOrder(ctx, o, deductions); !errors.Is(err, kedai.ErrIngredientNotFound) {
		t.Fatalf("error = %v, want ErrIngredientNotFound", err)
	}
	wantStock(t, s, seed.Bumbu, "15")
	if _, err := s.GetOrder(ctx, o.ID); !errors.Is(err, kedai.ErrOrderNotFound) {
		t.Errorf("order was recorded despite failure: %v", err)
	}
}

func testListOrders(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := menuOf(t, s, seed.EsTehManis)
	for d := 1; d <= 4; d++ {
		o := order.New("", at(time.February, d, 12), order.NewLine(m, d))
		o.ID = id.NewOrderID()
		if _, err := s.RecordOrder(ctx, o, nil); err != nil {
			t.Fatalf("RecordOrder: %v", err)
		}
	}

	feb := at(time.February, 1, 0)
	tests := []struct {
		name      string
		opts      order.ListOpts
		wantLen   int
		wantFirst int // quantity of the first listed order; 2 for the seeded one
	}{
		{"all", order.ListOpts{}, 5, 2},
		{"pending", order.ListOpts{Status: order.StatusPending}, 4, 1},
		{"from", order.ListOpts{From: feb}, 4, 1},
		{"to", order.ListOpts{To: feb}, 1, 2},
		{"half open", order.ListOpts{From: at(time.February, 2, 12), To: at(time.February, 4, 12)}, 2, 2},
		{"limit", order.ListOpts{Limit: 2}, 2, 2},
		{"offset", order.ListOpts{Offset: 3}, 2, 3},
		{"page", order.ListOpts{Status: order.StatusPending, Limit: 2, Offset: 1}, 2, 2},
		{"past end", order.ListOpts{Offset: 10}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.ListOrders(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListOrders: %v", err)
			}
			if len(list) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(list), tt.wantLen)
			}
			if tt.wantLen > 0 && list[0].Lines[0].Quantity != tt.wantFirst {
				t.Errorf("first quantity = %d, want %d", list[0].Lines[0].Quantity, tt.wantFirst)
			}
		})
	}
}

func testUpdateOrderStatus(t *testing.T, s store.Store) {
	ctx := context.Background()
	before := at(time.January, 15, 10).Add(45 * time.Minute)

	if err := s.UpdateOrderStatus(ctx, seed.FirstOrder, order.StatusCompleted, order.StatusCancelled, nil); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	o, _ := s.GetOrder(ctx, seed.FirstOrder)
	if o.Status != order.StatusCancelled || o.CompletedAt == nil || !o.CompletedAt.Equal(before) {
		t.Errorf("after cancel = %s %v, want completion time kept", o.Status, o.CompletedAt)
	}

	// the order is cancelled now, so a write expecting completed is refused
	done := at(time.January, 15, 12)
	err := s.UpdateOrderStatus(ctx, seed.FirstOrder, order.StatusCompleted, order.StatusPending, &done)
	if !errors.Is(err, kedai.ErrStatusConflict) {
		t.Fatalf("stale write error = %v, want ErrStatusConflict", err)
	}
	o, _ = s.GetOrder(ctx, seed.FirstOrder)
	if o.Status != order.StatusCancelled || !o.CompletedAt.Equal(before) {
		t.Errorf("after stale write = %s %v, want untouched", o.Status, o.CompletedAt)
	}

	if err := s.UpdateOrderStatus(ctx, seed.FirstOrder, "", order.StatusCompleted, &done); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	o, _ = s.GetOrder(ctx, seed.FirstOrder)
	if o.Status != order.StatusCompleted || !o.CompletedAt.Equal(done) {
		t.Errorf("after complete = %s %v", o.Status, o.CompletedAt)
	}
}

func testRecordPurchase(t *testing.T, s store.Store) {
	ctx := context.Background()
	ing, err := s.GetIngredient(ctx, seed.Sayur)
	if err != nil {
		t.Fatalf("GetIngredient: %v", err)
	}

	p := purchase.New(ing, decimal.RequireFromString("4.5"), types.IDR(15000), "Pasar Induk", at(time.February, 3, 7))
	p.ID = id.NewPurchaseID()
	p.Entity = types.NewEntityAt(p.PurchasedAt)
	restock := p.Restock()
	change, err := s.RecordPurchase(ctx, p, &restock)
	if err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	if change == nil || !change.After.Equal(decimal.RequireFromString("24.5")) {
		t.Errorf("change = %+v", change)
	}
	wantStock(t, s, seed.Sayur, "24.5")

	history := purchase.New(ing, decimal.NewFromInt(1), types.IDR(15000), "", at(time.February, 4, 7))
	history.ID = id.NewPurchaseID()
	change, err = s.RecordPurchase(ctx, history, nil)
	if err != nil || change != nil {
		t.Errorf("history purchase = %v, %v", change, err)
	}
	wantStock(t, s, seed.Sayur, "24.5")

	got, err := s.GetPurchase(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPurchase: %v", err)
	}
	if !got.TotalCost.Equal(types.IDR(67500)) || got.IngredientName != "Sayur" || got.Unit != ingredient.UnitKilogram {
		t.Errorf("purchase = %+v", got)
	}
	if !got.PurchasedAt.Equal(p.PurchasedAt) {
		t.Errorf("purchased at = %v, want %v", got.PurchasedAt, p.PurchasedAt)
	}
}

func testListFilters(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.AdjustStock(ctx, []ingredient.Adjustment{{IngredientID: seed.Sayur, Delta: decimal.NewFromInt(-12)}}); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	drink := menuOf(t, s, seed.EsTehManis)
	drink.Available = false
	if err := s.UpdateMenu(ctx, drink); err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	if err := s.CreateExpense(ctx, &expense.Expense{
		Entity:      types.NewEntityAt(at(time.February, 1, 0)),
		ID:          id.NewExpenseID(),
		Description: "Gaji",
		Amount:      types.IDR(3000000),
		Category:    expense.CategorySalary,
		Date:        at(time.February, 1, 0),
	}); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	count := func(n int, err error) int {
		t.Helper()
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		return n
	}
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"low stock", count(lenOf(s.ListIngredients(ctx, ingredient.ListOpts{LowStockOnly: true}))), 1},
		{"available menus", count(lenOf(s.ListMenus(ctx, menu.ListOpts{AvailableOnly: true}))), 2},
		{"drink menus", count(lenOf(s.ListMenus(ctx, menu.ListOpts{Category: menu.CategoryDrink}))), 1},
		{"purchases of rice", count(lenOf(s.ListPurchases(ctx, purchase.ListOpts{IngredientID: seed.Nasi}))), 1},
		{"purchases of chicken", count(lenOf(s.ListPurchases(ctx, purchase.ListOpts{IngredientID: seed.Ayam}))), 0},
		{"purchases by supplier", count(lenOf(s.ListPurchases(ctx, purchase.ListOpts{Supplier: "PT Beras Sejahtera"}))), 1},
		{"purchases in february", count(lenOf(s.ListPurchases(ctx, purchase.ListOpts{From: at(time.February, 1, 0)}))), 0},
		{"operational expenses", count(lenOf(s.ListExpenses(ctx, expense.ListOpts{Category: expense.CategoryOperational}))), 2},
		{"january expenses", count(lenOf(s.ListExpenses(ctx, expense.ListOpts{From: at(time.January, 1, 0), To: at(time.February, 1, 0)}))), 2},
		{"expenses from february", count(lenOf(s.ListExpenses(ctx, expense.ListOpts{From: at(time.February, 1, 0)}))), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func lenOf[T any](xs []T, err error) (int, error) { return len(xs), err }

func testSnapshot(t *testing.T, s store.Store) {
	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Ingredients) != 5 || len(snap.Menus) != 3 || len(snap.Orders) != 1 ||
		len(snap.Purchases) != 1 || len(snap.Expenses) != 2 {
		t.Errorf("snapshot sizes = %d/%d/%d/%d/%d", len(snap.Ingredients), len(snap.Menus),
			len(snap.Orders), len(snap.Purchases), len(snap.Expenses))
	}
	if snap.TakenAt.IsZero() {
		t.Error("TakenAt not set")
	}
	if _, ok := snap.Menu(seed.EsTehManis); !ok {
		t.Error("snapshot menu lookup failed")
	}
	if ing, ok := snap.Ingredient(seed.Bumbu); !ok || ing.Name != "Bumbu" {
		t.Error("snapshot ingredient lookup failed")
	}
}
