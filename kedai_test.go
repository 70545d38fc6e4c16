package kedai_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/seed"
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/store/memory"
	"github.com/xraph/kedai/types"
)

var clock = time.Date(2024, time.January, 20, 12, 0, 0, 0, seed.Jakarta)

func newLedger(t *testing.T, opts ...kedai.Option) *kedai.Ledger {
	t.Helper()
	s := memory.New()
	if err := seed.Load(context.Background(), s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	opts = append([]kedai.Option{
		kedai.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		kedai.WithClock(func() time.Time { return clock }),
	}, opts...)
	l := kedai.New(s, opts...)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop() })
	return l
}

func stockOf(t *testing.T, l *kedai.Ledger, ingredientID id.IngredientID) decimal.Decimal {
	t.Helper()
	ing, err := l.GetIngredient(context.Background(), ingredientID)
	if err != nil {
		t.Fatalf("GetIngredient: %v", err)
	}
	return ing.Stock
}

func orderOf(t *testing.T, l *kedai.Ledger, lines ...order.Line) *order.Order {
	t.Helper()
	return order.New("", clock, lines...)
}

func line(t *testing.T, l *kedai.Ledger, menuID id.MenuID, qty int) order.Line {
	t.Helper()
	m, err := l.GetMenu(context.Background(), menuID)
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	return order.NewLine(m, qty)
}

// ──────────────────────────────────────────────────
// Purchases
// ──────────────────────────────────────────────────

func TestAddPurchaseRestocks(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	nasi, _ := l.GetIngredient(ctx, seed.Nasi)
	before, _ := l.ListPurchases(ctx, purchase.ListOpts{})

	res, err := l.AddPurchase(ctx, &purchase.Purchase{
		IngredientID: seed.Nasi,
		Quantity:     decimal.NewFromInt(100),
		CostPerUnit:  nasi.CostPerUnit,
		Supplier:     "PT Beras Sejahtera",
	})
	if err != nil {
		t.Fatalf("AddPurchase: %v", err)
	}

	if got := stockOf(t, l, seed.Nasi); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Nasi stock = %s, want 150", got)
	}
	if res.Purchase.TotalCost.Amount != 1200000 {
		t.Errorf("TotalCost = %d, want 1200000", res.Purchase.TotalCost.Amount)
	}
	if res.Purchase.IngredientName != "Nasi" || res.Purchase.Unit != ingredient.UnitKilogram {
		t.Errorf("snapshot = %q %q", res.Purchase.IngredientName, res.Purchase.Unit)
	}
	if res.Change == nil || !res.Change.Applied().Equal(decimal.NewFromInt(100)) {
		t.Errorf("change = %+v", res.Change)
	}

	after, _ := l.ListPurchases(ctx, purchase.ListOpts{})
	if len(after) != len(before)+1 {
		t.Errorf("purchase log = %d entries, want %d", len(after), len(before)+1)
	}
}

func TestAddPurchaseValidation(t *testing.T) {
	l := newLedger(t)
	_, err := l.AddPurchase(context.Background(), &purchase.Purchase{
		IngredientID: seed.Nasi,
		Quantity:     decimal.Zero,
		CostPerUnit:  types.IDR(-1),
	})
	if !kedai.IsValidation(err) {
		t.Fatalf("error = %v, want validation error", err)
	}
	var multi kedai.MultiError
	if !errors.As(err, &multi) || len(multi.Errors) != 2 {
		t.Errorf("error = %v, want two validation failures", err)
	}
}

// ──────────────────────────────────────────────────
// Orders
// ──────────────────────────────────────────────────

func TestProcessOrderTotalAndAppend(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	// drain stock first: processing must not depend on it
	for _, ingID := range []id.IngredientID{seed.Nasi, seed.Ayam, seed.Sayur, seed.Bumbu, seed.MinyakGoreng} {
		if _, err := l.AdjustIngredientStock(ctx, ingID, decimal.NewFromInt(1000)); err != nil {
			t.Fatalf("AdjustIngredientStock: %v", err)
		}
	}

	o := orderOf(t, l, line(t, l, seed.NasiGorengAyam, 2), line(t, l, seed.EsTehManis, 1))
	if o.Total.Amount != 55000 {
		t.Fatalf("total = %d, want 55000", o.Total.Amount)
	}

	before, _ := l.ListOrders(ctx, order.ListOpts{})
	res, err := l.ProcessOrder(ctx, o)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	after, _ := l.ListOrders(ctx, order.ListOpts{})

	if len(after) != len(before)+1 {
		t.Fatalf("order log = %d, want %d", len(after), len(before)+1)
	}
	last := after[len(after)-1]
	if last.ID.String() != res.Order.ID.String() || last.Total.Amount != 55000 || len(last.Lines) != 2 {
		t.Errorf("appended order = %+v", last)
	}
	if last.Status != order.StatusPending || last.Number == "" {
		t.Errorf("defaults not filled: status %q number %q", last.Status, last.Number)
	}
	for i := range before {
		if before[i].ID.String() != after[i].ID.String() {
			t.Errorf("order %d changed position", i)
		}
	}
}

func TestProcessOrderDeductsRecipe(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	o := orderOf(t, l, line(t, l, seed.NasiGorengAyam, 2), line(t, l, seed.EsTehManis, 2))
	res, err := l.ProcessOrder(ctx, o)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if len(res.Missing) != 0 {
		t.Errorf("missing = %v, want none", res.Missing)
	}
	// Bumbu is used by both menus and is merged into one change
	if len(res.Changes) != 5 {
		t.Errorf("changes = %d, want 5", len(res.Changes))
	}

	tests := []struct {
		name string
		id   id.IngredientID
		want string
	}{
		{"Nasi", seed.Nasi, "49.4"},
		{"Ayam", seed.Ayam, "29.6"},
		{"Sayur", seed.Sayur, "19.8"},
		{"Bumbu", seed.Bumbu, "14.88"},
		{"Minyak Goreng", seed.MinyakGoreng, "24.96"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stockOf(t, l, tt.id); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("stock = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStockNeverNegative(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	for range 60 {
		o := orderOf(t, l, line(t, l, seed.NasiGorengAyam, 3), line(t, l, seed.MieGoreng, 2))
		if _, err := l.ProcessOrder(ctx, o); err != nil {
			t.Fatalf("ProcessOrder: %v", err)
		}
	}
	if _, err := l.AddPurchase(ctx, &purchase.Purchase{
		IngredientID: seed.Ayam,
		Quantity:     decimal.RequireFromString("0.5"),
		CostPerUnit:  types.IDR(35000),
	}); err != nil {
		t.Fatalf("AddPurchase: %v", err)
	}

	ings, _ := l.ListIngredients(ctx, ingredient.ListOpts{})
	for _, ing := range ings {
		if ing.Stock.IsNegative() {
			t.Errorf("%s stock = %s", ing.Name, ing.Stock)
		}
	}
	if got := stockOf(t, l, seed.Nasi); !got.IsZero() {
		t.Errorf("Nasi stock = %s, want 0 after clamping", got)
	}
	if got := stockOf(t, l, seed.Ayam); !got.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Ayam stock = %s, want 0.5", got)
	}
}

func TestAddOrderSkipsStock(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	o := orderOf(t, l, line(t, l, seed.NasiGorengAyam, 1))
	o.Lines = append(o.Lines, order.Line{MenuID: id.NewMenuID(), MenuName: "ghost", Quantity: 1})
	if err := l.AddOrder(ctx, o); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	if got := stockOf(t, l, seed.Nasi); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Nasi stock = %s, want 50", got)
	}
	if _, err := l.GetOrder(ctx, o.ID); err != nil {
		t.Errorf("GetOrder: %v", err)
	}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, kedai.WithOrderNumbers(func(time.Time) string { return "ORD-TEST" }))

	var cart order.Cart
	if _, err := l.Checkout(ctx, &cart); !errors.Is(err, kedai.ErrEmptyCart) {
		t.Errorf("empty checkout error = %v, want ErrEmptyCart", err)
	}

	nasi, _ := l.GetMenu(ctx, seed.NasiGorengAyam)
	teh, _ := l.GetMenu(ctx, seed.EsTehManis)
	if err := cart.Add(nasi); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = cart.Add(nasi)
	_ = cart.Add(teh)
	cart.SetQuantity(teh.ID, 3)

	res, err := l.Checkout(ctx, &cart)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.Order.Number != "ORD-TEST" || res.Order.Total.Amount != 65000 {
		t.Errorf("order = %s %d, want ORD-TEST 65000", res.Order.Number, res.Order.Total.Amount)
	}
	if !res.Order.CreatedAt.Equal(clock) {
		t.Errorf("CreatedAt = %v, want %v", res.Order.CreatedAt, clock)
	}
	if cart.Len() != 0 {
		t.Error("cart not cleared after checkout")
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	if err := l.UpdateOrderStatus(ctx, id.NewOrderID(), order.StatusCompleted); !errors.Is(err, kedai.ErrOrderNotFound) {
		t.Errorf("missing order error = %v, want ErrOrderNotFound", err)
	}
	if err := l.UpdateOrderStatus(ctx, seed.FirstOrder, "refunded"); !kedai.IsValidation(err) {
		t.Errorf("unknown status error = %v, want validation error", err)
	}

	// without strict transitions any status may follow any other
	if err := l.UpdateOrderStatus(ctx, seed.FirstOrder, order.StatusPending); err != nil {
		t.Fatalf("completed -> pending: %v", err)
	}
	o, _ := l.GetOrder(ctx, seed.FirstOrder)
	if o.Status != order.StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
}

func TestUpdateOrderStatusStrict(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, kedai.WithStrictTransitions())

	if err := l.UpdateOrderStatus(ctx, seed.FirstOrder, order.StatusPending); !errors.Is(err, kedai.ErrInvalidTransition) {
		t.Errorf("completed -> pending error = %v, want ErrInvalidTransition", err)
	}

	o := orderOf(t, l, line(t, l, seed.EsTehManis, 1))
	if err := l.AddOrder(ctx, o); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	if err := l.UpdateOrderStatus(ctx, o.ID, order.StatusCompleted); err != nil {
		t.Fatalf("pending -> completed: %v", err)
	}
	got, _ := l.GetOrder(ctx, o.ID)
	if got.CompletedAt == nil || !got.CompletedAt.Equal(clock) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, clock)
	}
	if err := l.UpdateOrderStatus(ctx, o.ID, order.StatusCompleted); err != nil {
		t.Errorf("same status write: %v", err)
	}
}

// interferingStore runs interfere once, right after the first order read.
type interferingStore struct {
	store.Store
	once      sync.Once
	interfere func()
}

func (s *interferingStore) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	s.once.Do(s.interfere)
	return o, err
}

func TestUpdateOrderStatusChangedUnderneath(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	if err := seed.Load(ctx, mem); err != nil {
		t.Fatalf("seed: %v", err)
	}
	o := order.New("ORD-RACE", clock, order.Line{MenuID: seed.EsTehManis, Quantity: 1, UnitPrice: types.IDR(5000)})
	o.ID = id.NewOrderID()
	if _, err := mem.RecordOrder(ctx, o, nil); err != nil {
		t.Fatalf("RecordOrder: %v", err)
	}

	s := &interferingStore{Store: mem, interfere: func() {
		if err := mem.UpdateOrderStatus(ctx, o.ID, "", order.StatusCancelled, nil); err != nil {
			t.Errorf("cancel: %v", err)
		}
	}}
	l := kedai.New(s,
		kedai.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		kedai.WithClock(func() time.Time { return clock }),
		kedai.WithStrictTransitions(),
	)
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop() })

	// read sees pending, but the order is cancelled before the write
	if err := l.UpdateOrderStatus(ctx, o.ID, order.StatusCompleted); !errors.Is(err, kedai.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
	got, _ := mem.GetOrder(ctx, o.ID)
	if got.Status != order.StatusCancelled || got.CompletedAt != nil {
		t.Errorf("order = %s %v, want cancelled without completion", got.Status, got.CompletedAt)
	}
}

func TestUpdateOrderStatusConcurrent(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, kedai.WithStrictTransitions())

	const n = 50
	ids := make([]id.OrderID, n)
	for i := range ids {
		o := orderOf(t, l, line(t, l, seed.EsTehManis, 1))
		if err := l.AddOrder(ctx, o); err != nil {
			t.Fatalf("AddOrder: %v", err)
		}
		ids[i] = o.ID
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins = map[id.OrderID][]order.Status{}
	)
	for _, orderID := range ids {
		for _, to := range []order.Status{order.StatusCompleted, order.StatusCancelled} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := l.UpdateOrderStatus(ctx, orderID, to)
				switch {
				case err == nil:
					mu.Lock()
					wins[orderID] = append(wins[orderID], to)
					mu.Unlock()
				case !errors.Is(err, kedai.ErrInvalidTransition):
					t.Errorf("%s -> %s: %v", orderID, to, err)
				}
			}()
		}
	}
	wg.Wait()

	for _, orderID := range ids {
		won := wins[orderID]
		if len(won) != 1 {
			t.Errorf("order %s: %d transitions succeeded, want 1", orderID, len(won))
			continue
		}
		got, _ := l.GetOrder(ctx, orderID)
		if got.Status != won[0] {
			t.Errorf("order %s = %s, want %s", orderID, got.Status, won[0])
		}
	}
}

// ──────────────────────────────────────────────────
// Reference policy
// ──────────────────────────────────────────────────

func TestReferenceLenient(t *testing.T) {
	ctx := context.Background()
	plug := &referenceRecorder{}
	l := newLedger(t, kedai.WithPlugin(plug))

	ghostMenu := id.NewMenuID()
	o := orderOf(t, l, line(t, l, seed.EsTehManis, 1))
	o.Lines = append(o.Lines, order.Line{MenuID: ghostMenu, MenuName: "ghost", Quantity: 2})

	res, err := l.ProcessOrder(ctx, o)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if len(res.Missing) != 1 || res.Missing[0].String() != ghostMenu.String() {
		t.Errorf("missing = %v, want [%s]", res.Missing, ghostMenu)
	}
	if got := stockOf(t, l, seed.Bumbu); !got.Equal(decimal.RequireFromString("14.99")) {
		t.Errorf("Bumbu stock = %s, want 14.99", got)
	}

	ghostIngredient := id.NewIngredientID()
	pres, err := l.AddPurchase(ctx, &purchase.Purchase{
		IngredientID:   ghostIngredient,
		IngredientName: "Gula",
		Quantity:       decimal.NewFromInt(5),
		CostPerUnit:    types.IDR(14000),
	})
	if err != nil {
		t.Fatalf("AddPurchase: %v", err)
	}
	if pres.Change != nil || len(pres.Missing) != 1 {
		t.Errorf("purchase result = change %v missing %v", pres.Change, pres.Missing)
	}
	if _, err := l.GetPurchase(ctx, pres.Purchase.ID); err != nil {
		t.Errorf("purchase not recorded: %v", err)
	}

	if plug.count() != 2 {
		t.Errorf("OnReferenceMissing calls = %d, want 2", plug.count())
	}
}

func TestReferenceStrict(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, kedai.WithReferencePolicy(kedai.ReferenceStrict))

	ghost := id.NewMenuID()
	o := orderOf(t, l, line(t, l, seed.NasiGorengAyam, 1))
	o.Lines = append(o.Lines, order.Line{MenuID: ghost, Quantity: 1})

	before, _ := l.ListOrders(ctx, order.ListOpts{})
	_, err := l.ProcessOrder(ctx, o)

	var refErr *kedai.ReferenceError
	if !errors.As(err, &refErr) {
		t.Fatalf("error = %v, want *ReferenceError", err)
	}
	if !kedai.IsReference(err) || len(refErr.Missing) != 1 || refErr.Missing[0].Prefix() != id.PrefixMenu {
		t.Errorf("reference error = %v", refErr)
	}

	after, _ := l.ListOrders(ctx, order.ListOpts{})
	if len(after) != len(before) {
		t.Error("strict rejection still appended the order")
	}
	if got := stockOf(t, l, seed.Nasi); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Nasi stock = %s, want 50 (nothing applied)", got)
	}

	if _, err := l.AddPurchase(ctx, &purchase.Purchase{
		IngredientID: id.NewIngredientID(),
		Quantity:     decimal.NewFromInt(1),
	}); !errors.Is(err, kedai.ErrReferenceNotFound) {
		t.Errorf("purchase error = %v, want ErrReferenceNotFound", err)
	}
}

type referenceRecorder struct {
	mu    sync.Mutex
	calls int
}

func (r *referenceRecorder) Name() string { return "reference-recorder" }

func (r *referenceRecorder) OnReferenceMissing(_ context.Context, _ string, _ []id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func (r *referenceRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// ──────────────────────────────────────────────────
// Inventory, expenses, hooks
// ──────────────────────────────────────────────────

func TestAdjustIngredientStock(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	change, err := l.AdjustIngredientStock(ctx, seed.Sayur, decimal.NewFromInt(25))
	if err != nil {
		t.Fatalf("AdjustIngredientStock: %v", err)
	}
	if !change.After.IsZero() || !change.Clamped() {
		t.Errorf("change = %+v, want clamped to 0", change)
	}

	if _, err := l.AdjustIngredientStock(ctx, id.NewIngredientID(), decimal.NewFromInt(1)); !errors.Is(err, kedai.ErrIngredientNotFound) {
		t.Errorf("missing ingredient error = %v, want ErrIngredientNotFound", err)
	}
}

func TestCreateIngredientValidation(t *testing.T) {
	l := newLedger(t)
	err := l.CreateIngredient(context.Background(), &ingredient.Ingredient{
		Name:  "Gula",
		Stock: decimal.NewFromInt(-1),
	})
	if !kedai.IsValidation(err) {
		t.Errorf("error = %v, want validation error", err)
	}

	ing := &ingredient.Ingredient{Name: "Gula", Stock: decimal.NewFromInt(10), CostPerUnit: kedai.Money{Amount: 14000}}
	if err := l.CreateIngredient(context.Background(), ing); err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	if ing.ID.IsNil() || ing.CostPerUnit.Currency != "idr" {
		t.Errorf("created ingredient = %s %q", ing.ID, ing.CostPerUnit.Currency)
	}
}

func TestAddExpense(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	if err := l.AddExpense(ctx, &expense.Expense{Description: "Refund", Amount: types.IDR(-1)}); !kedai.IsValidation(err) {
		t.Errorf("negative amount error = %v, want validation error", err)
	}

	e := &expense.Expense{Description: "Gaji", Amount: types.IDR(3000000), Category: expense.CategorySalary}
	if err := l.AddExpense(ctx, e); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if !e.Date.Equal(clock) {
		t.Errorf("Date = %v, want clock", e.Date)
	}
	list, _ := l.ListExpenses(ctx, expense.ListOpts{})
	if len(list) != 3 {
		t.Errorf("expenses = %d, want 3", len(list))
	}
}

type lowStockRecorder struct {
	mu  sync.Mutex
	hit []string
}

func (r *lowStockRecorder) Name() string { return "low-stock" }

func (r *lowStockRecorder) OnLowStock(_ context.Context, c ingredient.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hit = append(r.hit, c.Name)
	return nil
}

func TestLowStockHook(t *testing.T) {
	ctx := context.Background()
	plug := &lowStockRecorder{}
	l := newLedger(t, kedai.WithPlugin(plug))

	nasi, _ := l.GetIngredient(ctx, seed.Nasi)
	nasi.Stock = decimal.RequireFromString("10.2")
	if err := l.UpdateIngredient(ctx, nasi); err != nil {
		t.Fatalf("UpdateIngredient: %v", err)
	}

	for range 2 {
		if _, err := l.ProcessOrder(ctx, orderOf(t, l, line(t, l, seed.NasiGorengAyam, 1))); err != nil {
			t.Fatalf("ProcessOrder: %v", err)
		}
	}

	// only the first order crosses the threshold
	plug.mu.Lock()
	defer plug.mu.Unlock()
	if len(plug.hit) != 1 || plug.hit[0] != "Nasi" {
		t.Errorf("low stock hits = %v, want [Nasi]", plug.hit)
	}
}

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

func TestReportsFromSeed(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	ref := time.Date(2024, time.January, 15, 0, 0, 0, 0, seed.Jakarta)

	sales, err := l.SalesReport(ctx, report.DayOfMonth, ref)
	if err != nil {
		t.Fatalf("SalesReport: %v", err)
	}
	if sales.TotalSales.Amount != 60000 || sales.OrderCount != 1 {
		t.Errorf("sales = %d / %d", sales.TotalSales.Amount, sales.OrderCount)
	}

	cf, err := l.CashFlow(ctx, report.Calendar, ref)
	if err != nil {
		t.Fatalf("CashFlow: %v", err)
	}
	if cf.Months[0].Net.Amount != 60000-650000-1200000 {
		t.Errorf("January net = %d", cf.Months[0].Net.Amount)
	}

	pl, err := l.ProfitLoss(ctx, ref)
	if err != nil {
		t.Fatalf("ProfitLoss: %v", err)
	}
	if pl.Revenue.Amount != 60000 || pl.CostOfGoods.Amount != 1200000 {
		t.Errorf("revenue/cogs = %d/%d", pl.Revenue.Amount, pl.CostOfGoods.Amount)
	}

	dash, err := l.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.TotalSales.Amount != 60000 || dash.CompletedOrders != 1 || len(dash.LowStock) != 0 {
		t.Errorf("dashboard = %+v", dash)
	}

	inv, err := l.Inventory(ctx)
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	// 50×12000 + 30×35000 + 20×15000 + 15×25000 + 25×18000
	if inv.TotalValue.Amount != 2775000 {
		t.Errorf("inventory value = %d, want 2775000", inv.TotalValue.Amount)
	}

	if _, err := l.SalesReport(ctx, "weekly", ref); !errors.Is(err, report.ErrUnknownKind) {
		t.Errorf("unknown kind error = %v", err)
	}
}

func TestReportsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	ref := time.Date(2024, time.January, 15, 0, 0, 0, 0, seed.Jakarta)

	before, _ := l.Snapshot(ctx)
	for range 2 {
		if _, err := l.SalesReport(ctx, report.MonthOfYear, ref); err != nil {
			t.Fatalf("SalesReport: %v", err)
		}
		if _, err := l.CashFlow(ctx, report.Trailing, ref); err != nil {
			t.Fatalf("CashFlow: %v", err)
		}
	}
	after, _ := l.Snapshot(ctx)

	if len(before.Orders) != len(after.Orders) || !before.Ingredients[0].Stock.Equal(after.Ingredients[0].Stock) {
		t.Error("reports changed the ledger")
	}
}

// ──────────────────────────────────────────────────
// Currency
// ──────────────────────────────────────────────────

func TestOrdersWithoutCurrency(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	o := orderOf(t, l,
		order.Line{MenuID: seed.NasiGorengAyam, MenuName: "Nasi Goreng Ayam", Quantity: 2, UnitPrice: types.Money{Amount: 25000}},
		order.Line{MenuID: seed.EsTehManis, MenuName: "Es Teh Manis", Quantity: 1, UnitPrice: types.Money{Amount: 5000}},
	)
	res, err := l.ProcessOrder(ctx, o)
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if res.Order.Total != types.IDR(55000) {
		t.Errorf("total = %+v, want Rp 55000", res.Order.Total)
	}
	for _, ln := range res.Order.Lines {
		if ln.UnitPrice.Currency != types.DefaultCurrency || ln.Subtotal.Currency != types.DefaultCurrency {
			t.Errorf("line %s = %+v, want currency %q", ln.MenuName, ln, types.DefaultCurrency)
		}
	}

	stored, err := l.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if stored.Total.Currency != types.DefaultCurrency {
		t.Errorf("stored currency = %q", stored.Total.Currency)
	}

	r, err := l.SalesReport(ctx, report.MonthOfYear, clock)
	if err != nil {
		t.Fatalf("SalesReport: %v", err)
	}
	if r.TotalSales != types.IDR(60000+55000) {
		t.Errorf("sales = %+v, want Rp 115000", r.TotalSales)
	}
}

func TestReportsInAnotherCurrency(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, kedai.WithCurrency("usd"))

	if err := l.AddOrder(ctx, orderOf(t, l, order.Line{MenuID: seed.EsTehManis, Quantity: 1, UnitPrice: types.Money{Amount: 250}})); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	sales, err := l.SalesReport(ctx, report.MonthOfYear, clock)
	if err != nil {
		t.Fatalf("SalesReport: %v", err)
	}
	// rupiah seed orders are not converted
	if sales.TotalSales != types.USD(250) {
		t.Errorf("sales = %+v, want $2.50", sales.TotalSales)
	}
	if sales.OrderCount != 2 {
		t.Errorf("order count = %d, want 2", sales.OrderCount)
	}

	pl, err := l.ProfitLoss(ctx, clock)
	if err != nil {
		t.Fatalf("ProfitLoss: %v", err)
	}
	if pl.NetProfit.Currency != "usd" {
		t.Errorf("net profit = %+v", pl.NetProfit)
	}
	if _, err := l.CashFlow(ctx, report.Calendar, clock); err != nil {
		t.Fatalf("CashFlow: %v", err)
	}
	if _, err := l.Dashboard(ctx); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if _, err := l.Inventory(ctx); err != nil {
		t.Fatalf("Inventory: %v", err)
	}
}
