// Package memory is the in-process store backend.
//
// All collections live in one immutable state value published through an
// atomic pointer. A mutation copies the collections it touches, applies its
// changes to the copies and swaps the new state in while holding the writer
// lock. Readers load the pointer without locking and therefore always see a
// fully applied state.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// state is never modified after it has been published.
type state struct {
	ingredients []*ingredient.Ingredient
	menus       []*menu.Menu
	orders      []*order.Order
	purchases   []*purchase.Purchase
	expenses    []*expense.Expense

	// Position of each record in its collection, keyed by ID string.
	ingredientIdx map[string]int
	menuIdx       map[string]int
	orderIdx      map[string]int
	purchaseIdx   map[string]int
	expenseIdx    map[string]int
}

// Store implements store.Store in memory with copy-on-write semantics.
type Store struct {
	mu     sync.Mutex // serializes writers
	cur    atomic.Pointer[state]
	closed atomic.Bool
}

// New creates an empty memory store.
func New() *Store {
	s := &Store{}
	s.cur.Store(&state{
		ingredientIdx: map[string]int{},
		menuIdx:       map[string]int{},
		orderIdx:      map[string]int{},
		purchaseIdx:   map[string]int{},
		expenseIdx:    map[string]int{},
	})
	return s
}

func (s *Store) load() *state { return s.cur.Load() }

// commit runs fn against a shallow copy of the current state and publishes
// the result if fn succeeds. fn must replace, never modify, the slices and
// maps it changes.
func (s *Store) commit(fn func(next *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}

	next := *s.cur.Load()
	if err := fn(&next); err != nil {
		return err
	}
	s.cur.Store(&next)
	return nil
}

// appendTo returns a new slice holding xs followed by x; xs is untouched.
func appendTo[T any](xs []T, x T) []T {
	return append(xs[:len(xs):len(xs)], x)
}

// indexWith returns a copy of idx with key mapped to pos.
func indexWith(idx map[string]int, key string, pos int) map[string]int {
	out := maps.Clone(idx)
	out[key] = pos
	return out
}

// ==================== Ingredient Store ====================

func (s *Store) CreateIngredient(_ context.Context, ing *ingredient.Ingredient) error {
	return s.commit(func(next *state) error {
		key := ing.ID.String()
		if _, exists := next.ingredientIdx[key]; exists {
			return kedai.ErrAlreadyExists
		}
		next.ingredientIdx = indexWith(next.ingredientIdx, key, len(next.ingredients))
		next.ingredients = appendTo(next.ingredients, ing.Clone())
		return nil
	})
}

func (s *Store) GetIngredient(_ context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	st := s.load()
	if i, ok := st.ingredientIdx[ingredientID.String()]; ok {
		return st.ingredients[i].Clone(), nil
	}
	return nil, kedai.ErrIngredientNotFound
}

func (s *Store) ListIngredients(_ context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	st := s.load()
	result := make([]*ingredient.Ingredient, 0, len(st.ingredients))
	for _, ing := range st.ingredients {
		if opts.Match(ing) {
			result = append(result, ing.Clone())
		}
	}
	return result, nil
}

func (s *Store) UpdateIngredient(_ context.Context, ing *ingredient.Ingredient) error {
	return s.commit(func(next *state) error {
		i, ok := next.ingredientIdx[ing.ID.String()]
		if !ok {
			return kedai.ErrIngredientNotFound
		}
		ings := slices.Clone(next.ingredients)
		ings[i] = ing.Clone()
		next.ingredients = ings
		return nil
	})
}

func (s *Store) AdjustStock(_ context.Context, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	var changes []ingredient.StockChange
	err := s.commit(func(next *state) error {
		var err error
		changes, err = next.adjust(adjs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// adjust applies merged adjustments to a copy of the ingredient collection.
// Nothing is applied if any ingredient is missing.
func (st *state) adjust(adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	merged := ingredient.Merge(adjs)
	for _, a := range merged {
		if _, ok := st.ingredientIdx[a.IngredientID.String()]; !ok {
			return nil, fmt.Errorf("%w: %s", kedai.ErrIngredientNotFound, a.IngredientID)
		}
	}
	if len(merged) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	ings := slices.Clone(st.ingredients)
	changes := make([]ingredient.StockChange, 0, len(merged))
	for _, a := range merged {
		i := st.ingredientIdx[a.IngredientID.String()]
		change := ingredient.Apply(ings[i], a.Delta)
		updated := ings[i].Clone()
		updated.Stock = change.After
		updated.UpdatedAt = now
		ings[i] = updated
		changes = append(changes, change)
	}
	st.ingredients = ings
	return changes, nil
}

// ==================== Menu Store ====================

func (s *Store) CreateMenu(_ context.Context, m *menu.Menu) error {
	return s.commit(func(next *state) error {
		key := m.ID.String()
		if _, exists := next.menuIdx[key]; exists {
			return kedai.ErrAlreadyExists
		}
		next.menuIdx = indexWith(next.menuIdx, key, len(next.menus))
		next.menus = appendTo(next.menus, m.Clone())
		return nil
	})
}

func (s *Store) GetMenu(_ context.Context, menuID id.MenuID) (*menu.Menu, error) {
	st := s.load()
	if i, ok := st.menuIdx[menuID.String()]; ok {
		return st.menus[i].Clone(), nil
	}
	return nil, kedai.ErrMenuNotFound
}

func (s *Store) ListMenus(_ context.Context, opts menu.ListOpts) ([]*menu.Menu, error) {
	st := s.load()
	result := make([]*menu.Menu, 0, len(st.menus))
	for _, m := range st.menus {
		if opts.Match(m) {
			result = append(result, m.Clone())
		}
	}
	return result, nil
}

func (s *Store) UpdateMenu(_ context.Context, m *menu.Menu) error {
	return s.commit(func(next *state) error {
		i, ok := next.menuIdx[m.ID.String()]
		if !ok {
			return kedai.ErrMenuNotFound
		}
		menus := slices.Clone(next.menus)
		menus[i] = m.Clone()
		next.menus = menus
		return nil
	})
}

// ==================== Order Store ====================

func (s *Store) RecordOrder(_ context.Context, o *order.Order, deductions []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	var changes []ingredient.StockChange
	err := s.commit(func(next *state) error {
		key := o.ID.String()
		if _, exists := next.orderIdx[key]; exists {
			return kedai.ErrAlreadyExists
		}
		var err error
		if changes, err = next.adjust(deductions); err != nil {
			return err
		}
		next.orderIdx = indexWith(next.orderIdx, key, len(next.orders))
		next.orders = appendTo(next.orders, o.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *Store) GetOrder(_ context.Context, orderID id.OrderID) (*order.Order, error) {
	st := s.load()
	if i, ok := st.orderIdx[orderID.String()]; ok {
		return st.orders[i].Clone(), nil
	}
	return nil, kedai.ErrOrderNotFound
}

func (s *Store) ListOrders(_ context.Context, opts order.ListOpts) ([]*order.Order, error) {
	st := s.load()
	result := make([]*order.Order, 0)
	for _, o := range st.orders {
		if opts.Match(o) {
			result = append(result, o.Clone())
		}
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, orderID id.OrderID, from, to order.Status, completedAt *time.Time) error {
	return s.commit(func(next *state) error {
		i, ok := next.orderIdx[orderID.String()]
		if !ok {
			return kedai.ErrOrderNotFound
		}
		if from != "" && next.orders[i].Status != from {
			return kedai.ErrStatusConflict
		}
		updated := next.orders[i].Clone()
		updated.Status = to
		if completedAt != nil {
			t := *completedAt
			updated.CompletedAt = &t
		}
		orders := slices.Clone(next.orders)
		orders[i] = updated
		next.orders = orders
		return nil
	})
}

// ==================== Purchase Store ====================

func (s *Store) RecordPurchase(_ context.Context, p *purchase.Purchase, restock *ingredient.Adjustment) (*ingredient.StockChange, error) {
	var change *ingredient.StockChange
	err := s.commit(func(next *state) error {
		key := p.ID.String()
		if _, exists := next.purchaseIdx[key]; exists {
			return kedai.ErrAlreadyExists
		}
		if restock != nil {
			changes, err := next.adjust([]ingredient.Adjustment{*restock})
			if err != nil {
				return err
			}
			change = &changes[0]
		}
		cp := *p
		next.purchaseIdx = indexWith(next.purchaseIdx, key, len(next.purchases))
		next.purchases = appendTo(next.purchases, &cp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Store) GetPurchase(_ context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	st := s.load()
	if i, ok := st.purchaseIdx[purchaseID.String()]; ok {
		cp := *st.purchases[i]
		return &cp, nil
	}
	return nil, kedai.ErrPurchaseNotFound
}

func (s *Store) ListPurchases(_ context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	st := s.load()
	result := make([]*purchase.Purchase, 0)
	for _, p := range st.purchases {
		if opts.Match(p) {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

// ==================== Expense Store ====================

func (s *Store) CreateExpense(_ context.Context, e *expense.Expense) error {
	return s.commit(func(next *state) error {
		key := e.ID.String()
		if _, exists := next.expenseIdx[key]; exists {
			return kedai.ErrAlreadyExists
		}
		cp := *e
		next.expenseIdx = indexWith(next.expenseIdx, key, len(next.expenses))
		next.expenses = appendTo(next.expenses, &cp)
		return nil
	})
}

func (s *Store) GetExpense(_ context.Context, expenseID id.ExpenseID) (*expense.Expense, error) {
	st := s.load()
	if i, ok := st.expenseIdx[expenseID.String()]; ok {
		cp := *st.expenses[i]
		return &cp, nil
	}
	return nil, kedai.ErrExpenseNotFound
}

func (s *Store) ListExpenses(_ context.Context, opts expense.ListOpts) ([]*expense.Expense, error) {
	st := s.load()
	result := make([]*expense.Expense, 0)
	for _, e := range st.expenses {
		if opts.Match(e) {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

// ==================== Snapshot & core ====================

// Snapshot returns the current state. The records are shared with the
// store and must not be modified; the slices are private copies.
func (s *Store) Snapshot(_ context.Context) (*store.Snapshot, error) {
	st := s.load()
	return &store.Snapshot{
		Ingredients: slices.Clone(st.ingredients),
		Menus:       slices.Clone(st.menus),
		Orders:      slices.Clone(st.orders),
		Purchases:   slices.Clone(st.purchases),
		Expenses:    slices.Clone(st.expenses),
		TakenAt:     time.Now().UTC(),
	}, nil
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports ErrStoreClosed after Close.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}
	return nil
}

// Close rejects further mutations. Reads keep serving the last state.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
