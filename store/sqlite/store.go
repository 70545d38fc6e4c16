// Package sqlite is the SQLite store backend, built on database/sql and the
// pure-Go modernc.org/sqlite driver.
//
// Money is stored as an integer amount plus a currency column, decimals as
// their exact text form and timestamps as fixed-width UTC text. Every
// mutation runs in one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

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

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements store.Store using SQLite.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens the SQLite database at dsn (a file path, or ":memory:").
// The pool is limited to one connection so an in-memory database is shared
// by every query and writers never contend for the file lock.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kedai/sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return New(db), nil
}

// New wraps an existing database handle opened with the "sqlite" driver.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := migrate(ctx, s.db, Migrations); err != nil {
		return fmt.Errorf("kedai/sqlite: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.closed.Store(true)
	return s.db.Close()
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("kedai/sqlite: %s: begin: %w: %w", op, kedai.ErrTransactionFailed, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kedai/sqlite: %s: commit: %w: %w", op, kedai.ErrTransactionFailed, err)
	}
	return nil
}

func (s *Store) reader() (querier, error) {
	if s.closed.Load() {
		return nil, kedai.ErrStoreClosed
	}
	return s.db, nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("kedai/sqlite: %s: %w", op, err)
}

// exists reports whether table holds a row with the given id.
func exists(ctx context.Context, q querier, table, key string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table+` WHERE id = ?`, key).Scan(&n)
	return n > 0, err
}

// where joins conditions into a WHERE clause.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func now() string { return formatTime(time.Now()) }

// ==================== Ingredient Store ====================

func (s *Store) CreateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	return s.inTx(ctx, "create ingredient", func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "kedai_ingredients", ing.ID.String())
		if err != nil {
			return wrap("create ingredient", err)
		}
		if found {
			return kedai.ErrAlreadyExists
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kedai_ingredients (`+ingredientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ing.ID.String(), ing.Name, ing.Stock.String(), string(ing.Unit),
			ing.CostPerUnit.Amount, ing.CostPerUnit.Currency, ing.MinStock.String(),
			formatTime(ing.CreatedAt), formatTime(ing.UpdatedAt),
		)
		if err != nil {
			return wrap("create ingredient", err)
		}
		return nil
	})
}

func (s *Store) GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return getIngredient(ctx, q, ingredientID)
}

func getIngredient(ctx context.Context, q querier, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	ing, err := scanIngredient(q.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM kedai_ingredients WHERE id = ?`, ingredientID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kedai.ErrIngredientNotFound
		}
		return nil, wrap("get ingredient", err)
	}
	return ing, nil
}

func (s *Store) ListIngredients(ctx context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return listIngredients(ctx, q, opts)
}

// listIngredients filters in Go: stock and minimum are decimal text, which
// SQLite cannot compare exactly.
func listIngredients(ctx context.Context, q querier, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+ingredientColumns+` FROM kedai_ingredients ORDER BY seq`)
	if err != nil {
		return nil, wrap("list ingredients", err)
	}
	defer rows.Close()

	result := make([]*ingredient.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, wrap("list ingredients", err)
		}
		if opts.Match(ing) {
			result = append(result, ing)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list ingredients", err)
	}
	return result, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	return s.inTx(ctx, "update ingredient", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE kedai_ingredients SET name = ?, stock = ?, unit = ?, cost_amount = ?, currency = ?,
			 min_stock = ?, created_at = ?, updated_at = ? WHERE id = ?`,
			ing.Name, ing.Stock.String(), string(ing.Unit), ing.CostPerUnit.Amount, ing.CostPerUnit.Currency,
			ing.MinStock.String(), formatTime(ing.CreatedAt), formatTime(ing.UpdatedAt), ing.ID.String(),
		)
		if err != nil {
			return wrap("update ingredient", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return kedai.ErrIngredientNotFound
		}
		return nil
	})
}

func (s *Store) AdjustStock(ctx context.Context, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	var changes []ingredient.StockChange
	err := s.inTx(ctx, "adjust stock", func(tx *sql.Tx) error {
		var err error
		changes, err = adjust(ctx, tx, adjs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// adjust applies merged adjustments inside tx. Every ingredient is loaded
// before any row is written, so a missing one fails the whole batch.
func adjust(ctx context.Context, tx *sql.Tx, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	merged := ingredient.Merge(adjs)
	ings := make([]*ingredient.Ingredient, len(merged))
	for i, a := range merged {
		ing, err := getIngredient(ctx, tx, a.IngredientID)
		if errors.Is(err, kedai.ErrIngredientNotFound) {
			return nil, fmt.Errorf("%w: %s", kedai.ErrIngredientNotFound, a.IngredientID)
		}
		if err != nil {
			return nil, err
		}
		ings[i] = ing
	}
	if len(merged) == 0 {
		return nil, nil
	}

	ts := now()
	changes := make([]ingredient.StockChange, 0, len(merged))
	for i, a := range merged {
		change := ingredient.Apply(ings[i], a.Delta)
		if _, err := tx.ExecContext(ctx,
			`UPDATE kedai_ingredients SET stock = ?, updated_at = ? WHERE id = ?`,
			change.After.String(), ts, a.IngredientID.String(),
		); err != nil {
			return nil, wrap("adjust stock", err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// ==================== Menu Store ====================

func (s *Store) CreateMenu(ctx context.Context, m *menu.Menu) error {
	recipe, err := encodeRecipe(m.Recipe)
	if err != nil {
		return wrap("create menu", err)
	}
	return s.inTx(ctx, "create menu", func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "kedai_menus", m.ID.String())
		if err != nil {
			return wrap("create menu", err)
		}
		if found {
			return kedai.ErrAlreadyExists
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kedai_menus (`+menuColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID.String(), m.Name, m.Price.Amount, m.Price.Currency, m.Category, recipe, m.Available,
			formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
		)
		if err != nil {
			return wrap("create menu", err)
		}
		return nil
	})
}

func (s *Store) GetMenu(ctx context.Context, menuID id.MenuID) (*menu.Menu, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	m, err := scanMenu(q.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM kedai_menus WHERE id = ?`, menuID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kedai.ErrMenuNotFound
		}
		return nil, wrap("get menu", err)
	}
	return m, nil
}

func (s *Store) ListMenus(ctx context.Context, opts menu.ListOpts) ([]*menu.Menu, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return listMenus(ctx, q, opts)
}

func listMenus(ctx context.Context, q querier, opts menu.ListOpts) ([]*menu.Menu, error) {
	var conds []string
	var args []any
	if opts.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.AvailableOnly {
		conds = append(conds, "available = 1")
	}

	rows, err := q.QueryContext(ctx, `SELECT `+menuColumns+` FROM kedai_menus`+where(conds)+` ORDER BY seq`, args...)
	if err != nil {
		return nil, wrap("list menus", err)
	}
	defer rows.Close()

	result := make([]*menu.Menu, 0)
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, wrap("list menus", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list menus", err)
	}
	return result, nil
}

func (s *Store) UpdateMenu(ctx context.Context, m *menu.Menu) error {
	recipe, err := encodeRecipe(m.Recipe)
	if err != nil {
		return wrap("update menu", err)
	}
	return s.inTx(ctx, "update menu", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE kedai_menus SET name = ?, price_amount = ?, currency = ?, category = ?, recipe = ?,
			 available = ?, created_at = ?, updated_at = ? WHERE id = ?`,
			m.Name, m.Price.Amount, m.Price.Currency, m.Category, recipe,
			m.Available, formatTime(m.CreatedAt), formatTime(m.UpdatedAt), m.ID.String(),
		)
		if err != nil {
			return wrap("update menu", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return kedai.ErrMenuNotFound
		}
		return nil
	})
}

// ==================== Order Store ====================

func (s *Store) RecordOrder(ctx context.Context, o *order.Order, deductions []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	lines, err := encodeLines(o.Lines)
	if err != nil {
		return nil, wrap("record order", err)
	}

	var changes []ingredient.StockChange
	err = s.inTx(ctx, "record order", func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "kedai_orders", o.ID.String())
		if err != nil {
			return wrap("record order", err)
		}
		if found {
			return kedai.ErrAlreadyExists
		}
		if changes, err = adjust(ctx, tx, deductions); err != nil {
			return err
		}

		var completed any
		if o.CompletedAt != nil {
			completed = formatTime(*o.CompletedAt)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kedai_orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID.String(), o.Number, lines, o.Total.Amount, orderCurrency(o), string(o.Status),
			formatTime(o.CreatedAt), completed,
		)
		if err != nil {
			return wrap("record order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM kedai_orders WHERE id = ?`, orderID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kedai.ErrOrderNotFound
		}
		return nil, wrap("get order", err)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, opts order.ListOpts) ([]*order.Order, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return listOrders(ctx, q, opts)
}

func listOrders(ctx context.Context, q querier, opts order.ListOpts) ([]*order.Order, error) {
	var conds []string
	var args []any
	if opts.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(opts.Status))
	}
	if !opts.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, formatTime(opts.To))
	}

	query := `SELECT ` + orderColumns + ` FROM kedai_orders` + where(conds) + ` ORDER BY seq`
	switch {
	case opts.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	case opts.Offset > 0:
		query += ` LIMIT -1`
	}
	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	defer rows.Close()

	result := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, wrap("list orders", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list orders", err)
	}
	return result, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID id.OrderID, from, to order.Status, completedAt *time.Time) error {
	return s.inTx(ctx, "update order status", func(tx *sql.Tx) error {
		var (
			res sql.Result
			err error
		)
		if completedAt != nil {
			res, err = tx.ExecContext(ctx,
				`UPDATE kedai_orders SET status = ?, completed_at = ? WHERE id = ? AND (? = '' OR status = ?)`,
				string(to), formatTime(*completedAt), orderID.String(), string(from), string(from))
		} else {
			res, err = tx.ExecContext(ctx,
				`UPDATE kedai_orders SET status = ? WHERE id = ? AND (? = '' OR status = ?)`,
				string(to), orderID.String(), string(from), string(from))
		}
		if err != nil {
			return wrap("update order status", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}

		found, err := exists(ctx, tx, "kedai_orders", orderID.String())
		if err != nil {
			return wrap("update order status", err)
		}
		if !found {
			return kedai.ErrOrderNotFound
		}
		return kedai.ErrStatusConflict
	})
}

// ==================== Purchase Store ====================

func (s *Store) RecordPurchase(ctx context.Context, p *purchase.Purchase, restock *ingredient.Adjustment) (*ingredient.StockChange, error) {
	var change *ingredient.StockChange
	err := s.inTx(ctx, "record purchase", func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "kedai_purchases", p.ID.String())
		if err != nil {
			return wrap("record purchase", err)
		}
		if found {
			return kedai.ErrAlreadyExists
		}
		if restock != nil {
			changes, err := adjust(ctx, tx, []ingredient.Adjustment{*restock})
			if err != nil {
				return err
			}
			change = &changes[0]
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kedai_purchases (`+purchaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.IngredientID.String(), p.IngredientName, p.Quantity.String(), string(p.Unit),
			p.CostPerUnit.Amount, p.TotalCost.Amount, currencyOf(p.TotalCost, p.CostPerUnit), p.Supplier,
			formatTime(p.PurchasedAt), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		)
		if err != nil {
			return wrap("record purchase", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Store) GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	p, err := scanPurchase(q.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM kedai_purchases WHERE id = ?`, purchaseID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kedai.ErrPurchaseNotFound
		}
		return nil, wrap("get purchase", err)
	}
	return p, nil
}

func (s *Store) ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return listPurchases(ctx, q, opts)
}

func listPurchases(ctx context.Context, q querier, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	var conds []string
	var args []any
	if !opts.IngredientID.IsNil() {
		conds = append(conds, "ingredient_id = ?")
		args = append(args, opts.IngredientID.String())
	}
	if opts.Supplier != "" {
		conds = append(conds, "supplier = ?")
		args = append(args, opts.Supplier)
	}
	if !opts.From.IsZero() {
		conds = append(conds, "purchased_at >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		conds = append(conds, "purchased_at < ?")
		args = append(args, formatTime(opts.To))
	}

	rows, err := q.QueryContext(ctx, `SELECT `+purchaseColumns+` FROM kedai_purchases`+where(conds)+` ORDER BY seq`, args...)
	if err != nil {
		return nil, wrap("list purchases", err)
	}
	defer rows.Close()

	result := make([]*purchase.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, wrap("list purchases", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list purchases", err)
	}
	return result, nil
}

// ==================== Expense Store ====================

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	return s.inTx(ctx, "create expense", func(tx *sql.Tx) error {
		found, err := exists(ctx, tx, "kedai_expenses", e.ID.String())
		if err != nil {
			return wrap("create expense", err)
		}
		if found {
			return kedai.ErrAlreadyExists
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO kedai_expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), e.Description, e.Amount.Amount, e.Amount.Currency, e.Category,
			formatTime(e.Date), formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return wrap("create expense", err)
		}
		return nil
	})
}

func (s *Store) GetExpense(ctx context.Context, expenseID id.ExpenseID) (*expense.Expense, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	e, err := scanExpense(q.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM kedai_expenses WHERE id = ?`, expenseID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kedai.ErrExpenseNotFound
		}
		return nil, wrap("get expense", err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, opts expense.ListOpts) ([]*expense.Expense, error) {
	q, err := s.reader()
	if err != nil {
		return nil, err
	}
	return listExpenses(ctx, q, opts)
}

func listExpenses(ctx context.Context, q querier, opts expense.ListOpts) ([]*expense.Expense, error) {
	var conds []string
	var args []any
	if opts.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, opts.Category)
	}
	if !opts.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, formatTime(opts.From))
	}
	if !opts.To.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, formatTime(opts.To))
	}

	rows, err := q.QueryContext(ctx, `SELECT `+expenseColumns+` FROM kedai_expenses`+where(conds)+` ORDER BY seq`, args...)
	if err != nil {
		return nil, wrap("list expenses", err)
	}
	defer rows.Close()

	result := make([]*expense.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, wrap("list expenses", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list expenses", err)
	}
	return result, nil
}

// ==================== Snapshot ====================

// Snapshot reads all five collections inside one transaction.
func (s *Store) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	snap := &store.Snapshot{}
	err := s.inTx(ctx, "snapshot", func(tx *sql.Tx) error {
		var err error
		if snap.Ingredients, err = listIngredients(ctx, tx, ingredient.ListOpts{}); err != nil {
			return err
		}
		if snap.Menus, err = listMenus(ctx, tx, menu.ListOpts{}); err != nil {
			return err
		}
		if snap.Orders, err = listOrders(ctx, tx, order.ListOpts{}); err != nil {
			return err
		}
		if snap.Purchases, err = listPurchases(ctx, tx, purchase.ListOpts{}); err != nil {
			return err
		}
		snap.Expenses, err = listExpenses(ctx, tx, expense.ListOpts{})
		return err
	})
	if err != nil {
		return nil, err
	}
	snap.TakenAt = time.Now().UTC()
	return snap, nil
}
