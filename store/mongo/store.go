// Package mongo is the MongoDB store backend.
//
// Multi-document mutations run in transactions, so the deployment must be a
// replica set or a sharded cluster. Insertion order is kept in a per-record
// seq field drawn from a counters collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/store"
)

// Collection name constants.
const (
	colIngredients = "kedai_ingredients"
	colMenus       = "kedai_menus"
	colOrders      = "kedai_orders"
	colPurchases   = "kedai_purchases"
	colExpenses    = "kedai_expenses"
	colCounters    = "kedai_counters"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	closed atomic.Bool
}

// Open connects to uri ("mongodb://host:27017/?replicaSet=rs0") and uses
// the named database.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("kedai/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("kedai/mongo: ping: %w", err)
	}
	return New(client, database), nil
}

// New uses database on an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Database returns the underlying database for direct access.
func (s *Store) Database() *mongo.Database { return s.db }

// Migrate creates indexes for all kedai collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("kedai/mongo: %w: %s indexes: %w", kedai.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	s.closed.Store(true)
	return s.client.Disconnect(context.Background())
}

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

func (s *Store) open() error {
	if s.closed.Load() {
		return kedai.ErrStoreClosed
	}
	return nil
}

// inTx runs fn in a transaction. The callback context carries the session
// and must be used for every operation inside fn.
func (s *Store) inTx(ctx context.Context, op string, fn func(ctx context.Context) error, opts ...options.Lister[options.TransactionOptions]) error {
	if err := s.open(); err != nil {
		return err
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("kedai/mongo: %s: %w: %w", op, kedai.ErrTransactionFailed, err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	}, opts...)
	return err
}

func wrap(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return kedai.ErrAlreadyExists
	}
	return fmt.Errorf("kedai/mongo: %s: %w", op, err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func now() time.Time {
	return time.Now().UTC()
}

// nextSeq draws the next insertion sequence number for collection.
func (s *Store) nextSeq(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.col(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	return counter.Seq, err
}

// timeRange adds a half-open [from, to) condition on field.
func timeRange(filter bson.D, field string, from, to time.Time) bson.D {
	cond := bson.D{}
	if !from.IsZero() {
		cond = append(cond, bson.E{Key: "$gte", Value: from})
	}
	if !to.IsZero() {
		cond = append(cond, bson.E{Key: "$lt", Value: to})
	}
	if len(cond) == 0 {
		return filter
	}
	return append(filter, bson.E{Key: field, Value: cond})
}

func bySeq() *options.FindOptionsBuilder {
	return options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
}

// findAll decodes every matching document and converts it.
func findAll[M, T any](ctx context.Context, coll *mongo.Collection, filter bson.D, opts *options.FindOptionsBuilder, conv func(*M) (*T, error)) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var models []M
	if err := cur.All(ctx, &models); err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(models))
	for i := range models {
		v, err := conv(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ==================== Ingredient Store ====================

func (s *Store) CreateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := s.open(); err != nil {
		return err
	}
	m := toIngredientModel(ing)
	var err error
	if m.Seq, err = s.nextSeq(ctx, colIngredients); err != nil {
		return wrap("create ingredient", err)
	}
	if _, err := s.col(colIngredients).InsertOne(ctx, m); err != nil {
		return wrap("create ingredient", err)
	}
	return nil
}

func (s *Store) GetIngredient(ctx context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.getIngredient(ctx, ingredientID)
}

func (s *Store) getIngredient(ctx context.Context, ingredientID id.IngredientID) (*ingredient.Ingredient, error) {
	var m ingredientModel
	err := s.col(colIngredients).FindOne(ctx, bson.M{"_id": ingredientID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, kedai.ErrIngredientNotFound
		}
		return nil, wrap("get ingredient", err)
	}
	return fromIngredientModel(&m)
}

func (s *Store) ListIngredients(ctx context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.listIngredients(ctx, opts)
}

// listIngredients filters in Go because stock levels are stored as
// decimal strings.
func (s *Store) listIngredients(ctx context.Context, opts ingredient.ListOpts) ([]*ingredient.Ingredient, error) {
	all, err := findAll(ctx, s.col(colIngredients), bson.D{}, bySeq(), fromIngredientModel)
	if err != nil {
		return nil, wrap("list ingredients", err)
	}
	result := make([]*ingredient.Ingredient, 0, len(all))
	for _, ing := range all {
		if opts.Match(ing) {
			result = append(result, ing)
		}
	}
	return result, nil
}

func (s *Store) UpdateIngredient(ctx context.Context, ing *ingredient.Ingredient) error {
	if err := s.open(); err != nil {
		return err
	}
	m := toIngredientModel(ing)
	res, err := s.col(colIngredients).UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"name":        m.Name,
		"stock":       m.Stock,
		"unit":        m.Unit,
		"cost_amount": m.CostAmount,
		"currency":    m.Currency,
		"min_stock":   m.MinStock,
		"created_at":  m.CreatedAt,
		"updated_at":  m.UpdatedAt,
	}})
	if err != nil {
		return wrap("update ingredient", err)
	}
	if res.MatchedCount == 0 {
		return kedai.ErrIngredientNotFound
	}
	return nil
}

func (s *Store) AdjustStock(ctx context.Context, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	var changes []ingredient.StockChange
	err := s.inTx(ctx, "adjust stock", func(ctx context.Context) error {
		var err error
		changes, err = s.adjust(ctx, adjs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// adjust must run inside a transaction; a concurrent writer to the same
// ingredient aborts one side with a transient error and the driver retries.
func (s *Store) adjust(ctx context.Context, adjs []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	merged := ingredient.Merge(adjs)
	ings := make([]*ingredient.Ingredient, len(merged))
	for i, a := range merged {
		ing, err := s.getIngredient(ctx, a.IngredientID)
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
		if _, err := s.col(colIngredients).UpdateOne(ctx,
			bson.M{"_id": a.IngredientID.String()},
			bson.M{"$set": bson.M{"stock": change.After.String(), "updated_at": ts}},
		); err != nil {
			return nil, wrap("adjust stock", err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// ==================== Menu Store ====================

func (s *Store) CreateMenu(ctx context.Context, m *menu.Menu) error {
	if err := s.open(); err != nil {
		return err
	}
	model := toMenuModel(m)
	var err error
	if model.Seq, err = s.nextSeq(ctx, colMenus); err != nil {
		return wrap("create menu", err)
	}
	if _, err := s.col(colMenus).InsertOne(ctx, model); err != nil {
		return wrap("create menu", err)
	}
	return nil
}

func (s *Store) GetMenu(ctx context.Context, menuID id.MenuID) (*menu.Menu, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	var m menuModel
	err := s.col(colMenus).FindOne(ctx, bson.M{"_id": menuID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, kedai.ErrMenuNotFound
		}
		return nil, wrap("get menu", err)
	}
	return fromMenuModel(&m)
}

func (s *Store) ListMenus(ctx context.Context, opts menu.ListOpts) ([]*menu.Menu, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.listMenus(ctx, opts)
}

func (s *Store) listMenus(ctx context.Context, opts menu.ListOpts) ([]*menu.Menu, error) {
	filter := bson.D{}
	if opts.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: opts.Category})
	}
	if opts.AvailableOnly {
		filter = append(filter, bson.E{Key: "available", Value: true})
	}
	list, err := findAll(ctx, s.col(colMenus), filter, bySeq(), fromMenuModel)
	if err != nil {
		return nil, wrap("list menus", err)
	}
	return list, nil
}

func (s *Store) UpdateMenu(ctx context.Context, m *menu.Menu) error {
	if err := s.open(); err != nil {
		return err
	}
	model := toMenuModel(m)
	res, err := s.col(colMenus).UpdateOne(ctx, bson.M{"_id": model.ID}, bson.M{"$set": bson.M{
		"name":         model.Name,
		"price_amount": model.PriceAmount,
		"currency":     model.Currency,
		"category":     model.Category,
		"recipe":       model.Recipe,
		"available":    model.Available,
		"created_at":   model.CreatedAt,
		"updated_at":   model.UpdatedAt,
	}})
	if err != nil {
		return wrap("update menu", err)
	}
	if res.MatchedCount == 0 {
		return kedai.ErrMenuNotFound
	}
	return nil
}

// ==================== Order Store ====================

func (s *Store) RecordOrder(ctx context.Context, o *order.Order, deductions []ingredient.Adjustment) ([]ingredient.StockChange, error) {
	var changes []ingredient.StockChange
	err := s.inTx(ctx, "record order", func(ctx context.Context) error {
		m := toOrderModel(o)
		var err error
		if m.Seq, err = s.nextSeq(ctx, colOrders); err != nil {
			return wrap("record order", err)
		}
		if _, err := s.col(colOrders).InsertOne(ctx, m); err != nil {
			return wrap("record order", err)
		}
		changes, err = s.adjust(ctx, deductions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	var m orderModel
	err := s.col(colOrders).FindOne(ctx, bson.M{"_id": orderID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, kedai.ErrOrderNotFound
		}
		return nil, wrap("get order", err)
	}
	return fromOrderModel(&m)
}

func (s *Store) ListOrders(ctx context.Context, opts order.ListOpts) ([]*order.Order, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.listOrders(ctx, opts)
}

func (s *Store) listOrders(ctx context.Context, opts order.ListOpts) ([]*order.Order, error) {
	filter := bson.D{}
	if opts.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(opts.Status)})
	}
	filter = timeRange(filter, "created_at", opts.From, opts.To)

	findOpts := bySeq()
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	list, err := findAll(ctx, s.col(colOrders), filter, findOpts, fromOrderModel)
	if err != nil {
		return nil, wrap("list orders", err)
	}
	return list, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID id.OrderID, from, to order.Status, completedAt *time.Time) error {
	if err := s.open(); err != nil {
		return err
	}
	set := bson.M{"status": string(to)}
	if completedAt != nil {
		set["completed_at"] = *completedAt
	}
	filter := bson.M{"_id": orderID.String()}
	if from != "" {
		filter["status"] = string(from)
	}
	res, err := s.col(colOrders).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return wrap("update order status", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.col(colOrders).CountDocuments(ctx, bson.M{"_id": orderID.String()})
	if err != nil {
		return wrap("update order status", err)
	}
	if n == 0 {
		return kedai.ErrOrderNotFound
	}
	return kedai.ErrStatusConflict
}

// ==================== Purchase Store ====================

func (s *Store) RecordPurchase(ctx context.Context, p *purchase.Purchase, restock *ingredient.Adjustment) (*ingredient.StockChange, error) {
	var change *ingredient.StockChange
	err := s.inTx(ctx, "record purchase", func(ctx context.Context) error {
		m := toPurchaseModel(p)
		var err error
		if m.Seq, err = s.nextSeq(ctx, colPurchases); err != nil {
			return wrap("record purchase", err)
		}
		if _, err := s.col(colPurchases).InsertOne(ctx, m); err != nil {
			return wrap("record purchase", err)
		}
		if restock == nil {
			return nil
		}
		changes, err := s.adjust(ctx, []ingredient.Adjustment{*restock})
		if err != nil {
			return err
		}
		change = &changes[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

func (s *Store) GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	var m purchaseModel
	err := s.col(colPurchases).FindOne(ctx, bson.M{"_id": purchaseID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, kedai.ErrPurchaseNotFound
		}
		return nil, wrap("get purchase", err)
	}
	return fromPurchaseModel(&m)
}

func (s *Store) ListPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.listPurchases(ctx, opts)
}

func (s *Store) listPurchases(ctx context.Context, opts purchase.ListOpts) ([]*purchase.Purchase, error) {
	filter := bson.D{}
	if !opts.IngredientID.IsNil() {
		filter = append(filter, bson.E{Key: "ingredient_id", Value: opts.IngredientID.String()})
	}
	if opts.Supplier != "" {
		filter = append(filter, bson.E{Key: "supplier", Value: opts.Supplier})
	}
	filter = timeRange(filter, "purchased_at", opts.From, opts.To)

	list, err := findAll(ctx, s.col(colPurchases), filter, bySeq(), fromPurchaseModel)
	if err != nil {
		return nil, wrap("list purchases", err)
	}
	return list, nil
}

// ==================== Expense Store ====================

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	if err := s.open(); err != nil {
		return err
	}
	m := toExpenseModel(e)
	var err error
	if m.Seq, err = s.nextSeq(ctx, colExpenses); err != nil {
		return wrap("create expense", err)
	}
	if _, err := s.col(colExpenses).InsertOne(ctx, m); err != nil {
		return wrap("create expense", err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, expenseID id.ExpenseID) (*expense.Expense, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	var m expenseModel
	err := s.col(colExpenses).FindOne(ctx, bson.M{"_id": expenseID.String()}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, kedai.ErrExpenseNotFound
		}
		return nil, wrap("get expense", err)
	}
	return fromExpenseModel(&m)
}

func (s *Store) ListExpenses(ctx context.Context, opts expense.ListOpts) ([]*expense.Expense, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	return s.listExpenses(ctx, opts)
}

func (s *Store) listExpenses(ctx context.Context, opts expense.ListOpts) ([]*expense.Expense, error) {
	filter := bson.D{}
	if opts.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: opts.Category})
	}
	filter = timeRange(filter, "date", opts.From, opts.To)

	list, err := findAll(ctx, s.col(colExpenses), filter, bySeq(), fromExpenseModel)
	if err != nil {
		return nil, wrap("list expenses", err)
	}
	return list, nil
}

// ==================== Snapshot ====================

// Snapshot reads all five collections in one snapshot transaction.
func (s *Store) Snapshot(ctx context.Context) (*store.Snapshot, error) {
	snap := &store.Snapshot{}
	opts := options.Transaction().SetReadConcern(readconcern.Snapshot())
	err := s.inTx(ctx, "snapshot", func(ctx context.Context) error {
		var err error
		if snap.Ingredients, err = s.listIngredients(ctx, ingredient.ListOpts{}); err != nil {
			return err
		}
		if snap.Menus, err = s.listMenus(ctx, menu.ListOpts{}); err != nil {
			return err
		}
		if snap.Orders, err = s.listOrders(ctx, order.ListOpts{}); err != nil {
			return err
		}
		if snap.Purchases, err = s.listPurchases(ctx, purchase.ListOpts{}); err != nil {
			return err
		}
		snap.Expenses, err = s.listExpenses(ctx, expense.ListOpts{})
		return err
	}, opts)
	if err != nil {
		return nil, err
	}
	snap.TakenAt = now()
	return snap, nil
}

// migrationIndexes returns the index definitions for all kedai collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	seq := mongo.IndexModel{Keys: bson.D{{Key: "seq", Value: 1}}}
	return map[string][]mongo.IndexModel{
		colIngredients: {seq},
		colMenus: {
			seq,
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "seq", Value: 1}}},
		},
		colOrders: {
			seq,
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		colPurchases: {
			seq,
			{Keys: bson.D{{Key: "ingredient_id", Value: 1}, {Key: "purchased_at", Value: 1}}},
			{Keys: bson.D{{Key: "purchased_at", Value: 1}}},
		},
		colExpenses: {
			seq,
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "date", Value: 1}}},
		},
	}
}
