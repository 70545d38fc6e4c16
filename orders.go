package kedai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/order"
)

// OrderResult is the outcome of processing an order.
type OrderResult struct {
	Order *order.Order `json:"order"`

	// Changes lists the stock deductions that were applied, one per
	// ingredient.
	Changes []ingredient.StockChange `json:"changes"`

	// Missing lists menu items and ingredients that could not be resolved
	// under ReferenceLenient. Their deductions were skipped.
	Missing []id.ID `json:"missing,omitempty"`
}

// ──────────────────────────────────────────────────
// Order Management
// ──────────────────────────────────────────────────

// AddOrder appends an order to the order log without touching stock. Menu
// references are not checked. A missing ID, number, status or creation
// time is filled in, and amounts without a currency get the ledger's;
// lines and total are otherwise stored as given.
func (l *Ledger) AddOrder(ctx context.Context, o *order.Order) error {
	l.prepareOrder(o)

	if _, err := l.store.RecordOrder(ctx, o, nil); err != nil {
		return err
	}

	l.plugins.EmitOrderRecorded(ctx, o)
	return nil
}

// ProcessOrder deducts the recipe ingredients of every order line from
// stock, clamping at zero, and appends the order. Deductions and the
// append are committed together. The order is stored as given apart from
// the defaults AddOrder fills in.
func (l *Ledger) ProcessOrder(ctx context.Context, o *order.Order) (*OrderResult, error) {
	deductions, missing, err := l.deductions(ctx, o)
	if err != nil {
		return nil, err
	}
	if err := l.rejectMissing("process order", missing); err != nil {
		return nil, err
	}

	l.prepareOrder(o)

	changes, err := l.store.RecordOrder(ctx, o, deductions)
	if err != nil {
		return nil, err
	}

	l.reportMissing(ctx, "process order", missing)
	l.warnLowStock(changes...)
	l.logger.Debug("order processed",
		"order", o.Number,
		"total", o.Total.String(),
		"lines", len(o.Lines),
		"deductions", len(changes),
	)
	l.plugins.EmitOrderProcessed(ctx, o, changes)

	return &OrderResult{Order: o, Changes: changes, Missing: missing}, nil
}

// Checkout turns the cart into a pending order, processes it and clears
// the cart on success.
func (l *Ledger) Checkout(ctx context.Context, cart *order.Cart) (*OrderResult, error) {
	if cart == nil || cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	now := l.now()
	o := cart.Order(l.orderNumber(now), now)
	res, err := l.ProcessOrder(ctx, o)
	if err != nil {
		return nil, err
	}

	cart.Clear()
	return res, nil
}

// deductions resolves every order line's menu and the menu's recipe
// ingredients and returns the merged stock deductions. Unresolved menus
// and ingredients are returned as missing and contribute nothing.
func (l *Ledger) deductions(ctx context.Context, o *order.Order) ([]ingredient.Adjustment, []id.ID, error) {
	var (
		adjs    []ingredient.Adjustment
		missing []id.ID
		menus   = map[string]*menu.Menu{}
		known   = map[string]bool{}
		flagged = map[string]bool{}
	)

	flag := func(ref id.ID) {
		if !flagged[ref.String()] {
			flagged[ref.String()] = true
			missing = append(missing, ref)
		}
	}

	for _, line := range o.Lines {
		key := line.MenuID.String()
		m, ok := menus[key]
		if !ok {
			var err error
			m, err = l.store.GetMenu(ctx, line.MenuID)
			switch {
			case err == nil:
			case IsNotFound(err):
				m = nil
			default:
				return nil, nil, err
			}
			menus[key] = m
		}
		if m == nil {
			flag(line.MenuID)
			continue
		}

		for _, adj := range m.Consumption(line.Quantity) {
			ingKey := adj.IngredientID.String()
			exists, seen := known[ingKey]
			if !seen {
				var err error
				if exists, err = l.ingredientExists(ctx, adj.IngredientID); err != nil {
					return nil, nil, err
				}
				known[ingKey] = exists
			}
			if !exists {
				flag(adj.IngredientID)
				continue
			}
			adjs = append(adjs, adj)
		}
	}

	return ingredient.Merge(adjs), missing, nil
}

func (l *Ledger) prepareOrder(o *order.Order) {
	if o.ID.IsNil() {
		o.ID = id.NewOrderID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = l.now()
	}
	if o.Number == "" {
		o.Number = l.orderNumber(o.CreatedAt)
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	for i := range o.Lines {
		o.Lines[i].UnitPrice = l.money(o.Lines[i].UnitPrice)
		o.Lines[i].Subtotal = l.money(o.Lines[i].Subtotal)
	}
	o.Total = l.money(o.Total)
}

// maxStatusAttempts bounds how often UpdateOrderStatus rereads an order
// whose status moved underneath it.
const maxStatusAttempts = 3

// UpdateOrderStatus replaces an order's status. Any status may follow any
// other unless WithStrictTransitions is set, in which case the transition is
// checked against the status the write replaces. Moving to completed stamps
// the completion time if the order has none. ErrStatusConflict is returned
// when the order keeps changing concurrently.
func (l *Ledger) UpdateOrderStatus(ctx context.Context, orderID id.OrderID, status order.Status) error {
	if !status.Valid() {
		return ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	for attempt := 0; ; attempt++ {
		o, err := l.store.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}

		if l.strictTransitions {
			if err := order.ValidateTransition(o.Status, status); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
			}
		}

		var completedAt *time.Time
		if status == order.StatusCompleted && o.CompletedAt == nil {
			t := l.now()
			completedAt = &t
		}

		// The write only lands if the order is still in the status just read.
		err = l.store.UpdateOrderStatus(ctx, orderID, o.Status, status, completedAt)
		if errors.Is(err, ErrStatusConflict) && attempt < maxStatusAttempts-1 {
			continue
		}
		if err != nil {
			return err
		}

		from := o.Status
		o.Status = status
		if completedAt != nil {
			o.CompletedAt = completedAt
		}
		l.plugins.EmitOrderStatusChanged(ctx, o, from)
		return nil
	}
}

// GetOrder retrieves an order by ID.
func (l *Ledger) GetOrder(ctx context.Context, orderID id.OrderID) (*order.Order, error) {
	return l.store.GetOrder(ctx, orderID)
}

// ListOrders lists orders in insertion order.
func (l *Ledger) ListOrders(ctx context.Context, opts order.ListOpts) ([]*order.Order, error) {
	return l.store.ListOrders(ctx, opts)
}
