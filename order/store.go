package order

import (
	"context"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
)

// Store defines the persistence operations for orders.
type Store interface {
	// RecordOrder applies the stock deductions and appends the order in one
	// atomic step. Deductions may be empty.
	RecordOrder(ctx context.Context, o *Order, deductions []ingredient.Adjustment) ([]ingredient.StockChange, error)
	GetOrder(ctx context.Context, orderID id.OrderID) (*Order, error)
	ListOrders(ctx context.Context, opts ListOpts) ([]*Order, error)
	// UpdateOrderStatus sets the status of an order currently in status
	// from. An empty from matches any status. A mismatch yields
	// kedai.ErrStatusConflict and leaves the order untouched.
	UpdateOrderStatus(ctx context.Context, orderID id.OrderID, from, to Status, completedAt *time.Time) error
}

// ListOpts filters order listings. From and To bound CreatedAt as the
// half-open range [From, To); zero values leave that side open.
type ListOpts struct {
	Status Status
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Match reports whether o passes the status and time filters.
func (opts ListOpts) Match(o *Order) bool {
	if opts.Status != "" && o.Status != opts.Status {
		return false
	}
	if !opts.From.IsZero() && o.CreatedAt.Before(opts.From) {
		return false
	}
	if !opts.To.IsZero() && !o.CreatedAt.Before(opts.To) {
		return false
	}
	return true
}
