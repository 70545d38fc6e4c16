// Package order models customer orders, their lines and lifecycle status.
package order

import (
	"fmt"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/types"
)

// Order is a checkout record. Menu names and prices are snapshotted on each
// line so later menu edits never rewrite history.
type Order struct {
	ID          id.OrderID  `json:"id"`
	Number      string      `json:"number"`
	Lines       []Line      `json:"lines"`
	Total       types.Money `json:"total"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Line is one menu item on an order.
type Line struct {
	MenuID    id.MenuID   `json:"menu_id"`
	MenuName  string      `json:"menu_name"`
	Quantity  int         `json:"quantity"`
	UnitPrice types.Money `json:"unit_price"`
	Subtotal  types.Money `json:"subtotal"`
}

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("order: unknown status %q", s)
	}
	return st, nil
}

// ValidateTransition enforces the strict lifecycle: pending may become
// completed or cancelled, and terminal states do not change. Writing the
// current status again is allowed.
func ValidateTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("order: unknown status %q", to)
	}
	if from == to {
		return nil
	}
	if from == StatusPending && (to == StatusCompleted || to == StatusCancelled) {
		return nil
	}
	return fmt.Errorf("order: transition %s -> %s not allowed", from, to)
}

// NewLine snapshots a menu item at the given quantity.
func NewLine(m *menu.Menu, qty int) Line {
	return Line{
		MenuID:    m.ID,
		MenuName:  m.Name,
		Quantity:  qty,
		UnitPrice: m.Price,
		Subtotal:  m.Price.Multiply(int64(qty)),
	}
}

// New builds a pending order whose subtotals and total are computed from
// the lines' quantities and unit prices.
func New(number string, createdAt time.Time, lines ...Line) *Order {
	o := &Order{
		Number:    number,
		Lines:     make([]Line, len(lines)),
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
	for i, l := range lines {
		l.Subtotal = l.UnitPrice.Multiply(int64(l.Quantity))
		o.Lines[i] = l
	}
	o.Total = o.LineTotal()
	return o
}

// LineTotal returns the sum of line subtotals.
func (o *Order) LineTotal() types.Money {
	var total types.Money
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Consistent reports whether every subtotal equals quantity × unit price
// and the total equals the sum of subtotals.
func (o *Order) Consistent() bool {
	for _, l := range o.Lines {
		if !l.Subtotal.Equal(l.UnitPrice.Multiply(int64(l.Quantity))) {
			return false
		}
	}
	return o.Total.Amount == o.LineTotal().Amount
}

// Quantity returns the total number of servings on the order.
func (o *Order) Quantity() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
