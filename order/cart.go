package order

import (
	"errors"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/menu"
	"github.com/xraph/kedai/types"
)

// ErrUnavailable is returned when adding a menu item marked unavailable.
var ErrUnavailable = errors.New("order: menu item unavailable")

// Cart accumulates menu items at the cashier before checkout. The zero
// value is an empty cart ready to use. A Cart is not safe for concurrent
// use.
type Cart struct {
	lines []Line
}

// Add puts one serving of m in the cart, incrementing the quantity when
// the item is already present.
func (c *Cart) Add(m *menu.Menu) error {
	if !m.Available {
		return ErrUnavailable
	}
	for i := range c.lines {
		if c.lines[i].MenuID.String() == m.ID.String() {
			c.setQuantity(i, c.lines[i].Quantity+1)
			return nil
		}
	}
	c.lines = append(c.lines, NewLine(m, 1))
	return nil
}

// SetQuantity changes the quantity of an item already in the cart. A
// quantity of zero or less removes it. Unknown items are ignored.
func (c *Cart) SetQuantity(menuID id.MenuID, qty int) {
	for i := range c.lines {
		if c.lines[i].MenuID.String() != menuID.String() {
			continue
		}
		if qty <= 0 {
			c.Remove(menuID)
			return
		}
		c.setQuantity(i, qty)
		return
	}
}

// Remove drops an item from the cart.
func (c *Cart) Remove(menuID id.MenuID) {
	out := c.lines[:0]
	for _, l := range c.lines {
		if l.MenuID.String() != menuID.String() {
			out = append(out, l)
		}
	}
	c.lines = out
}

// Clear empties the cart.
func (c *Cart) Clear() { c.lines = nil }

// Len returns the number of distinct items in the cart.
func (c *Cart) Len() int { return len(c.lines) }

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []Line { return append([]Line(nil), c.lines...) }

// Total returns the sum of the line subtotals.
func (c *Cart) Total() types.Money {
	var total types.Money
	for _, l := range c.lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Order builds a pending order from the cart contents.
func (c *Cart) Order(number string, at time.Time) *Order {
	return New(number, at, c.lines...)
}

func (c *Cart) setQuantity(i, qty int) {
	c.lines[i].Quantity = qty
	c.lines[i].Subtotal = c.lines[i].UnitPrice.Multiply(int64(qty))
}
