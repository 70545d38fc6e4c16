package menu

import (
	"context"

	"github.com/xraph/kedai/id"
)

// Store defines the persistence operations for menu items.
type Store interface {
	CreateMenu(ctx context.Context, m *Menu) error
	GetMenu(ctx context.Context, menuID id.MenuID) (*Menu, error)
	ListMenus(ctx context.Context, opts ListOpts) ([]*Menu, error)
	UpdateMenu(ctx context.Context, m *Menu) error
}

// ListOpts filters menu listings.
type ListOpts struct {
	Category      string
	AvailableOnly bool
}

// Match reports whether m passes the filter.
func (o ListOpts) Match(m *Menu) bool {
	if o.Category != "" && m.Category != o.Category {
		return false
	}
	return !o.AvailableOnly || m.Available
}
