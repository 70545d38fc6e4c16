package purchase

import (
	"context"
	"time"

	"github.com/xraph/kedai/id"
	"github.com/xraph/kedai/ingredient"
)

// Store defines the persistence operations for purchases.
type Store interface {
	// RecordPurchase appends the purchase and applies restock, if non-nil,
	// in one atomic step. The returned change is nil when restock is nil.
	RecordPurchase(ctx context.Context, p *Purchase, restock *ingredient.Adjustment) (*ingredient.StockChange, error)
	GetPurchase(ctx context.Context, purchaseID id.PurchaseID) (*Purchase, error)
	ListPurchases(ctx context.Context, opts ListOpts) ([]*Purchase, error)
}

// ListOpts filters purchase listings. From and To bound PurchasedAt as the
// half-open range [From, To).
type ListOpts struct {
	IngredientID id.IngredientID
	Supplier     string
	From         time.Time
	To           time.Time
}

// Match reports whether p passes the filter.
func (o ListOpts) Match(p *Purchase) bool {
	if !o.IngredientID.IsNil() && p.IngredientID.String() != o.IngredientID.String() {
		return false
	}
	if o.Supplier != "" && p.Supplier != o.Supplier {
		return false
	}
	if !o.From.IsZero() && p.PurchasedAt.Before(o.From) {
		return false
	}
	if !o.To.IsZero() && !p.PurchasedAt.Before(o.To) {
		return false
	}
	return true
}
