package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/seed"
	"github.com/xraph/kedai/store/memory"
)

func TestDataset(t *testing.T) {
	d := seed.Dataset()

	if len(d.Ingredients) != 5 || len(d.Menus) != 3 || len(d.Orders) != 1 || len(d.Purchases) != 1 || len(d.Expenses) != 2 {
		t.Fatalf("dataset sizes = %d/%d/%d/%d/%d, want 5/3/1/1/2",
			len(d.Ingredients), len(d.Menus), len(d.Orders), len(d.Purchases), len(d.Expenses))
	}

	o := d.Orders[0]
	if o.Number != "ORD-001" || o.Total.Amount != 60000 || o.Status != order.StatusCompleted {
		t.Errorf("order = %s %d %s, want ORD-001 60000 completed", o.Number, o.Total.Amount, o.Status)
	}
	if !o.Consistent() {
		t.Error("seed order total does not match its lines")
	}
	if o.CompletedAt == nil || o.CompletedAt.Sub(o.CreatedAt).Minutes() != 15 {
		t.Error("seed order should complete 15 minutes after creation")
	}

	if p := d.Purchases[0]; p.TotalCost.Amount != 1200000 || p.Supplier != "PT Beras Sejahtera" {
		t.Errorf("purchase = %d from %q", p.TotalCost.Amount, p.Supplier)
	}
	if got := d.Ingredients[0].ID.String(); got != "ingr_00000000000000000000000001" {
		t.Errorf("Nasi ID = %q", got)
	}
}

func TestDatasetIsFresh(t *testing.T) {
	a := seed.Dataset()
	a.Ingredients[0].Name = "changed"
	if b := seed.Dataset(); b.Ingredients[0].Name != "Nasi" {
		t.Error("Dataset shares state between calls")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if err := seed.Load(ctx, s); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Ingredients) != 5 || len(snap.Orders) != 1 || len(snap.Expenses) != 2 {
		t.Errorf("snapshot sizes = %d/%d/%d", len(snap.Ingredients), len(snap.Orders), len(snap.Expenses))
	}

	nasi, ok := snap.Ingredient(seed.Nasi)
	if !ok {
		t.Fatal("Nasi missing from snapshot")
	}
	// the historical purchase is not replayed
	if nasi.Stock.String() != "50" {
		t.Errorf("Nasi stock = %s, want 50", nasi.Stock)
	}

	// loading twice collides on the stable IDs
	if err := seed.Load(ctx, s); !errors.Is(err, kedai.ErrAlreadyExists) {
		t.Errorf("second Load error = %v, want ErrAlreadyExists", err)
	}
}
