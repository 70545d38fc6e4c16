package plugin_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/plugin"
)

type recorder struct {
	name string

	mu       sync.Mutex
	adjusted int
	low      int
	orders   int
	fail     error
	block    bool
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) OnStockAdjusted(_ context.Context, _ ingredient.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjusted++
	return r.fail
}

func (r *recorder) OnLowStock(_ context.Context, _ ingredient.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.low++
	return nil
}

func (r *recorder) OnOrderProcessed(ctx context.Context, _ *order.Order, _ []ingredient.StockChange) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders++
	return nil
}

func quietRegistry() *plugin.Registry {
	return plugin.NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterDuplicate(t *testing.T) {
	r := quietRegistry()
	if err := r.Register(&recorder{name: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&recorder{name: "a"}); err == nil {
		t.Error("expected duplicate registration error")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
	if r.Get("a") == nil {
		t.Error("Get(a) returned nil")
	}
	if r.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
}

func TestEmitOrderProcessed(t *testing.T) {
	r := quietRegistry()
	rec := &recorder{name: "rec"}
	if err := r.Register(rec); err != nil {
		t.Fatalf("Register: %v", err)
	}

	changes := []ingredient.StockChange{
		{Before: decimal.NewFromInt(20), After: decimal.NewFromInt(9), MinStock: decimal.NewFromInt(10)},
		{Before: decimal.NewFromInt(50), After: decimal.NewFromInt(40), MinStock: decimal.NewFromInt(10)},
		{Before: decimal.NewFromInt(5), After: decimal.NewFromInt(4), MinStock: decimal.NewFromInt(10)},
	}
	r.EmitOrderProcessed(context.Background(), &order.Order{}, changes)

	if rec.orders != 1 {
		t.Errorf("orders = %d, want 1", rec.orders)
	}
	if rec.adjusted != 3 {
		t.Errorf("adjusted = %d, want 3", rec.adjusted)
	}
	// only the first change crosses the minimum
	if rec.low != 1 {
		t.Errorf("low = %d, want 1", rec.low)
	}
}

func TestHookFailureDoesNotStopDispatch(t *testing.T) {
	r := quietRegistry()
	failing := &recorder{name: "failing", fail: errors.New("boom")}
	ok := &recorder{name: "ok"}
	for _, p := range []plugin.Plugin{failing, ok} {
		if err := r.Register(p); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	r.EmitStockAdjusted(context.Background(), ingredient.StockChange{})

	if failing.adjusted != 1 || ok.adjusted != 1 {
		t.Errorf("adjusted = %d/%d, want 1/1", failing.adjusted, ok.adjusted)
	}
}

func TestHookTimeout(t *testing.T) {
	r := quietRegistry().WithTimeout(20 * time.Millisecond)
	if err := r.Register(&recorder{name: "slow", block: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	r.EmitOrderProcessed(ctx, &order.Order{}, nil)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("emit took %v, want it bounded by the hook timeout", elapsed)
	}
}
