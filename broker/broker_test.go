package broker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/broker"
	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/purchase"
	"github.com/xraph/kedai/seed"
	"github.com/xraph/kedai/store/memory"
	"github.com/xraph/kedai/types"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu       sync.Mutex
	declared []string
	msgs     []published
	fail     error
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+"/"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.msgs = append(f.msgs, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.key
	}
	return out
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newLedger(t *testing.T, p *broker.Publisher) *kedai.Ledger {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	if err := seed.Load(ctx, s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l := kedai.New(s, kedai.WithLogger(quiet), kedai.WithPlugin(p))
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return l
}

func TestPublisherRoutesEvents(t *testing.T) {
	ctx := context.Background()
	ch := &fakeChannel{}
	l := newLedger(t, broker.New(ch, broker.WithLogger(quiet)))

	if len(ch.declared) != 1 || ch.declared[0] != "kedai.events/topic" {
		t.Fatalf("declared = %v", ch.declared)
	}

	m, _ := l.GetMenu(ctx, seed.EsTehManis)
	res, err := l.ProcessOrder(ctx, order.New("ORD-9", time.Now(), order.NewLine(m, 1)))
	if err != nil {
		t.Fatalf("ProcessOrder: %v", err)
	}
	if err := l.UpdateOrderStatus(ctx, res.Order.ID, order.StatusCompleted); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if _, err := l.AddPurchase(ctx, &purchase.Purchase{
		IngredientID: seed.Sayur,
		Quantity:     decimal.NewFromInt(5),
		CostPerUnit:  types.IDR(15000),
	}); err != nil {
		t.Fatalf("AddPurchase: %v", err)
	}
	if err := l.AddExpense(ctx, &expense.Expense{Description: "Gas", Amount: types.IDR(90000)}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := l.AdjustIngredientStock(ctx, seed.Ayam, decimal.NewFromInt(28)); err != nil {
		t.Fatalf("AdjustIngredientStock: %v", err)
	}

	want := []string{
		broker.KeyOrderProcessed,
		broker.KeyStockAdjusted,
		broker.KeyOrderStatusChanged,
		broker.KeyPurchaseRecorded,
		broker.KeyStockAdjusted,
		broker.KeyExpenseRecorded,
		broker.KeyStockAdjusted,
		broker.KeyStockLow,
	}
	got := ch.keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d key = %s, want %s", i, got[i], want[i])
		}
	}

	first := ch.msgs[0]
	if first.exchange != broker.DefaultExchange || first.msg.DeliveryMode != amqp.Persistent {
		t.Errorf("first message = %s mode %d", first.exchange, first.msg.DeliveryMode)
	}
	if first.msg.CorrelationId != "ORD-9" || first.msg.ContentType != "application/json" {
		t.Errorf("first message headers = %q %q", first.msg.CorrelationId, first.msg.ContentType)
	}

	var evt struct {
		Type string `json:"type"`
		Data struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"data"`
	}
	if err := json.Unmarshal(ch.msgs[2].msg.Body, &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.Type != broker.KeyOrderStatusChanged || evt.Data.From != "pending" || evt.Data.To != "completed" {
		t.Errorf("status event = %+v", evt)
	}
}

func TestPublisherOptions(t *testing.T) {
	ch := &fakeChannel{}
	at := time.Date(2024, time.January, 15, 3, 30, 0, 0, time.UTC)
	p := broker.New(ch,
		broker.WithExchange("pos"),
		broker.WithSource("kasir-1"),
		broker.WithTransient(),
		broker.WithClock(func() time.Time { return at }),
		broker.WithLogger(quiet),
	)

	if err := p.Publish(context.Background(), "custom.key", "m-1", "", map[string]int{"n": 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	msg := ch.msgs[0]
	if msg.exchange != "pos" || msg.msg.DeliveryMode != amqp.Transient {
		t.Errorf("message = %s mode %d", msg.exchange, msg.msg.DeliveryMode)
	}
	if msg.msg.Headers["x-source"] != "kasir-1" || !msg.msg.Timestamp.Equal(at) || msg.msg.MessageId != "m-1" {
		t.Errorf("message metadata = %+v", msg.msg)
	}
}

func TestPublishFailureDoesNotFailLedger(t *testing.T) {
	ctx := context.Background()
	ch := &fakeChannel{fail: errors.New("channel closed")}
	l := newLedger(t, broker.New(ch, broker.WithLogger(quiet)))

	if err := l.AddExpense(ctx, &expense.Expense{Description: "Gas", Amount: types.IDR(90000)}); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	list, _ := l.ListExpenses(ctx, expense.ListOpts{})
	if len(list) != 3 {
		t.Errorf("expenses = %d, want 3", len(list))
	}
}
