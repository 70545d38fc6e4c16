// Package broker publishes kedai ledger events to an AMQP topic exchange.
//
// Register a Publisher as a ledger plugin. Every committed order, status
// change, purchase, expense and stock movement becomes a JSON message on
// the exchange, keyed by event type so consumers can bind on patterns such
// as "order.*" or "stock.low".
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xraph/kedai/expense"
	"github.com/xraph/kedai/ingredient"
	"github.com/xraph/kedai/order"
	"github.com/xraph/kedai/plugin"
	"github.com/xraph/kedai/purchase"
)

// DefaultExchange is the topic exchange events are published to.
const DefaultExchange = "kedai.events"

// Routing keys.
const (
	KeyOrderProcessed     = "order.processed"
	KeyOrderStatusChanged = "order.status_changed"
	KeyPurchaseRecorded   = "purchase.recorded"
	KeyExpenseRecorded    = "expense.recorded"
	KeyStockAdjusted      = "stock.adjusted"
	KeyStockLow           = "stock.low"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin               = (*Publisher)(nil)
	_ plugin.OnInit               = (*Publisher)(nil)
	_ plugin.OnOrderProcessed     = (*Publisher)(nil)
	_ plugin.OnOrderStatusChanged = (*Publisher)(nil)
	_ plugin.OnPurchaseRecorded   = (*Publisher)(nil)
	_ plugin.OnExpenseRecorded    = (*Publisher)(nil)
	_ plugin.OnStockAdjusted      = (*Publisher)(nil)
	_ plugin.OnLowStock           = (*Publisher)(nil)

	_ Channel = (*amqp.Channel)(nil)
)

// Channel is the part of an AMQP channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Event is the JSON envelope of every message body.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// OrderProcessed is the payload of order.processed.
type OrderProcessed struct {
	Order   *order.Order             `json:"order"`
	Changes []ingredient.StockChange `json:"changes"`
}

// OrderStatusChanged is the payload of order.status_changed.
type OrderStatusChanged struct {
	OrderID string       `json:"order_id"`
	Number  string       `json:"number"`
	From    order.Status `json:"from"`
	To      order.Status `json:"to"`
}

// PurchaseRecorded is the payload of purchase.recorded.
type PurchaseRecorded struct {
	Purchase *purchase.Purchase      `json:"purchase"`
	Change   *ingredient.StockChange `json:"change,omitempty"`
}

// Publisher publishes ledger events to an AMQP exchange.
type Publisher struct {
	ch         Channel
	exchange   string
	source     string
	persistent bool
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithExchange sets the exchange name.
func WithExchange(name string) Option {
	return func(p *Publisher) {
		if name != "" {
			p.exchange = name
		}
	}
}

// WithSource sets the x-source header stamped on every message.
func WithSource(source string) Option {
	return func(p *Publisher) { p.source = source }
}

// WithTransient publishes non-persistent messages.
func WithTransient() Option {
	return func(p *Publisher) { p.persistent = false }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Publisher on ch.
func New(ch Channel, opts ...Option) *Publisher {
	p := &Publisher{
		ch:         ch,
		exchange:   DefaultExchange,
		source:     "kedai",
		persistent: true,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *Publisher) Name() string { return "amqp-broker" }

// Exchange returns the exchange events are published to.
func (p *Publisher) Exchange() string { return p.exchange }

// Declare declares the durable topic exchange.
func (p *Publisher) Declare() error {
	if err := p.ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("broker: declare %s: %w", p.exchange, err)
	}
	return nil
}

// OnInit implements plugin.OnInit by declaring the exchange.
func (p *Publisher) OnInit(_ context.Context, _ interface{}) error {
	return p.Declare()
}

// ──────────────────────────────────────────────────
// Event hooks
// ──────────────────────────────────────────────────

// OnOrderProcessed implements plugin.OnOrderProcessed.
func (p *Publisher) OnOrderProcessed(ctx context.Context, o *order.Order, changes []ingredient.StockChange) error {
	return p.Publish(ctx, KeyOrderProcessed, o.ID.String(), o.Number,
		OrderProcessed{Order: o, Changes: changes})
}

// OnOrderStatusChanged implements plugin.OnOrderStatusChanged.
func (p *Publisher) OnOrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	return p.Publish(ctx, KeyOrderStatusChanged, o.ID.String()+":"+string(o.Status), o.Number,
		OrderStatusChanged{OrderID: o.ID.String(), Number: o.Number, From: from, To: o.Status})
}

// OnPurchaseRecorded implements plugin.OnPurchaseRecorded.
func (p *Publisher) OnPurchaseRecorded(ctx context.Context, pur *purchase.Purchase, change *ingredient.StockChange) error {
	return p.Publish(ctx, KeyPurchaseRecorded, pur.ID.String(), "",
		PurchaseRecorded{Purchase: pur, Change: change})
}

// OnExpenseRecorded implements plugin.OnExpenseRecorded.
func (p *Publisher) OnExpenseRecorded(ctx context.Context, e *expense.Expense) error {
	return p.Publish(ctx, KeyExpenseRecorded, e.ID.String(), "", e)
}

// OnStockAdjusted implements plugin.OnStockAdjusted.
func (p *Publisher) OnStockAdjusted(ctx context.Context, c ingredient.StockChange) error {
	return p.Publish(ctx, KeyStockAdjusted, "", c.IngredientID.String(), c)
}

// OnLowStock implements plugin.OnLowStock.
func (p *Publisher) OnLowStock(ctx context.Context, c ingredient.StockChange) error {
	return p.Publish(ctx, KeyStockLow, "", c.IngredientID.String(), c)
}

// Publish wraps data in an Event and publishes it under key. messageID and
// correlationID are optional.
func (p *Publisher) Publish(ctx context.Context, key, messageID, correlationID string, data any) error {
	now := p.now().UTC()
	body, err := json.Marshal(Event{Type: key, OccurredAt: now, Data: data})
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", key, err)
	}

	mode := amqp.Transient
	if p.persistent {
		mode = amqp.Persistent
	}

	msg := amqp.Publishing{
		DeliveryMode:  mode,
		ContentType:   "application/json",
		Type:          key,
		MessageId:     messageID,
		CorrelationId: correlationID,
		Timestamp:     now,
		Headers:       amqp.Table{"x-source": p.source},
		Body:          body,
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("broker: publish %s: %w", key, err)
	}

	p.logger.Debug("event published",
		"exchange", p.exchange,
		"key", key,
		"bytes", len(body),
	)
	return nil
}
