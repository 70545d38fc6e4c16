package kedai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xraph/kedai/plugin"
	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/types"
)

// ReferencePolicy decides what a mutation does when it references an
// ingredient or menu item that does not exist.
type ReferencePolicy int

const (
	// ReferenceLenient applies what resolves, records the entity and
	// reports the unresolved identifiers in the result.
	ReferenceLenient ReferencePolicy = iota
	// ReferenceStrict rejects the mutation with a *ReferenceError.
	ReferenceStrict
)

func (p ReferencePolicy) String() string {
	switch p {
	case ReferenceStrict:
		return "strict"
	default:
		return "lenient"
	}
}

// ParseReferencePolicy converts "lenient" or "strict" into a policy.
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch strings.ToLower(s) {
	case "", "lenient":
		return ReferenceLenient, nil
	case "strict":
		return ReferenceStrict, nil
	}
	return ReferenceLenient, fmt.Errorf("kedai: unknown reference policy %q", s)
}

// Ledger is the F&B back-office engine. It applies the ledger's mutation
// rules on top of a store and computes reports from store snapshots.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// Configuration
	currency          string
	referencePolicy   ReferencePolicy
	strictTransitions bool
	topProducts       int
	now               func() time.Time
	orderNumber       func(time.Time) string
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:           s,
		plugins:         plugin.NewRegistry(),
		logger:          slog.Default(),
		currency:        types.DefaultCurrency,
		referencePolicy: ReferenceLenient,
		topProducts:     report.DefaultTopN,
		now:             time.Now,
		orderNumber:     DefaultOrderNumber,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// DefaultOrderNumber formats "ORD-<unix millis>".
func DefaultOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%d", t.UnixMilli())
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCurrency sets the currency given to prices and costs entered
// without one, and to empty report totals.
func WithCurrency(code string) Option {
	return func(l *Ledger) {
		if code != "" {
			l.currency = strings.ToLower(code)
		}
	}
}

// WithReferencePolicy sets how unresolved references are handled.
func WithReferencePolicy(p ReferencePolicy) Option {
	return func(l *Ledger) {
		l.referencePolicy = p
	}
}

// WithStrictTransitions enforces the order lifecycle: pending may become
// completed or cancelled and terminal statuses never change.
func WithStrictTransitions() Option {
	return func(l *Ledger) {
		l.strictTransitions = true
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithOrderNumbers sets the generator of human-readable order numbers.
func WithOrderNumbers(fn func(time.Time) string) Option {
	return func(l *Ledger) {
		if fn != nil {
			l.orderNumber = fn
		}
	}
}

// WithTopProducts sets how many products the sales report ranks.
func WithTopProducts(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.topProducts = n
		}
	}
}

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	// Migrate database
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	l.logger.Info("ledger started",
		"currency", l.currency,
		"reference_policy", l.referencePolicy.String(),
		"strict_transitions", l.strictTransitions,
		"plugins", l.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// Store returns the underlying store.
func (l *Ledger) Store() store.Store { return l.store }

// Plugins returns the plugin registry.
func (l *Ledger) Plugins() *plugin.Registry { return l.plugins }

// Currency returns the ledger's default currency.
func (l *Ledger) Currency() string { return l.currency }

// Health pings the store.
func (l *Ledger) Health(ctx context.Context) error {
	return l.store.Ping(ctx)
}

func (l *Ledger) money(m types.Money) types.Money {
	if m.Currency == "" {
		m.Currency = l.currency
	}
	return m
}
