package extension

import (
	"github.com/xraph/kedai"
	"github.com/xraph/kedai/plugin"
	"github.com/xraph/kedai/store"
)

// Option configures the Kedai Forge extension.
type Option func(*Extension)

// WithStore sets the store for the ledger engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithLedgerOption passes a kedai.Option through to the underlying engine.
func WithLedgerOption(opt kedai.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a kedai plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, kedai.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithSeed loads the demo dataset on start.
func WithSeed() Option {
	return func(e *Extension) { e.config.Seed = true }
}

// WithCurrency sets the default currency code.
func WithCurrency(code string) Option {
	return func(e *Extension) { e.config.Currency = code }
}

// WithReferencePolicy sets "lenient" or "strict" reference handling.
func WithReferencePolicy(policy string) Option {
	return func(e *Extension) { e.config.ReferencePolicy = policy }
}

// WithStrictTransitions enforces the order lifecycle.
func WithStrictTransitions() Option {
	return func(e *Extension) { e.config.StrictTransitions = true }
}

// WithTopProducts sets how many products the sales report ranks.
func WithTopProducts(n int) Option {
	return func(e *Extension) { e.config.TopProducts = n }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
