// Package extension provides the Forge extension adapter for Kedai.
//
// It implements the forge.Extension interface to integrate the kedai
// ledger into a Forge application with DI registration and lifecycle
// management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.kedai" or "kedai" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/seed"
	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "kedai"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "F&B back-office ledger: inventory, orders, purchases and reports"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the kedai ledger as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *kedai.Ledger
	store      store.Store
	ledgerOpts []kedai.Option
}

// New creates a new Kedai Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Ledger instance.
// This is nil until Register is called.
func (e *Extension) Engine() *kedai.Ledger { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		e.store = memory.New()
	}

	opts, err := e.buildLedgerOpts()
	if err != nil {
		return err
	}
	e.engine = kedai.New(e.store, opts...)

	return vessel.Provide(fapp.Container(), func() (*kedai.Ledger, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("kedai: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	if e.config.Seed {
		err := seed.Load(ctx, e.store)
		switch {
		case errors.Is(err, kedai.ErrAlreadyExists):
			e.Logger().Info("kedai: seed data already present")
		case err != nil:
			return fmt.Errorf("kedai: seed: %w", err)
		default:
			e.Logger().Info("kedai: seed data loaded")
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("kedai: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildLedgerOpts converts the resolved config into engine options.
// Pass-through options come last so they win.
func (e *Extension) buildLedgerOpts() ([]kedai.Option, error) {
	policy, err := kedai.ParseReferencePolicy(e.config.ReferencePolicy)
	if err != nil {
		return nil, err
	}

	opts := make([]kedai.Option, 0, len(e.ledgerOpts)+4)
	opts = append(opts,
		kedai.WithCurrency(e.config.Currency),
		kedai.WithReferencePolicy(policy),
		kedai.WithTopProducts(e.config.TopProducts),
	)
	if e.config.StrictTransitions {
		opts = append(opts, kedai.WithStrictTransitions())
	}
	return append(opts, e.ledgerOpts...), nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("kedai: configuration is required but not found in config files; " +
				"ensure 'extensions.kedai' or 'kedai' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("kedai: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("seed", e.config.Seed),
		forge.F("currency", e.config.Currency),
		forge.F("reference_policy", e.config.ReferencePolicy),
		forge.F("strict_transitions", e.config.StrictTransitions),
		forge.F("top_products", e.config.TopProducts),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.kedai", "kedai"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err != nil {
			e.Logger().Warn("kedai: failed to bind config",
				forge.F("key", key),
				forge.F("error", err.Error()),
			)
			continue
		}
		e.Logger().Debug("kedai: loaded config from file", forge.F("key", key))
		return cfg, true
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}
	if cfg.ReferencePolicy == "" {
		cfg.ReferencePolicy = defaults.ReferencePolicy
	}
	if cfg.TopProducts == 0 {
		cfg.TopProducts = defaults.TopProducts
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML wins for valued fields; programmatic bool flags and values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.Seed {
		yamlConfig.Seed = true
	}
	if programmaticConfig.StrictTransitions {
		yamlConfig.StrictTransitions = true
	}

	if yamlConfig.Currency == "" {
		yamlConfig.Currency = programmaticConfig.Currency
	}
	if yamlConfig.ReferencePolicy == "" {
		yamlConfig.ReferencePolicy = programmaticConfig.ReferencePolicy
	}
	if yamlConfig.TopProducts == 0 {
		yamlConfig.TopProducts = programmaticConfig.TopProducts
	}

	return mergeWithDefaults(yamlConfig)
}
