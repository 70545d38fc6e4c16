package extension

import (
	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/types"
)

// Config holds the Kedai extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.kedai" or "kedai" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Seed loads the demo dataset into the store after migration.
	Seed bool `json:"seed" mapstructure:"seed" yaml:"seed"`

	// Currency is given to prices and costs entered without one
	// (default: "idr").
	Currency string `json:"currency" mapstructure:"currency" yaml:"currency"`

	// ReferencePolicy is "lenient" or "strict" (default: "lenient").
	ReferencePolicy string `json:"reference_policy" mapstructure:"reference_policy" yaml:"reference_policy"`

	// StrictTransitions enforces the order lifecycle.
	StrictTransitions bool `json:"strict_transitions" mapstructure:"strict_transitions" yaml:"strict_transitions"`

	// TopProducts is how many products the sales report ranks (default: 10).
	TopProducts int `json:"top_products" mapstructure:"top_products" yaml:"top_products"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Currency:        types.DefaultCurrency,
		ReferencePolicy: "lenient",
		TopProducts:     report.DefaultTopN,
	}
}
