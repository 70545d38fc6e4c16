package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/types"
)

// Config is the CLI configuration. Values come from, in increasing
// precedence: defaults, the config file, KEDAI_* environment variables
// and command-line flags.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Report  ReportConfig  `mapstructure:"report"`
	Broker  BrokerConfig  `mapstructure:"broker"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Audit   bool          `mapstructure:"audit"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
	Seed     bool   `mapstructure:"seed"`
}

type LedgerConfig struct {
	Currency          string `mapstructure:"currency"`
	ReferencePolicy   string `mapstructure:"reference_policy"`
	StrictTransitions bool   `mapstructure:"strict_transitions"`
	TopProducts       int    `mapstructure:"top_products"`
}

type ReportConfig struct {
	Period   string `mapstructure:"period"`
	Date     string `mapstructure:"date"`
	Timezone string `mapstructure:"timezone"`
}

type BrokerConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"driver":   "store.driver",
	"dsn":      "store.dsn",
	"database": "store.database",
	"seed":     "store.seed",
	"period":   "report.period",
	"date":     "report.date",
	"tz":       "report.timezone",
	"amqp":     "broker.url",
	"log":      "log.level",
	"metrics":  "metrics.enabled",
	"audit":    "audit",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("kedai", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("driver", "memory", "store driver: memory | sqlite | postgres | mongo")
	fs.String("dsn", "", "store data source (sqlite file, postgres DSN or mongo URI)")
	fs.String("database", "kedai", "mongo database name")
	fs.Bool("seed", false, "load the demo dataset before running the command")
	fs.String("period", "daily", "report period: daily | monthly | yearly (cashflow: monthly | yearly)")
	fs.String("date", "", "reference date (YYYY-MM-DD), default today")
	fs.String("tz", "Asia/Jakarta", "time zone reports are bucketed in")
	fs.String("amqp", "", "publish ledger events to this AMQP URL")
	fs.String("log", "info", "log level: debug | info | warn | error")
	fs.Bool("metrics", false, "log collected metrics on exit")
	fs.Bool("audit", false, "log an audit trail of ledger mutations")
	return fs
}

func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.database", "kedai")
	v.SetDefault("ledger.currency", types.DefaultCurrency)
	v.SetDefault("ledger.reference_policy", "lenient")
	v.SetDefault("ledger.strict_transitions", false)
	v.SetDefault("ledger.top_products", report.DefaultTopN)
	v.SetDefault("report.period", "daily")
	v.SetDefault("report.timezone", "Asia/Jakarta")
	v.SetDefault("broker.exchange", "kedai.events")
	v.SetDefault("log.level", "info")

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// environment overrides, e.g. KEDAI_STORE_DRIVER=sqlite
	v.SetEnvPrefix("KEDAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			return nil, fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (c LogConfig) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, errors.New("unknown log level " + c.Level)
	}
	return l, nil
}
