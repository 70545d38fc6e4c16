// Command kedai opens a kedai ledger on one of the store backends, and
// prints or exports its reports.
//
//	kedai [flags] report <sales|purchases|expenses|cashflow|pnl|dashboard|inventory>
//	kedai [flags] export <file.xlsx>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/xraph/kedai"
	"github.com/xraph/kedai/audit_hook"
	"github.com/xraph/kedai/broker"
	"github.com/xraph/kedai/observability"
	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/report/xlsx"
	"github.com/xraph/kedai/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "kedai:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	level, err := cfg.Log.level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd := fs.Args()
	if len(cmd) != 2 {
		return errors.New("usage: kedai [flags] report <name> | export <file.xlsx>")
	}

	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	ref := time.Now().In(loc)
	if cfg.Report.Date != "" {
		if ref, err = time.ParseInLocation(time.DateOnly, cfg.Report.Date, loc); err != nil {
			return fmt.Errorf("date: %w", err)
		}
	}

	policy, err := kedai.ParseReferencePolicy(cfg.Ledger.ReferencePolicy)
	if err != nil {
		return err
	}

	s, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}

	opts := []kedai.Option{
		kedai.WithLogger(logger),
		kedai.WithCurrency(cfg.Ledger.Currency),
		kedai.WithReferencePolicy(policy),
		kedai.WithTopProducts(cfg.Ledger.TopProducts),
	}
	if cfg.Ledger.StrictTransitions {
		opts = append(opts, kedai.WithStrictTransitions())
	}
	if cfg.Report.Date != "" {
		opts = append(opts, kedai.WithClock(func() time.Time { return ref }))
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, kedai.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))))
	}
	if cfg.Audit {
		opts = append(opts, kedai.WithPlugin(audithook.New(auditLogger(logger), audithook.WithLogger(logger))))
	}
	if cfg.Broker.URL != "" {
		conn, err := broker.Dial(cfg.Broker.URL)
		if err != nil {
			_ = s.Close()
			return err
		}
		defer conn.Close()
		opts = append(opts, kedai.WithPlugin(broker.New(conn.Channel(),
			broker.WithExchange(cfg.Broker.Exchange),
			broker.WithLogger(logger),
		)))
	}

	l := kedai.New(s, opts...)
	if err := l.Start(ctx); err != nil {
		_ = s.Close()
		return err
	}
	defer func() {
		if err := l.Stop(); err != nil {
			logger.Warn("ledger stop failed", "error", err)
		}
	}()

	if cfg.Store.Seed {
		if err := seed.Load(ctx, s); err != nil {
			if !errors.Is(err, kedai.ErrAlreadyExists) {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("seed data already present")
		}
	}

	switch cmd[0] {
	case "report":
		v, err := buildReport(ctx, l, cmd[1], cfg.Report.Period, ref)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
	case "export":
		if err := export(ctx, l, cmd[1], cfg.Report.Period, ref); err != nil {
			return err
		}
		logger.Info("workbook written", "path", cmd[1])
	default:
		return fmt.Errorf("unknown command %q", cmd[0])
	}

	if reg != nil {
		logMetrics(logger, reg)
	}
	return nil
}

func buildReport(ctx context.Context, l *kedai.Ledger, name, period string, ref time.Time) (any, error) {
	switch name {
	case "sales", "purchases", "expenses":
		kind, err := report.ParseKind(period)
		if err != nil {
			return nil, err
		}
		switch name {
		case "sales":
			return l.SalesReport(ctx, kind, ref)
		case "purchases":
			return l.PurchaseReport(ctx, kind, ref)
		default:
			return l.ExpenseReport(ctx, kind, ref)
		}
	case "cashflow":
		mode, err := report.ParseCashFlowMode(period)
		if err != nil {
			return nil, err
		}
		return l.CashFlow(ctx, mode, ref)
	case "pnl":
		return l.ProfitLoss(ctx, ref)
	case "dashboard":
		return l.Dashboard(ctx)
	case "inventory":
		return l.Inventory(ctx)
	}
	return nil, fmt.Errorf("unknown report %q", name)
}

func export(ctx context.Context, l *kedai.Ledger, path, period string, ref time.Time) error {
	kind, err := report.ParseKind(period)
	if err != nil {
		return err
	}
	mode, err := report.ParseCashFlowMode(period)
	if err != nil {
		mode = report.Trailing
	}

	var wb xlsx.Workbook
	if wb.Sales, err = l.SalesReport(ctx, kind, ref); err != nil {
		return err
	}
	if wb.CashFlow, err = l.CashFlow(ctx, mode, ref); err != nil {
		return err
	}
	if wb.ProfitLoss, err = l.ProfitLoss(ctx, ref); err != nil {
		return err
	}
	if wb.Inventory, err = l.Inventory(ctx); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.Write(f, wb); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func auditLogger(logger *slog.Logger) audithook.RecorderFunc {
	return func(_ context.Context, e *audithook.AuditEvent) error {
		logger.Info("audit",
			"action", e.Action,
			"resource", e.Resource,
			"resource_id", e.ResourceID,
			"outcome", e.Outcome,
			"severity", e.Severity,
		)
		return nil
	}
}

func logMetrics(logger *slog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("gather metrics failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				if v := m.GetCounter().GetValue(); v > 0 {
					logger.Info("metric", "name", mf.GetName(), "value", v)
				}
			case m.GetHistogram() != nil:
				if n := m.GetHistogram().GetSampleCount(); n > 0 {
					logger.Info("metric", "name", mf.GetName(), "count", n, "sum", m.GetHistogram().GetSampleSum())
				}
			}
		}
	}
}
