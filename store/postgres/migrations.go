package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xraph/kedai"
)

// Executor runs schema statements. Both *pgxpool.Pool and pgx.Tx satisfy it.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migration is one versioned schema change.
type Migration struct {
	Name    string
	Version string
	Up      func(ctx context.Context, exec Executor) error
	Down    func(ctx context.Context, exec Executor) error
}

func statement(sql string) func(context.Context, Executor) error {
	return func(ctx context.Context, exec Executor) error {
		_, err := exec.Exec(ctx, sql)
		return err
	}
}

// Migrations is the ordered schema history of the kedai PostgreSQL store.
var Migrations = []Migration{
	{
		Name:    "create_kedai_ingredients",
		Version: "20240101000001",
		Up: statement(`
CREATE TABLE IF NOT EXISTS kedai_ingredients (
    seq         BIGSERIAL,
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    stock       NUMERIC NOT NULL DEFAULT 0 CHECK (stock >= 0),
    unit        TEXT NOT NULL DEFAULT '',
    cost_amount BIGINT NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    min_stock   NUMERIC NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`),
		Down: statement(`DROP TABLE IF EXISTS kedai_ingredients`),
	},
	{
		Name:    "create_kedai_menus",
		Version: "20240101000002",
		Up: statement(`
CREATE TABLE IF NOT EXISTS kedai_menus (
    seq          BIGSERIAL,
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    price_amount BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    recipe       JSONB NOT NULL DEFAULT '[]',
    available    BOOLEAN NOT NULL DEFAULT TRUE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_kedai_menus_category ON kedai_menus (category);
`),
		Down: statement(`DROP TABLE IF EXISTS kedai_menus`),
	},
	{
		Name:    "create_kedai_orders",
		Version: "20240101000003",
		Up: statement(`
CREATE TABLE IF NOT EXISTS kedai_orders (
    seq          BIGSERIAL,
    id           TEXT PRIMARY KEY,
    number       TEXT NOT NULL DEFAULT '',
    lines        JSONB NOT NULL DEFAULT '[]',
    total_amount BIGINT NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'pending',
    created_at   TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_kedai_orders_created ON kedai_orders (created_at);
CREATE INDEX IF NOT EXISTS idx_kedai_orders_status ON kedai_orders (status, created_at);
`),
		Down: statement(`DROP TABLE IF EXISTS kedai_orders`),
	},
	{
		Name:    "create_kedai_purchases",
		Version: "20240101000004",
		Up: statement(`
CREATE TABLE IF NOT EXISTS kedai_purchases (
    seq             BIGSERIAL,
    id              TEXT PRIMARY KEY,
    ingredient_id   TEXT NOT NULL,
    ingredient_name TEXT NOT NULL DEFAULT '',
    quantity        NUMERIC NOT NULL,
    unit            TEXT NOT NULL DEFAULT '',
    cost_amount     BIGINT NOT NULL DEFAULT 0,
    total_amount    BIGINT NOT NULL DEFAULT 0,
    currency        TEXT NOT NULL DEFAULT '',
    supplier        TEXT NOT NULL DEFAULT '',
    purchased_at    TIMESTAMPTZ NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_kedai_purchases_ingredient ON kedai_purchases (ingredient_id);
CREATE INDEX IF NOT EXISTS idx_kedai_purchases_date ON kedai_purchases (purchased_at);
`),
		Down: statement(`DROP TABLE IF EXISTS kedai_purchases`),
	},
	{
		Name:    "create_kedai_expenses",
		Version: "20240101000005",
		Up: statement(`
CREATE TABLE IF NOT EXISTS kedai_expenses (
    seq         BIGSERIAL,
    id          TEXT PRIMARY KEY,
    description TEXT NOT NULL DEFAULT '',
    amount      BIGINT NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    date        TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_kedai_expenses_date ON kedai_expenses (date);
CREATE INDEX IF NOT EXISTS idx_kedai_expenses_category ON kedai_expenses (category);
`),
		Down: statement(`DROP TABLE IF EXISTS kedai_expenses`),
	},
}

// migrationLock keys the advisory lock that serializes concurrent Migrate
// calls from several processes.
const migrationLock = 0x6b65646169

func (s *Store) migrate(ctx context.Context, migrations []Migration) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: acquire: %w", kedai.ErrMigrationFailed, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrationLock); err != nil {
		return 0, fmt.Errorf("%w: lock: %w", kedai.ErrMigrationFailed, err)
	}
	defer conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, migrationLock) //nolint:errcheck // released with the session anyway

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS kedai_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return 0, fmt.Errorf("%w: bookkeeping table: %w", kedai.ErrMigrationFailed, err)
	}

	rows, err := conn.Query(ctx, `SELECT version FROM kedai_migrations`)
	if err != nil {
		return 0, fmt.Errorf("%w: read applied: %w", kedai.ErrMigrationFailed, err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("%w: read applied: %w", kedai.ErrMigrationFailed, err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	n := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		err := pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
			if err := m.Up(ctx, tx); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO kedai_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name)
			return err
		})
		if err != nil {
			return n, fmt.Errorf("%w: %s: %w", kedai.ErrMigrationFailed, m.Name, err)
		}
		n++
	}
	return n, nil
}
