package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xraph/kedai"
)

// Migration is one versioned schema change.
type Migration struct {
	Name    string
	Version string
	Up      string
	Down    string
}

// Migrations is the ordered schema history of the kedai SQLite store.
var Migrations = []Migration{
	{
		Name:    "create_kedai_ingredients",
		Version: "20240101000001",
		Up: `
CREATE TABLE IF NOT EXISTS kedai_ingredients (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    stock       TEXT NOT NULL DEFAULT '0',
    unit        TEXT NOT NULL DEFAULT '',
    cost_amount INTEGER NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    min_stock   TEXT NOT NULL DEFAULT '0',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`,
		Down: `DROP TABLE IF EXISTS kedai_ingredients`,
	},
	{
		Name:    "create_kedai_menus",
		Version: "20240101000002",
		Up: `
CREATE TABLE IF NOT EXISTS kedai_menus (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    id           TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    price_amount INTEGER NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    recipe       TEXT NOT NULL DEFAULT '[]',
    available    INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kedai_menus_category ON kedai_menus (category);
`,
		Down: `DROP TABLE IF EXISTS kedai_menus`,
	},
	{
		Name:    "create_kedai_orders",
		Version: "20240101000003",
		Up: `
CREATE TABLE IF NOT EXISTS kedai_orders (
    seq          INTEGER PRIMARY KEY AUTOINCREMENT,
    id           TEXT NOT NULL UNIQUE,
    number       TEXT NOT NULL DEFAULT '',
    lines        TEXT NOT NULL DEFAULT '[]',
    total_amount INTEGER NOT NULL DEFAULT 0,
    currency     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'pending',
    created_at   TEXT NOT NULL,
    completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_kedai_orders_created ON kedai_orders (created_at);
CREATE INDEX IF NOT EXISTS idx_kedai_orders_status ON kedai_orders (status, created_at);
`,
		Down: `DROP TABLE IF EXISTS kedai_orders`,
	},
	{
		Name:    "create_kedai_purchases",
		Version: "20240101000004",
		Up: `
CREATE TABLE IF NOT EXISTS kedai_purchases (
    seq             INTEGER PRIMARY KEY AUTOINCREMENT,
    id              TEXT NOT NULL UNIQUE,
    ingredient_id   TEXT NOT NULL,
    ingredient_name TEXT NOT NULL DEFAULT '',
    quantity        TEXT NOT NULL,
    unit            TEXT NOT NULL DEFAULT '',
    cost_amount     INTEGER NOT NULL DEFAULT 0,
    total_amount    INTEGER NOT NULL DEFAULT 0,
    currency        TEXT NOT NULL DEFAULT '',
    supplier        TEXT NOT NULL DEFAULT '',
    purchased_at    TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kedai_purchases_ingredient ON kedai_purchases (ingredient_id);
CREATE INDEX IF NOT EXISTS idx_kedai_purchases_date ON kedai_purchases (purchased_at);
`,
		Down: `DROP TABLE IF EXISTS kedai_purchases`,
	},
	{
		Name:    "create_kedai_expenses",
		Version: "20240101000005",
		Up: `
CREATE TABLE IF NOT EXISTS kedai_expenses (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    amount      INTEGER NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    date        TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_kedai_expenses_date ON kedai_expenses (date);
CREATE INDEX IF NOT EXISTS idx_kedai_expenses_category ON kedai_expenses (category);
`,
		Down: `DROP TABLE IF EXISTS kedai_expenses`,
	},
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS kedai_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL
)`

// migrate applies every migration not yet recorded in kedai_migrations,
// each in its own transaction.
func migrate(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return 0, fmt.Errorf("%w: bookkeeping table: %w", kedai.ErrMigrationFailed, err)
	}

	applied := map[string]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM kedai_migrations`)
	if err != nil {
		return 0, fmt.Errorf("%w: read applied: %w", kedai.ErrMigrationFailed, err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, fmt.Errorf("%w: read applied: %w", kedai.ErrMigrationFailed, err)
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: read applied: %w", kedai.ErrMigrationFailed, err)
	}

	n := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return n, fmt.Errorf("%w: %s: %w", kedai.ErrMigrationFailed, m.Name, err)
		}
		n++
	}
	return n, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kedai_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, formatTime(time.Now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}
