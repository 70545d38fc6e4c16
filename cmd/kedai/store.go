package main

import (
	"context"
	"fmt"

	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/store/memory"
	"github.com/xraph/kedai/store/mongo"
	"github.com/xraph/kedai/store/postgres"
	"github.com/xraph/kedai/store/sqlite"
)

// openStore opens the configured backend. The caller owns the store and
// closes it.
func openStore(ctx context.Context, c StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		dsn := c.DSN
		if dsn == "" {
			dsn = "kedai.db"
		}
		return sqlite.Open(dsn)
	case "postgres":
		if c.DSN == "" {
			return nil, fmt.Errorf("store: postgres needs a dsn")
		}
		return postgres.Open(ctx, c.DSN)
	case "mongo":
		if c.DSN == "" {
			return nil, fmt.Errorf("store: mongo needs a dsn")
		}
		return mongo.Open(ctx, c.DSN, c.Database)
	}
	return nil, fmt.Errorf("store: unknown driver %q", c.Driver)
}
