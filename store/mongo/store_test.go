package mongo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/xraph/kedai/store"
	"github.com/xraph/kedai/store/mongo"
	"github.com/xraph/kedai/store/storetest"
)

// Set KEDAI_MONGO_URI to a replica set to run these tests. Each store gets
// its own database, dropped on cleanup.
func open(t *testing.T) *mongo.Store {
	t.Helper()
	uri := os.Getenv("KEDAI_MONGO_URI")
	if uri == "" {
		t.Skip("KEDAI_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := mongo.Open(ctx, uri, fmt.Sprintf("kedai_test_%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Database().Drop(context.Background())
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return open(t) })
}

func TestPing(t *testing.T) {
	s := open(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
