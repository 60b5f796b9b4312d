//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/md-rashed-zaman/storelink/libs/db"
)

// NewPostgres starts a throwaway Postgres, applies schema and returns a pool.
func NewPostgres(t *testing.T, schema string) *db.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storelink"),
		tcpostgres.WithUsername("storelink"),
		tcpostgres.WithPassword("storelink"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	pool, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	if schema != "" {
		if _, err := pool.Exec(ctx, schema); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}
	return pool
}
