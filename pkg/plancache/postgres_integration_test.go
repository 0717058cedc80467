//go:build integration

package plancache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/marmos91/dbrt/pkg/config"
	"github.com/marmos91/dbrt/pkg/plancache"
)

func TestStore_Postgres_MigratesAndRoundTrips(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("plancache"),
		postgres.WithUsername("plancache"),
		postgres.WithPassword("plancache"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.PlanCacheConfig{
		DatabaseType: "postgres",
		Host:         host,
		Port:         port.Int(),
		Database:     "plancache",
		User:         "plancache",
		Password:     "plancache",
		SSLMode:      "disable",
	}

	store, err := plancache.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Put(ctx, "hash-1", "0|0|1234", []byte{1, 2, 3}, "SELECT 1"))

	e, hit, err := store.Get(ctx, "hash-1", "0|0|1234")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []byte{1, 2, 3}, e.XASLID)
}
