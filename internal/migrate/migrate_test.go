package migrate_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"lamahang-storefront/internal/migrate"
	"lamahang-storefront/internal/testdb"
)

func TestRollbackAndReapply(t *testing.T) {
	if os.Getenv("TEST_DB_DSN") != "" {
		t.Skip("rollback drops shared tables; runs only against a private container")
	}
	pool := testdb.Pool(t)
	ctx := context.Background()

	version, dirty, err := migrate.Version(ctx, pool)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	require.NoError(t, migrate.Rollback(ctx, pool, 1))
	version, _, err = migrate.Version(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)

	var exists bool
	require.NoError(t, pool.QueryRow(ctx, `SELECT to_regclass('public.orders') IS NOT NULL`).Scan(&exists))
	require.False(t, exists)

	require.NoError(t, migrate.Rollback(ctx, pool, 0))
	version, _, err = migrate.Version(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, uint(0), version)

	require.NoError(t, pool.QueryRow(ctx, `SELECT to_regclass('public.vouchers') IS NOT NULL`).Scan(&exists))
	require.False(t, exists)

	require.NoError(t, migrate.Apply(ctx, pool))
	require.NoError(t, migrate.Apply(ctx, pool))
	version, _, err = migrate.Version(ctx, pool)
	require.NoError(t, err)
	require.Equal(t, uint(2), version)
}
