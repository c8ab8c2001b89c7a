package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productrepo "lamahang-storefront/internal/repository/product"
	voucherrepo "lamahang-storefront/internal/repository/voucher"
	"lamahang-storefront/internal/testdb"
)

func TestApply_Idempotent(t *testing.T) {
	pool := testdb.Pool(t)
	ctx := context.Background()
	testdb.Reset(ctx, t, pool)

	require.NoError(t, Apply(ctx, pool, nil))
	require.NoError(t, Apply(ctx, pool, nil))

	products, err := productrepo.NewPostgres(pool, nil).List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, products, len(Catalog))

	v, err := voucherrepo.NewPostgres(pool, nil).GetByCode(ctx, "diskon10")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), v.MinPurchase)
}
