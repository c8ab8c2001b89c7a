package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.CheckoutOutcome(ctx, "submitted")
	m.VoucherRejected(ctx, "below_minimum")
	m.SyncFailed(ctx, "cart")
	m.Synced(ctx, "cart")
}

func TestMetricsExposedOnHandler(t *testing.T) {
	handler, shutdown, err := InitMeterProvider("test")
	require.NoError(t, err)
	defer shutdown(context.Background())

	m, err := NewMetrics()
	require.NoError(t, err)
	m.CheckoutOutcome(context.Background(), "submitted")
	m.VoucherRejected(context.Background(), "inactive")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Contains(t, string(body), "storefront_checkouts_total")
	assert.Contains(t, string(body), `outcome="submitted"`)
	assert.Contains(t, string(body), "storefront_voucher_rejections_total")
}

func TestInitTracerProviderWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), "", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
