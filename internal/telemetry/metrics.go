// Package telemetry wires OpenTelemetry tracing and Prometheus metrics and
// exposes the storefront's business counters.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records checkout, voucher and sync outcomes. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	checkouts         metric.Int64Counter
	voucherRejections metric.Int64Counter
	syncFailures      metric.Int64Counter
	syncedItems       metric.Int64Counter
}

// NewMetrics registers the counters on the global MeterProvider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("lamahang-storefront")

	checkouts, err := meter.Int64Counter("storefront_checkouts",
		metric.WithDescription("Checkout submissions by outcome"))
	if err != nil {
		return nil, err
	}
	voucherRejections, err := meter.Int64Counter("storefront_voucher_rejections",
		metric.WithDescription("Rejected voucher applications by reason"))
	if err != nil {
		return nil, err
	}
	syncFailures, err := meter.Int64Counter("storefront_sync_failures",
		metric.WithDescription("Failed backend pushes by collection"))
	if err != nil {
		return nil, err
	}
	syncedItems, err := meter.Int64Counter("storefront_synced_items",
		metric.WithDescription("Items acknowledged by the backend by collection"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		checkouts:         checkouts,
		voucherRejections: voucherRejections,
		syncFailures:      syncFailures,
		syncedItems:       syncedItems,
	}, nil
}

func (m *Metrics) CheckoutOutcome(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) VoucherRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.voucherRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) SyncFailed(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.syncFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("collection", collection)))
}

func (m *Metrics) Synced(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.syncedItems.Add(ctx, 1, metric.WithAttributes(attribute.String("collection", collection)))
}
