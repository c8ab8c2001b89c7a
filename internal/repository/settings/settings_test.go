package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/testdb"
)

func TestPostgres_DefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t), nil)

	app, err := repo.AppSettings(ctx)
	if err != nil {
		t.Fatalf("AppSettings: %v", err)
	}
	if app.FreeShippingThreshold != 100000 || app.DefaultShippingCost != 20000 || !app.TaxRate.Equal(decimal.NewFromInt(11)) || !app.TaxEnabled {
		t.Fatalf("unexpected app defaults %+v", app)
	}

	pay, err := repo.PaymentSettings(ctx)
	if err != nil {
		t.Fatalf("PaymentSettings: %v", err)
	}
	if !pay.CODEnabled || pay.CODMinOrder != 50000 || pay.CODMaxOrder != 5000000 || pay.VirtualAccountFee != 4000 {
		t.Fatalf("unexpected payment defaults %+v", pay)
	}
}

func TestPostgres_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t), nil)

	want := domain.AppSettings{
		FreeShippingThreshold: 150000,
		DefaultShippingCost:   18000,
		TaxRate:               decimal.RequireFromString("12.5"),
		TaxEnabled:            false,
	}
	if err := repo.SaveAppSettings(ctx, want); err != nil {
		t.Fatalf("SaveAppSettings: %v", err)
	}
	got, err := repo.AppSettings(ctx)
	if err != nil {
		t.Fatalf("AppSettings: %v", err)
	}
	if got.FreeShippingThreshold != 150000 || got.DefaultShippingCost != 18000 || !got.TaxRate.Equal(want.TaxRate) || got.TaxEnabled {
		t.Fatalf("unexpected app settings %+v", got)
	}

	pay := domain.PaymentSettings{CODEnabled: false, CODMinOrder: 1, CODMaxOrder: 2, CODFee: 3000, VirtualAccountEnabled: true, VirtualAccountFee: 5000}
	if err := repo.SavePaymentSettings(ctx, pay); err != nil {
		t.Fatalf("SavePaymentSettings: %v", err)
	}
	gotPay, err := repo.PaymentSettings(ctx)
	if err != nil {
		t.Fatalf("PaymentSettings: %v", err)
	}
	if gotPay != pay {
		t.Fatalf("expected %+v, got %+v", pay, gotPay)
	}
}
