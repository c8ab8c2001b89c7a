package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
	"lamahang-storefront/internal/settings"
	"lamahang-storefront/internal/store"
	"lamahang-storefront/internal/voucher"
)

type checkoutTestContext struct {
	session    *Session
	submitter  *stubSubmitter
	remembered domain.PriceBreakdown
	err        error
}

func (c *checkoutTestContext) reset() {
	kv := kvstore.NewMemory()
	c.submitter = &stubSubmitter{}
	c.session = NewSession(Deps{
		Cart:      store.NewCartStore(kv, nil),
		Addresses: store.NewAddressBook(kv, nil),
		Vouchers:  voucher.NewValidator(voucher.StaticCatalog(voucher.Defaults()), func() time.Time { return testNow }),
		Settings:  settings.NewProvider(nil, settings.DefaultApp(), nil),
		Submitter: c.submitter,
	}, store.NewWishlistStore(kv, nil))
	c.remembered = domain.PriceBreakdown{}
	c.err = nil
}

func (c *checkoutTestContext) anEmptySession() error {
	if c.session.TotalItems() != 0 {
		return fmt.Errorf("expected empty cart")
	}
	return nil
}

func (c *checkoutTestContext) aCartWithASubtotalOf(subtotal int) error {
	return c.session.AddToCart(context.Background(), domain.CartLineItem{ProductID: 1, Name: "Minyak Kayu Putih", UnitPrice: int64(subtotal)}, 1)
}

func (c *checkoutTestContext) aSelectedAddressInProvince(province string) error {
	_, err := c.session.AddAddress(context.Background(), domain.Address{
		RecipientName: "Dewi",
		Phone:         "0812",
		Province:      province,
		DetailAddress: "Jl. Kenanga 3",
	})
	return err
}

func (c *checkoutTestContext) paymentMethod(method string) error {
	return c.session.SelectPaymentMethod(context.Background(), method)
}

func (c *checkoutTestContext) iRememberThePriceBreakdown() error {
	c.remembered = c.session.PriceBreakdown(context.Background())
	return nil
}

func (c *checkoutTestContext) iApplyVoucher(code string) error {
	_, c.err = c.session.ApplyVoucher(context.Background(), code)
	return nil
}

func (c *checkoutTestContext) theVoucherIsAccepted() error {
	return c.err
}

func (c *checkoutTestContext) theVoucherIsRejectedWithReason(reason string) error {
	var verr *domain.VoucherError
	if !errors.As(c.err, &verr) {
		return fmt.Errorf("expected voucher error, got %v", c.err)
	}
	if verr.Reason.String() != reason {
		return fmt.Errorf("expected reason %s, got %s", reason, verr.Reason)
	}
	return nil
}

func (c *checkoutTestContext) thePriceBreakdownIsUnchanged() error {
	got := c.session.PriceBreakdown(context.Background())
	if got != c.remembered {
		return fmt.Errorf("breakdown changed from %+v to %+v", c.remembered, got)
	}
	return nil
}

func (c *checkoutTestContext) expectField(name string, got, want int64) error {
	if got != want {
		return fmt.Errorf("expected %s %d, got %d", name, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theShippingCostIs(want int) error {
	return c.expectField("shipping", c.session.PriceBreakdown(context.Background()).ShippingCost, int64(want))
}

func (c *checkoutTestContext) theVoucherDiscountIs(want int) error {
	return c.expectField("discount", c.session.PriceBreakdown(context.Background()).VoucherDiscount, int64(want))
}

func (c *checkoutTestContext) theTaxIs(want int) error {
	return c.expectField("tax", c.session.PriceBreakdown(context.Background()).Tax, int64(want))
}

func (c *checkoutTestContext) theTotalIsSubtotalMinusPlusShippingPlus(discount, tax int) error {
	b := c.session.PriceBreakdown(context.Background())
	return c.expectField("total", b.Total, b.Subtotal-int64(discount)+b.ShippingCost+int64(tax))
}

func (c *checkoutTestContext) theOrderServiceIsUnavailable() error {
	c.submitter.err = errors.New("order service unavailable")
	return nil
}

func (c *checkoutTestContext) theOrderServiceRecovers() error {
	c.submitter.err = nil
	return nil
}

func (c *checkoutTestContext) iCheckOut() error {
	_, c.err = c.session.Checkout(context.Background())
	return nil
}

func (c *checkoutTestContext) iRetryTheCheckout() error {
	return c.session.Retry()
}

func (c *checkoutTestContext) theCheckoutStateIs(state string) error {
	if got := c.session.State().String(); got != state {
		return fmt.Errorf("expected state %s, got %s (last error: %v)", state, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) theCartStillHoldsItem(n int) error {
	if got := c.session.TotalItems(); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	return c.theCartStillHoldsItem(0)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty session$`, tc.anEmptySession)
	ctx.Step(`^a cart with a subtotal of (\d+)$`, tc.aCartWithASubtotalOf)
	ctx.Step(`^a selected address in province "([^"]*)"$`, tc.aSelectedAddressInProvince)
	ctx.Step(`^payment method "([^"]*)"$`, tc.paymentMethod)
	ctx.Step(`^I remember the price breakdown$`, tc.iRememberThePriceBreakdown)
	ctx.Step(`^the order service is unavailable$`, tc.theOrderServiceIsUnavailable)

	ctx.Step(`^I apply voucher "([^"]*)"$`, tc.iApplyVoucher)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^the order service recovers$`, tc.theOrderServiceRecovers)
	ctx.Step(`^I retry the checkout$`, tc.iRetryTheCheckout)

	ctx.Step(`^the voucher is accepted$`, tc.theVoucherIsAccepted)
	ctx.Step(`^the voucher is rejected with reason "([^"]*)"$`, tc.theVoucherIsRejectedWithReason)
	ctx.Step(`^the price breakdown is unchanged$`, tc.thePriceBreakdownIsUnchanged)
	ctx.Step(`^the shipping cost is (\d+)$`, tc.theShippingCostIs)
	ctx.Step(`^the voucher discount is (\d+)$`, tc.theVoucherDiscountIs)
	ctx.Step(`^the tax is (\d+)$`, tc.theTaxIs)
	ctx.Step(`^the total is subtotal minus (\d+) plus shipping plus (\d+)$`, tc.theTotalIsSubtotalMinusPlusShippingPlus)
	ctx.Step(`^the checkout state is "([^"]*)"$`, tc.theCheckoutStateIs)
	ctx.Step(`^the cart still holds (\d+) items?$`, tc.theCartStillHoldsItem)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
