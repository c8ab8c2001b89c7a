package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lamahang-storefront/internal/checkout"
	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
	"lamahang-storefront/internal/settings"
	"lamahang-storefront/internal/store"
	"lamahang-storefront/internal/voucher"
)

var sessionNow = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

type stubLookup map[int64]domain.Product

func (s stubLookup) Product(_ context.Context, id int64) (domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

type stubSubmitter struct {
	err   error
	calls int
}

func (s *stubSubmitter) SubmitOrder(_ context.Context, order domain.OrderPayload) (domain.OrderReceipt, error) {
	s.calls++
	if s.err != nil {
		return domain.OrderReceipt{}, s.err
	}
	return domain.OrderReceipt{Reference: order.Reference, Status: "accepted", AcceptedAt: sessionNow}, nil
}

type stubSyncer struct{ err error }

func (s stubSyncer) SyncOnce(context.Context) error { return s.err }

func newSessionFixture(t *testing.T, syncer Syncer) (apiFixture, *stubSubmitter) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	kv := kvstore.NewMemory()
	products := stubLookup{
		1: {ID: 1, Name: "Minyak Kayu Putih 100ml", Price: 45000, Category: "Original", IsActive: true, SupportsCOD: true},
		9: {ID: 9, Name: "Retired", Price: 1000, IsActive: false},
	}
	sub := &stubSubmitter{}
	session := checkout.NewSession(checkout.Deps{
		Cart:      store.NewCartStore(kv, nil),
		Addresses: store.NewAddressBook(kv, nil),
		Vouchers:  voucher.NewValidator(voucher.StaticCatalog(voucher.Defaults()), func() time.Time { return sessionNow }),
		Settings:  settings.NewProvider(nil, settings.DefaultApp(), nil),
		Products:  products,
		Submitter: sub,
		Now:       func() time.Time { return sessionNow },
	}, store.NewWishlistStore(kv, nil))

	router, err := buildRouter(zap.NewNop(), nil, Deps{Session: session, Products: products, Syncer: syncer})
	require.NoError(t, err)
	return apiFixture{router: router}, sub
}

func prepareCheckout(t *testing.T, f apiFixture) {
	t.Helper()
	rec := f.do(http.MethodPost, "/session/addresses", `{"recipientName":"Sari","phone":"0812","province":"Bali","detailAddress":"Jl. Raya Ubud 1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPut, "/session/checkout/payment", `{"method":"bank_transfer"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/session/cart/items", `{"productId":1,"quantity":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSession_RequiresProductLookup(t *testing.T) {
	_, err := buildRouter(zap.NewNop(), nil, Deps{Session: &checkout.Session{}})
	assert.Error(t, err)
}

func TestSession_CheckoutFlow(t *testing.T) {
	f, sub := newSessionFixture(t, nil)
	prepareCheckout(t, f)

	rec := f.do(http.MethodPut, "/session/checkout/voucher", `{"code":"diskon10"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var applied struct {
		Breakdown domain.PriceBreakdown `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &applied))
	assert.Equal(t, domain.PriceBreakdown{Subtotal: 90000, VoucherDiscount: 9000, ShippingCost: 15000, Tax: 8910, Total: 104910}, applied.Breakdown)

	rec = f.do(http.MethodPost, "/session/checkout", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, sub.calls)

	rec = f.do(http.MethodGet, "/session/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		State       string `json:"state"`
		TotalItems  int    `json:"totalItems"`
		VoucherCode string `json:"voucherCode"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.Equal(t, checkout.StateSubmitted.String(), summary.State)
	assert.Equal(t, 0, summary.TotalItems)
	assert.Empty(t, summary.VoucherCode)
}

func TestSession_VoucherRejected(t *testing.T) {
	f, _ := newSessionFixture(t, nil)
	prepareCheckout(t, f)

	rec := f.do(http.MethodPut, "/session/checkout/voucher", `{"code":"NOPE"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec).Reason)

	rec = f.do(http.MethodPut, "/session/checkout/voucher", `{"code":"CASHBACK50K"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "below_minimum", decode(t, rec).Reason)
}

func TestSession_FailedSubmissionAndRetry(t *testing.T) {
	f, sub := newSessionFixture(t, nil)
	prepareCheckout(t, f)
	sub.err = errors.New("backend down")

	rec := f.do(http.MethodPost, "/session/checkout", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/session/cart", "", nil)
	var cart struct {
		TotalItems int `json:"totalItems"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &cart))
	assert.Equal(t, 2, cart.TotalItems)

	rec = f.do(http.MethodPost, "/session/checkout/retry", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(http.MethodPost, "/session/checkout/retry", "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	sub.err = nil
	rec = f.do(http.MethodPost, "/session/checkout", "", nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSession_CartAndWishlist(t *testing.T) {
	f, _ := newSessionFixture(t, nil)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/session/cart/items", `{"productId":42,"quantity":1}`, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(http.MethodPost, "/session/cart/items", `{"productId":9,"quantity":1}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/session/cart/items", `{}`, nil).Code)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/session/cart/items", `{"productId":1,"quantity":1}`, nil).Code)
	rec := f.do(http.MethodPut, "/session/cart/items/1", `{"quantity":0}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Items []domain.CartLineItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &cart))
	assert.Empty(t, cart.Items)

	rec = f.do(http.MethodPost, "/session/wishlist/items/1/toggle", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled struct {
		InWishlist bool `json:"inWishlist"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &toggled))
	assert.True(t, toggled.InWishlist)

	rec = f.do(http.MethodPost, "/session/wishlist/items/1/toggle", "", nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &toggled))
	assert.False(t, toggled.InWishlist)
}

func TestSession_CheckoutValidation(t *testing.T) {
	f, _ := newSessionFixture(t, nil)

	rec := f.do(http.MethodPost, "/session/checkout", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "address", decode(t, rec).Field)

	rec = f.do(http.MethodPut, "/session/checkout/address", `{"addressId":"missing"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodPut, "/session/checkout/payment", `{"method":"cash"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSession_Sync(t *testing.T) {
	f, _ := newSessionFixture(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodPost, "/session/sync", "", nil).Code)

	f, _ = newSessionFixture(t, stubSyncer{err: &domain.SyncError{Collection: "cart", ProductID: 1, Err: errors.New("boom")}})
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodPost, "/session/sync", "", nil).Code)

	f, _ = newSessionFixture(t, stubSyncer{})
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/session/sync", "", nil).Code)
}
