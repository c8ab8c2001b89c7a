// Package checkout drives a storefront session from cart to submitted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/pricing"
	"lamahang-storefront/internal/shipping"
	"lamahang-storefront/internal/store"
	"lamahang-storefront/internal/telemetry"
	"lamahang-storefront/internal/voucher"
)

// OrderSubmitter creates the order in the external system.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order domain.OrderPayload) (domain.OrderReceipt, error)
}

// ProductLookup returns the current catalog entry for a product.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
}

type SettingsProvider interface {
	App(ctx context.Context) domain.AppSettings
	Payment(ctx context.Context) domain.PaymentSettings
}

// Deps are the collaborators of an Orchestrator. Products, Logger, Metrics
// and Now are optional.
type Deps struct {
	Cart      *store.CartStore
	Addresses *store.AddressBook
	Vouchers  *voucher.Validator
	Settings  SettingsProvider
	Products  ProductLookup
	Submitter OrderSubmitter
	Logger    *zap.Logger
	Metrics   *telemetry.Metrics
	Now       func() time.Time
}

type Orchestrator struct {
	cart      *store.CartStore
	addresses *store.AddressBook
	vouchers  *voucher.Validator
	settings  SettingsProvider
	products  ProductLookup
	submitter OrderSubmitter
	engine    pricing.Engine
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time

	mu          sync.Mutex
	phase       phase
	addressID   string
	payment     domain.PaymentMethod
	voucherCode string
	notes       string
	receipt     *domain.OrderReceipt
	lastErr     error
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Orchestrator{
		cart:      d.Cart,
		addresses: d.Addresses,
		vouchers:  d.Vouchers,
		settings:  d.Settings,
		products:  d.Products,
		submitter: d.Submitter,
		engine:    pricing.NewEngine(),
		logger:    d.Logger,
		metrics:   d.Metrics,
		now:       d.Now,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

func (o *Orchestrator) stateLocked() State {
	switch o.phase {
	case phaseSubmitting:
		return StateSubmitting
	case phaseSubmitted:
		return StateSubmitted
	case phaseFailed:
		return StateFailed
	}
	if _, ok := o.selectedAddressLocked(); !ok {
		return StateNoAddress
	}
	if o.payment == "" {
		return StateNoPayment
	}
	return StateReady
}

func (o *Orchestrator) selectedAddressLocked() (domain.Address, bool) {
	if o.addressID == "" {
		return domain.Address{}, false
	}
	return o.addresses.Get(o.addressID)
}

// editableLocked rejects selection changes while an order is in flight and
// starts a new cycle after a completed one.
func (o *Orchestrator) editableLocked() error {
	switch o.phase {
	case phaseSubmitting:
		return domain.ErrCheckoutInProgress
	case phaseSubmitted:
		o.phase = phaseIdle
		o.receipt = nil
	}
	return nil
}

// SelectAddress chooses a shipping address from the address book.
func (o *Orchestrator) SelectAddress(id string) error {
	if _, ok := o.addresses.Get(id); !ok {
		return domain.NewValidationError("address", "address not found")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return err
	}
	o.addressID = id
	return nil
}

// SelectedAddress returns the chosen address, if it still exists.
func (o *Orchestrator) SelectedAddress() (domain.Address, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectedAddressLocked()
}

// SelectPaymentMethod chooses a payment method. Methods disabled in the
// payment settings are rejected.
func (o *Orchestrator) SelectPaymentMethod(ctx context.Context, method string) error {
	m, err := domain.ParsePaymentMethod(method)
	if err != nil {
		return &domain.ValidationError{Field: "paymentMethod", Message: "unknown payment method", Err: err}
	}
	if err := checkPaymentEnabled(m, o.settings.Payment(ctx)); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return err
	}
	o.payment = m
	return nil
}

func (o *Orchestrator) PaymentMethod() domain.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.payment
}

func (o *Orchestrator) SetNotes(notes string) {
	o.mu.Lock()
	o.notes = strings.TrimSpace(notes)
	o.mu.Unlock()
}

// ApplyVoucher validates code against the current cart subtotal and keeps it
// for pricing. A rejected code leaves any previously applied voucher in place.
func (o *Orchestrator) ApplyVoucher(ctx context.Context, code string) (voucher.Application, error) {
	app, err := o.vouchers.Apply(ctx, code, o.cart.TotalPrice())
	if err != nil {
		o.recordVoucherRejection(ctx, err)
		return voucher.Application{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.editableLocked(); err != nil {
		return voucher.Application{}, err
	}
	o.voucherCode = app.Code
	return app, nil
}

func (o *Orchestrator) RemoveVoucher() {
	o.mu.Lock()
	o.voucherCode = ""
	o.mu.Unlock()
}

// AppliedVoucher returns the applied voucher code, if any.
func (o *Orchestrator) AppliedVoucher() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.voucherCode
}

func (o *Orchestrator) recordVoucherRejection(ctx context.Context, err error) {
	var verr *domain.VoucherError
	if errors.As(err, &verr) {
		o.metrics.VoucherRejected(ctx, verr.Reason.String())
	}
}

// PriceBreakdown prices the current cart. An applied voucher that no longer
// validates (for example after items were removed) contributes nothing.
// Without a selected address shipping is zero.
func (o *Orchestrator) PriceBreakdown(ctx context.Context) domain.PriceBreakdown {
	o.mu.Lock()
	code := o.voucherCode
	addr, hasAddr := o.selectedAddressLocked()
	o.mu.Unlock()

	var addrPtr *domain.Address
	if hasAddr {
		addrPtr = &addr
	}
	subtotal := o.cart.TotalPrice()
	var app *voucher.Application
	if code != "" {
		if a, err := o.vouchers.Apply(ctx, code, subtotal); err == nil {
			app = &a
		}
	}
	return o.price(ctx, subtotal, addrPtr, app)
}

func (o *Orchestrator) price(ctx context.Context, subtotal int64, addr *domain.Address, app *voucher.Application) domain.PriceBreakdown {
	settings := o.settings.App(ctx)
	shippingCost := int64(0)
	if addr != nil {
		resolver := shipping.NewZoneResolver(settings.FreeShippingThreshold, settings.DefaultShippingCost)
		shippingCost = resolver.Resolve(addr.Province, subtotal)
	}
	return o.engine.ComputeBreakdown(subtotal, shippingCost, app, settings.TaxFraction())
}

// Retry returns a failed checkout to Ready without changing selections.
func (o *Orchestrator) Retry() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != phaseFailed {
		return fmt.Errorf("retry from %s: no failed checkout", o.stateLocked())
	}
	o.phase = phaseIdle
	o.lastErr = nil
	return nil
}

// LastError is the submission error that moved the checkout to Failed.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Orchestrator) Receipt() (domain.OrderReceipt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.receipt == nil {
		return domain.OrderReceipt{}, false
	}
	return *o.receipt, true
}

// Checkout submits the cart as an order. It runs from Ready; from Failed it
// retries implicitly and after Submitted it starts a new cycle. On success
// the cart is cleared and the voucher dropped; the wishlist is untouched.
// On submission failure the checkout moves to Failed and the cart is kept.
func (o *Orchestrator) Checkout(ctx context.Context) (domain.OrderReceipt, error) {
	o.mu.Lock()
	switch o.phase {
	case phaseSubmitting:
		o.mu.Unlock()
		return domain.OrderReceipt{}, domain.ErrCheckoutInProgress
	case phaseFailed, phaseSubmitted:
		o.phase = phaseIdle
		o.lastErr = nil
		o.receipt = nil
	}
	switch o.stateLocked() {
	case StateNoAddress:
		o.mu.Unlock()
		return domain.OrderReceipt{}, domain.NewValidationError("address", "address required")
	case StateNoPayment:
		o.mu.Unlock()
		return domain.OrderReceipt{}, domain.NewValidationError("paymentMethod", "payment method required")
	}
	items := o.cart.Items()
	if len(items) == 0 {
		o.mu.Unlock()
		return domain.OrderReceipt{}, domain.ErrEmptyCart
	}
	addr, _ := o.selectedAddressLocked()
	method := o.payment
	code := o.voucherCode
	notes := o.notes
	o.phase = phaseSubmitting
	o.mu.Unlock()

	order, err := o.stage(ctx, items, addr, method, code, notes)
	if err != nil {
		o.mu.Lock()
		o.phase = phaseIdle
		if code != "" && errors.As(err, new(*domain.VoucherError)) {
			o.voucherCode = ""
		}
		o.mu.Unlock()
		o.metrics.CheckoutOutcome(ctx, "rejected")
		return domain.OrderReceipt{}, err
	}

	receipt, err := o.submitter.SubmitOrder(ctx, order)
	if err != nil {
		subErr := &domain.CheckoutSubmissionError{Reference: order.Reference, Err: err}
		o.mu.Lock()
		o.phase = phaseFailed
		o.lastErr = subErr
		o.mu.Unlock()
		o.metrics.CheckoutOutcome(ctx, "failed")
		o.logger.Warn("order submission failed", zap.String("reference", order.Reference), zap.Error(err))
		return domain.OrderReceipt{}, subErr
	}
	if receipt.Reference == "" {
		receipt.Reference = order.Reference
	}

	o.mu.Lock()
	o.phase = phaseSubmitted
	o.receipt = &receipt
	o.voucherCode = ""
	o.mu.Unlock()

	if err := o.cart.RemoveIfCurrent(ctx, items); err != nil {
		o.logger.Error("remove ordered items after checkout", zap.String("reference", order.Reference), zap.Error(err))
	}
	o.metrics.CheckoutOutcome(ctx, "submitted")
	o.logger.Info("order submitted",
		zap.String("reference", order.Reference),
		zap.String("payment_method", string(method)),
		zap.Int64("total", order.Breakdown.Total),
	)
	return receipt, nil
}

// stage revalidates the cart against the catalog, voucher and payment rules
// and builds the order payload. Lines are charged at the current catalog
// price, not the price cached when they were added.
func (o *Orchestrator) stage(ctx context.Context, items []domain.CartLineItem, addr domain.Address, method domain.PaymentMethod, code, notes string) (domain.OrderPayload, error) {
	products, err := o.lookupProducts(ctx, items)
	if err != nil {
		return domain.OrderPayload{}, err
	}
	items = o.reprice(items, products)

	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}

	var app *voucher.Application
	if code != "" {
		a, err := o.vouchers.Apply(ctx, code, subtotal)
		if err != nil {
			o.recordVoucherRejection(ctx, err)
			return domain.OrderPayload{}, err
		}
		app = &a
	}

	breakdown := o.price(ctx, subtotal, &addr, app)
	paymentSettings := o.settings.Payment(ctx)
	if err := checkPaymentEligible(method, paymentSettings, breakdown.Total, products); err != nil {
		return domain.OrderPayload{}, err
	}

	return domain.OrderPayload{
		Reference:     uuid.NewString(),
		Address:       addr,
		PaymentMethod: method,
		PaymentFee:    method.Fee(paymentSettings),
		Notes:         notes,
		VoucherCode:   code,
		Items:         items,
		Breakdown:     breakdown,
		CreatedAt:     o.now(),
	}, nil
}

// reprice returns a copy of items carrying the catalog prices. products is
// index-aligned with items, or nil when no catalog is configured.
func (o *Orchestrator) reprice(items []domain.CartLineItem, products []domain.Product) []domain.CartLineItem {
	if products == nil {
		return items
	}
	out := make([]domain.CartLineItem, len(items))
	for i, it := range items {
		if p := products[i]; p.Price != it.UnitPrice {
			o.logger.Info("catalog price changed since add",
				zap.Int64("product_id", it.ProductID),
				zap.Int64("cart_price", it.UnitPrice),
				zap.Int64("catalog_price", p.Price),
			)
			it.UnitPrice = p.Price
		}
		out[i] = it
	}
	return out
}

func (o *Orchestrator) lookupProducts(ctx context.Context, items []domain.CartLineItem) ([]domain.Product, error) {
	if o.products == nil {
		return nil, nil
	}
	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		p, err := o.products.Product(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && !p.IsActive) {
			return nil, domain.NewValidationError("items", fmt.Sprintf("%s is no longer available", it.Name))
		}
		if err != nil {
			return nil, fmt.Errorf("lookup product %d: %w", it.ProductID, err)
		}
		products = append(products, p)
	}
	return products, nil
}
