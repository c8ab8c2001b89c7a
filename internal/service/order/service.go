package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	orderrepo "lamahang-storefront/internal/repository/order"
)

const (
	StatusAccepted = "accepted"
	StatusQueued   = "queued"
)

// publisher forwards accepted orders to fulfilment.
type publisher interface {
	SubmitOrder(ctx context.Context, order domain.OrderPayload) (domain.OrderReceipt, error)
}

type voucherRedeemer interface {
	Redeem(ctx context.Context, code string) error
}

type Service struct {
	repo      orderrepo.Repository
	vouchers  voucherRedeemer
	publisher publisher
	logger    *zap.Logger
	now       func() time.Time
}

// New builds the order service. vouchers and pub may be nil.
func New(repo orderrepo.Repository, vouchers voucherRedeemer, pub publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, vouchers: vouchers, publisher: pub, logger: logger.Named("orders"), now: time.Now}
}

// Submit validates and stores the order, counts the voucher use and hands
// the order to the publisher. The stored row is the acceptance point; a
// failed publish leaves the order accepted.
func (s *Service) Submit(ctx context.Context, sessionID string, payload domain.OrderPayload) (domain.OrderReceipt, error) {
	if err := validate(payload); err != nil {
		return domain.OrderReceipt{}, err
	}
	payload.VoucherCode = domain.NormalizeVoucherCode(payload.VoucherCode)

	rec, err := s.repo.Create(ctx, sessionID, StatusAccepted, payload)
	if err != nil {
		return domain.OrderReceipt{}, err
	}
	receipt := domain.OrderReceipt{
		Reference:  payload.Reference,
		OrderID:    strconv.FormatInt(rec.ID, 10),
		Status:     StatusAccepted,
		AcceptedAt: s.now().UTC(),
	}
	log := s.logger.With(zap.String("reference", payload.Reference), zap.String("session", sessionID))

	if payload.VoucherCode != "" && s.vouchers != nil {
		if err := s.vouchers.Redeem(ctx, payload.VoucherCode); err != nil {
			log.Warn("redeem voucher", zap.String("voucher", payload.VoucherCode), zap.Error(err))
		}
	}

	if s.publisher == nil {
		log.Info("order accepted")
		return receipt, nil
	}
	if _, err := s.publisher.SubmitOrder(ctx, payload); err != nil {
		log.Error("publish order", zap.Error(err))
		return receipt, nil
	}
	if err := s.repo.UpdateStatus(ctx, payload.Reference, StatusQueued); err != nil {
		log.Warn("mark order queued", zap.Error(err))
		return receipt, nil
	}
	receipt.Status = StatusQueued
	log.Info("order queued")
	return receipt, nil
}

func (s *Service) Get(ctx context.Context, reference string) (*orderrepo.Record, error) {
	return s.repo.GetByReference(ctx, reference)
}

func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]orderrepo.Record, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

// ForSession adapts the service to checkout's order submitter when the
// storefront and the system of record share a process.
func (s *Service) ForSession(sessionID string) *SessionSubmitter {
	return &SessionSubmitter{svc: s, sessionID: sessionID}
}

type SessionSubmitter struct {
	svc       *Service
	sessionID string
}

func (p *SessionSubmitter) SubmitOrder(ctx context.Context, order domain.OrderPayload) (domain.OrderReceipt, error) {
	return p.svc.Submit(ctx, p.sessionID, order)
}

func validate(p domain.OrderPayload) error {
	if _, err := uuid.Parse(p.Reference); err != nil {
		return domain.NewValidationError("reference", "reference must be a UUID")
	}
	if len(p.Items) == 0 {
		return domain.ErrEmptyCart
	}
	if _, err := domain.ParsePaymentMethod(string(p.PaymentMethod)); err != nil {
		return domain.NewValidationError("paymentMethod", err.Error())
	}
	a := p.Address
	for _, f := range []struct{ name, value string }{
		{"address.recipientName", a.RecipientName},
		{"address.phone", a.Phone},
		{"address.province", a.Province},
		{"address.detailAddress", a.DetailAddress},
	} {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.name, f.name+" required")
		}
	}

	var subtotal int64
	for _, it := range p.Items {
		if it.Quantity <= 0 {
			return domain.NewValidationError("items", fmt.Sprintf("product %d has quantity %d", it.ProductID, it.Quantity))
		}
		subtotal += it.LineTotal()
	}
	b := p.Breakdown
	if b.Subtotal != subtotal {
		return domain.NewValidationError("breakdown.subtotal", fmt.Sprintf("subtotal %d does not match items %d", b.Subtotal, subtotal))
	}
	if b.Total != b.Subtotal-b.VoucherDiscount+b.ShippingCost+b.Tax || b.Total < 0 {
		return domain.NewValidationError("breakdown.total", "total does not add up")
	}
	if p.PaymentFee < 0 {
		return domain.NewValidationError("paymentFee", "payment fee must not be negative")
	}
	return nil
}
