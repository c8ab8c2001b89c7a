package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamahang-storefront/internal/domain"
	orderrepo "lamahang-storefront/internal/repository/order"
)

type stubRepo struct {
	records   map[string]*orderrepo.Record
	createErr error
	nextID    int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{records: map[string]*orderrepo.Record{}}
}

func (s *stubRepo) Create(_ context.Context, sessionID, status string, payload domain.OrderPayload) (*orderrepo.Record, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.records[payload.Reference]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.nextID++
	rec := &orderrepo.Record{ID: s.nextID, SessionID: sessionID, Status: status, Payload: payload}
	s.records[payload.Reference] = rec
	return rec, nil
}

func (s *stubRepo) GetByReference(_ context.Context, reference string) (*orderrepo.Record, error) {
	rec, ok := s.records[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, reference, status string) error {
	rec, ok := s.records[reference]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = status
	return nil
}

func (s *stubRepo) ListBySession(_ context.Context, sessionID string) ([]orderrepo.Record, error) {
	var out []orderrepo.Record
	for _, rec := range s.records {
		if rec.SessionID == sessionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type stubRedeemer struct {
	codes []string
	err   error
}

func (s *stubRedeemer) Redeem(_ context.Context, code string) error {
	s.codes = append(s.codes, code)
	return s.err
}

type stubPublisher struct {
	err   error
	calls int
}

func (s *stubPublisher) SubmitOrder(_ context.Context, order domain.OrderPayload) (domain.OrderReceipt, error) {
	s.calls++
	if s.err != nil {
		return domain.OrderReceipt{}, s.err
	}
	return domain.OrderReceipt{Reference: order.Reference, Status: "queued"}, nil
}

func validPayload() domain.OrderPayload {
	return domain.OrderPayload{
		Reference:     uuid.NewString(),
		Address:       domain.Address{RecipientName: "Sari", Phone: "0812", Province: "Bali", DetailAddress: "Jl. Raya 1"},
		PaymentMethod: domain.PaymentBankTransfer,
		VoucherCode:   "diskon10",
		Items:         []domain.CartLineItem{{ProductID: 1, UnitPrice: 45000, Quantity: 2}},
		Breakdown:     domain.PriceBreakdown{Subtotal: 90000, VoucherDiscount: 9000, ShippingCost: 15000, Tax: 8910, Total: 104910},
	}
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

func TestSubmit_QueuesThroughPublisher(t *testing.T) {
	repo, redeemer, pub := newStubRepo(), &stubRedeemer{}, &stubPublisher{}
	svc := New(repo, redeemer, pub, nil)
	svc.now = fixedNow

	payload := validPayload()
	receipt, err := svc.Submit(context.Background(), "s1", payload)
	require.NoError(t, err)

	assert.Equal(t, payload.Reference, receipt.Reference)
	assert.Equal(t, "1", receipt.OrderID)
	assert.Equal(t, StatusQueued, receipt.Status)
	assert.Equal(t, fixedNow(), receipt.AcceptedAt)
	assert.Equal(t, []string{"DISKON10"}, redeemer.codes)
	assert.Equal(t, StatusQueued, repo.records[payload.Reference].Status)
}

func TestSubmit_WithoutPublisherStaysAccepted(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, nil, nil, nil)

	receipt, err := svc.ForSession("s2").SubmitOrder(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, receipt.Status)

	list, err := svc.ListBySession(context.Background(), "s2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSubmit_PublishFailureKeepsOrder(t *testing.T) {
	repo, pub := newStubRepo(), &stubPublisher{err: errors.New("broker down")}
	svc := New(repo, &stubRedeemer{err: domain.ErrAlreadyExists}, pub, nil)

	payload := validPayload()
	receipt, err := svc.Submit(context.Background(), "s1", payload)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, receipt.Status)
	assert.Equal(t, 1, pub.calls)

	rec, err := svc.Get(context.Background(), payload.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, rec.Status)
}

func TestSubmit_DuplicateReference(t *testing.T) {
	svc := New(newStubRepo(), nil, nil, nil)
	payload := validPayload()

	_, err := svc.Submit(context.Background(), "s1", payload)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "s1", payload)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSubmit_Validation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*domain.OrderPayload)
		field  string
	}{
		"bad reference":   {func(p *domain.OrderPayload) { p.Reference = "abc" }, "reference"},
		"unknown payment": {func(p *domain.OrderPayload) { p.PaymentMethod = "cash" }, "paymentMethod"},
		"missing phone":   {func(p *domain.OrderPayload) { p.Address.Phone = " " }, "address.phone"},
		"zero quantity":   {func(p *domain.OrderPayload) { p.Items[0].Quantity = 0 }, "items"},
		"subtotal drift":  {func(p *domain.OrderPayload) { p.Breakdown.Subtotal = 1 }, "breakdown.subtotal"},
		"total drift":     {func(p *domain.OrderPayload) { p.Breakdown.Total++ }, "breakdown.total"},
		"negative fee":    {func(p *domain.OrderPayload) { p.PaymentFee = -1 }, "paymentFee"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newStubRepo()
			svc := New(repo, nil, nil, nil)
			payload := validPayload()
			tc.mutate(&payload)

			_, err := svc.Submit(context.Background(), "s1", payload)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Empty(t, repo.records)
		})
	}

	payload := validPayload()
	payload.Items = nil
	_, err := New(newStubRepo(), nil, nil, nil).Submit(context.Background(), "s1", payload)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}
