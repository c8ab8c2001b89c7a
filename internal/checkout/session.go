package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/store"
)

// Session is the surface a storefront UI drives: cart, wishlist, address
// book and the checkout flow over them.
type Session struct {
	*Orchestrator
	cart      *store.CartStore
	wishlist  *store.WishlistStore
	addresses *store.AddressBook
}

func NewSession(d Deps, wishlist *store.WishlistStore) *Session {
	return &Session{
		Orchestrator: NewOrchestrator(d),
		cart:         d.Cart,
		wishlist:     wishlist,
		addresses:    d.Addresses,
	}
}

// Load rehydrates every collection from local storage and preselects the
// active address.
func (s *Session) Load(ctx context.Context) error {
	if err := s.cart.Load(ctx); err != nil {
		return err
	}
	if err := s.wishlist.Load(ctx); err != nil {
		return err
	}
	if err := s.addresses.Load(ctx); err != nil {
		return err
	}
	if a, ok := s.addresses.Active(); ok {
		if err := s.SelectAddress(a.ID); err != nil {
			return fmt.Errorf("preselect address: %w", err)
		}
	}
	return nil
}

func (s *Session) AddToCart(ctx context.Context, item domain.CartLineItem, quantity int) error {
	return s.cart.Add(ctx, item, quantity)
}

func (s *Session) RemoveFromCart(ctx context.Context, productID int64) error {
	return s.cart.Remove(ctx, productID)
}

func (s *Session) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	return s.cart.SetQuantity(ctx, productID, quantity)
}

func (s *Session) CartItems() []domain.CartLineItem { return s.cart.Items() }
func (s *Session) TotalItems() int                  { return s.cart.TotalItems() }
func (s *Session) TotalPrice() int64                { return s.cart.TotalPrice() }

func (s *Session) UnsyncedCartItems() []domain.CartLineItem {
	return s.cart.UnsyncedItems()
}

func (s *Session) UnsyncedWishlistItems() []domain.WishlistItem {
	return s.wishlist.UnsyncedItems()
}

func (s *Session) AddToWishlist(ctx context.Context, item domain.WishlistItem) error {
	return s.wishlist.Add(ctx, item)
}

func (s *Session) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return s.wishlist.Remove(ctx, productID)
}

func (s *Session) ToggleWishlist(ctx context.Context, item domain.WishlistItem) (bool, error) {
	return s.wishlist.Toggle(ctx, item)
}

func (s *Session) IsInWishlist(productID int64) bool    { return s.wishlist.Contains(productID) }
func (s *Session) WishlistItems() []domain.WishlistItem { return s.wishlist.Items() }

// AddAddress stores a new address. The first address is selected for
// checkout as well as marked active.
func (s *Session) AddAddress(ctx context.Context, a domain.Address) (domain.Address, error) {
	created, err := s.addresses.Add(ctx, a)
	if err != nil {
		return domain.Address{}, err
	}
	if _, ok := s.SelectedAddress(); !ok && created.IsActive {
		if err := s.SelectAddress(created.ID); err != nil {
			s.logger.Warn("select new address", zap.String("address_id", created.ID), zap.Error(err))
		}
	}
	return created, nil
}

func (s *Session) UpdateAddress(ctx context.Context, a domain.Address) error {
	return s.addresses.Update(ctx, a)
}

// RemoveAddress deletes the address. When it was selected for checkout the
// newly active address, if any, is selected instead.
func (s *Session) RemoveAddress(ctx context.Context, id string) error {
	if err := s.addresses.Remove(ctx, id); err != nil {
		return err
	}
	if _, ok := s.SelectedAddress(); !ok {
		if a, ok := s.addresses.Active(); ok {
			if err := s.SelectAddress(a.ID); err != nil {
				s.logger.Warn("select next active address", zap.String("address_id", a.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *Session) SetActiveAddress(ctx context.Context, id string) error {
	return s.addresses.SetActive(ctx, id)
}

func (s *Session) Addresses() []domain.Address { return s.addresses.List() }

// Summary is a read-only view of the whole session.
type Summary struct {
	State            State                 `json:"state"`
	Items            []domain.CartLineItem `json:"items"`
	TotalItems       int                   `json:"totalItems"`
	TotalPrice       int64                 `json:"totalPrice"`
	Breakdown        domain.PriceBreakdown `json:"breakdown"`
	AddressID        string                `json:"addressId,omitempty"`
	PaymentMethod    domain.PaymentMethod  `json:"paymentMethod,omitempty"`
	VoucherCode      string                `json:"voucherCode,omitempty"`
	UnsyncedCart     int                   `json:"unsyncedCart"`
	UnsyncedWishlist int                   `json:"unsyncedWishlist"`
	WishlistCount    int                   `json:"wishlistCount"`
	LastError        string                `json:"lastError,omitempty"`
	LastReceipt      *domain.OrderReceipt  `json:"lastReceipt,omitempty"`
}

func (s *Session) Summary(ctx context.Context) Summary {
	sum := Summary{
		State:            s.State(),
		Items:            s.cart.Items(),
		TotalItems:       s.cart.TotalItems(),
		TotalPrice:       s.cart.TotalPrice(),
		Breakdown:        s.PriceBreakdown(ctx),
		PaymentMethod:    s.PaymentMethod(),
		VoucherCode:      s.AppliedVoucher(),
		UnsyncedCart:     len(s.cart.UnsyncedItems()),
		UnsyncedWishlist: len(s.wishlist.UnsyncedItems()),
		WishlistCount:    s.wishlist.TotalItems(),
	}
	if a, ok := s.SelectedAddress(); ok {
		sum.AddressID = a.ID
	}
	if err := s.LastError(); err != nil {
		sum.LastError = err.Error()
	}
	if r, ok := s.Receipt(); ok {
		sum.LastReceipt = &r
	}
	return sum
}
