package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lamahang-storefront/internal/domain"
	cartrepo "lamahang-storefront/internal/repository/cart"
	wishlistrepo "lamahang-storefront/internal/repository/wishlist"
)

// Service accepts cart and wishlist entries pushed by storefront sessions and
// keeps the acknowledged copy per session.
type Service struct {
	carts       cartrepo.Repository
	wishlists   wishlistrepo.Repository
	productRepo productRepo
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(carts cartrepo.Repository, wishlists wishlistrepo.Repository, productRepo productRepo) *Service {
	return &Service{carts: carts, wishlists: wishlists, productRepo: productRepo}
}

type CartItemInput struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Category  string `json:"category,omitempty"`
}

type WishlistItemInput struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Category  string `json:"category,omitempty"`
}

func (s *Service) PutCartItem(ctx context.Context, sessionID string, productID int64, in CartItemInput) (*domain.RemoteItem, error) {
	if err := s.checkItem(ctx, sessionID, productID, in.UnitPrice); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "quantity must be positive")
	}
	return s.carts.Upsert(ctx, domain.RemoteItem{
		SessionID: sessionID,
		ProductID: productID,
		Name:      strings.TrimSpace(in.Name),
		UnitPrice: in.UnitPrice,
		Quantity:  in.Quantity,
		Category:  in.Category,
	})
}

func (s *Service) PutWishlistItem(ctx context.Context, sessionID string, productID int64, in WishlistItemInput) (*domain.RemoteItem, error) {
	if err := s.checkItem(ctx, sessionID, productID, in.UnitPrice); err != nil {
		return nil, err
	}
	return s.wishlists.Upsert(ctx, domain.RemoteItem{
		SessionID: sessionID,
		ProductID: productID,
		Name:      strings.TrimSpace(in.Name),
		UnitPrice: in.UnitPrice,
		Category:  in.Category,
	})
}

func (s *Service) CartItems(ctx context.Context, sessionID string) ([]domain.RemoteItem, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errSessionRequired
	}
	return s.carts.ListBySession(ctx, sessionID)
}

func (s *Service) WishlistItems(ctx context.Context, sessionID string) ([]domain.RemoteItem, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errSessionRequired
	}
	return s.wishlists.ListBySession(ctx, sessionID)
}

func (s *Service) RemoveCartItem(ctx context.Context, sessionID string, productID int64) error {
	return s.carts.Delete(ctx, sessionID, productID)
}

func (s *Service) RemoveWishlistItem(ctx context.Context, sessionID string, productID int64) error {
	return s.wishlists.Delete(ctx, sessionID, productID)
}

var errSessionRequired = domain.NewValidationError("session", "session id required")

func (s *Service) checkItem(ctx context.Context, sessionID string, productID int64, unitPrice int64) error {
	if strings.TrimSpace(sessionID) == "" {
		return errSessionRequired
	}
	if productID <= 0 {
		return domain.NewValidationError("productId", "product id must be positive")
	}
	if unitPrice < 0 {
		return domain.NewValidationError("unitPrice", "unit price must not be negative")
	}
	if s.productRepo == nil {
		return nil
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
		}
		return err
	}
	if !product.IsActive {
		return domain.NewValidationError("productId", fmt.Sprintf("product %d is not available", productID))
	}
	return nil
}

// ForSession adapts the service to the storefront sync loop when the
// storefront and the system of record share a process.
func (s *Service) ForSession(sessionID string) *SessionPusher {
	return &SessionPusher{svc: s, sessionID: sessionID}
}

type SessionPusher struct {
	svc       *Service
	sessionID string
}

func (p *SessionPusher) PutCartItem(ctx context.Context, item domain.CartLineItem) error {
	_, err := p.svc.PutCartItem(ctx, p.sessionID, item.ProductID, CartItemInput{
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		Category:  item.Category,
	})
	return err
}

func (p *SessionPusher) PutWishlistItem(ctx context.Context, item domain.WishlistItem) error {
	_, err := p.svc.PutWishlistItem(ctx, p.sessionID, item.ProductID, WishlistItemInput{
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Category:  item.Category,
	})
	return err
}
