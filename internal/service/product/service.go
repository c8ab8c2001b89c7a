package product

import (
	"context"
	"fmt"
	"strings"

	"lamahang-storefront/internal/domain"
	productrepo "lamahang-storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the catalog. Inactive products are only included on request.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	return s.repo.List(ctx, !includeInactive)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Product serves checkout's product lookup in-process.
func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

// Save validates and upserts a catalog entry keyed by name.
func (s *Service) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, domain.NewValidationError("name", "name required")
	}
	if p.Price < 0 {
		return nil, domain.NewValidationError("price", "price must not be negative")
	}
	if p.Stock < 0 {
		return nil, domain.NewValidationError("stock", "stock must not be negative")
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return nil, domain.NewValidationError("rating", fmt.Sprintf("rating %.2f outside 0..5", *p.Rating))
	}
	return s.repo.Upsert(ctx, p)
}
