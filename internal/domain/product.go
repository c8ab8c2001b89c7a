package domain

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	Rating      *float64  `json:"rating,omitempty"`
	Reviews     *int      `json:"reviews,omitempty"`
	IsActive    bool      `json:"isActive"`
	SupportsCOD bool      `json:"supportsCod"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CartLine builds a cart line for the product at its current price.
func (p Product) CartLine() CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Category:  p.Category,
	}
}

// WishlistEntry builds a wishlist entry for the product.
func (p Product) WishlistEntry() WishlistItem {
	return WishlistItem{
		ProductID:   p.ID,
		Name:        p.Name,
		UnitPrice:   p.Price,
		Category:    p.Category,
		Rating:      p.Rating,
		ReviewCount: p.Reviews,
	}
}
