package wishlist

import (
	"context"
	"errors"
	"testing"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/testdb"
)

func TestPostgres_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t))

	item := domain.RemoteItem{SessionID: "s1", ProductID: 4, Name: "Premium 250ml", UnitPrice: 125000, Quantity: 9, Category: "Premium"}
	for i := 0; i < 2; i++ {
		saved, err := repo.Upsert(ctx, item)
		if err != nil {
			t.Fatalf("Upsert #%d: %v", i, err)
		}
		if saved.Quantity != 0 {
			t.Fatalf("wishlist entries carry no quantity, got %d", saved.Quantity)
		}
	}

	items, err := repo.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != 4 {
		t.Fatalf("unexpected items %+v", items)
	}

	if err := repo.Delete(ctx, "s1", 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "s1", 4); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
