package cart

import (
	"context"
	"errors"
	"testing"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/testdb"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t))

	item := domain.RemoteItem{SessionID: "s1", ProductID: 1, Name: "Minyak Kayu Putih 100ml", UnitPrice: 45000, Quantity: 2, Category: "Original"}
	saved, err := repo.Upsert(ctx, item)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Fatalf("expected updated_at to be set")
	}

	item.Quantity = 5
	if _, err := repo.Upsert(ctx, item); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.RemoteItem{SessionID: "s2", ProductID: 1, Name: "x", UnitPrice: 1, Quantity: 1}); err != nil {
		t.Fatalf("Upsert other session: %v", err)
	}

	items, err := repo.ListBySession(ctx, "s1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 || items[0].SessionID != "s1" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestPostgres_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(testdb.Pool(t))

	if _, err := repo.Upsert(ctx, domain.RemoteItem{SessionID: "s1", ProductID: 3, Name: "Paket", UnitPrice: 120000, Quantity: 1}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Delete(ctx, "s1", 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "s1", 3); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
