package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

func home() domain.Address {
	return domain.Address{
		Label:         "Rumah",
		RecipientName: "Sari",
		Phone:         "08123456789",
		Province:      "Jawa Barat",
		Regency:       "Bandung",
		DetailAddress: "Jl. Merdeka 1",
		PostalCode:    "40111",
	}
}

func TestAddressBook_FirstAddressIsActive(t *testing.T) {
	ctx := context.Background()
	b := NewAddressBook(kvstore.NewMemory(), nil)

	first, err := b.Add(ctx, home())
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.True(t, first.IsActive)

	second, err := b.Add(ctx, home())
	require.NoError(t, err)
	assert.False(t, second.IsActive)

	active, ok := b.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
}

func TestAddressBook_RemoveActivePromotes(t *testing.T) {
	ctx := context.Background()
	b := NewAddressBook(kvstore.NewMemory(), nil)
	first, _ := b.Add(ctx, home())
	second, _ := b.Add(ctx, home())

	require.NoError(t, b.Remove(ctx, first.ID))
	active, ok := b.Active()
	require.True(t, ok)
	assert.Equal(t, second.ID, active.ID)

	require.NoError(t, b.Remove(ctx, second.ID))
	_, ok = b.Active()
	assert.False(t, ok)
}

func TestAddressBook_SetActiveKeepsSingleActive(t *testing.T) {
	ctx := context.Background()
	b := NewAddressBook(kvstore.NewMemory(), nil)
	_, _ = b.Add(ctx, home())
	second, _ := b.Add(ctx, home())

	require.NoError(t, b.SetActive(ctx, second.ID))
	n := 0
	for _, a := range b.List() {
		if a.IsActive {
			n++
		}
	}
	assert.Equal(t, 1, n)

	err := b.SetActive(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddressBook_Validation(t *testing.T) {
	b := NewAddressBook(kvstore.NewMemory(), nil)
	a := home()
	a.Province = " "
	_, err := b.Add(context.Background(), a)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "province", verr.Field)
	assert.Empty(t, b.List())
}

func TestAddressBook_UpdatePreservesActive(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	b := NewAddressBook(kv, nil)
	first, _ := b.Add(ctx, home())

	changed := first
	changed.IsActive = false
	changed.Province = "Bali"
	require.NoError(t, b.Update(ctx, changed))

	got, ok := b.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "Bali", got.Province)
	assert.True(t, got.IsActive)

	missing := home()
	missing.ID = "nope"
	assert.ErrorIs(t, b.Update(ctx, missing), domain.ErrNotFound)

	reloaded := NewAddressBook(kv, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, b.List(), reloaded.List())
}
