package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

// AddressBook keeps the session's shipping addresses. Exactly one address
// is active whenever the book is non-empty.
type AddressBook struct {
	kv     kvstore.Store
	logger *zap.Logger

	mu        sync.Mutex
	addresses []domain.Address

	subs subscribers[[]domain.Address]
}

func NewAddressBook(kv kvstore.Store, logger *zap.Logger) *AddressBook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressBook{kv: kv, logger: logger}
}

func (b *AddressBook) Load(ctx context.Context) error {
	var addresses []domain.Address
	if _, err := kvstore.Load(ctx, b.kv, kvstore.KeyAddresses, &addresses); err != nil {
		return fmt.Errorf("load addresses: %w", err)
	}
	b.mu.Lock()
	b.addresses = addresses
	b.normalizeActiveLocked()
	snap := b.snapshotLocked()
	b.mu.Unlock()

	b.subs.notify(snap)
	return nil
}

func (b *AddressBook) Subscribe(fn func([]domain.Address)) (unsubscribe func()) {
	return b.subs.add(fn)
}

func validateAddress(a domain.Address) error {
	switch {
	case strings.TrimSpace(a.RecipientName) == "":
		return domain.NewValidationError("recipientName", "recipient name required")
	case strings.TrimSpace(a.Phone) == "":
		return domain.NewValidationError("phone", "phone required")
	case strings.TrimSpace(a.Province) == "":
		return domain.NewValidationError("province", "province required")
	case strings.TrimSpace(a.DetailAddress) == "":
		return domain.NewValidationError("detailAddress", "detail address required")
	}
	return nil
}

// Add stores a new address with a generated id. The first address becomes
// active; so does any address added with IsActive set.
func (b *AddressBook) Add(ctx context.Context, a domain.Address) (domain.Address, error) {
	if err := validateAddress(a); err != nil {
		return domain.Address{}, err
	}
	a.ID = uuid.NewString()
	err := b.mutate(ctx, func() bool {
		if len(b.addresses) == 0 {
			a.IsActive = true
		}
		if a.IsActive {
			b.clearActiveLocked()
		}
		b.addresses = append(b.addresses, a)
		return true
	})
	return a, err
}

// Update replaces the stored address with the same id. The active flag is
// managed by SetActive and is preserved here.
func (b *AddressBook) Update(ctx context.Context, a domain.Address) error {
	if err := validateAddress(a); err != nil {
		return err
	}
	found := false
	err := b.mutate(ctx, func() bool {
		i := b.indexLocked(a.ID)
		if i < 0 {
			return false
		}
		found = true
		a.IsActive = b.addresses[i].IsActive
		b.addresses[i] = a
		return true
	})
	if err == nil && !found {
		return domain.ErrNotFound
	}
	return err
}

// Remove deletes the address. Removing the active address promotes the
// first remaining one.
func (b *AddressBook) Remove(ctx context.Context, id string) error {
	return b.mutate(ctx, func() bool {
		i := b.indexLocked(id)
		if i < 0 {
			return false
		}
		b.addresses = slices.Delete(b.addresses, i, i+1)
		b.normalizeActiveLocked()
		return true
	})
}

func (b *AddressBook) SetActive(ctx context.Context, id string) error {
	found := false
	err := b.mutate(ctx, func() bool {
		i := b.indexLocked(id)
		if i < 0 {
			return false
		}
		found = true
		if b.addresses[i].IsActive {
			return false
		}
		b.clearActiveLocked()
		b.addresses[i].IsActive = true
		return true
	})
	if err == nil && !found {
		return domain.ErrNotFound
	}
	return err
}

func (b *AddressBook) Get(id string) (domain.Address, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(id); i >= 0 {
		return b.addresses[i], true
	}
	return domain.Address{}, false
}

func (b *AddressBook) Active() (domain.Address, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.addresses {
		if a.IsActive {
			return a, true
		}
	}
	return domain.Address{}, false
}

func (b *AddressBook) List() []domain.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *AddressBook) mutate(ctx context.Context, fn func() bool) error {
	b.mu.Lock()
	if !fn() {
		b.mu.Unlock()
		return nil
	}
	snap := b.snapshotLocked()
	err := kvstore.Save(ctx, b.kv, kvstore.KeyAddresses, snap)
	b.mu.Unlock()

	if err != nil {
		b.logger.Error("persist addresses", zap.Error(err))
		err = fmt.Errorf("persist addresses: %w", err)
	}
	b.subs.notify(snap)
	return err
}

func (b *AddressBook) indexLocked(id string) int {
	return slices.IndexFunc(b.addresses, func(a domain.Address) bool { return a.ID == id })
}

func (b *AddressBook) clearActiveLocked() {
	for i := range b.addresses {
		b.addresses[i].IsActive = false
	}
}

// normalizeActiveLocked keeps exactly one active address: the first flagged
// one, or the first address when none is flagged.
func (b *AddressBook) normalizeActiveLocked() {
	active := slices.IndexFunc(b.addresses, func(a domain.Address) bool { return a.IsActive })
	if active < 0 && len(b.addresses) > 0 {
		active = 0
	}
	for i := range b.addresses {
		b.addresses[i].IsActive = i == active
	}
}

func (b *AddressBook) snapshotLocked() []domain.Address {
	out := make([]domain.Address, len(b.addresses))
	copy(out, b.addresses)
	return out
}
