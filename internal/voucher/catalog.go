package voucher

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/kvstore"
)

// StaticCatalog serves a fixed voucher list.
type StaticCatalog []domain.Voucher

func (c StaticCatalog) FindByCode(_ context.Context, code string) (*domain.Voucher, error) {
	return find(c, code)
}

func find(vouchers []domain.Voucher, code string) (*domain.Voucher, error) {
	code = domain.NormalizeVoucherCode(code)
	for i := range vouchers {
		if domain.NormalizeVoucherCode(vouchers[i].Code) == code {
			v := vouchers[i]
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Source is the remote system of record for vouchers.
type Source interface {
	ListVouchers(ctx context.Context) ([]domain.Voucher, error)
}

// CachedCatalog serves vouchers from the backend, keeping a copy under the
// vouchers key. When the backend is unreachable it falls back to the cached
// copy and then to Defaults.
type CachedCatalog struct {
	source Source
	kv     kvstore.Store
	logger *zap.Logger

	mu       sync.RWMutex
	vouchers []domain.Voucher
	loaded   bool
}

func NewCachedCatalog(source Source, kv kvstore.Store, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{source: source, kv: kv, logger: logger}
}

// Refresh reloads the catalog from the backend. When the backend fails,
// a catalog that is already loaded is kept as is; otherwise the cached copy
// and then Defaults are used.
func (c *CachedCatalog) Refresh(ctx context.Context) {
	if c.source != nil {
		vouchers, err := c.source.ListVouchers(ctx)
		if err == nil {
			c.set(vouchers)
			if c.kv != nil {
				if err := kvstore.Save(ctx, c.kv, kvstore.KeyVouchers, vouchers); err != nil {
					c.logger.Warn("cache vouchers", zap.Error(err))
				}
			}
			return
		}
		c.logger.Warn("fetch vouchers from backend", zap.Error(err))
	}

	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return
	}

	if c.kv != nil {
		var cached []domain.Voucher
		found, err := kvstore.Load(ctx, c.kv, kvstore.KeyVouchers, &cached)
		if err != nil {
			c.logger.Warn("load cached vouchers", zap.Error(err))
		}
		if found && err == nil {
			c.set(cached)
			return
		}
	}

	c.logger.Info("using built-in vouchers")
	c.set(Defaults())
}

// Run refreshes the catalog every interval until ctx is done, so usage
// counts and deactivations reach the validator.
func (c *CachedCatalog) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

func (c *CachedCatalog) set(vouchers []domain.Voucher) {
	c.mu.Lock()
	c.vouchers = append([]domain.Voucher(nil), vouchers...)
	c.loaded = true
	c.mu.Unlock()
}

func (c *CachedCatalog) ensureLoaded(ctx context.Context) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		c.Refresh(ctx)
	}
}

func (c *CachedCatalog) List(ctx context.Context) []domain.Voucher {
	c.ensureLoaded(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Voucher(nil), c.vouchers...)
}

func (c *CachedCatalog) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	c.ensureLoaded(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return find(c.vouchers, code)
}
