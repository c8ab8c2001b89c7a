// Package settings resolves store-wide app and payment settings, preferring
// the backend and falling back to the last good copy or local defaults.
package settings

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
)

func DefaultApp() domain.AppSettings {
	return domain.AppSettings{
		FreeShippingThreshold: 100000,
		DefaultShippingCost:   20000,
		TaxRate:               decimal.NewFromInt(11),
		TaxEnabled:            true,
	}
}

func DefaultPayment() domain.PaymentSettings {
	return domain.PaymentSettings{
		EWalletEnabled:        true,
		CODEnabled:            true,
		CODMinOrder:           50000,
		CODMaxOrder:           5000000,
		VirtualAccountEnabled: true,
		VirtualAccountFee:     4000,
	}
}

type Source interface {
	AppSettings(ctx context.Context) (domain.AppSettings, error)
	PaymentSettings(ctx context.Context) (domain.PaymentSettings, error)
}

// Provider serves settings from memory. The backend is asked once on first
// use and afterwards only by Refresh, so pricing never waits on the network.
type Provider struct {
	source   Source
	fallback domain.AppSettings
	logger   *zap.Logger

	mu        sync.Mutex
	attempted bool
	app       *domain.AppSettings
	payment   *domain.PaymentSettings
}

// NewProvider builds a provider. source may be nil, in which case the
// fallback app settings and DefaultPayment are always returned.
func NewProvider(source Source, fallback domain.AppSettings, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{source: source, fallback: fallback, logger: logger}
}

// Refresh fetches both settings rows. A failed fetch keeps the last good copy.
func (p *Provider) Refresh(ctx context.Context) {
	if p.source == nil {
		return
	}
	p.mu.Lock()
	p.attempted = true
	p.mu.Unlock()

	if s, err := p.source.AppSettings(ctx); err != nil {
		p.logger.Warn("fetch app settings", zap.Error(err))
	} else {
		p.mu.Lock()
		p.app = &s
		p.mu.Unlock()
	}
	if s, err := p.source.PaymentSettings(ctx); err != nil {
		p.logger.Warn("fetch payment settings", zap.Error(err))
	} else {
		p.mu.Lock()
		p.payment = &s
		p.mu.Unlock()
	}
}

// Run refreshes every interval until ctx is done.
func (p *Provider) Run(ctx context.Context, interval time.Duration) {
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
			p.Refresh(ctx)
		}
	}
}

// load fetches on first use unless a Refresh already ran.
func (p *Provider) load(ctx context.Context) {
	p.mu.Lock()
	attempted := p.attempted
	p.mu.Unlock()
	if !attempted {
		p.Refresh(ctx)
	}
}

func (p *Provider) App(ctx context.Context) domain.AppSettings {
	p.load(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.app != nil {
		return *p.app
	}
	return p.fallback
}

func (p *Provider) Payment(ctx context.Context) domain.PaymentSettings {
	p.load(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payment != nil {
		return *p.payment
	}
	return DefaultPayment()
}
