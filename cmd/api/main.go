package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lamahang-storefront/internal/backend"
	"lamahang-storefront/internal/cartsync"
	"lamahang-storefront/internal/checkout"
	"lamahang-storefront/internal/config"
	"lamahang-storefront/internal/db"
	"lamahang-storefront/internal/domain"
	"lamahang-storefront/internal/httpserver"
	"lamahang-storefront/internal/kvstore"
	"lamahang-storefront/internal/logging"
	"lamahang-storefront/internal/messaging"
	cartrepo "lamahang-storefront/internal/repository/cart"
	orderrepo "lamahang-storefront/internal/repository/order"
	productrepo "lamahang-storefront/internal/repository/product"
	settingsrepo "lamahang-storefront/internal/repository/settings"
	voucherrepo "lamahang-storefront/internal/repository/voucher"
	wishlistrepo "lamahang-storefront/internal/repository/wishlist"
	cartsvc "lamahang-storefront/internal/service/cart"
	ordersvc "lamahang-storefront/internal/service/order"
	productsvc "lamahang-storefront/internal/service/product"
	settingssvc "lamahang-storefront/internal/service/settings"
	vouchersvc "lamahang-storefront/internal/service/voucher"
	"lamahang-storefront/internal/settings"
	"lamahang-storefront/internal/store"
	"lamahang-storefront/internal/telemetry"
	"lamahang-storefront/internal/voucher"
)

var version = "dev"

// remote is what the storefront session needs from its system of record.
type remote struct {
	vouchers  voucher.Source
	settings  settings.Source
	products  checkout.ProductLookup
	pusher    cartsync.Pusher
	submitter checkout.OrderSubmitter
}

func main() {
	cfg, cfgErr := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("config file not applied", zap.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(version)
	if err != nil {
		logger.Fatal("init meter provider", zap.Error(err))
	}
	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		logger.Fatal("init tracer provider", zap.Error(err))
	}
	metrics, err := telemetry.NewMetrics()
	if err != nil {
		logger.Fatal("init metrics", zap.Error(err))
	}

	var dbpool *pgxpool.Pool
	if cfg.BackendURL == "" || cfg.StateBackend == config.BackendPostgres {
		dbpool, err = db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer dbpool.Close()
	}

	kv, closeKV, err := openStateStore(ctx, cfg, dbpool)
	if err != nil {
		logger.Fatal("open state store", zap.String("backend", cfg.StateBackend), zap.Error(err))
	}
	defer closeKV()

	deps := httpserver.Deps{
		APIToken:       cfg.APIToken,
		Metrics:        metricsHandler,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	var rem remote
	if cfg.BackendURL != "" {
		client, err := backend.New(cfg.BackendURL, cfg.BackendToken, backend.WithSession(cfg.SessionID))
		if err != nil {
			logger.Fatal("init backend client", zap.Error(err))
		}
		rem = remote{vouchers: client, settings: client, products: client, pusher: client, submitter: client}
		logger.Info("using remote backend", zap.String("url", cfg.BackendURL))
	} else {
		var closePublisher func() error
		rem, closePublisher = wireLocal(cfg, dbpool, logger, &deps)
		defer closePublisher()
	}

	cart := store.NewCartStore(kv, logger)
	addresses := store.NewAddressBook(kv, logger)
	wishlist := store.NewWishlistStore(kv, logger)

	catalog := voucher.NewCachedCatalog(rem.vouchers, kv, logger)
	catalog.Refresh(ctx)
	provider := settings.NewProvider(rem.settings, fallbackSettings(cfg), logger)
	provider.Refresh(ctx)
	go catalog.Run(ctx, cfg.RefreshInterval)
	go provider.Run(ctx, cfg.RefreshInterval)

	session := checkout.NewSession(checkout.Deps{
		Cart:      cart,
		Addresses: addresses,
		Vouchers:  voucher.NewValidator(catalog, time.Now),
		Settings:  provider,
		Products:  rem.products,
		Submitter: rem.submitter,
		Logger:    logger,
		Metrics:   metrics,
	}, wishlist)
	if err := session.Load(ctx); err != nil {
		logger.Fatal("load session state", zap.String("session", cfg.SessionID), zap.Error(err))
	}

	syncer := cartsync.New(cart, wishlist, rem.pusher, logger, metrics)
	go syncer.Run(ctx, cfg.SyncInterval)

	deps.Session = session
	deps.Products = rem.products
	deps.Syncer = syncer

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("session", cfg.SessionID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	if err := shutdownMeter(shutdownCtx); err != nil {
		logger.Warn("meter shutdown", zap.Error(err))
	}
}

// wireLocal serves the catalog, vouchers, settings, sync and orders from
// this process's database and registers the /api routes for them.
func wireLocal(cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger, deps *httpserver.Deps) (remote, func() error) {
	productRepo := productrepo.NewPostgres(pool, logger)
	productService := productsvc.New(productRepo)
	voucherService := vouchersvc.New(voucherrepo.NewPostgres(pool, logger))
	settingsService := settingssvc.New(settingsrepo.NewPostgres(pool, logger))
	cartService := cartsvc.New(cartrepo.NewPostgres(pool), wishlistrepo.NewPostgres(pool), productRepo)

	closePublisher := func() error { return nil }
	var orderService *ordersvc.Service
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := messaging.NewOrderPublisher(cfg.KafkaBrokers, cfg.OrderTopic, logger)
		if err != nil {
			logger.Fatal("init order publisher", zap.Error(err))
		}
		closePublisher = pub.Close
		orderService = ordersvc.New(orderrepo.NewPostgres(pool), voucherService, pub, logger)
	} else {
		orderService = ordersvc.New(orderrepo.NewPostgres(pool), voucherService, nil, logger)
	}

	deps.ProductSvc = productService
	deps.VoucherSvc = voucherService
	deps.SettingsSvc = settingsService
	deps.SyncSvc = cartService
	deps.OrderSvc = orderService

	return remote{
		vouchers:  voucherService,
		settings:  settingsService,
		products:  productService,
		pusher:    cartService.ForSession(cfg.SessionID),
		submitter: orderService.ForSession(cfg.SessionID),
	}, closePublisher
}

// openStateStore picks the session's local persistence. Every backend is
// scoped to cfg.SessionID.
func openStateStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (kvstore.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StateBackend {
	case config.BackendMemory:
		return kvstore.NewMemory(), noop, nil
	case config.BackendFile:
		s, err := kvstore.NewFile(filepath.Join(cfg.StateDir, cfg.SessionID))
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.BackendRedis:
		s, err := kvstore.NewRedisFromURL(ctx, cfg.RedisURL, cfg.RedisNamespace+":"+cfg.SessionID)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendPostgres:
		return kvstore.NewPostgres(pool, cfg.SessionID), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}

func fallbackSettings(cfg config.Config) domain.AppSettings {
	return domain.AppSettings{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		DefaultShippingCost:   cfg.DefaultShippingCost,
		TaxRate:               cfg.TaxRatePercent,
		TaxEnabled:            cfg.TaxEnabled,
	}
}
