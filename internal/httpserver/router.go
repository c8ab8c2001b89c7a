package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lamahang-storefront/internal/checkout"
	"lamahang-storefront/internal/domain"
	orderrepo "lamahang-storefront/internal/repository/order"
	cartsvc "lamahang-storefront/internal/service/cart"
)

type ProductService interface {
	List(ctx context.Context, includeInactive bool) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type VoucherService interface {
	ListVouchers(ctx context.Context) ([]domain.Voucher, error)
	Get(ctx context.Context, code string) (*domain.Voucher, error)
	Save(ctx context.Context, v domain.Voucher) error
}

type SettingsService interface {
	AppSettings(ctx context.Context) (domain.AppSettings, error)
	PaymentSettings(ctx context.Context) (domain.PaymentSettings, error)
	UpdateAppSettings(ctx context.Context, in domain.AppSettings) error
	UpdatePaymentSettings(ctx context.Context, in domain.PaymentSettings) error
}

type SyncService interface {
	PutCartItem(ctx context.Context, sessionID string, productID int64, in cartsvc.CartItemInput) (*domain.RemoteItem, error)
	PutWishlistItem(ctx context.Context, sessionID string, productID int64, in cartsvc.WishlistItemInput) (*domain.RemoteItem, error)
	CartItems(ctx context.Context, sessionID string) ([]domain.RemoteItem, error)
	WishlistItems(ctx context.Context, sessionID string) ([]domain.RemoteItem, error)
	RemoveCartItem(ctx context.Context, sessionID string, productID int64) error
	RemoveWishlistItem(ctx context.Context, sessionID string, productID int64) error
}

type OrderService interface {
	Submit(ctx context.Context, sessionID string, payload domain.OrderPayload) (domain.OrderReceipt, error)
	Get(ctx context.Context, reference string) (*orderrepo.Record, error)
}

type Syncer interface {
	SyncOnce(ctx context.Context) error
}

// Deps are the handlers' collaborators. The /api group is mounted when
// ProductSvc is set; the /session group when Session is set.
type Deps struct {
	ProductSvc  ProductService
	VoucherSvc  VoucherService
	SettingsSvc SettingsService
	SyncSvc     SyncService
	OrderSvc    OrderService
	APIToken    string

	Session  *checkout.Session
	Products checkout.ProductLookup
	Syncer   Syncer

	Metrics        http.Handler
	AllowedOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Session != nil && deps.Products == nil {
		return nil, errors.New("session routes need a product lookup")
	}
	if deps.ProductSvc != nil && (deps.VoucherSvc == nil || deps.SettingsSvc == nil || deps.SyncSvc == nil || deps.OrderSvc == nil) {
		return nil, errors.New("api routes need product, voucher, settings, sync and order services")
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger.Named("access")).Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	if deps.ProductSvc != nil {
		registerAPI(router.Group("/api", bearerAuth(deps.APIToken)), deps)
	}
	if deps.Session != nil {
		h := &sessionHandlers{session: deps.Session, products: deps.Products, syncer: deps.Syncer, logger: logger.Named("session")}
		h.register(router.Group("/session"))
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
