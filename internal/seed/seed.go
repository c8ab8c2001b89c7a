package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"lamahang-storefront/internal/domain"
	productrepo "lamahang-storefront/internal/repository/product"
	settingsrepo "lamahang-storefront/internal/repository/settings"
	voucherrepo "lamahang-storefront/internal/repository/voucher"
	"lamahang-storefront/internal/settings"
	"lamahang-storefront/internal/voucher"
)

type productSeed struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Rating      float64
	Reviews     int
}

// Catalog is the storefront's starter product range.
var Catalog = []productSeed{
	{Name: "Minyak Kayu Putih 100ml", Description: "Minyak kayu putih murni dari Lamahang", Price: 45000, Category: "Original", Rating: 4.8, Reviews: 245},
	{Name: "Minyak Kayu Putih 250ml", Description: "Ukuran jumbo untuk penggunaan keluarga", Price: 95000, Category: "Original", Rating: 4.9, Reviews: 189},
	{Name: "Paket Hemat 3 Botol 100ml", Description: "Hemat lebih banyak dengan paket 3 botol", Price: 120000, Category: "Bundle", Rating: 4.7, Reviews: 156},
	{Name: "Minyak Kayu Putih Premium 250ml", Description: "Versi premium dengan kemasan eksklusif", Price: 125000, Category: "Premium", Rating: 4.9, Reviews: 98},
	{Name: "Paket Perawatan Keluarga", Description: "Lengkap untuk perawatan kesehatan keluarga", Price: 250000, Category: "Bundle", Rating: 4.8, Reviews: 67},
	{Name: "Minyak Kayu Putih Organik 100ml", Description: "Organik tanpa bahan kimia tambahan", Price: 85000, Category: "Organik", Rating: 4.9, Reviews: 142},
	{Name: "Travel Size 30ml", Description: "Praktis untuk dibawa kemana-mana", Price: 25000, Category: "Travel", Rating: 4.6, Reviews: 203},
	{Name: "Bundle Hemat Tahunan", Description: "Paket ekonomis untuk setahun penuh", Price: 450000, Category: "Bundle", Rating: 4.8, Reviews: 45},
}

const seedStock = 100

// Apply inserts the starter catalog, the default vouchers and the settings
// rows. It is idempotent: every write is an upsert.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("seed")

	products := productrepo.NewPostgres(pool, logger)
	for _, s := range Catalog {
		rating, reviews := s.Rating, s.Reviews
		p, err := products.Upsert(ctx, domain.Product{
			Name:        s.Name,
			Description: s.Description,
			Price:       s.Price,
			Category:    s.Category,
			Stock:       seedStock,
			Rating:      &rating,
			Reviews:     &reviews,
			IsActive:    true,
			SupportsCOD: true,
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", s.Name, err)
		}
		logger.Debug("product", zap.Int64("id", p.ID), zap.String("name", p.Name))
	}

	vouchers := voucherrepo.NewPostgres(pool, logger)
	for _, v := range voucher.Defaults() {
		if err := vouchers.Upsert(ctx, v); err != nil {
			return fmt.Errorf("upsert voucher %s: %w", v.Code, err)
		}
	}

	cfg := settingsrepo.NewPostgres(pool, logger)
	if err := cfg.SaveAppSettings(ctx, settings.DefaultApp()); err != nil {
		return fmt.Errorf("save app settings: %w", err)
	}
	if err := cfg.SavePaymentSettings(ctx, settings.DefaultPayment()); err != nil {
		return fmt.Errorf("save payment settings: %w", err)
	}

	logger.Info("seed applied", zap.Int("products", len(Catalog)), zap.Int("vouchers", len(voucher.Defaults())))
	return nil
}
