package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"lamahang-storefront/internal/config"
	"lamahang-storefront/internal/db"
	"lamahang-storefront/internal/importer"
	"lamahang-storefront/internal/logging"
	productrepo "lamahang-storefront/internal/repository/product"
	voucherrepo "lamahang-storefront/internal/repository/voucher"
	productsvc "lamahang-storefront/internal/service/product"
	vouchersvc "lamahang-storefront/internal/service/voucher"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product or voucher CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, cfgErr := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("config file not applied", zap.Error(cfgErr))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	kind, err := importer.DetectKind(f)
	if err != nil {
		logger.Fatal("detect csv kind", zap.Error(err))
	}
	if _, err := f.Seek(0, 0); err != nil {
		logger.Fatal("rewind file", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	imp := importer.NewCSVImporter(f,
		productsvc.New(productrepo.NewPostgres(pool, logger)),
		vouchersvc.New(voucherrepo.NewPostgres(pool, logger)),
	)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}

	fmt.Printf("Imported %d %s in %s\n", count, kind, time.Since(start).Truncate(time.Millisecond))
}
