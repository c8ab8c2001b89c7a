package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"lamahang-storefront/internal/config"
	"lamahang-storefront/internal/db"
	"lamahang-storefront/internal/logging"
	"lamahang-storefront/internal/seed"
)

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

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
