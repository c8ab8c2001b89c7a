package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"lamahang-storefront/internal/config"
	"lamahang-storefront/internal/db"
	"lamahang-storefront/internal/logging"
	"lamahang-storefront/internal/migrate"
)

// Usage: migrate [up|down|version] [-steps N]
func main() {
	steps := flag.Int("steps", 1, "number of migrations to revert with down; 0 reverts all")
	flag.Parse()

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	cfg, cfgErr := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logger.Named("migrate")
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

	switch cmd {
	case "up":
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	case "down":
		if err := migrate.Rollback(ctx, pool, *steps); err != nil {
			logger.Fatal("rollback migrations", zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", *steps))
	case "version":
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal("read schema version", zap.Error(err))
		}
		logger.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		flag.Usage()
		os.Exit(2)
	}
}
