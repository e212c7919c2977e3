package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/db"
	applog "storefront/internal/logger"
	"storefront/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger := applog.New(applog.Options{Service: "migrate", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, 5, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Info("migrations applied")
}
