package main

import (
	"context"
	"flag"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	applog "storefront/internal/logger"
	productrepo "storefront/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product CSV (id,name,price,description,category,image)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := applog.New(applog.Options{Service: "importer", Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, 5, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewPostgres(pool, logger), logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	logger.Infof("imported %d products (%d skipped) in %s", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}
