package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	applog "storefront/internal/logger"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/repository/snapshot"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
)

func main() {
	cfg := config.FromEnv()
	logger := applog.New(applog.Options{Service: "api", Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.CatalogBackend == config.CatalogPostgres || cfg.StorageBackend == config.StoragePostgres {
		p, err := db.Connect(ctx, cfg.DBConnString, 5, logger)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer p.Close()
		pool = p
	}

	products := buildCatalog(cfg, pool, logger)
	blobs, closeBlobs := buildSnapshotStore(ctx, cfg, pool, logger)
	defer closeBlobs()

	store := cart.NewStore(blobs, cart.Options{
		Key:         cfg.CartKey,
		SaveTimeout: cfg.SaveTimeout,
		Logger:      logger,
	})

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Products:   productsvc.New(products),
		Categories: categorysvc.New(products),
		Cart:       cartsvc.New(store, products),
		Checkout:   checkoutsvc.New(store, logger),
		Ready:      store,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loadCtx, cancel := context.WithTimeout(gctx, cfg.LoadTimeout)
		defer cancel()
		return store.Load(loadCtx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %v", err)
		}
		if err := store.Close(shutdownCtx); err != nil {
			logger.Errorf("cart store close: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server error: %v", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func buildCatalog(cfg config.Config, pool *pgxpool.Pool, logger *logrus.Logger) catalog.Catalog {
	switch cfg.CatalogBackend {
	case config.CatalogPostgres:
		return productrepo.NewPostgres(pool, logger)
	case config.CatalogHTTP:
		return catalog.NewHTTPClient(catalog.HTTPOptions{
			BaseURL: cfg.CatalogURL,
			Timeout: cfg.CatalogTimeout,
			Logger:  logger,
		})
	default:
		logger.Fatalf("unknown CATALOG_BACKEND %q", cfg.CatalogBackend)
		return nil
	}
}

func buildSnapshotStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *logrus.Logger) (snapshot.Repository, func()) {
	noop := func() {}
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return snapshot.NewMemory(), noop
	case config.StorageFile:
		repo, err := snapshot.NewFile(cfg.StorageDir)
		if err != nil {
			logger.Fatalf("init file storage: %v", err)
		}
		return repo, noop
	case config.StorageRedis:
		rdb, err := snapshot.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB, 5, logger)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		return snapshot.NewRedis(rdb, "storefront:", logger), func() { _ = rdb.Close() }
	case config.StoragePostgres:
		return snapshot.NewPostgres(pool, logger), noop
	default:
		logger.Fatalf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
		return nil, noop
	}
}
