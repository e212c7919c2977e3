package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	applog "storefront/internal/logger"
)

// Connect opens a pgx pool and pings it, retrying while the database starts up.
func Connect(ctx context.Context, dsn string, attempts int, logger *logrus.Logger) (*pgxpool.Pool, error) {
	logger = applog.OrDiscard(logger)
	if attempts < 1 {
		attempts = 1
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}

	backoff := 500 * time.Millisecond
	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			logger.Infof("db: connected host=%s database=%s", cfg.ConnConfig.Host, cfg.ConnConfig.Database)
			return pool, nil
		}
		if i >= attempts {
			break
		}
		logger.Warnf("db: ping attempt %d/%d failed: %v", i, attempts, err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	pool.Close()
	return nil, errors.Wrapf(err, "ping after %d attempts", attempts)
}
